// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/hayotensor/hypertensor/api/accounts"
	"github.com/hayotensor/hypertensor/api/blocks"
	"github.com/hayotensor/hypertensor/api/events"
	"github.com/hayotensor/hypertensor/api/subnets"
	"github.com/hayotensor/hypertensor/api/subscriptions"
	"github.com/hayotensor/hypertensor/api/utils"
	"github.com/hayotensor/hypertensor/chain"
	"github.com/hayotensor/hypertensor/eventdb"
	"github.com/hayotensor/hypertensor/health"
	"github.com/hayotensor/hypertensor/log"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	BacktraceLimit  uint32
	EnableReqLogger bool
	EnableMetrics   bool
	LogsLimit       uint64
	// Health serves GET /health when set.
	Health *health.Health
}

// New return api router
func New(
	repo *chain.Repository,
	eventDB *eventdb.EventDB,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()
	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	subnets.New(repo).
		Mount(router, "/subnets")
	accounts.New(repo).
		Mount(router, "/accounts")
	blocks.New(repo).
		Mount(router, "/blocks")
	events.New(eventDB, opts.LogsLimit).
		Mount(router, "/events")
	subs := subscriptions.New(repo, eventDB, origins, opts.BacktraceLimit)
	subs.Mount(router, "/subscriptions")
	if opts.Health != nil {
		router.Path("/health").
			Methods(http.MethodGet).
			Name("GET /health").
			HandlerFunc(utils.WrapHandlerFunc(healthHandler(opts.Health)))
	}

	var handler http.Handler = handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-genesis-id"}),
		handlers.ExposedHeaders([]string{"x-genesis-id"}),
	)(handler)
	handler = genesisIDHandler(handler, repo)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}

// genesisIDHandler tags every response with the genesis id, so clients can tell networks apart.
func genesisIDHandler(h http.Handler, repo *chain.Repository) http.Handler {
	id := repo.GenesisID().String()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-genesis-id", id)
		h.ServeHTTP(w, r)
	})
}

func healthHandler(h *health.Health) utils.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) error {
		status := h.Status()
		w.Header().Set("Content-Type", utils.JSONContentType)
		if !status.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		return json.NewEncoder(w).Encode(status)
	}
}
