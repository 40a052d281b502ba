// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/api/utils"
	"github.com/hayotensor/hypertensor/chain"
	"github.com/hayotensor/hypertensor/eventdb"
	"github.com/hayotensor/hypertensor/log"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
)

type Subscriptions struct {
	repo           *chain.Repository
	db             *eventdb.EventDB
	backtraceLimit uint32
	upgrader       *websocket.Upgrader
	cache          *messageCache
	done           chan struct{}
	wg             sync.WaitGroup
}

// New creates the subscriptions module. Subscribers may start at most backtraceLimit blocks behind the best block.
func New(repo *chain.Repository, db *eventdb.EventDB, allowedOrigins []string, backtraceLimit uint32) *Subscriptions {
	return &Subscriptions{
		repo:           repo,
		db:             db,
		backtraceLimit: backtraceLimit,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || strings.EqualFold(allowed, origin) {
						return true
					}
				}
				return false
			},
		},
		cache: newMessageCache(int(backtraceLimit) + 1),
		done:  make(chan struct{}),
	}
}

func (s *Subscriptions) parseFilter(req *http.Request) (uint32, *EventFilter, error) {
	q := req.URL.Query()
	best := s.repo.BestBlockSummary().Number

	pos, err := utils.ParseUint32("pos", q.Get("pos"), best)
	if err != nil {
		return 0, nil, err
	}
	if pos > best {
		return 0, nil, utils.BadRequest(errors.New("pos: beyond best block"))
	}
	if best-pos > s.backtraceLimit {
		return 0, nil, utils.HTTPError(errors.New("pos: backtrace limit exceeded"), http.StatusForbidden)
	}

	filter := &EventFilter{}
	if sid := q.Get("subnet"); sid != "" {
		id, err := utils.ParseSubnetID(sid)
		if err != nil {
			return 0, nil, err
		}
		filter.Subnet = &id
	}
	for _, name := range q["name"] {
		for _, n := range strings.Split(name, ",") {
			if n = strings.TrimSpace(n); n != "" {
				if filter.Names == nil {
					filter.Names = make(map[string]bool)
				}
				filter.Names[n] = true
			}
		}
	}
	return pos, filter, nil
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	pos, filter, err := s.parseFilter(req)
	if err != nil {
		return err
	}
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already responded
		logger.Debug("upgrade failed", "err", err)
		return nil
	}

	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	reader := newEventReader(s.repo, s.db, s.cache, pos, filter)
	if err := s.pipe(req.Context(), conn, reader); err != nil {
		logger.Debug("subscription closed", "err", err)
		msg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	}
	return nil
}

func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, reader *eventReader) error {
	closed := make(chan struct{})
	// the read loop answers control frames and notices the peer going away
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		ticker := s.repo.Ticker()
		msgs, ok, err := reader.Read(ctx)
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return nil
			}
		}
		if ok {
			continue
		}

		select {
		case <-ticker:
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case <-closed:
			return nil
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		}
	}
}

// Close stops every subscription, waiting for their connections to close.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
