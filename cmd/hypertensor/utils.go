// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/hayotensor/hypertensor/chain"
	"github.com/hayotensor/hypertensor/eventdb"
	"github.com/hayotensor/hypertensor/genesis"
	"github.com/hayotensor/hypertensor/kv"
	"github.com/hayotensor/hypertensor/log"
	"github.com/hayotensor/hypertensor/lvldb"
	"github.com/hayotensor/hypertensor/metrics"
	"github.com/hayotensor/hypertensor/pebbledb"
	"github.com/hayotensor/hypertensor/runtime"
)

func initLogger(ctx *cli.Context) {
	log.Init(log.Options{
		Verbosity: ctx.Int(verbosityFlag.Name),
		JSON:      ctx.Bool(jsonLogsFlag.Name),
	})
}

func selectGenesis(ctx *cli.Context) (*genesis.Genesis, error) {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet(), nil
	}
	cfg, err := genesis.Load(path)
	if err != nil {
		return nil, err
	}
	return genesis.NewGenesis(cfg)
}

func loadSchedule(ctx *cli.Context) (*runtime.Schedule, error) {
	path := ctx.String(scheduleFlag.Name)
	if path == "" {
		return nil, nil
	}
	sched, err := runtime.LoadSchedule(path)
	if err != nil {
		return nil, errors.Wrap(err, "load schedule")
	}
	return sched, nil
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	id := gene.ID()
	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", id[24:]))
	if err := os.MkdirAll(instanceDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create instance dir [%v]", instanceDir)
	}
	return instanceDir, nil
}

// openMainDB opens the chain database, in memory when instanceDir is empty.
func openMainDB(ctx *cli.Context, instanceDir string) (kv.StoreCloser, error) {
	switch engine := ctx.String(dbEngineFlag.Name); engine {
	case "leveldb":
		if instanceDir == "" {
			return lvldb.NewMem()
		}
		db, err := lvldb.New(filepath.Join(instanceDir, "main.db"), lvldb.Options{
			CacheSize:              256,
			OpenFilesCacheCapacity: 500,
		})
		return db, errors.Wrap(err, "open main database")
	case "pebble":
		if instanceDir == "" {
			return pebbledb.NewMem()
		}
		db, err := pebbledb.Open(filepath.Join(instanceDir, "main.pebble"))
		return db, errors.Wrap(err, "open main database")
	default:
		return nil, errors.Errorf("unknown db engine %q", engine)
	}
}

func openEventDB(instanceDir string) (*eventdb.EventDB, error) {
	if instanceDir == "" {
		return eventdb.NewMem()
	}
	db, err := eventdb.New(filepath.Join(instanceDir, "events.db"))
	return db, errors.Wrap(err, "open event database")
}

func startAPIServer(addr string, handler http.Handler) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	return serve(srv, listener, "http://"+listener.Addr().String()+"/")
}

func startMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics API addr [%v]", addr)
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	handler := handlers.CompressHandler(router)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	return serve(srv, listener, "http://"+listener.Addr().String()+"/metrics")
}

func serve(srv *http.Server, listener net.Listener, url string) (string, func(), error) {
	var goes errgroup.Group
	goes.Go(func() error {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Warn("http server stopped", "addr", listener.Addr(), "err", err)
		}
		return nil
	})
	return url, func() {
		srv.Close()
		goes.Wait()
	}, nil
}

func printStartupMessage(gene *genesis.Genesis, repo *chain.Repository, instanceDir, apiURL, metricsURL string) {
	best := repo.BestBlockSummary()
	if instanceDir == "" {
		instanceDir = "Memory"
	}
	if metricsURL == "" {
		metricsURL = "Disabled"
	}

	fmt.Printf(`Starting %v
    Network      [ %v %v ]
    Best block   [ #%v %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
`,
		"Hypertensor/"+fullVersion(),
		gene.ID(), gene.Name(),
		best.Number, best.StateHash,
		instanceDir,
		apiURL,
		metricsURL,
	)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		if parent.Err() == nil {
			logger.Info("exit signal received, stopping...")
		}
	}()
	return ctx, cancel
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".hypertensor")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
