// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/hayotensor/hypertensor/api"
	"github.com/hayotensor/hypertensor/builtin"
	"github.com/hayotensor/hypertensor/chain"
	"github.com/hayotensor/hypertensor/cmd/hypertensor/solo"
	"github.com/hayotensor/hypertensor/genesis"
	"github.com/hayotensor/hypertensor/health"
	"github.com/hayotensor/hypertensor/log"
	"github.com/hayotensor/hypertensor/metrics"
	"github.com/hayotensor/hypertensor/packer"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Hypertensor",
		Usage:     "Standalone node of the Hypertensor subnet economy",
		Copyright: "2025 The Hypertensor developers",
		Flags: []cli.Flag{
			genesisFlag,
			scheduleFlag,
			dataDirFlag,
			dbEngineFlag,
			persistFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiBacktraceLimitFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			blockIntervalFlag,
			untilFlag,
			verbosityFlag,
			jsonLogsFlag,
		},
		Action: soloAction,
		Commands: []cli.Command{
			{
				Name:  "genesis",
				Usage: "print the genesis config as YAML, with its id",
				Flags: []cli.Flag{
					genesisFlag,
				},
				Action: genesisAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func soloAction(ctx *cli.Context) error {
	initLogger(ctx)

	gene, err := selectGenesis(ctx)
	if err != nil {
		return err
	}
	schedule, err := loadSchedule(ctx)
	if err != nil {
		return err
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	instanceDir := ""
	if ctx.Bool(persistFlag.Name) {
		if instanceDir, err = makeInstanceDir(ctx, gene); err != nil {
			return err
		}
	}

	mainDB, err := openMainDB(ctx, instanceDir)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("closing main database...")
		if err := mainDB.Close(); err != nil {
			logger.Warn("failed to close main database", "err", err)
		}
	}()

	eventDB, err := openEventDB(instanceDir)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("closing event database...")
		if err := eventDB.Close(); err != nil {
			logger.Warn("failed to close event database", "err", err)
		}
	}()

	repo, err := chain.NewRepository(mainDB, gene)
	if err != nil {
		return err
	}

	blockInterval := time.Duration(ctx.Uint64(blockIntervalFlag.Name)) * time.Second
	healthStatus := health.New(3 * blockInterval)

	apiHandler, apiCloser := api.New(
		repo,
		eventDB,
		api.Options{
			AllowedOrigins:  ctx.String(apiCorsFlag.Name),
			BacktraceLimit:  uint32(ctx.Uint64(apiBacktraceLimitFlag.Name)),
			EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
			EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
			LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
			Health:          healthStatus,
		},
	)
	defer func() { logger.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser, err := startAPIServer(ctx.String(apiAddrFlag.Name), apiHandler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); srvCloser() }()

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		url, closeFunc, err := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
		metricsURL = url
	}

	printStartupMessage(gene, repo, instanceDir, apiURL, metricsURL)

	s := solo.New(repo, packer.New(repo, eventDB, builtin.Host{}), schedule, solo.Options{
		BlockInterval: blockInterval,
		Until:         uint32(ctx.Uint64(untilFlag.Name)),
		Health:        healthStatus,
	})

	exitCtx, cancel := handleExitSignal()
	defer cancel()

	g, gctx := errgroup.WithContext(exitCtx)
	g.Go(func() error {
		return s.Run(gctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	best := repo.BestBlockSummary()
	logger.Info("solo stopped", "best", best.Number, "stateHash", best.StateHash)
	return nil
}

func genesisAction(ctx *cli.Context) error {
	cfg := genesis.DevConfig()
	if path := ctx.String(genesisFlag.Name); path != "" {
		var err error
		if cfg, err = genesis.Load(path); err != nil {
			return err
		}
	}
	gene, err := genesis.NewGenesis(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("# %v %v\n", gene.Name(), gene.ID())
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

func handleExitSignal() (context.Context, context.CancelFunc) {
	return signalContext(context.Background())
}
