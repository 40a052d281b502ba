// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"context"
	"time"

	"github.com/hayotensor/hypertensor/chain"
	"github.com/hayotensor/hypertensor/health"
	"github.com/hayotensor/hypertensor/log"
	"github.com/hayotensor/hypertensor/packer"
	"github.com/hayotensor/hypertensor/runtime"
)

var logger = log.WithContext("pkg", "solo")

type Options struct {
	// BlockInterval is the pause between blocks, zero packs back to back.
	BlockInterval time.Duration
	// Until stops packing once the best block reaches it, zero never stops.
	Until uint32
	// Health, when set, is told about every packed block.
	Health *health.Health
}

// Solo packs the calls of a schedule into blocks, without any peers.
type Solo struct {
	repo     *chain.Repository
	packer   *packer.Packer
	schedule *runtime.Schedule
	options  Options
}

// New returns Solo instance
func New(repo *chain.Repository, packer *packer.Packer, schedule *runtime.Schedule, options Options) *Solo {
	return &Solo{
		repo:     repo,
		packer:   packer,
		schedule: schedule,
		options:  options,
	}
}

// Run packs blocks until ctx is done or the target block is reached.
func (s *Solo) Run(ctx context.Context) error {
	if err := s.packer.Sync(ctx); err != nil {
		return err
	}
	logger.Info("prepared to pack block", "best", s.repo.BestBlockSummary().Number, "scheduled", len(s.schedule.Blocks()))

	for {
		if s.options.Until > 0 && s.repo.BestBlockSummary().Number >= s.options.Until {
			logger.Info("target block reached", "number", s.options.Until)
			return nil
		}
		if err := s.packNext(ctx); err != nil {
			return err
		}

		if s.options.BlockInterval > 0 {
			select {
			case <-ctx.Done():
				logger.Info("stopping interval packing service......")
				return nil
			case <-time.After(s.options.BlockInterval):
			}
		} else if ctx.Err() != nil {
			return nil
		}
	}
}

func (s *Solo) packNext(ctx context.Context) error {
	number := s.repo.BestBlockSummary().Number + 1
	calls := s.schedule.At(number)

	summary, out, err := s.packer.Pack(ctx, calls, uint64(time.Now().Unix()))
	if err != nil {
		return err
	}
	s.options.Health.NewBestBlock(summary.Number)
	for i, r := range out.Receipts {
		if r.Err != nil {
			logger.Info("scheduled call failed", "block", number, "index", i, "op", r.Op, "caller", r.Caller, "err", r.Err)
		}
	}
	if len(calls) > 0 || len(out.Events) > 0 {
		logger.Info("📦 new block packed",
			"number", summary.Number,
			"calls", summary.Calls,
			"reverted", summary.Reverted,
			"events", summary.Events,
			"subnets", out.Processed,
		)
	}
	return nil
}
