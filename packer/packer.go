// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/builtin"
	"github.com/hayotensor/hypertensor/chain"
	"github.com/hayotensor/hypertensor/eventdb"
	"github.com/hayotensor/hypertensor/log"
	"github.com/hayotensor/hypertensor/runtime"
)

var logger = log.WithContext("pkg", "packer")

// Packer executes calls on top of the best block and commits the result as the next block.
type Packer struct {
	repo    *chain.Repository
	eventDB *eventdb.EventDB
	host    builtin.Host
}

// New creates a packer. eventDB may be nil to skip archiving events.
func New(repo *chain.Repository, eventDB *eventdb.EventDB, host builtin.Host) *Packer {
	return &Packer{
		repo:    repo,
		eventDB: eventDB,
		host:    host,
	}
}

// Pack builds and commits the block following the best block.
func (p *Packer) Pack(ctx context.Context, calls []*runtime.Call, timestamp uint64) (*chain.BlockSummary, *runtime.Output, error) {
	number := p.repo.BestBlockSummary().Number + 1

	st := p.repo.NewState()
	out, err := runtime.New(st, p.host).ExecuteBlock(number, calls)
	if err != nil {
		return nil, nil, err
	}

	// events are archived first so that subscribers woken by the commit find them
	if p.eventDB != nil {
		records, err := eventdb.NewRecords(number, out.Events)
		if err != nil {
			return nil, nil, err
		}
		if err := p.eventDB.Insert(ctx, records); err != nil {
			return nil, nil, errors.Wrap(err, "archive events")
		}
	}

	stage := st.Stage()
	summary := &chain.BlockSummary{
		Number:    number,
		Timestamp: timestamp,
		StateHash: stage.Hash(),
		Calls:     uint32(len(out.Receipts)),
		Events:    uint32(len(out.Events)),
	}
	for _, r := range out.Receipts {
		if r.Reverted {
			summary.Reverted++
		}
	}

	if err := p.repo.AddBlock(stage, summary); err != nil {
		if p.eventDB != nil {
			if terr := p.eventDB.Truncate(ctx, number-1); terr != nil {
				logger.Warn("failed to drop archived events", "block", number, "err", terr)
			}
		}
		return nil, nil, errors.Wrap(err, "commit block")
	}

	metricBestBlock().Set(int64(number))
	metricPackedEvents().Add(int64(len(out.Events)))
	logger.Debug("block packed", "number", number, "calls", summary.Calls, "reverted", summary.Reverted, "events", summary.Events)
	return summary, out, nil
}

// Sync drops archived events beyond the best block, left behind by a commit that did not finish.
func (p *Packer) Sync(ctx context.Context) error {
	if p.eventDB == nil {
		return nil
	}
	best := p.repo.BestBlockSummary().Number
	newest, err := p.eventDB.NewestBlock(ctx)
	if err != nil {
		return err
	}
	if newest <= best {
		return nil
	}
	logger.Info("truncating archived events", "from", best+1, "to", newest)
	return p.eventDB.Truncate(ctx, best)
}
