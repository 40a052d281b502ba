// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"

	"github.com/hayotensor/hypertensor/chain"
	"github.com/hayotensor/hypertensor/eventdb"
	"github.com/hayotensor/hypertensor/tensor"
)

// maxBlocksPerRead bounds one catch-up step.
const maxBlocksPerRead = 64

// EventFilter selects the records sent to a subscriber. Empty fields match everything.
type EventFilter struct {
	Subnet *tensor.SubnetID
	Names  map[string]bool
}

func (f *EventFilter) Match(r *eventdb.Record) bool {
	if f == nil {
		return true
	}
	if f.Subnet != nil && *f.Subnet != r.Subnet {
		return false
	}
	if len(f.Names) > 0 && !f.Names[r.Name] {
		return false
	}
	return true
}

type eventReader struct {
	repo   *chain.Repository
	db     *eventdb.EventDB
	cache  *messageCache
	filter *EventFilter
	next   uint32 // first block not yet sent
}

func newEventReader(repo *chain.Repository, db *eventdb.EventDB, cache *messageCache, position uint32, filter *EventFilter) *eventReader {
	return &eventReader{
		repo:   repo,
		db:     db,
		cache:  cache,
		filter: filter,
		next:   position + 1,
	}
}

// Read returns the matching records of the blocks after the last read. ok is false
// when the reader is already at the best block.
func (er *eventReader) Read(ctx context.Context) (msgs []*eventdb.Record, ok bool, err error) {
	best := er.repo.BestBlockSummary().Number
	if er.next > best {
		return nil, false, nil
	}
	last := best
	if last-er.next >= maxBlocksPerRead {
		last = er.next + maxBlocksPerRead - 1
	}
	for n := er.next; n <= last; n++ {
		records, err := er.cache.GetOrLoad(n, func() ([]*eventdb.Record, error) {
			return er.db.Filter(ctx, &eventdb.Filter{Range: &eventdb.Range{From: n, To: n}})
		})
		if err != nil {
			return nil, false, err
		}
		for _, r := range records {
			if er.filter.Match(r) {
				msgs = append(msgs, r)
			}
		}
	}
	er.next = last + 1
	return msgs, true, nil
}
