// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/hayotensor/hypertensor/eventdb"
)

// messageCache keeps the archived records of recent blocks, shared by every subscriber.
type messageCache struct {
	cache *lru.Cache
	mu    sync.Mutex
}

func newMessageCache(size int) *messageCache {
	if size < 1 {
		size = 1
	}
	cache, _ := lru.New(size)
	return &messageCache{cache: cache}
}

// GetOrLoad returns the records of block n, loading them on a miss.
func (mc *messageCache) GetOrLoad(n uint32, load func() ([]*eventdb.Record, error)) ([]*eventdb.Record, error) {
	if v, ok := mc.cache.Get(n); ok {
		return v.([]*eventdb.Record), nil
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	if v, ok := mc.cache.Get(n); ok {
		return v.([]*eventdb.Record), nil
	}
	records, err := load()
	if err != nil {
		return nil, err
	}
	mc.cache.Add(n, records)
	return records, nil
}
