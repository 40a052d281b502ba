// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"
)

type BlockIngestion struct {
	BestBlock                   uint32     `json:"bestBlock"`
	BestBlockIngestionTimestamp *time.Time `json:"bestBlockIngestionTimestamp"`
}

type Status struct {
	Healthy        bool            `json:"healthy"`
	BlockIngestion *BlockIngestion `json:"blockIngestion"`
}

// Health reports whether blocks keep being packed.
type Health struct {
	lock         sync.RWMutex
	newBestBlock time.Time
	bestBlock    uint32
	tolerance    time.Duration
}

// New creates a Health that turns unhealthy when no block was packed within tolerance.
// A zero tolerance is always healthy once a block was seen.
func New(tolerance time.Duration) *Health {
	return &Health{tolerance: tolerance}
}

func (h *Health) NewBestBlock(number uint32) {
	if h == nil {
		return
	}
	h.lock.Lock()
	defer h.lock.Unlock()

	h.newBestBlock = time.Now()
	h.bestBlock = number
}

func (h *Health) Status() *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	status := &Status{}
	if h.newBestBlock.IsZero() {
		return status
	}
	ingested := h.newBestBlock
	status.BlockIngestion = &BlockIngestion{
		BestBlock:                   h.bestBlock,
		BestBlockIngestionTimestamp: &ingested,
	}
	status.Healthy = h.tolerance == 0 || time.Since(h.newBestBlock) <= h.tolerance
	return status
}
