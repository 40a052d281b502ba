// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package unbonding keeps the capped per-epoch queues of stake waiting out a cooldown.
package unbonding

import (
	"math/big"
	"sort"

	"github.com/hayotensor/hypertensor/builtin/reverts"
)

var ErrMaxUnlockingsReached = reverts.New(reverts.Staking, "max unlockings reached")

// Entry is an amount that started unbonding at Epoch.
type Entry struct {
	Epoch  uint32
	Amount *big.Int
}

// Ledger holds at most one entry per epoch, sorted by epoch.
type Ledger struct {
	Entries []Entry
}

// Total sums every queued amount.
func (l *Ledger) Total() *big.Int {
	total := new(big.Int)
	for _, e := range l.Entries {
		total.Add(total, e.Amount)
	}
	return total
}

// Add queues amount at epoch, merging with an entry of the same epoch.
func (l *Ledger) Add(epoch uint32, amount *big.Int, max uint32) error {
	for i := range l.Entries {
		if l.Entries[i].Epoch == epoch {
			l.Entries[i].Amount = new(big.Int).Add(l.Entries[i].Amount, amount)
			return nil
		}
	}
	if uint32(len(l.Entries)) >= max {
		return ErrMaxUnlockingsReached
	}
	l.Entries = append(l.Entries, Entry{Epoch: epoch, Amount: new(big.Int).Set(amount)})
	sort.Slice(l.Entries, func(i, j int) bool {
		return l.Entries[i].Epoch < l.Entries[j].Epoch
	})
	return nil
}

// Claim removes every entry whose cooldown has passed at epoch and
// returns their sum and how many were removed.
func (l *Ledger) Claim(epoch, cooldown uint32) (*big.Int, int) {
	total := new(big.Int)
	kept := l.Entries[:0]
	count := 0
	for _, e := range l.Entries {
		if uint64(e.Epoch)+uint64(cooldown) <= uint64(epoch) {
			total.Add(total, e.Amount)
			count++
			continue
		}
		kept = append(kept, e)
	}
	l.Entries = kept
	return total, count
}
