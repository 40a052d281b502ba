// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package unbonding

import (
	"github.com/hayotensor/hypertensor/builtin/storage"
	"github.com/hayotensor/hypertensor/tensor"
)

type key = storage.Pair[tensor.Address, tensor.SubnetID]

// Store persists ledgers keyed by (account, subnet).
type Store struct {
	ledgers *storage.Mapping[key, *Ledger]
}

func NewStore(sctx *storage.Context, pos tensor.Bytes32) *Store {
	return &Store{ledgers: storage.NewMapping[key, *Ledger](sctx, pos)}
}

// Get returns the ledger, empty when nothing is queued.
func (s *Store) Get(account tensor.Address, subnet tensor.SubnetID) (*Ledger, error) {
	return s.ledgers.Get(storage.NewPair(account, subnet))
}

// Set stores the ledger, deleting it once empty.
func (s *Store) Set(account tensor.Address, subnet tensor.SubnetID, l *Ledger) error {
	k := storage.NewPair(account, subnet)
	if len(l.Entries) == 0 {
		s.ledgers.Delete(k)
		return nil
	}
	return s.ledgers.Set(k, l)
}
