// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/hayotensor/hypertensor/kv"
	"github.com/hayotensor/hypertensor/stackedmap"
	"github.com/hayotensor/hypertensor/tensor"
)

const (
	balancePrefix byte = 'b'
	storagePrefix byte = 's'
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type stateKey struct {
	prefix byte
	addr   tensor.Address
	key    tensor.Bytes32
}

func (k stateKey) encode() []byte {
	b := make([]byte, 0, 1+tensor.AddressLength+32)
	b = append(b, k.prefix)
	b = append(b, k.addr[:]...)
	if k.prefix == storagePrefix {
		b = append(b, k.key[:]...)
	}
	return b
}

// State manages account balances and contract storage on top of a kv source.
// Writes are journaled in memory until staged and committed.
type State struct {
	db kv.Getter
	sm *stackedmap.StackedMap[stateKey, []byte]
}

// New create state object. db may be nil for an empty source.
func New(db kv.Getter) *State {
	s := &State{db: db}
	s.sm = stackedmap.New(s.load)
	return s
}

func (s *State) load(key stateKey) ([]byte, bool, error) {
	if s.db == nil {
		return nil, true, nil
	}
	v, err := s.db.Get(key.encode())
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

func (s *State) get(key stateKey) ([]byte, error) {
	v, _, err := s.sm.Get(key)
	if err != nil {
		return nil, &Error{err}
	}
	return v, nil
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr tensor.Address) (*big.Int, error) {
	raw, err := s.get(stateKey{prefix: balancePrefix, addr: addr})
	if err != nil {
		return nil, err
	}
	bal := new(big.Int)
	if len(raw) == 0 {
		return bal, nil
	}
	if err := rlp.DecodeBytes(raw, bal); err != nil {
		return nil, &Error{err}
	}
	return bal, nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr tensor.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return &Error{fmt.Errorf("negative balance for %v", addr)}
	}
	var raw []byte
	if balance.Sign() > 0 {
		var err error
		if raw, err = rlp.EncodeToBytes(balance); err != nil {
			return &Error{err}
		}
	}
	s.sm.Put(stateKey{prefix: balancePrefix, addr: addr}, raw)
	return nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr tensor.Address, key tensor.Bytes32) (rlp.RawValue, error) {
	return s.get(stateKey{storagePrefix, addr, key})
}

// SetRawStorage set storage value in rlp raw. Empty raw deletes the slot.
func (s *State) SetRawStorage(addr tensor.Address, key tensor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(stateKey{storagePrefix, addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr tensor.Address, key tensor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr tensor.Address, key tensor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage collects the latest value of every written key.
func (s *State) Stage() *Stage {
	changes := make(map[stateKey][]byte)
	s.sm.Journal(func(key stateKey, value []byte) bool {
		changes[key] = value
		return true
	})
	return newStage(changes)
}
