// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/hayotensor/hypertensor/builtin/balance"
	"github.com/hayotensor/hypertensor/builtin/consensus"
	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/events"
	"github.com/hayotensor/hypertensor/state"
	"github.com/hayotensor/hypertensor/tensor"
)

// Builtin modules binding.
var (
	Params   = &paramsModule{module{tensor.BytesToAddress([]byte("Params"))}}
	Balance  = &balanceModule{module{tensor.BytesToAddress([]byte("Balance"))}}
	Subnets  = &subnetsModule{module{tensor.BytesToAddress([]byte("Subnets"))}}
	AllNames = []string{"Params", "Balance", "Subnets"}
)

type module struct {
	Address tensor.Address
}

type (
	paramsModule  struct{ module }
	balanceModule struct{ module }
	subnetsModule struct{ module }
)

func (p *paramsModule) WithState(state *state.State) *params.Params {
	return params.New(p.Address, state)
}

func (b *balanceModule) WithState(state *state.State) *balance.Balance {
	return balance.New(b.Address, state)
}

// WithState binds the network to state. Collaborators missing from host fall back
// to the balance module on the same state, blake2b randomness and a discarding emitter.
func (s *subnetsModule) WithState(state *state.State, host Host) *Network {
	if host.Currency == nil {
		host.Currency = Balance.WithState(state)
	}
	if host.Random == nil {
		host.Random = Blake2bRandom{}
	}
	if host.Emitter == nil {
		host.Emitter = events.EmitFunc(func(events.Event) {})
	}
	return newNetwork(s.Address, state, Params.WithState(state), host)
}

// Currency moves native tokens between accounts.
type Currency interface {
	Balance(addr tensor.Address) (*big.Int, error)
	// Withdraw debits amount, reporting false when the account cannot cover it.
	Withdraw(addr tensor.Address, amount *big.Int) (bool, error)
	Deposit(addr tensor.Address, amount *big.Int) error
}

// Host is the set of collaborators the network consumes.
type Host struct {
	Currency Currency
	Random   consensus.Random
	Emitter  events.Emitter
}

// Blake2bRandom derives numbers by hashing the seed. It is deterministic, which the
// block hook requires, but predictable; production hosts should supply their own.
type Blake2bRandom struct{}

func (Blake2bRandom) Number(max, seed uint64) uint64 {
	if max == 0 {
		return 0
	}
	var b [8]byte
	for i := range b {
		b[i] = byte(seed >> (56 - 8*i))
	}
	h := tensor.Blake2b(b[:])
	var v uint64
	for _, x := range h[:8] {
		v = v<<8 | uint64(x)
	}
	return v % max
}
