// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides typed storage primitives for builtin modules.
// Every value is RLP encoded into a slot of the module's account.
package storage

import (
	"github.com/hayotensor/hypertensor/state"
	"github.com/hayotensor/hypertensor/tensor"
)

// Context binds storage primitives to a module account.
type Context struct {
	address tensor.Address
	state   *state.State
}

func NewContext(address tensor.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Address() tensor.Address {
	return c.address
}

// Slot derives a storage position from a name.
func Slot(name string) tensor.Bytes32 {
	return tensor.Blake2b([]byte(name))
}
