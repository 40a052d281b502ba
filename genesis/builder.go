// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/state"
	"github.com/hayotensor/hypertensor/tensor"
)

// Builder helper to build genesis state.
type Builder struct {
	chainID    string
	stateProcs []func(state *state.State) error
}

// ChainID set the chain id, which is mixed into the genesis id.
func (b *Builder) ChainID(id string) *Builder {
	b.chainID = id
	return b
}

// State add a state process.
func (b *Builder) State(proc func(state *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// ComputeID compute genesis ID without touching any store.
func (b *Builder) ComputeID() (tensor.Bytes32, error) {
	return b.Build(state.New(nil))
}

// Build runs the state processes against st, which must be empty, and returns the
// genesis id. The changes are left staged in st for the caller to commit.
func (b *Builder) Build(st *state.State) (id tensor.Bytes32, err error) {
	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return tensor.Bytes32{}, errors.Wrap(err, "state process")
		}
	}
	root := st.Stage().Hash()
	return tensor.Blake2b([]byte(b.chainID), root[:]), nil
}
