// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/builtin/storage"
	"github.com/hayotensor/hypertensor/state"
	"github.com/hayotensor/hypertensor/tensor"
)

// Params binder of the governance params module.
type Params struct {
	values *storage.Mapping[tensor.Bytes32, *big.Int]
}

func New(addr tensor.Address, state *state.State) *Params {
	return &Params{
		values: storage.NewMapping[tensor.Bytes32, *big.Int](storage.NewContext(addr, state), tensor.Bytes32{}),
	}
}

// Get native way to get param.
func (p *Params) Get(key tensor.Bytes32) (*big.Int, error) {
	return p.values.Get(key)
}

// Set native way to set param.
func (p *Params) Set(key tensor.Bytes32, value *big.Int) error {
	if value == nil || value.Sign() < 0 {
		return errors.Errorf("invalid value for param %v", key)
	}
	return p.values.Set(key, value)
}

// Init writes the default of every param not set yet.
func (p *Params) Init() error {
	for _, param := range tensor.DefaultParams {
		has, err := p.values.Has(param.Key)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if err := p.Set(param.Key, param.Default); err != nil {
			return errors.Wrap(err, param.Name)
		}
	}
	return nil
}
