// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"io"
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hayotensor/hypertensor/builtin"
	"github.com/hayotensor/hypertensor/state"
	"github.com/hayotensor/hypertensor/tensor"
)

// MinEpochLength keeps the reward pass and the preparation pass of the block hook
// in different blocks of an epoch.
const MinEpochLength = 3

// Genesis to build genesis state.
type Genesis struct {
	builder *Builder
	id      tensor.Bytes32
	name    string
}

// Build build the genesis state into st.
func (g *Genesis) Build(st *state.State) (tensor.Bytes32, error) {
	id, err := g.builder.Build(st)
	if err != nil {
		return tensor.Bytes32{}, err
	}
	if id != g.id {
		return tensor.Bytes32{}, errors.New("genesis id mismatch, state is not empty")
	}
	return id, nil
}

// ID returns genesis id.
func (g *Genesis) ID() tensor.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

// Config is the user customized genesis.
type Config struct {
	ChainID string `yaml:"chain_id" json:"chainId"`
	// EpochLength overrides the EpochLength param when set.
	EpochLength uint32                    `yaml:"epoch_length,omitempty" json:"epochLength,omitempty"`
	Params      map[string]*tensor.Amount `yaml:"params,omitempty" json:"params,omitempty"`
	Accounts    []Account                 `yaml:"accounts,omitempty" json:"accounts,omitempty"`
}

// Account is an account funded at genesis.
type Account struct {
	Address tensor.Address `yaml:"address" json:"address"`
	Balance *tensor.Amount `yaml:"balance" json:"balance"`
}

// Decode reads a YAML config.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &cfg, nil
}

// Load reads a YAML config file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Validate checks the config for values the network cannot run with.
func (c *Config) Validate() error {
	if c.ChainID == "" {
		return errors.New("chain_id required")
	}
	for name, v := range c.Params {
		if _, ok := tensor.ParamByName(name); !ok {
			return errors.Errorf("unknown param %q", name)
		}
		if v == nil || v.Int().Sign() < 0 {
			return errors.Errorf("param %q must be a non-negative integer", name)
		}
	}
	epochLength := big.NewInt(int64(c.EpochLength))
	if c.EpochLength == 0 {
		epochLength = big.NewInt(100)
		if v, ok := c.Params["EpochLength"]; ok {
			epochLength = v.Int()
		}
	}
	if epochLength.Cmp(big.NewInt(MinEpochLength)) < 0 {
		return errors.Errorf("epoch length %v below %d", epochLength, MinEpochLength)
	}

	seen := make(map[tensor.Address]bool, len(c.Accounts))
	for _, acc := range c.Accounts {
		if acc.Address.IsZero() {
			return errors.New("account with zero address")
		}
		if seen[acc.Address] {
			return errors.Errorf("duplicated account %v", acc.Address)
		}
		seen[acc.Address] = true
		if acc.Balance.Int().Sign() < 0 {
			return errors.Errorf("negative balance for %v", acc.Address)
		}
	}
	return nil
}

// NewGenesis creates a genesis from the config.
func NewGenesis(c *Config) (*Genesis, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.WithMessage(err, "genesis")
	}

	builder := new(Builder).
		ChainID(c.ChainID).
		State(func(st *state.State) error {
			p := builtin.Params.WithState(st)
			if err := p.Init(); err != nil {
				return err
			}
			// range over the known params so map order does not leak into the state journal
			for _, param := range tensor.DefaultParams {
				if v, ok := c.Params[param.Name]; ok {
					if err := p.Set(param.Key, v.Int()); err != nil {
						return err
					}
				}
			}
			if c.EpochLength > 0 {
				return p.Set(tensor.KeyEpochLength, big.NewInt(int64(c.EpochLength)))
			}
			return nil
		}).
		State(func(st *state.State) error {
			bal := builtin.Balance.WithState(st)
			for _, acc := range c.Accounts {
				if err := bal.Deposit(acc.Address, acc.Balance.Int()); err != nil {
					return err
				}
			}
			return nil
		})

	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}
	return &Genesis{builder, id, c.ChainID}, nil
}
