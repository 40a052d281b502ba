// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"context"
	"errors"

	"github.com/hayotensor/hypertensor/builtin"
	"github.com/hayotensor/hypertensor/chain"
	"github.com/hayotensor/hypertensor/eventdb"
	"github.com/hayotensor/hypertensor/genesis"
	"github.com/hayotensor/hypertensor/lvldb"
	"github.com/hayotensor/hypertensor/packer"
	"github.com/hayotensor/hypertensor/runtime"
	"github.com/hayotensor/hypertensor/state"
)

// Chain is an in-memory chain with an event archive, for tests.
type Chain struct {
	db       *lvldb.LevelDB
	genesis  *genesis.Genesis
	repo     *chain.Repository
	eventDB  *eventdb.EventDB
	packer   *packer.Packer
	accounts []genesis.DevAccount
}

// NewDefault creates a chain from the devnet genesis.
func NewDefault() (*Chain, error) {
	return NewWithGenesis(genesis.NewDevnet())
}

// NewWithGenesis creates a chain from gene, funded accounts come from the caller's config.
func NewWithGenesis(gene *genesis.Genesis) (*Chain, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	repo, err := chain.NewRepository(db, gene)
	if err != nil {
		return nil, err
	}
	eventDB, err := eventdb.NewMem()
	if err != nil {
		return nil, err
	}
	return &Chain{
		db:       db,
		genesis:  gene,
		repo:     repo,
		eventDB:  eventDB,
		packer:   packer.New(repo, eventDB, builtin.Host{}),
		accounts: genesis.DevAccounts(),
	}, nil
}

// Repo returns the chain repository.
func (c *Chain) Repo() *chain.Repository {
	return c.repo
}

// EventDB returns the event archive.
func (c *Chain) EventDB() *eventdb.EventDB {
	return c.eventDB
}

// Genesis returns the genesis the chain was built from.
func (c *Chain) Genesis() *genesis.Genesis {
	return c.genesis
}

// Accounts returns the devnet accounts.
func (c *Chain) Accounts() []genesis.DevAccount {
	return c.accounts
}

// State returns the state of the best block.
func (c *Chain) State() *state.State {
	return c.repo.NewState()
}

// Network returns a read view of the best block.
func (c *Chain) Network() *builtin.Network {
	return builtin.Subnets.WithState(c.repo.NewState(), builtin.Host{})
}

// MintBlock packs calls into the next block and fails if any of them did not succeed.
func (c *Chain) MintBlock(calls ...*runtime.Call) (*runtime.Output, error) {
	out, err := c.MintBlockAllowFailures(calls...)
	if err != nil {
		return nil, err
	}
	for _, r := range out.Receipts {
		if r.Err != nil {
			return out, errors.Join(errors.New("call "+string(r.Op)+" failed"), r.Err)
		}
	}
	return out, nil
}

// MintBlockAllowFailures packs calls into the next block, leaving failures in the receipts.
func (c *Chain) MintBlockAllowFailures(calls ...*runtime.Call) (*runtime.Output, error) {
	best := c.repo.BestBlockSummary()
	_, out, err := c.packer.Pack(context.Background(), calls, best.Timestamp+10)
	return out, err
}

// MintUntil packs empty blocks until the best block reaches number.
func (c *Chain) MintUntil(number uint32) error {
	for c.repo.BestBlockSummary().Number < number {
		if _, err := c.MintBlock(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the databases.
func (c *Chain) Close() error {
	return errors.Join(c.eventDB.Close(), c.db.Close())
}
