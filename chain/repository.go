// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/genesis"
	"github.com/hayotensor/hypertensor/kv"
	"github.com/hayotensor/hypertensor/log"
	"github.com/hayotensor/hypertensor/state"
	"github.com/hayotensor/hypertensor/tensor"
)

var logger = log.WithContext("pkg", "chain")

// Repository stores the committed state and the block summaries, and tracks the best block.
type Repository struct {
	db           kv.Store
	stateStore   kv.Store
	summaryStore kv.Store
	propStore    kv.Store
	genesisID    tensor.Bytes32

	best atomic.Pointer[BlockSummary]

	tickMu sync.Mutex
	tick   chan struct{}
}

// NewRepository opens the repository, building the genesis state on an empty store.
func NewRepository(db kv.Store, gene *genesis.Genesis) (*Repository, error) {
	repo := &Repository{
		db:           db,
		stateStore:   stateBucket.NewStore(db),
		summaryStore: summaryBucket.NewStore(db),
		propStore:    propBucket.NewStore(db),
		genesisID:    gene.ID(),
		tick:         make(chan struct{}),
	}

	existing, err := loadGenesisID(repo.propStore)
	if err != nil {
		if !repo.propStore.IsNotFound(err) {
			return nil, err
		}
		st := repo.NewState()
		if _, err := gene.Build(st); err != nil {
			return nil, errors.Wrap(err, "build genesis")
		}
		summary := &BlockSummary{Number: 0, StateHash: st.Stage().Hash()}
		if err := repo.commit(st.Stage(), summary); err != nil {
			return nil, errors.Wrap(err, "commit genesis")
		}
		logger.Info("genesis built", "name", gene.Name(), "id", gene.ID())
		return repo, nil
	}

	if existing != gene.ID() {
		return nil, errors.Errorf("genesis mismatch: stored %v, given %v", existing, gene.ID())
	}
	n, err := loadBestBlock(repo.propStore)
	if err != nil {
		return nil, errors.Wrap(err, "load best block")
	}
	summary, err := repo.GetBlockSummary(n)
	if err != nil {
		return nil, errors.Wrap(err, "load best block summary")
	}
	repo.best.Store(summary)
	return repo, nil
}

// GenesisID returns the genesis id.
func (r *Repository) GenesisID() tensor.Bytes32 {
	return r.genesisID
}

// BestBlockSummary returns the summary of the latest committed block.
func (r *Repository) BestBlockSummary() *BlockSummary {
	return r.best.Load()
}

// NewState creates a state over the latest committed block.
func (r *Repository) NewState() *state.State {
	return state.New(r.stateStore)
}

// GetBlockSummary returns the summary of block n.
func (r *Repository) GetBlockSummary(n uint32) (*BlockSummary, error) {
	return loadBlockSummary(r.summaryStore, n)
}

// IsNotFound returns if an error means not found.
func (r *Repository) IsNotFound(err error) bool {
	return r.db.IsNotFound(err)
}

// AddBlock commits the block's state changes and makes it the best block.
func (r *Repository) AddBlock(stage *state.Stage, summary *BlockSummary) error {
	if best := r.best.Load(); summary.Number != best.Number+1 {
		return errors.Errorf("block %d does not follow best block %d", summary.Number, best.Number)
	}
	return r.commit(stage, summary)
}

func (r *Repository) commit(stage *state.Stage, summary *BlockSummary) error {
	// one underlying batch, so the state and its summary land together
	bulk := r.db.Bulk()
	if err := saveBlockSummary(summaryBucket.NewPutter(bulk), summary); err != nil {
		return err
	}
	props := propBucket.NewPutter(bulk)
	if summary.Number == 0 {
		if err := props.Put(genesisIDKey, r.genesisID.Bytes()); err != nil {
			return err
		}
	}
	if err := saveBestBlock(props, summary.Number); err != nil {
		return err
	}
	if err := stage.Commit(stateBucket.NewBulk(bulk)); err != nil {
		return err
	}
	r.best.Store(summary)

	r.tickMu.Lock()
	close(r.tick)
	r.tick = make(chan struct{})
	r.tickMu.Unlock()
	return nil
}

// Ticker returns a channel closed when the next block is added.
func (r *Repository) Ticker() <-chan struct{} {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()
	return r.tick
}
