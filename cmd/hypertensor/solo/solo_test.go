// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayotensor/hypertensor/builtin"
	"github.com/hayotensor/hypertensor/chain"
	"github.com/hayotensor/hypertensor/eventdb"
	"github.com/hayotensor/hypertensor/genesis"
	"github.com/hayotensor/hypertensor/lvldb"
	"github.com/hayotensor/hypertensor/packer"
	"github.com/hayotensor/hypertensor/runtime"
)

func newSolo(t *testing.T, schedule string, opts Options) (*Solo, *chain.Repository, *eventdb.EventDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	repo, err := chain.NewRepository(db, genesis.NewDevnet())
	require.NoError(t, err)
	eventDB, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() {
		eventDB.Close()
		db.Close()
	})

	sched, err := runtime.DecodeSchedule(strings.NewReader(schedule))
	require.NoError(t, err)
	return New(repo, packer.New(repo, eventDB, builtin.Host{}), sched, opts), repo, eventDB
}

func TestRunUntil(t *testing.T) {
	owner := genesis.DevAccounts()[0].Address.String()
	s, repo, eventDB := newSolo(t, `
- block: 3
  calls:
    - op: register_subnet
      caller: `+owner+`
      path: solo/subnet
      memory_mb: 50000
      registration_window: 20
`, Options{Until: 5})

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, uint32(5), repo.BestBlockSummary().Number)

	blk, err := repo.GetBlockSummary(3)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), blk.Calls)
	assert.Equal(t, uint32(0), blk.Reverted)

	records, err := eventDB.Filter(context.Background(), &eventdb.Filter{Names: []string{"SubnetRegistered"}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint32(3), records[0].BlockNumber)

	// running again resumes from the best block
	s.options.Until = 7
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, uint32(7), repo.BestBlockSummary().Number)
}

func TestRunStopsOnCancel(t *testing.T) {
	s, repo, _ := newSolo(t, "", Options{BlockInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return repo.BestBlockSummary().Number >= 3
	}, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("solo did not stop")
	}
}
