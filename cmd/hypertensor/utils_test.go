// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/hayotensor/hypertensor/chain"
	"github.com/hayotensor/hypertensor/genesis"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range []cli.Flag{genesisFlag, scheduleFlag, dataDirFlag, dbEngineFlag} {
		f.Apply(set)
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

func TestOpenMainDB(t *testing.T) {
	for _, engine := range []string{"leveldb", "pebble"} {
		t.Run(engine, func(t *testing.T) {
			dir := t.TempDir()
			ctx := newContext(t, "-data-dir", dir, "-db-engine", engine)
			gene := genesis.NewDevnet()

			instanceDir, err := makeInstanceDir(ctx, gene)
			require.NoError(t, err)
			assert.Equal(t, dir, filepath.Dir(instanceDir))

			db, err := openMainDB(ctx, instanceDir)
			require.NoError(t, err)
			repo, err := chain.NewRepository(db, gene)
			require.NoError(t, err)
			assert.Equal(t, gene.ID(), repo.GenesisID())
			require.NoError(t, db.Close())

			// reopening finds the same chain
			db, err = openMainDB(ctx, instanceDir)
			require.NoError(t, err)
			defer db.Close()
			_, err = chain.NewRepository(db, gene)
			require.NoError(t, err)
		})
	}

	_, err := openMainDB(newContext(t, "-db-engine", "rocksdb"), "")
	assert.Error(t, err)
}

func TestSelectGenesis(t *testing.T) {
	gene, err := selectGenesis(newContext(t))
	require.NoError(t, err)
	assert.Equal(t, genesis.NewDevnet().ID(), gene.ID())

	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chain_id: custom\nepoch_length: 10\n"), 0o600))
	gene, err = selectGenesis(newContext(t, "-genesis", path))
	require.NoError(t, err)
	assert.Equal(t, "custom", gene.Name())

	_, err = selectGenesis(newContext(t, "-genesis", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestLoadSchedule(t *testing.T) {
	sched, err := loadSchedule(newContext(t))
	require.NoError(t, err)
	assert.Nil(t, sched)

	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- block: 5\n  calls:\n    - op: attest\n      subnet: 1\n"), 0o600))
	sched, err = loadSchedule(newContext(t, "-schedule", path))
	require.NoError(t, err)
	assert.Len(t, sched.At(5), 1)
}
