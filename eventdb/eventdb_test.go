// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb_test

import (
	"context"
	"encoding/json"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayotensor/hypertensor/eventdb"
	"github.com/hayotensor/hypertensor/events"
	"github.com/hayotensor/hypertensor/tensor"
	"github.com/hayotensor/hypertensor/test/datagen"
)

func newRecords(t *testing.T, blocks int) []*eventdb.Record {
	var all []*eventdb.Record
	for b := range blocks {
		subnet := tensor.SubnetID(b%2 + 1)
		evs := []events.Event{
			&events.StakeAdded{Header: events.For(subnet), Account: datagen.RandAddress(), Amount: big.NewInt(int64(b))},
			&events.SubnetPenalized{Header: events.For(subnet), Epoch: uint32(b), Penalty: 1},
		}
		records, err := eventdb.NewRecords(uint32(b), evs)
		require.NoError(t, err)
		all = append(all, records...)
	}
	return all
}

func TestEventDB(t *testing.T) {
	db, err := eventdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Insert(ctx, newRecords(t, 10)))

	newest, err := db.NewestBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), newest)

	all, err := db.Filter(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 20)
	assert.Equal(t, "StakeAdded", all[0].Name)
	assert.Equal(t, uint32(1), all[1].Index)

	subnet := tensor.SubnetID(2)
	tests := []struct {
		name   string
		filter *eventdb.Filter
		want   int
	}{
		{"range", &eventdb.Filter{Range: &eventdb.Range{From: 2, To: 4}}, 6},
		{"open range", &eventdb.Filter{Range: &eventdb.Range{From: 8}}, 4},
		{"subnet", &eventdb.Filter{Subnet: &subnet}, 10},
		{"names", &eventdb.Filter{Names: []string{"SubnetPenalized"}}, 10},
		{"names and subnet", &eventdb.Filter{Subnet: &subnet, Names: []string{"StakeAdded", "Slashed"}}, 5},
		{"limit", &eventdb.Filter{Options: &eventdb.Options{Offset: 1, Limit: 3}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.Filter(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	desc, err := db.Filter(ctx, &eventdb.Filter{Order: eventdb.DESC, Options: &eventdb.Options{Limit: 1}})
	require.NoError(t, err)
	require.Len(t, desc, 1)
	assert.Equal(t, uint32(9), desc[0].BlockNumber)
	assert.Equal(t, uint32(1), desc[0].Index)

	var ev events.SubnetPenalized
	require.NoError(t, json.Unmarshal(desc[0].Data, &ev))
	assert.Equal(t, uint32(9), ev.Epoch)
	assert.Equal(t, subnet, ev.SubnetID)

	require.NoError(t, db.Truncate(ctx, 4))
	all, err = db.Filter(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestEventDBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	db, err := eventdb.New(path)
	require.NoError(t, err)
	require.NoError(t, db.Insert(context.Background(), newRecords(t, 2)))
	require.NoError(t, db.Close())

	db, err = eventdb.New(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())
	all, err := db.Filter(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
