// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pebbledb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayotensor/hypertensor/kv"
)

func TestPebbleDB(t *testing.T) {
	persistent, err := Open(t.TempDir())
	require.NoError(t, err)
	defer persistent.Close()

	mem, err := NewMem()
	require.NoError(t, err)
	defer mem.Close()

	for _, db := range []*PebbleDB{persistent, mem} {
		require.NoError(t, db.Put([]byte("k"), []byte("v")))

		v, err := db.Get([]byte("k"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)

		has, err := db.Has([]byte("k"))
		require.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has([]byte("missing"))
		require.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, db.Delete([]byte("k")))
		_, err = db.Get([]byte("k"))
		assert.True(t, db.IsNotFound(err))
	}
}

func TestPebbleBulkAndIterate(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	bulk := db.Bulk()
	for _, k := range []string{"b1", "a2", "a1"} {
		require.NoError(t, bulk.Put([]byte(k), []byte("v"+k)))
	}
	assert.Equal(t, 3, bulk.Len())
	require.NoError(t, bulk.Write())
	assert.Equal(t, 0, bulk.Len())

	iter := db.Iterate(kv.Range{Start: []byte("a"), Limit: []byte("b")})
	var keys, values []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
		values = append(values, string(iter.Value()))
	}
	iter.Release()
	require.NoError(t, iter.Error())
	assert.Equal(t, []string{"a1", "a2"}, keys)
	assert.Equal(t, []string{"va1", "va2"}, values)

	all := db.Iterate(kv.Range{})
	n := 0
	for all.Next() {
		n++
	}
	all.Release()
	assert.Equal(t, 3, n)
}
