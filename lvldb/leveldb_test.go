// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayotensor/hypertensor/kv"
)

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	persistent, err := New(filepath.Join(t.TempDir(), "lvldb"), Options{16, 16})
	require.NoError(t, err)
	defer persistent.Close()

	mem, err := NewMem()
	require.NoError(t, err)
	defer mem.Close()

	for _, db := range []*LevelDB{persistent, mem} {
		require.NoError(t, db.Put(key, value))

		ret1, err := db.Get(key)
		assert.NoError(t, err)

		ret2, err := db.Has(key)
		assert.NoError(t, err)

		ret3, err := db.Has(inValidKey)
		assert.NoError(t, err)

		require.NoError(t, db.Delete(key))
		_, ret4 := db.Get(key)

		tests := []struct {
			ret      any
			expected any
		}{
			{ret1, value},
			{ret2, true},
			{ret3, false},
			{db.IsNotFound(ret4), true},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.expected, tt.ret)
		}
	}
}

func TestLevelDBBulkAndIterate(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	bulk := db.Bulk()
	for _, k := range []string{"a1", "a2", "b1"} {
		require.NoError(t, bulk.Put([]byte(k), []byte("v"+k)))
	}
	assert.Equal(t, 3, bulk.Len())

	has, err := db.Has([]byte("a1"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, bulk.Write())

	iter := db.Iterate(kv.Range{Start: []byte("a"), Limit: []byte("b")})
	defer iter.Release()
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	require.NoError(t, iter.Error())
	assert.Equal(t, []string{"a1", "a2"}, keys)
}
