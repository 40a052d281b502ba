// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayotensor/hypertensor/kv"
	"github.com/hayotensor/hypertensor/lvldb"
)

func TestBucket(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	b1 := kv.Bucket("x").NewStore(db)
	b2 := kv.Bucket("y").NewStore(db)

	require.NoError(t, b1.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, b2.Put([]byte("k1"), []byte("v2")))

	v, err := b1.Get([]byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	raw, err := db.Get([]byte("yk1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), raw)

	bulk := b1.Bulk()
	require.NoError(t, bulk.Put([]byte("k2"), []byte("v3")))
	require.NoError(t, bulk.Delete([]byte("k1")))
	require.NoError(t, bulk.Write())

	_, err = b1.Get([]byte("k1"))
	assert.True(t, b1.IsNotFound(err))

	iter := b1.Iterate(kv.Range{})
	defer iter.Release()
	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	assert.Equal(t, []string{"k2"}, keys)
}
