// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayotensor/hypertensor/lvldb"
	"github.com/hayotensor/hypertensor/tensor"
)

func TestStateReadWrite(t *testing.T) {
	st := New(nil)

	addr := tensor.BytesToAddress([]byte("acc1"))
	storageKey := tensor.BytesToBytes32([]byte("s1"))

	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Sign())

	require.NoError(t, st.SetBalance(addr, big.NewInt(10)))
	bal, err = st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), bal)

	assert.Error(t, st.SetBalance(addr, big.NewInt(-1)))

	require.NoError(t, st.EncodeStorage(addr, storageKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(uint64(42))
	}))
	var v uint64
	require.NoError(t, st.DecodeStorage(addr, storageKey, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &v)
	}))
	assert.Equal(t, uint64(42), v)
}

func TestStateRevert(t *testing.T) {
	st := New(nil)
	addr := tensor.BytesToAddress([]byte("acc1"))
	key := tensor.BytesToBytes32([]byte("k"))

	st.SetRawStorage(addr, key, []byte{0x01})
	chk := st.NewCheckpoint()
	st.SetRawStorage(addr, key, []byte{0x02})
	require.NoError(t, st.SetBalance(addr, big.NewInt(5)))

	st.RevertTo(chk)

	raw, err := st.GetRawStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, []byte(raw))
	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Sign())
}

func TestStageCommit(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	addr := tensor.BytesToAddress([]byte("acc1"))
	storage := map[tensor.Bytes32][]byte{
		tensor.BytesToBytes32([]byte("s1")): {0x81, 0x80},
		tensor.BytesToBytes32([]byte("s2")): {0x82, 0x01, 0x02},
		tensor.BytesToBytes32([]byte("s3")): {0x03},
	}

	st := New(db)
	require.NoError(t, st.SetBalance(addr, big.NewInt(10)))
	for k, v := range storage {
		st.SetRawStorage(addr, k, v)
	}
	st.SetRawStorage(addr, tensor.BytesToBytes32([]byte("gone")), nil)

	stage := st.Stage()
	assert.Equal(t, 5, stage.Len())
	hash := stage.Hash()
	assert.Equal(t, hash, st.Stage().Hash())
	require.NoError(t, stage.Commit(db.Bulk()))

	st = New(db)
	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), bal)
	for k, v := range storage {
		raw, err := st.GetRawStorage(addr, k)
		require.NoError(t, err)
		assert.Equal(t, v, []byte(raw))
	}

	// clearing a slot deletes the key on commit
	st.SetRawStorage(addr, tensor.BytesToBytes32([]byte("s3")), nil)
	require.NoError(t, st.Stage().Commit(db.Bulk()))
	raw, err := New(db).GetRawStorage(addr, tensor.BytesToBytes32([]byte("s3")))
	require.NoError(t, err)
	assert.Empty(t, raw)
}
