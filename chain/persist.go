// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/hayotensor/hypertensor/kv"
	"github.com/hayotensor/hypertensor/tensor"
)

const (
	stateBucket   = kv.Bucket("s")
	summaryBucket = kv.Bucket("b")
	propBucket    = kv.Bucket("p")
)

var (
	bestBlockKey = []byte("best-block")
	genesisIDKey = []byte("genesis-id")
)

func numberKey(n uint32) []byte {
	var k [4]byte
	binary.BigEndian.PutUint32(k[:], n)
	return k[:]
}

func saveRLP(w kv.Putter, key []byte, val any) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return err
	}
	return w.Put(key, data)
}

func loadRLP(r kv.Getter, key []byte, val any) error {
	data, err := r.Get(key)
	if err != nil {
		return err
	}
	return rlp.DecodeBytes(data, val)
}

func saveBlockSummary(w kv.Putter, summary *BlockSummary) error {
	return saveRLP(w, numberKey(summary.Number), summary)
}

func loadBlockSummary(r kv.Getter, n uint32) (*BlockSummary, error) {
	var summary BlockSummary
	if err := loadRLP(r, numberKey(n), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func saveBestBlock(w kv.Putter, n uint32) error {
	return w.Put(bestBlockKey, numberKey(n))
}

func loadBestBlock(r kv.Getter) (uint32, error) {
	data, err := r.Get(bestBlockKey)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(data), nil
}

func loadGenesisID(r kv.Getter) (tensor.Bytes32, error) {
	data, err := r.Get(genesisIDKey)
	if err != nil {
		return tensor.Bytes32{}, err
	}
	return tensor.BytesToBytes32(data), nil
}
