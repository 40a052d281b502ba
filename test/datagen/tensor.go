// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"

	"github.com/hayotensor/hypertensor/tensor"
)

func RandBytes32() (b tensor.Bytes32) {
	rand.Read(b[:])
	return
}

func RandAddress() (addr tensor.Address) {
	rand.Read(addr[:])
	return
}

func RandAddresses(n int) []tensor.Address {
	addrs := make([]tensor.Address, n)
	for i := range addrs {
		addrs[i] = RandAddress()
	}
	return addrs
}

// RandPeerID returns a base58-looking peer id prefixed like libp2p ed25519 ids.
func RandPeerID() tensor.PeerID {
	var b [16]byte
	rand.Read(b[:])
	return tensor.PeerID("12D3KooW" + hex.EncodeToString(b[:]))
}

// RandTokens returns a random amount in [1, n] whole tokens.
func RandTokens(n int) *big.Int {
	return tensor.Tokens(int64(RandIntN(n) + 1))
}
