// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tensor

import (
	"strconv"
)

// SubnetID identifies a subnet. Zero is never assigned.
type SubnetID uint32

func (id SubnetID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Bytes returns the big endian form, used in storage keys.
func (id SubnetID) Bytes() []byte {
	return []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
}

// ProposalID identifies a dispute proposal. Zero is never assigned.
type ProposalID uint32

// PeerID is the opaque network identity of a subnet node.
type PeerID string

// MaxPeerIDLength bounds the stored peer id.
const MaxPeerIDLength = 128

// Valid reports whether the peer id can be stored.
func (p PeerID) Valid() bool {
	return len(p) > 0 && len(p) <= MaxPeerIDLength
}

// Fixed accounts holding protocol funds.
var (
	RewardVault     = BytesToAddress([]byte("reward-vault"))
	ProposalEscrow  = BytesToAddress([]byte("proposal-escrow"))
	StakeCustody    = BytesToAddress([]byte("stake-custody"))
	DelegateCustody = BytesToAddress([]byte("delegate-custody"))
)

// EpochOf returns the epoch containing the block.
func EpochOf(block, epochLength uint32) uint32 {
	if epochLength == 0 {
		return 0
	}
	return block / epochLength
}

// EpochStart returns the first block of the epoch.
func EpochStart(epoch, epochLength uint32) uint32 {
	return epoch * epochLength
}

// Bytes returns the big endian form, used in storage keys.
func (id ProposalID) Bytes() []byte {
	return []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
}

// Bytes returns the raw peer id.
func (p PeerID) Bytes() []byte {
	return []byte(p)
}
