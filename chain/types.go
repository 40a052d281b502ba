// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"github.com/hayotensor/hypertensor/tensor"
)

// BlockSummary presents a committed block.
type BlockSummary struct {
	Number    uint32
	Timestamp uint64
	// StateHash digests the state changes of the block.
	StateHash tensor.Bytes32
	Calls     uint32
	Reverted  uint32
	Events    uint32
}
