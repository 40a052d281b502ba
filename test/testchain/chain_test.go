// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayotensor/hypertensor/runtime"
	"github.com/hayotensor/hypertensor/tensor"
)

func TestChainDefault(t *testing.T) {
	chain, err := NewDefault()
	require.NoError(t, err)
	defer chain.Close()

	require.NoError(t, chain.MintUntil(100))

	best := chain.Repo().BestBlockSummary()
	assert.Equal(t, uint32(100), best.Number)
	assert.Equal(t, uint64(1000), best.Timestamp)
}

func TestMintBlockArchivesEvents(t *testing.T) {
	chain, err := NewDefault()
	require.NoError(t, err)
	defer chain.Close()

	owner := chain.Accounts()[0].Address
	out, err := chain.MintBlock(&runtime.Call{
		Op:                 runtime.OpRegisterSubnet,
		Caller:             owner,
		Path:               "test/subnet",
		MemoryMB:           50000,
		RegistrationWindow: 100,
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Events)

	best := chain.Repo().BestBlockSummary()
	assert.Equal(t, uint32(1), best.Calls)
	assert.Equal(t, uint32(0), best.Reverted)
	assert.Equal(t, uint32(len(out.Events)), best.Events)

	newest, err := chain.EventDB().NewestBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, best.Number, newest)

	id, err := chain.Network().SubnetIDByPath("test/subnet")
	require.NoError(t, err)
	assert.Equal(t, tensor.SubnetID(1), id)

	// a reverted call is reported but still packed
	_, err = chain.MintBlock(&runtime.Call{Op: runtime.OpActivateSubnet, Caller: owner, Subnet: id})
	assert.Error(t, err)
	assert.Equal(t, uint32(1), chain.Repo().BestBlockSummary().Reverted)
}
