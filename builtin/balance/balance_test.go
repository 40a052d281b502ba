// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package balance

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayotensor/hypertensor/state"
	"github.com/hayotensor/hypertensor/tensor"
)

func TestBalance(t *testing.T) {
	b := New(tensor.BytesToAddress([]byte("bal")), state.New(nil))
	alice := tensor.BytesToAddress([]byte("alice"))
	bob := tensor.BytesToAddress([]byte("bob"))

	require.NoError(t, b.Deposit(alice, big.NewInt(100)))

	ok, err := b.Transfer(alice, bob, big.NewInt(30))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Withdraw(bob, big.NewInt(31))
	require.NoError(t, err)
	assert.False(t, ok)

	tests := []struct {
		addr tensor.Address
		want int64
	}{
		{alice, 70},
		{bob, 30},
	}
	for _, tt := range tests {
		bal, err := b.Balance(tt.addr)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(tt.want), bal)
	}

	supply, err := b.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), supply)

	ok, err = b.Withdraw(bob, big.NewInt(30))
	require.NoError(t, err)
	assert.True(t, ok)
	supply, err = b.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(70), supply)

	assert.Error(t, b.Deposit(alice, big.NewInt(-1)))
}
