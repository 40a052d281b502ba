// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/builtin/storage"
	"github.com/hayotensor/hypertensor/state"
	"github.com/hayotensor/hypertensor/tensor"
	"github.com/hayotensor/hypertensor/test/datagen"
)

func newSvc() (*Service, *params.Values) {
	st := state.New(nil)
	return New(storage.NewContext(tensor.BytesToAddress([]byte("stake")), st)), params.Defaults()
}

func assertStake(t *testing.T, svc *Service, account tensor.Address, subnet tensor.SubnetID, want *big.Int) {
	got, err := svc.Get(account, subnet)
	require.NoError(t, err)
	assert.Equal(t, want.String(), got.String())
}

func TestService_AddBounds(t *testing.T) {
	svc, p := newSvc()
	acc := datagen.RandAddress()

	assert.ErrorIs(t, svc.Add(acc, 1, big.NewInt(0), p), ErrInvalidAmount)
	assert.ErrorIs(t, svc.Add(acc, 1, tensor.Tokens(999), p), ErrMinStakeNotReached)
	assert.ErrorIs(t, svc.Add(acc, 1, tensor.Tokens(100_001), p), ErrMaxStakeReached)

	require.NoError(t, svc.Add(acc, 1, tensor.Tokens(1_000), p))
	// top ups only need the resulting balance in range
	require.NoError(t, svc.Add(acc, 1, big.NewInt(1), p))
	assertStake(t, svc, acc, 1, new(big.Int).Add(tensor.Tokens(1_000), big.NewInt(1)))

	assert.ErrorIs(t, svc.Add(acc, 1, tensor.Tokens(99_000), p), ErrMaxStakeReached)
}

func TestService_RemoveAndClaim(t *testing.T) {
	svc, p := newSvc()
	acc := datagen.RandAddress()
	require.NoError(t, svc.Add(acc, 1, tensor.Tokens(1_500), p))

	assert.ErrorIs(t, svc.Remove(acc, 1, tensor.Tokens(1_501), 3, false, p), ErrNotEnoughStake)
	assert.ErrorIs(t, svc.Remove(acc, 1, tensor.Tokens(501), 3, true, p), ErrMinStakeNotReached)

	require.NoError(t, svc.Remove(acc, 1, tensor.Tokens(200), 3, true, p))
	require.NoError(t, svc.Remove(acc, 1, tensor.Tokens(300), 3, true, p))
	assertStake(t, svc, acc, 1, tensor.Tokens(1_000))

	ledger, err := svc.Unbondings(acc, 1)
	require.NoError(t, err)
	require.Len(t, ledger.Entries, 1)
	assert.Equal(t, tensor.Tokens(500), ledger.Entries[0].Amount)

	total, n, err := svc.Claim(acc, 1, 4, p.StakeCooldownEpochs)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, total.Sign())

	total, n, err = svc.Claim(acc, 1, 5, p.StakeCooldownEpochs)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, tensor.Tokens(500), total)

	// a node that left may withdraw everything
	require.NoError(t, svc.Remove(acc, 1, tensor.Tokens(1_000), 6, false, p))
	assertStake(t, svc, acc, 1, new(big.Int))
}

func TestService_MaxUnlockings(t *testing.T) {
	svc, p := newSvc()
	p.MaxStakeUnlockings = 2
	acc := datagen.RandAddress()
	require.NoError(t, svc.Add(acc, 1, tensor.Tokens(2_000), p))

	require.NoError(t, svc.Remove(acc, 1, tensor.Tokens(1), 1, false, p))
	require.NoError(t, svc.Remove(acc, 1, tensor.Tokens(1), 2, false, p))
	assert.ErrorContains(t, svc.Remove(acc, 1, tensor.Tokens(1), 3, false, p), "max unlockings")
	assertStake(t, svc, acc, 1, tensor.Tokens(1_998))
}

func TestService_RateLimit(t *testing.T) {
	svc, _ := newSvc()
	acc := datagen.RandAddress()

	require.NoError(t, svc.CheckRateLimit(acc, 10, 2))
	require.NoError(t, svc.RecordTx(acc, 10))
	assert.ErrorIs(t, svc.CheckRateLimit(acc, 10, 2), ErrTxRateLimitExceeded)
	assert.ErrorIs(t, svc.CheckRateLimit(acc, 11, 2), ErrTxRateLimitExceeded)
	assert.NoError(t, svc.CheckRateLimit(acc, 12, 2))
	assert.NoError(t, svc.CheckRateLimit(datagen.RandAddress(), 10, 2))

	last, err := svc.LastTxBlock(acc)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), last)
}

func TestService_SlashSaturates(t *testing.T) {
	svc, p := newSvc()
	acc := datagen.RandAddress()
	require.NoError(t, svc.Add(acc, 1, tensor.Tokens(1_000), p))

	taken, err := svc.Slash(acc, 1, tensor.Tokens(10))
	require.NoError(t, err)
	assert.Equal(t, tensor.Tokens(10), taken)

	taken, err = svc.Slash(acc, 1, tensor.Tokens(5_000))
	require.NoError(t, err)
	assert.Equal(t, tensor.Tokens(990), taken)

	taken, err = svc.Slash(acc, 1, tensor.Tokens(1))
	require.NoError(t, err)
	assert.Zero(t, taken.Sign())
}

func TestService_Conservation(t *testing.T) {
	svc, p := newSvc()
	accounts := datagen.RandAddresses(6)
	subnets := []tensor.SubnetID{1, 2, 3}

	for i, acc := range accounts {
		subnet := subnets[i%len(subnets)]
		require.NoError(t, svc.Add(acc, subnet, datagen.RandTokens(50_000).Add(tensor.Tokens(1_000), big.NewInt(0)), p))
	}
	for i, acc := range accounts {
		subnet := subnets[i%len(subnets)]
		switch i % 3 {
		case 0:
			require.NoError(t, svc.Reward(acc, subnet, datagen.RandTokens(10)))
		case 1:
			_, err := svc.Slash(acc, subnet, datagen.RandTokens(10))
			require.NoError(t, err)
		case 2:
			require.NoError(t, svc.Remove(acc, subnet, datagen.RandTokens(10), 1, false, p))
		}
	}

	grand := new(big.Int)
	for _, subnet := range subnets {
		sum := new(big.Int)
		for i, acc := range accounts {
			if subnets[i%len(subnets)] != subnet {
				continue
			}
			entry, err := svc.Get(acc, subnet)
			require.NoError(t, err)
			sum.Add(sum, entry)
		}
		total, err := svc.SubnetTotal(subnet)
		require.NoError(t, err)
		assert.Equal(t, sum.String(), total.String())
		grand.Add(grand, total)
	}
	total, err := svc.Total()
	require.NoError(t, err)
	assert.Equal(t, grand.String(), total.String())
}
