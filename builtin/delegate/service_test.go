// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegate

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
	return New(storage.NewContext(tensor.BytesToAddress([]byte("delegate")), st)), params.Defaults()
}

func TestService_FirstDepositBurn(t *testing.T) {
	svc, p := newSvc()
	acc := datagen.RandAddress()

	shares, err := svc.Deposit(acc, 1, tensor.Tokens(1_000), p)
	require.NoError(t, err)
	want := new(big.Int).Sub(tensor.Tokens(1_000), big.NewInt(1000))
	assert.Equal(t, want, shares)

	pool, err := svc.Pool(1)
	require.NoError(t, err)
	assert.Equal(t, tensor.Tokens(1_000), pool.TotalShares)
	assert.Equal(t, tensor.Tokens(1_000), pool.TotalBalance)

	held, err := svc.Shares(acc, 1)
	require.NoError(t, err)
	assert.Equal(t, want, held)
}

func TestService_DustFirstDeposit(t *testing.T) {
	svc, p := newSvc()

	_, err := svc.Deposit(datagen.RandAddress(), 1, big.NewInt(1000), p)
	assert.ErrorIs(t, err, ErrCouldNotConvertToShares)
	_, err = svc.Deposit(datagen.RandAddress(), 1, big.NewInt(0), p)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestService_MaxDelegated(t *testing.T) {
	svc, p := newSvc()
	p.MaxDelegateStakeBalance = tensor.Tokens(10)

	_, err := svc.Deposit(datagen.RandAddress(), 1, tensor.Tokens(10), p)
	require.NoError(t, err)
	_, err = svc.Deposit(datagen.RandAddress(), 1, big.NewInt(1), p)
	assert.ErrorIs(t, err, ErrMaxDelegatedStakeReached)
}

func TestService_WithdrawAndClaim(t *testing.T) {
	svc, p := newSvc()
	acc := datagen.RandAddress()

	shares, err := svc.Deposit(acc, 1, tensor.Tokens(100), p)
	require.NoError(t, err)

	_, err = svc.Withdraw(acc, 1, new(big.Int).Add(shares, big.NewInt(1)), 1, p)
	assert.ErrorIs(t, err, ErrNotEnoughShares)
	_, err = svc.Withdraw(acc, 1, new(big.Int), 1, p)
	assert.ErrorIs(t, err, ErrNotEnoughShares)

	balance, err := svc.Withdraw(acc, 1, shares, 1, p)
	require.NoError(t, err)
	assert.True(t, balance.Cmp(tensor.Tokens(100)) < 0)
	assert.True(t, balance.Cmp(tensor.Tokens(99)) > 0)

	held, err := svc.Shares(acc, 1)
	require.NoError(t, err)
	assert.Zero(t, held.Sign())

	total, n, err := svc.Claim(acc, 1, 2, p.DelegateStakeCooldownEpochs)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, total.Sign())

	total, n, err = svc.Claim(acc, 1, 3, p.DelegateStakeCooldownEpochs)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, balance, total)
}

func TestService_IncreaseEmptyPool(t *testing.T) {
	svc, p := newSvc()

	assert.ErrorIs(t, svc.Increase(1, tensor.Tokens(50)), ErrPoolHasNoShares)
	pool, err := svc.Pool(1)
	require.NoError(t, err)
	assert.Zero(t, pool.TotalShares.Sign())
	assert.Zero(t, pool.TotalBalance.Sign())

	// the first depositor only gets what they put in
	acc := datagen.RandAddress()
	_, err = svc.Deposit(acc, 1, tensor.Tokens(1_000), p)
	require.NoError(t, err)
	held, err := svc.Balance(acc, 1)
	require.NoError(t, err)
	assert.True(t, held.Cmp(tensor.Tokens(1_000)) < 0)
}

func TestService_IncreaseRaisesPrice(t *testing.T) {
	svc, p := newSvc()
	a, b := datagen.RandAddress(), datagen.RandAddress()

	_, err := svc.Deposit(a, 1, tensor.Tokens(100), p)
	require.NoError(t, err)
	before, err := svc.Balance(a, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Increase(1, tensor.Tokens(100)))
	after, err := svc.Balance(a, 1)
	require.NoError(t, err)
	assert.True(t, after.Cmp(before) > 0)

	// a later depositor gets fewer shares per token
	shares, err := svc.Deposit(b, 1, tensor.Tokens(100), p)
	require.NoError(t, err)
	assert.True(t, shares.Cmp(tensor.Tokens(51)) < 0)
}

func TestService_InjectReward(t *testing.T) {
	svc, p := newSvc()

	ok, err := svc.InjectReward(1, tensor.Tokens(5))
	require.NoError(t, err)
	assert.False(t, ok)
	pool, err := svc.Pool(1)
	require.NoError(t, err)
	assert.Zero(t, pool.TotalBalance.Sign())

	_, err = svc.Deposit(datagen.RandAddress(), 1, tensor.Tokens(5), p)
	require.NoError(t, err)
	ok, err = svc.InjectReward(1, tensor.Tokens(5))
	require.NoError(t, err)
	assert.True(t, ok)
	pool, err = svc.Pool(1)
	require.NoError(t, err)
	assert.Equal(t, tensor.Tokens(10), pool.TotalBalance)
}

func TestService_Transfer(t *testing.T) {
	svc, p := newSvc()
	acc := datagen.RandAddress()

	shares, err := svc.Deposit(acc, 1, tensor.Tokens(100), p)
	require.NoError(t, err)

	_, _, err = svc.Transfer(acc, 1, 1, shares, 10, p)
	assert.ErrorIs(t, err, ErrSameSubnet)

	half := new(big.Int).Div(shares, big.NewInt(2))
	moved, minted, err := svc.Transfer(acc, 1, 2, half, 10, p)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Sub(moved, big.NewInt(1000)), minted)

	_, _, err = svc.Transfer(acc, 1, 2, half, 10+p.DelegateStakeTransferPeriod-1, p)
	assert.ErrorIs(t, err, ErrDelegateStakeTransferCooldown)
	_, _, err = svc.Transfer(acc, 1, 2, half, 10+p.DelegateStakeTransferPeriod, p)
	assert.NoError(t, err)

	last, err := svc.LastTransferBlock(acc)
	require.NoError(t, err)
	assert.Equal(t, 10+p.DelegateStakeTransferPeriod, last)

	src, err := svc.Pool(1)
	require.NoError(t, err)
	dst, err := svc.Pool(2)
	require.NoError(t, err)
	// nothing is created or lost across the two pools
	assert.Equal(t, tensor.Tokens(100), new(big.Int).Add(src.TotalBalance, dst.TotalBalance))
}
