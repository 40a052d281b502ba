// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegate

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"

	"github.com/hayotensor/hypertensor/tensor"
)

func e(n int64, exp uint) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
}

func TestConvertToBalance(t *testing.T) {
	assert.Equal(t, e(999_999_999, 12), ConvertToBalance(e(1, 21), e(6, 21), e(6, 21)))
	assert.Equal(t, e(1_166_666_666, 12), ConvertToBalance(e(1, 21), e(6, 21), e(7, 21)))
}

func TestConvertEmptyPool(t *testing.T) {
	amount := tensor.Tokens(5)
	assert.Equal(t, amount, ConvertToShares(amount, new(big.Int), new(big.Int)))
	assert.Equal(t, amount, ConvertToBalance(amount, new(big.Int), tensor.Tokens(9)))
}

func TestConvertDoesNotMutate(t *testing.T) {
	amount, ts, tb := tensor.Tokens(5), tensor.Tokens(7), tensor.Tokens(11)
	ConvertToShares(amount, ts, tb)
	ConvertToBalance(amount, ts, tb)
	assert.Equal(t, tensor.Tokens(5), amount)
	assert.Equal(t, tensor.Tokens(7), ts)
	assert.Equal(t, tensor.Tokens(11), tb)
}

// Depositing and immediately redeeming never returns more than was deposited.
func TestDepositRedeemNeverGains(t *testing.T) {
	f := fuzz.New().NilChance(0)

	for range 2000 {
		var ts, tb, dep uint64
		f.Fuzz(&ts)
		f.Fuzz(&tb)
		f.Fuzz(&dep)
		if ts == 0 || dep == 0 {
			continue
		}
		totalShares := new(big.Int).SetUint64(ts)
		totalBalance := new(big.Int).SetUint64(tb)
		deposit := new(big.Int).SetUint64(dep)

		shares := ConvertToShares(deposit, totalShares, totalBalance)
		totalShares.Add(totalShares, shares)
		totalBalance.Add(totalBalance, deposit)

		back := ConvertToBalance(shares, totalShares, totalBalance)
		assert.True(t, back.Cmp(deposit) <= 0, "ts=%d tb=%d deposit=%d back=%v", ts, tb, dep, back)
	}
}
