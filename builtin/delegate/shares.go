// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegate

import (
	"math/big"

	"github.com/hayotensor/hypertensor/percent"
)

// InitialBurn is minted to the pool itself on the first deposit so the
// share price cannot be inflated by a dust depositor.
var InitialBurn = big.NewInt(1000)

// ConvertToShares returns the shares worth balance in a pool holding
// totalShares against totalBalance. An empty pool converts one to one.
func ConvertToShares(balance, totalShares, totalBalance *big.Int) *big.Int {
	if totalShares.Sign() == 0 {
		return new(big.Int).Set(balance)
	}
	return convert(balance, totalShares, totalBalance)
}

// ConvertToBalance returns the balance backing shares.
func ConvertToBalance(shares, totalShares, totalBalance *big.Int) *big.Int {
	if totalShares.Sign() == 0 {
		return new(big.Int).Set(shares)
	}
	return convert(shares, totalBalance, totalShares)
}

// convert computes amount * (num * F / (den + 1)) / F.
func convert(amount, num, den *big.Int) *big.Int {
	f := percent.BigFactor()
	ratio := new(big.Int).Mul(num, f)
	ratio.Quo(ratio, new(big.Int).Add(den, big.NewInt(1)))
	out := new(big.Int).Mul(amount, ratio)
	return out.Quo(out, f)
}
