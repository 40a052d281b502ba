// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package percent implements fixed-point percentages scaled by Factor.
// All results saturate at 2^256-1 and inputs are never modified.
package percent

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

// Factor is 100% in fixed-point form.
const Factor = 1_000_000_000

var (
	factor    = uint256.NewInt(Factor)
	maxUint   = new(uint256.Int).SetAllOne()
	bigFactor = big.NewInt(Factor)
)

// BigFactor returns 100% as a new big.Int.
func BigFactor() *big.Int {
	return new(big.Int).Set(bigFactor)
}

func toUint(x *big.Int) *uint256.Int {
	if x == nil || x.Sign() <= 0 {
		return new(uint256.Int)
	}
	v, overflow := uint256.FromBig(x)
	if overflow {
		return new(uint256.Int).Set(maxUint)
	}
	return v
}

func mulDiv(x, y, d *uint256.Int) *uint256.Int {
	if d.IsZero() {
		return new(uint256.Int)
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return z.Set(maxUint)
	}
	return z
}

// Mul returns x * p / Factor.
func Mul(x, p *big.Int) *big.Int {
	return mulDiv(toUint(x), toUint(p), factor).ToBig()
}

// Div returns x * Factor / y, or zero when y is zero.
func Div(x, y *big.Int) *big.Int {
	return mulDiv(toUint(x), factor, toUint(y)).ToBig()
}

// MulDiv returns x * y / d, or zero when d is zero.
func MulDiv(x, y, d *big.Int) *big.Int {
	return mulDiv(toUint(x), toUint(y), toUint(d)).ToBig()
}

// MulUint64 is Mul over uint64, saturating at math.MaxUint64.
func MulUint64(x, p uint64) uint64 {
	return clamp(mulDiv(uint256.NewInt(x), uint256.NewInt(p), factor))
}

// DivUint64 is Div over uint64, saturating at math.MaxUint64.
func DivUint64(x, y uint64) uint64 {
	return clamp(mulDiv(uint256.NewInt(x), factor, uint256.NewInt(y)))
}

func clamp(v *uint256.Int) uint64 {
	if !v.IsUint64() {
		return math.MaxUint64
	}
	return v.Uint64()
}

// SaturatingSub returns max(a - b, 0).
func SaturatingSub(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(a, b)
}

// Min returns a copy of the smaller value.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
