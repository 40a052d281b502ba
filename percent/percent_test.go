// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package percent

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMul(t *testing.T) {
	tests := []struct {
		x, p, want int64
	}{
		{53_000_000, 300_000_000, 15_900_000},
		{100, Factor, 100},
		{100, 0, 0},
		{0, Factor, 0},
		{999, 1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, big.NewInt(tt.want), Mul(big.NewInt(tt.x), big.NewInt(tt.p)), "%d*%d", tt.x, tt.p)
	}
}

func TestDiv(t *testing.T) {
	assert.Equal(t, big.NewInt(333_333_333), Div(big.NewInt(100_000_000), big.NewInt(300_000_000)))
	assert.Equal(t, big.NewInt(Factor), Div(big.NewInt(7), big.NewInt(7)))
	assert.Equal(t, big.NewInt(0), Div(big.NewInt(7), big.NewInt(0)))
	assert.Equal(t, big.NewInt(0), Div(big.NewInt(7), nil))
}

func TestSaturation(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 255)
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	assert.Equal(t, max, Div(huge, big.NewInt(1)))
	assert.Equal(t, max, Mul(new(big.Int).Lsh(big.NewInt(1), 300), big.NewInt(Factor)))
	assert.Equal(t, uint64(math.MaxUint64), DivUint64(math.MaxUint64, 1))
	assert.Equal(t, uint64(15_900_000), MulUint64(53_000_000, 300_000_000))
	assert.Equal(t, uint64(333_333_333), DivUint64(100_000_000, 300_000_000))
}

func TestInputsUntouched(t *testing.T) {
	x := big.NewInt(53_000_000)
	p := big.NewInt(300_000_000)
	Mul(x, p)
	Div(x, p)
	assert.Equal(t, big.NewInt(53_000_000), x)
	assert.Equal(t, big.NewInt(300_000_000), p)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, big.NewInt(0), SaturatingSub(big.NewInt(1), big.NewInt(5)))
	assert.Equal(t, big.NewInt(4), SaturatingSub(big.NewInt(5), big.NewInt(1)))
	assert.Equal(t, big.NewInt(1), Min(big.NewInt(1), big.NewInt(5)))
	assert.Equal(t, big.NewInt(6), MulDiv(big.NewInt(4), big.NewInt(3), big.NewInt(2)))
	assert.Equal(t, big.NewInt(Factor), BigFactor())
}
