// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tensor

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
)

// Amount is a token amount written as hex or decimal text in config files and
// API payloads.
type Amount math.HexOrDecimal256

// NewAmount copies x into an Amount.
func NewAmount(x *big.Int) *Amount {
	if x == nil {
		return &Amount{}
	}
	return (*Amount)(new(big.Int).Set(x))
}

// Int returns a copy of the amount, zero for nil.
func (a *Amount) Int() *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(a))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	v, ok := math.ParseBig256(string(text))
	if !ok {
		return fmt.Errorf("invalid hex or decimal integer %q", text)
	}
	*a = Amount(*v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte((*big.Int)(&a).String()), nil
}

// UnmarshalJSON accepts a quoted hex or decimal string or a bare number.
func (a *Amount) UnmarshalJSON(input []byte) error {
	var text string
	if err := json.Unmarshal(input, &text); err != nil {
		return (*big.Int)(a).UnmarshalJSON(input)
	}
	return a.UnmarshalText([]byte(text))
}

// MarshalJSON implements the json.Marshaler interface.
func (a Amount) MarshalJSON() ([]byte, error) {
	text, err := a.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}
