// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package balance keeps native token balances. It is the default currency of the network.
package balance

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/builtin/storage"
	"github.com/hayotensor/hypertensor/state"
	"github.com/hayotensor/hypertensor/tensor"
)

var (
	slotTotalAdd = storage.Slot("total-add")
	slotTotalSub = storage.Slot("total-sub")
)

type Balance struct {
	state    *state.State
	totalAdd *storage.Raw[*big.Int]
	totalSub *storage.Raw[*big.Int]
}

func New(addr tensor.Address, state *state.State) *Balance {
	ctx := storage.NewContext(addr, state)
	return &Balance{
		state:    state,
		totalAdd: storage.NewRaw[*big.Int](ctx, slotTotalAdd),
		totalSub: storage.NewRaw[*big.Int](ctx, slotTotalSub),
	}
}

// Balance returns the balance of an account.
func (b *Balance) Balance(addr tensor.Address) (*big.Int, error) {
	return b.state.GetBalance(addr)
}

// Deposit credits the account.
func (b *Balance) Deposit(addr tensor.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative deposit")
	}
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := b.state.GetBalance(addr)
	if err != nil {
		return err
	}
	if err := b.state.SetBalance(addr, bal.Add(bal, amount)); err != nil {
		return err
	}
	return b.accumulate(b.totalAdd, amount)
}

// Withdraw debits the account. It returns false when the balance is insufficient.
func (b *Balance) Withdraw(addr tensor.Address, amount *big.Int) (bool, error) {
	if amount.Sign() < 0 {
		return false, errors.New("negative withdrawal")
	}
	bal, err := b.state.GetBalance(addr)
	if err != nil {
		return false, err
	}
	if bal.Cmp(amount) < 0 {
		return false, nil
	}
	if amount.Sign() == 0 {
		return true, nil
	}
	if err := b.state.SetBalance(addr, bal.Sub(bal, amount)); err != nil {
		return false, err
	}
	return true, b.accumulate(b.totalSub, amount)
}

// Transfer moves amount between accounts. It returns false when the sender is short of funds.
func (b *Balance) Transfer(from, to tensor.Address, amount *big.Int) (bool, error) {
	ok, err := b.Withdraw(from, amount)
	if err != nil || !ok {
		return ok, err
	}
	return true, b.Deposit(to, amount)
}

// TotalSupply returns all deposits minus all withdrawals.
func (b *Balance) TotalSupply() (*big.Int, error) {
	add, err := b.totalAdd.Get()
	if err != nil {
		return nil, err
	}
	sub, err := b.totalSub.Get()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(add, sub), nil
}

func (b *Balance) accumulate(total *storage.Raw[*big.Int], amount *big.Int) error {
	v, err := total.Get()
	if err != nil {
		return err
	}
	return total.Set(v.Add(v, amount))
}
