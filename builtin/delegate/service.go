// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegate

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/builtin/storage"
	"github.com/hayotensor/hypertensor/builtin/unbonding"
	"github.com/hayotensor/hypertensor/log"
	"github.com/hayotensor/hypertensor/tensor"
)

var logger = log.WithContext("pkg", "delegate")

var (
	slotPools        = storage.Slot("delegate-pools")
	slotShares       = storage.Slot("delegate-shares")
	slotLastTransfer = storage.Slot("delegate-last-transfer")
	slotUnbondings   = storage.Slot("delegate-unbondings")
)

type sharesKey = storage.Pair[tensor.Address, tensor.SubnetID]

// Pool is the share vault of one subnet.
type Pool struct {
	TotalShares  *big.Int
	TotalBalance *big.Int
}

func (p *Pool) normalize() {
	if p.TotalShares == nil {
		p.TotalShares = new(big.Int)
	}
	if p.TotalBalance == nil {
		p.TotalBalance = new(big.Int)
	}
}

// Service keeps the delegate pools, share balances and delegate unbondings.
type Service struct {
	pools        *storage.Mapping[tensor.SubnetID, *Pool]
	shares       *storage.Mapping[sharesKey, *big.Int]
	lastTransfer *storage.Mapping[tensor.Address, uint32]
	unbondings   *unbonding.Store
}

func New(sctx *storage.Context) *Service {
	return &Service{
		pools:        storage.NewMapping[tensor.SubnetID, *Pool](sctx, slotPools),
		shares:       storage.NewMapping[sharesKey, *big.Int](sctx, slotShares),
		lastTransfer: storage.NewMapping[tensor.Address, uint32](sctx, slotLastTransfer),
		unbondings:   unbonding.NewStore(sctx, slotUnbondings),
	}
}

// Pool returns the pool of the subnet, zeroed when it holds nothing.
func (s *Service) Pool(subnet tensor.SubnetID) (*Pool, error) {
	pool, err := s.pools.Get(subnet)
	if err != nil {
		return nil, err
	}
	pool.normalize()
	return pool, nil
}

func (s *Service) setPool(subnet tensor.SubnetID, pool *Pool) error {
	if pool.TotalShares.Sign() == 0 && pool.TotalBalance.Sign() == 0 {
		s.pools.Delete(subnet)
		return nil
	}
	return s.pools.Set(subnet, pool)
}

// Shares returns the shares account holds in the subnet pool.
func (s *Service) Shares(account tensor.Address, subnet tensor.SubnetID) (*big.Int, error) {
	return s.shares.Get(storage.NewPair(account, subnet))
}

func (s *Service) setShares(account tensor.Address, subnet tensor.SubnetID, shares *big.Int) error {
	key := storage.NewPair(account, subnet)
	if shares.Sign() == 0 {
		s.shares.Delete(key)
		return nil
	}
	return s.shares.Set(key, shares)
}

// Balance returns the current balance value of account's shares.
func (s *Service) Balance(account tensor.Address, subnet tensor.SubnetID) (*big.Int, error) {
	shares, err := s.Shares(account, subnet)
	if err != nil {
		return nil, err
	}
	pool, err := s.Pool(subnet)
	if err != nil {
		return nil, err
	}
	return ConvertToBalance(shares, pool.TotalShares, pool.TotalBalance), nil
}

// LastTransferBlock returns the block of the last transfer by account.
func (s *Service) LastTransferBlock(account tensor.Address) (uint32, error) {
	return s.lastTransfer.Get(account)
}

// Unbondings returns the pending delegate unbonding ledger.
func (s *Service) Unbondings(account tensor.Address, subnet tensor.SubnetID) (*unbonding.Ledger, error) {
	return s.unbondings.Get(account, subnet)
}

// Deposit mints shares for amount and returns them.
func (s *Service) Deposit(account tensor.Address, subnet tensor.SubnetID, amount *big.Int, p *params.Values) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	pool, err := s.Pool(subnet)
	if err != nil {
		return nil, err
	}
	minted, err := s.mint(account, subnet, pool, amount, p)
	if err != nil {
		return nil, err
	}
	logger.Debug("delegate stake added", "subnet", subnet, "account", account, "amount", amount, "shares", minted)
	return minted, nil
}

func (s *Service) mint(account tensor.Address, subnet tensor.SubnetID, pool *Pool, amount *big.Int, p *params.Values) (*big.Int, error) {
	if new(big.Int).Add(pool.TotalBalance, amount).Cmp(p.MaxDelegateStakeBalance) > 0 {
		return nil, ErrMaxDelegatedStakeReached
	}
	minted := ConvertToShares(amount, pool.TotalShares, pool.TotalBalance)
	if pool.TotalShares.Sign() == 0 {
		pool.TotalShares.Add(pool.TotalShares, InitialBurn)
		minted.Sub(minted, InitialBurn)
	}
	if minted.Sign() <= 0 {
		return nil, ErrCouldNotConvertToShares
	}

	held, err := s.Shares(account, subnet)
	if err != nil {
		return nil, err
	}
	if err := s.setShares(account, subnet, held.Add(held, minted)); err != nil {
		return nil, err
	}
	pool.TotalShares.Add(pool.TotalShares, minted)
	pool.TotalBalance.Add(pool.TotalBalance, amount)
	return minted, s.setPool(subnet, pool)
}

// burn removes shares and returns the balance they were worth.
func (s *Service) burn(account tensor.Address, subnet tensor.SubnetID, pool *Pool, shares *big.Int) (*big.Int, error) {
	if shares == nil || shares.Sign() <= 0 {
		return nil, ErrNotEnoughShares
	}
	held, err := s.Shares(account, subnet)
	if err != nil {
		return nil, err
	}
	if shares.Cmp(held) > 0 {
		return nil, ErrNotEnoughShares
	}
	balance := ConvertToBalance(shares, pool.TotalShares, pool.TotalBalance)
	if balance.Sign() <= 0 {
		return nil, ErrCouldNotConvertToBalance
	}
	if balance.Cmp(pool.TotalBalance) > 0 || shares.Cmp(pool.TotalShares) > 0 {
		return nil, errors.Errorf("delegate pool %v underflow", subnet)
	}

	if err := s.setShares(account, subnet, held.Sub(held, shares)); err != nil {
		return nil, err
	}
	pool.TotalShares.Sub(pool.TotalShares, shares)
	pool.TotalBalance.Sub(pool.TotalBalance, balance)
	return balance, s.setPool(subnet, pool)
}

// Withdraw burns shares and queues their balance for unbonding at epoch.
func (s *Service) Withdraw(account tensor.Address, subnet tensor.SubnetID, shares *big.Int, epoch uint32, p *params.Values) (*big.Int, error) {
	pool, err := s.Pool(subnet)
	if err != nil {
		return nil, err
	}
	balance, err := s.burn(account, subnet, pool, shares)
	if err != nil {
		return nil, err
	}
	ledger, err := s.unbondings.Get(account, subnet)
	if err != nil {
		return nil, err
	}
	if err := ledger.Add(epoch, balance, p.MaxStakeUnlockings); err != nil {
		return nil, err
	}
	if err := s.unbondings.Set(account, subnet, ledger); err != nil {
		return nil, err
	}
	logger.Debug("delegate stake removed", "subnet", subnet, "account", account, "shares", shares, "balance", balance)
	return balance, nil
}

// Claim releases matured delegate unbondings.
func (s *Service) Claim(account tensor.Address, subnet tensor.SubnetID, epoch, cooldown uint32) (*big.Int, int, error) {
	ledger, err := s.unbondings.Get(account, subnet)
	if err != nil {
		return nil, 0, err
	}
	total, count := ledger.Claim(epoch, cooldown)
	if count == 0 {
		return total, 0, nil
	}
	return total, count, s.unbondings.Set(account, subnet, ledger)
}

// Transfer moves shares worth of balance from one pool into another without unbonding.
// It returns the moved balance and the shares minted in the destination.
func (s *Service) Transfer(account tensor.Address, from, to tensor.SubnetID, shares *big.Int, block uint32, p *params.Values) (*big.Int, *big.Int, error) {
	if from == to {
		return nil, nil, ErrSameSubnet
	}
	last, err := s.lastTransfer.Get(account)
	if err != nil {
		return nil, nil, err
	}
	if last != 0 && uint64(last)+uint64(p.DelegateStakeTransferPeriod) > uint64(block) {
		return nil, nil, ErrDelegateStakeTransferCooldown
	}

	src, err := s.Pool(from)
	if err != nil {
		return nil, nil, err
	}
	balance, err := s.burn(account, from, src, shares)
	if err != nil {
		return nil, nil, err
	}
	dst, err := s.Pool(to)
	if err != nil {
		return nil, nil, err
	}
	minted, err := s.mint(account, to, dst, balance, p)
	if err != nil {
		return nil, nil, err
	}
	if err := s.lastTransfer.Set(account, block); err != nil {
		return nil, nil, err
	}
	logger.Debug("delegate stake transferred", "from", from, "to", to, "account", account, "balance", balance)
	return balance, minted, nil
}

// Increase adds amount to the pool balance without minting, raising the share price.
// A pool without shares is refused so that its balance stays zero too.
func (s *Service) Increase(subnet tensor.SubnetID, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	pool, err := s.Pool(subnet)
	if err != nil {
		return err
	}
	if pool.TotalShares.Sign() == 0 {
		return ErrPoolHasNoShares
	}
	pool.TotalBalance.Add(pool.TotalBalance, amount)
	return s.setPool(subnet, pool)
}

// InjectReward adds a reward to the pool balance. It reports false and
// does nothing when the pool has no shares to receive it.
func (s *Service) InjectReward(subnet tensor.SubnetID, amount *big.Int) (bool, error) {
	if amount.Sign() <= 0 {
		return false, nil
	}
	pool, err := s.Pool(subnet)
	if err != nil {
		return false, err
	}
	if pool.TotalShares.Sign() == 0 {
		return false, nil
	}
	pool.TotalBalance.Add(pool.TotalBalance, amount)
	return true, s.setPool(subnet, pool)
}
