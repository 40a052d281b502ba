// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/builtin/storage"
	"github.com/hayotensor/hypertensor/builtin/unbonding"
	"github.com/hayotensor/hypertensor/log"
	"github.com/hayotensor/hypertensor/tensor"
)

var logger = log.WithContext("pkg", "stake")

var (
	slotEntries      = storage.Slot("stake-entries")
	slotSubnetTotals = storage.Slot("stake-subnet-totals")
	slotTotal        = storage.Slot("stake-total")
	slotLastTx       = storage.Slot("stake-last-tx-block")
	slotUnbondings   = storage.Slot("stake-unbondings")
)

type entryKey = storage.Pair[tensor.Address, tensor.SubnetID]

// Service is the direct stake ledger. Token custody is handled by the caller;
// the ledger only tracks who owns what.
type Service struct {
	entries      *storage.Mapping[entryKey, *big.Int]
	subnetTotals *storage.Mapping[tensor.SubnetID, *big.Int]
	total        *storage.Raw[*big.Int]
	lastTx       *storage.Mapping[tensor.Address, uint32]
	unbondings   *unbonding.Store
}

func New(sctx *storage.Context) *Service {
	return &Service{
		entries:      storage.NewMapping[entryKey, *big.Int](sctx, slotEntries),
		subnetTotals: storage.NewMapping[tensor.SubnetID, *big.Int](sctx, slotSubnetTotals),
		total:        storage.NewRaw[*big.Int](sctx, slotTotal),
		lastTx:       storage.NewMapping[tensor.Address, uint32](sctx, slotLastTx),
		unbondings:   unbonding.NewStore(sctx, slotUnbondings),
	}
}

// Get returns the stake of account in subnet.
func (s *Service) Get(account tensor.Address, subnet tensor.SubnetID) (*big.Int, error) {
	return s.entries.Get(storage.NewPair(account, subnet))
}

// SubnetTotal returns the sum of every stake entry of the subnet.
func (s *Service) SubnetTotal(subnet tensor.SubnetID) (*big.Int, error) {
	return s.subnetTotals.Get(subnet)
}

// Total returns the network wide stake.
func (s *Service) Total() (*big.Int, error) {
	return s.total.Get()
}

// Unbondings returns the pending unbonding ledger of account in subnet.
func (s *Service) Unbondings(account tensor.Address, subnet tensor.SubnetID) (*unbonding.Ledger, error) {
	return s.unbondings.Get(account, subnet)
}

// CheckRateLimit fails when account already sent a rate-limited call within limit blocks.
func (s *Service) CheckRateLimit(account tensor.Address, block, limit uint32) error {
	last, err := s.lastTx.Get(account)
	if err != nil {
		return err
	}
	if last != 0 && block >= last && block-last < limit {
		return ErrTxRateLimitExceeded
	}
	return nil
}

// RecordTx stamps block as the last rate-limited call of account.
func (s *Service) RecordTx(account tensor.Address, block uint32) error {
	return s.lastTx.Set(account, block)
}

// LastTxBlock returns the block of the last rate-limited call of account.
func (s *Service) LastTxBlock(account tensor.Address) (uint32, error) {
	return s.lastTx.Get(account)
}

// Add credits amount after checking the resulting balance lies in [MinStakeBalance, MaxStakeBalance].
func (s *Service) Add(account tensor.Address, subnet tensor.SubnetID, amount *big.Int, p *params.Values) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	current, err := s.Get(account, subnet)
	if err != nil {
		return err
	}
	next := new(big.Int).Add(current, amount)
	if next.Cmp(p.MinStakeBalance) < 0 {
		return ErrMinStakeNotReached
	}
	if next.Cmp(p.MaxStakeBalance) > 0 {
		return ErrMaxStakeReached
	}
	logger.Debug("adding stake", "subnet", subnet, "account", account, "amount", amount)
	return s.increase(account, subnet, amount)
}

// Remove debits amount and queues it for unbonding at epoch. When keepMin is set
// the remaining balance must stay at or above MinStakeBalance.
func (s *Service) Remove(account tensor.Address, subnet tensor.SubnetID, amount *big.Int, epoch uint32, keepMin bool, p *params.Values) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	current, err := s.Get(account, subnet)
	if err != nil {
		return err
	}
	if amount.Cmp(current) > 0 {
		return ErrNotEnoughStake
	}
	if keepMin && new(big.Int).Sub(current, amount).Cmp(p.MinStakeBalance) < 0 {
		return ErrMinStakeNotReached
	}

	ledger, err := s.unbondings.Get(account, subnet)
	if err != nil {
		return err
	}
	if err := ledger.Add(epoch, amount, p.MaxStakeUnlockings); err != nil {
		return err
	}
	if err := s.unbondings.Set(account, subnet, ledger); err != nil {
		return err
	}
	logger.Debug("removing stake", "subnet", subnet, "account", account, "amount", amount, "epoch", epoch)
	return s.decrease(account, subnet, amount)
}

// Claim releases every matured unbonding entry. The caller pays out the returned total.
func (s *Service) Claim(account tensor.Address, subnet tensor.SubnetID, epoch, cooldown uint32) (*big.Int, int, error) {
	ledger, err := s.unbondings.Get(account, subnet)
	if err != nil {
		return nil, 0, err
	}
	total, count := ledger.Claim(epoch, cooldown)
	if count == 0 {
		return total, 0, nil
	}
	if err := s.unbondings.Set(account, subnet, ledger); err != nil {
		return nil, 0, err
	}
	return total, count, nil
}

// Reward credits amount without range checks.
func (s *Service) Reward(account tensor.Address, subnet tensor.SubnetID, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return nil
	}
	return s.increase(account, subnet, amount)
}

// Slash debits up to amount and returns what was actually taken.
func (s *Service) Slash(account tensor.Address, subnet tensor.SubnetID, amount *big.Int) (*big.Int, error) {
	current, err := s.Get(account, subnet)
	if err != nil {
		return nil, err
	}
	taken := new(big.Int).Set(amount)
	if taken.Cmp(current) > 0 {
		taken.Set(current)
	}
	if taken.Sign() <= 0 {
		return new(big.Int), nil
	}
	return taken, s.decrease(account, subnet, taken)
}

func (s *Service) increase(account tensor.Address, subnet tensor.SubnetID, amount *big.Int) error {
	return s.apply(account, subnet, amount)
}

func (s *Service) decrease(account tensor.Address, subnet tensor.SubnetID, amount *big.Int) error {
	return s.apply(account, subnet, new(big.Int).Neg(amount))
}

// apply moves the entry, the subnet total and the global total together.
func (s *Service) apply(account tensor.Address, subnet tensor.SubnetID, delta *big.Int) error {
	key := storage.NewPair(account, subnet)
	entry, err := s.entries.Get(key)
	if err != nil {
		return err
	}
	subnetTotal, err := s.subnetTotals.Get(subnet)
	if err != nil {
		return err
	}
	total, err := s.total.Get()
	if err != nil {
		return err
	}

	entry.Add(entry, delta)
	subnetTotal.Add(subnetTotal, delta)
	total.Add(total, delta)
	if entry.Sign() < 0 || subnetTotal.Sign() < 0 || total.Sign() < 0 {
		return errors.Errorf("stake underflow for %v in subnet %v", account, subnet)
	}

	if entry.Sign() == 0 {
		s.entries.Delete(key)
	} else if err := s.entries.Set(key, entry); err != nil {
		return err
	}
	if subnetTotal.Sign() == 0 {
		s.subnetTotals.Delete(subnet)
	} else if err := s.subnetTotals.Set(subnet, subnetTotal); err != nil {
		return err
	}
	return s.total.Set(total)
}
