// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegate

import (
	"github.com/hayotensor/hypertensor/builtin/reverts"
)

var (
	ErrInvalidAmount                             = reverts.New(reverts.Delegate, "amount must be positive")
	ErrMaxDelegatedStakeReached                  = reverts.New(reverts.Delegate, "max delegated stake reached")
	ErrCouldNotConvertToShares                   = reverts.New(reverts.Delegate, "could not convert to shares")
	ErrCouldNotConvertToBalance                  = reverts.New(reverts.Delegate, "could not convert to balance")
	ErrNotEnoughShares                           = reverts.New(reverts.Delegate, "not enough delegate stake shares")
	ErrDelegateStakeTransferCooldown             = reverts.New(reverts.Delegate, "delegate stake transfer period not passed")
	ErrSameSubnet                                = reverts.New(reverts.Delegate, "cannot transfer to the same subnet")
	ErrNoDelegateStakeUnbondingsOrCooldownNotMet = reverts.New(reverts.Delegate, "no delegate stake unbondings or cooldown not met")
	ErrPoolHasNoShares                           = reverts.New(reverts.Delegate, "delegate pool has no shares")
)
