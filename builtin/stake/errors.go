// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"github.com/hayotensor/hypertensor/builtin/reverts"
)

var (
	ErrInvalidAmount                     = reverts.New(reverts.Staking, "amount must be positive")
	ErrMinStakeNotReached                = reverts.New(reverts.Staking, "min stake not reached")
	ErrMaxStakeReached                   = reverts.New(reverts.Staking, "max stake reached")
	ErrNotEnoughStake                    = reverts.New(reverts.Staking, "not enough stake to withdraw")
	ErrTxRateLimitExceeded               = reverts.New(reverts.Staking, "transaction rate limit exceeded")
	ErrNoStakeUnbondingsOrCooldownNotMet = reverts.New(reverts.Staking, "no stake unbondings or cooldown not met")
)
