// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"math/big"

	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/percent"
)

// AttestationPercentage is attests / submittable, capped at percent.Factor.
func AttestationPercentage(attests, submittable int) uint64 {
	if submittable <= 0 {
		return 0
	}
	return min(percent.DivUint64(uint64(attests), uint64(submittable)), percent.Factor)
}

// Emissions splits the epoch emission of a subnet into the node and delegate portions.
func Emissions(memoryMB uint64, p *params.Values) (overall, node, delegate *big.Int) {
	overall = percent.Mul(p.BaseRewardPerMB, new(big.Int).SetUint64(memoryMB))
	delegate = percent.Mul(overall, p.DelegateStakeRewardsPercentage)
	node = new(big.Int).Sub(overall, delegate)
	return
}

// NodeReward is the share of the node emission earned by score out of sum.
func NodeReward(node, score, sum *big.Int) *big.Int {
	if sum.Sign() == 0 {
		return new(big.Int)
	}
	return percent.Mul(node, percent.Div(score, sum))
}

// ValidatorBonus is the extra reward of the validator, scaled by attestation.
func ValidatorBonus(node *big.Int, attestation uint64, p *params.Values) *big.Int {
	return percent.Mul(percent.Mul(node, p.ValidatorRewardPercentage), new(big.Int).SetUint64(attestation))
}

// SlashAmount is the penalty on stake for a validator whose epoch reached attestation.
func SlashAmount(stake *big.Int, attestation uint64, p *params.Values) *big.Int {
	missing := percent.Factor - min(attestation, percent.Factor)
	pct := percent.Mul(p.BaseSlashPercentage, new(big.Int).SetUint64(missing))
	return percent.Min(percent.Mul(stake, pct), p.MaxSlashAmount)
}
