// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/tensor"
)

// Values is a typed snapshot of every governance param.
type Values struct {
	EpochLength uint32

	MaxSubnets                      uint32
	MaxSubnetMemoryMB               uint64
	BaseSubnetNodeMemoryMB          uint64
	MinSubnetNodes                  uint32
	MinNodesCurveXStart             uint64
	MinNodesCurveYStart             uint64
	MinNodesCurveYEnd               uint64
	TargetSubnetNodesMultiplier     uint64
	MinSubnetRegistrationBlocks     uint32
	MaxSubnetRegistrationBlocks     uint32
	SubnetActivationEnactmentBlocks uint32
	SubnetRegistrationFee           *big.Int
	MaxSubnetNodes                  uint32

	MinStakeBalance              *big.Int
	MaxStakeBalance              *big.Int
	MinSubnetDelegateStakeFactor *big.Int
	MaxDelegateStakeBalance      *big.Int
	TxRateLimit                  uint32
	StakeCooldownEpochs          uint32
	DelegateStakeCooldownEpochs  uint32
	MaxStakeUnlockings           uint32
	DelegateStakeTransferPeriod  uint32

	BaseRewardPerMB                      *big.Int
	DelegateStakeRewardsPercentage       *big.Int
	ValidatorRewardPercentage            *big.Int
	BaseSlashPercentage                  *big.Int
	MaxSlashAmount                       *big.Int
	MinAttestationPercentage             uint64
	MinVastMajorityAttestationPercentage uint64
	NodePenaltyAttestationThreshold      uint64
	MaxSubnetNodePenalties               uint32
	MaxSubnetPenaltyCount                uint32
	RegisteredNodeGraceEpochs            uint32
	NewValidatorBaseScore                uint64
	SlashDecayEpochs                     uint32
	ConsecutiveBonusPercentage           uint64
	MaxConsecutiveBonus                  uint32

	ProposalBidAmount          *big.Int
	ChallengePeriod            uint32
	VotingPeriod               uint32
	ProposalQuorum             uint64
	ProposalConsensusThreshold uint64
	MinProposalNodes           uint32
}

type field struct {
	key tensor.Bytes32
	ptr any
}

func (v *Values) fields() []field {
	return []field{
		{tensor.KeyEpochLength, &v.EpochLength},

		{tensor.KeyMaxSubnets, &v.MaxSubnets},
		{tensor.KeyMaxSubnetMemoryMB, &v.MaxSubnetMemoryMB},
		{tensor.KeyBaseSubnetNodeMemoryMB, &v.BaseSubnetNodeMemoryMB},
		{tensor.KeyMinSubnetNodes, &v.MinSubnetNodes},
		{tensor.KeyMinNodesCurveXStart, &v.MinNodesCurveXStart},
		{tensor.KeyMinNodesCurveYStart, &v.MinNodesCurveYStart},
		{tensor.KeyMinNodesCurveYEnd, &v.MinNodesCurveYEnd},
		{tensor.KeyTargetSubnetNodesMultiplier, &v.TargetSubnetNodesMultiplier},
		{tensor.KeyMinSubnetRegistrationBlocks, &v.MinSubnetRegistrationBlocks},
		{tensor.KeyMaxSubnetRegistrationBlocks, &v.MaxSubnetRegistrationBlocks},
		{tensor.KeySubnetActivationEnactmentBlocks, &v.SubnetActivationEnactmentBlocks},
		{tensor.KeySubnetRegistrationFee, &v.SubnetRegistrationFee},
		{tensor.KeyMaxSubnetNodes, &v.MaxSubnetNodes},

		{tensor.KeyMinStakeBalance, &v.MinStakeBalance},
		{tensor.KeyMaxStakeBalance, &v.MaxStakeBalance},
		{tensor.KeyMinSubnetDelegateStakeFactor, &v.MinSubnetDelegateStakeFactor},
		{tensor.KeyMaxDelegateStakeBalance, &v.MaxDelegateStakeBalance},
		{tensor.KeyTxRateLimit, &v.TxRateLimit},
		{tensor.KeyStakeCooldownEpochs, &v.StakeCooldownEpochs},
		{tensor.KeyDelegateStakeCooldownEpochs, &v.DelegateStakeCooldownEpochs},
		{tensor.KeyMaxStakeUnlockings, &v.MaxStakeUnlockings},
		{tensor.KeyDelegateStakeTransferPeriod, &v.DelegateStakeTransferPeriod},

		{tensor.KeyBaseRewardPerMB, &v.BaseRewardPerMB},
		{tensor.KeyDelegateStakeRewardsPercentage, &v.DelegateStakeRewardsPercentage},
		{tensor.KeyValidatorRewardPercentage, &v.ValidatorRewardPercentage},
		{tensor.KeyBaseSlashPercentage, &v.BaseSlashPercentage},
		{tensor.KeyMaxSlashAmount, &v.MaxSlashAmount},
		{tensor.KeyMinAttestationPercentage, &v.MinAttestationPercentage},
		{tensor.KeyMinVastMajorityAttestationPercentage, &v.MinVastMajorityAttestationPercentage},
		{tensor.KeyNodePenaltyAttestationThreshold, &v.NodePenaltyAttestationThreshold},
		{tensor.KeyMaxSubnetNodePenalties, &v.MaxSubnetNodePenalties},
		{tensor.KeyMaxSubnetPenaltyCount, &v.MaxSubnetPenaltyCount},
		{tensor.KeyRegisteredNodeGraceEpochs, &v.RegisteredNodeGraceEpochs},
		{tensor.KeyNewValidatorBaseScore, &v.NewValidatorBaseScore},
		{tensor.KeySlashDecayEpochs, &v.SlashDecayEpochs},
		{tensor.KeyConsecutiveBonusPercentage, &v.ConsecutiveBonusPercentage},
		{tensor.KeyMaxConsecutiveBonus, &v.MaxConsecutiveBonus},

		{tensor.KeyProposalBidAmount, &v.ProposalBidAmount},
		{tensor.KeyChallengePeriod, &v.ChallengePeriod},
		{tensor.KeyVotingPeriod, &v.VotingPeriod},
		{tensor.KeyProposalQuorum, &v.ProposalQuorum},
		{tensor.KeyProposalConsensusThreshold, &v.ProposalConsensusThreshold},
		{tensor.KeyMinProposalNodes, &v.MinProposalNodes},
	}
}

func assign(f field, value *big.Int) error {
	switch ptr := f.ptr.(type) {
	case *uint32:
		if !value.IsUint64() || value.Uint64() > math.MaxUint32 {
			return errors.Errorf("param %v overflows uint32", f.key)
		}
		*ptr = uint32(value.Uint64())
	case *uint64:
		if !value.IsUint64() {
			return errors.Errorf("param %v overflows uint64", f.key)
		}
		*ptr = value.Uint64()
	case **big.Int:
		*ptr = new(big.Int).Set(value)
	default:
		panic("unsupported param field")
	}
	return nil
}

// Values reads a snapshot of every param.
func (p *Params) Values() (*Values, error) {
	v := &Values{}
	for _, f := range v.fields() {
		value, err := p.Get(f.key)
		if err != nil {
			return nil, err
		}
		if err := assign(f, value); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Defaults returns the genesis values.
func Defaults() *Values {
	v := &Values{}
	defaults := make(map[tensor.Bytes32]*big.Int, len(tensor.DefaultParams))
	for _, p := range tensor.DefaultParams {
		defaults[p.Key] = p.Default
	}
	for _, f := range v.fields() {
		if err := assign(f, defaults[f.key]); err != nil {
			panic(err)
		}
	}
	return v
}
