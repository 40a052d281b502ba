// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tensor

import (
	"math/big"
)

// Ether is 1e18 base units.
var Ether = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Tokens returns n * 1e18.
func Tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), Ether)
}

func key(name string) Bytes32 {
	return BytesToBytes32([]byte(name))
}

// Keys of governance params.
var (
	KeyEpochLength = key("epoch-length")

	KeyMaxSubnets                      = key("max-subnets")
	KeyMaxSubnetMemoryMB               = key("max-subnet-memory-mb")
	KeyBaseSubnetNodeMemoryMB          = key("base-node-memory-mb")
	KeyMinSubnetNodes                  = key("min-subnet-nodes")
	KeyMinNodesCurveXStart             = key("min-nodes-curve-x-start")
	KeyMinNodesCurveYStart             = key("min-nodes-curve-y-start")
	KeyMinNodesCurveYEnd               = key("min-nodes-curve-y-end")
	KeyTargetSubnetNodesMultiplier     = key("target-nodes-multiplier")
	KeyMinSubnetRegistrationBlocks     = key("min-registration-blocks")
	KeyMaxSubnetRegistrationBlocks     = key("max-registration-blocks")
	KeySubnetActivationEnactmentBlocks = key("activation-enactment-blocks")
	KeySubnetRegistrationFee           = key("registration-fee")
	KeyMaxSubnetNodes                  = key("max-subnet-nodes")

	KeyMinStakeBalance              = key("min-stake-balance")
	KeyMaxStakeBalance              = key("max-stake-balance")
	KeyMinSubnetDelegateStakeFactor = key("min-delegate-stake-factor")
	KeyMaxDelegateStakeBalance      = key("max-delegate-stake-balance")
	KeyTxRateLimit                  = key("tx-rate-limit")
	KeyStakeCooldownEpochs          = key("stake-cooldown-epochs")
	KeyDelegateStakeCooldownEpochs  = key("delegate-cooldown-epochs")
	KeyMaxStakeUnlockings           = key("max-stake-unlockings")
	KeyDelegateStakeTransferPeriod  = key("delegate-transfer-period")

	KeyBaseRewardPerMB                      = key("base-reward-per-mb")
	KeyDelegateStakeRewardsPercentage       = key("delegate-rewards-pct")
	KeyValidatorRewardPercentage            = key("validator-reward-pct")
	KeyBaseSlashPercentage                  = key("base-slash-pct")
	KeyMaxSlashAmount                       = key("max-slash-amount")
	KeyMinAttestationPercentage             = key("min-attestation-pct")
	KeyMinVastMajorityAttestationPercentage = key("vast-majority-pct")
	KeyNodePenaltyAttestationThreshold      = key("node-penalty-threshold")
	KeyMaxSubnetNodePenalties               = key("max-node-penalties")
	KeyMaxSubnetPenaltyCount                = key("max-subnet-penalties")
	KeyRegisteredNodeGraceEpochs            = key("registered-grace-epochs")
	KeyNewValidatorBaseScore                = key("new-validator-score")
	KeySlashDecayEpochs                     = key("slash-decay-epochs")
	KeyConsecutiveBonusPercentage           = key("consecutive-bonus-pct")
	KeyMaxConsecutiveBonus                  = key("max-consecutive-bonus")

	KeyProposalBidAmount          = key("proposal-bid")
	KeyChallengePeriod            = key("challenge-period")
	KeyVotingPeriod               = key("voting-period")
	KeyProposalQuorum             = key("proposal-quorum")
	KeyProposalConsensusThreshold = key("proposal-consensus")
	KeyMinProposalNodes           = key("min-proposal-nodes")
)

// Param is a governance parameter with its initial value.
type Param struct {
	Name    string
	Key     Bytes32
	Default *big.Int
}

// DefaultParams lists every governance param with its genesis value.
var DefaultParams = []Param{
	{"EpochLength", KeyEpochLength, big.NewInt(100)},

	{"MaxSubnets", KeyMaxSubnets, big.NewInt(64)},
	{"MaxSubnetMemoryMB", KeyMaxSubnetMemoryMB, big.NewInt(1_000_000)},
	{"BaseSubnetNodeMemoryMB", KeyBaseSubnetNodeMemoryMB, big.NewInt(16_000)},
	{"MinSubnetNodes", KeyMinSubnetNodes, big.NewInt(1)},
	{"MinNodesCurveXStart", KeyMinNodesCurveXStart, big.NewInt(250_000_000)},
	{"MinNodesCurveYStart", KeyMinNodesCurveYStart, big.NewInt(1_000_000_000)},
	{"MinNodesCurveYEnd", KeyMinNodesCurveYEnd, big.NewInt(200_000_000)},
	{"TargetSubnetNodesMultiplier", KeyTargetSubnetNodesMultiplier, big.NewInt(1_000_000_000)},
	{"MinSubnetRegistrationBlocks", KeyMinSubnetRegistrationBlocks, big.NewInt(100)},
	{"MaxSubnetRegistrationBlocks", KeyMaxSubnetRegistrationBlocks, big.NewInt(100_000)},
	{"SubnetActivationEnactmentBlocks", KeySubnetActivationEnactmentBlocks, big.NewInt(1_000)},
	{"SubnetRegistrationFee", KeySubnetRegistrationFee, Tokens(100)},
	{"MaxSubnetNodes", KeyMaxSubnetNodes, big.NewInt(254)},

	{"MinStakeBalance", KeyMinStakeBalance, Tokens(1_000)},
	{"MaxStakeBalance", KeyMaxStakeBalance, Tokens(100_000)},
	{"MinSubnetDelegateStakeFactor", KeyMinSubnetDelegateStakeFactor, big.NewInt(100_000_000)},
	{"MaxDelegateStakeBalance", KeyMaxDelegateStakeBalance, Tokens(10_000_000)},
	{"TxRateLimit", KeyTxRateLimit, big.NewInt(2)},
	{"StakeCooldownEpochs", KeyStakeCooldownEpochs, big.NewInt(2)},
	{"DelegateStakeCooldownEpochs", KeyDelegateStakeCooldownEpochs, big.NewInt(2)},
	{"MaxStakeUnlockings", KeyMaxStakeUnlockings, big.NewInt(16)},
	{"DelegateStakeTransferPeriod", KeyDelegateStakeTransferPeriod, big.NewInt(100)},

	{"BaseRewardPerMB", KeyBaseRewardPerMB, Tokens(1_000_000)},
	{"DelegateStakeRewardsPercentage", KeyDelegateStakeRewardsPercentage, big.NewInt(100_000_000)},
	{"ValidatorRewardPercentage", KeyValidatorRewardPercentage, big.NewInt(50_000_000)},
	{"BaseSlashPercentage", KeyBaseSlashPercentage, big.NewInt(31_250_000)},
	{"MaxSlashAmount", KeyMaxSlashAmount, Tokens(1_000)},
	{"MinAttestationPercentage", KeyMinAttestationPercentage, big.NewInt(660_000_000)},
	{"MinVastMajorityAttestationPercentage", KeyMinVastMajorityAttestationPercentage, big.NewInt(875_000_000)},
	{"NodePenaltyAttestationThreshold", KeyNodePenaltyAttestationThreshold, big.NewInt(500_000_000)},
	{"MaxSubnetNodePenalties", KeyMaxSubnetNodePenalties, big.NewInt(3)},
	{"MaxSubnetPenaltyCount", KeyMaxSubnetPenaltyCount, big.NewInt(16)},
	{"RegisteredNodeGraceEpochs", KeyRegisteredNodeGraceEpochs, big.NewInt(4)},
	{"NewValidatorBaseScore", KeyNewValidatorBaseScore, big.NewInt(500_000_000)},
	{"SlashDecayEpochs", KeySlashDecayEpochs, big.NewInt(16)},
	{"ConsecutiveBonusPercentage", KeyConsecutiveBonusPercentage, big.NewInt(10_000_000)},
	{"MaxConsecutiveBonus", KeyMaxConsecutiveBonus, big.NewInt(10)},

	{"ProposalBidAmount", KeyProposalBidAmount, Tokens(100)},
	{"ChallengePeriod", KeyChallengePeriod, big.NewInt(300)},
	{"VotingPeriod", KeyVotingPeriod, big.NewInt(600)},
	{"ProposalQuorum", KeyProposalQuorum, big.NewInt(750_000_000)},
	{"ProposalConsensusThreshold", KeyProposalConsensusThreshold, big.NewInt(660_000_000)},
	{"MinProposalNodes", KeyMinProposalNodes, big.NewInt(3)},
}

// ParamByName looks up a governance param by its name.
func ParamByName(name string) (Param, bool) {
	for _, p := range DefaultParams {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}
