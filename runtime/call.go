// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/builtin"
	"github.com/hayotensor/hypertensor/builtin/consensus"
	"github.com/hayotensor/hypertensor/builtin/proposal"
	"github.com/hayotensor/hypertensor/builtin/subnet"
	"github.com/hayotensor/hypertensor/tensor"
)

// Op names an external operation.
type Op string

const (
	OpRegisterSubnet               Op = "register_subnet"
	OpActivateSubnet               Op = "activate_subnet"
	OpRemoveSubnet                 Op = "remove_subnet"
	OpDeactivateSubnet             Op = "deactivate_subnet"
	OpRegisterSubnetNode           Op = "register_subnet_node"
	OpActivateSubnetNode           Op = "activate_subnet_node"
	OpAddSubnetNode                Op = "add_subnet_node"
	OpDeactivateSubnetNode         Op = "deactivate_subnet_node"
	OpRemoveSubnetNode             Op = "remove_subnet_node"
	OpAddToStake                   Op = "add_to_stake"
	OpRemoveStake                  Op = "remove_stake"
	OpClaimStakeUnbondings         Op = "claim_stake_unbondings"
	OpAddToDelegateStake           Op = "add_to_delegate_stake"
	OpRemoveDelegateStake          Op = "remove_delegate_stake"
	OpClaimDelegateStakeUnbondings Op = "claim_delegate_stake_unbondings"
	OpTransferDelegateStake        Op = "transfer_delegate_stake"
	OpIncreaseDelegateStake        Op = "increase_delegate_stake"
	OpValidate                     Op = "validate"
	OpAttest                       Op = "attest"
	OpPropose                      Op = "propose"
	OpChallengeProposal            Op = "challenge_proposal"
	OpVote                         Op = "vote"
	OpCancelProposal               Op = "cancel_proposal"
	OpFinalizeProposal             Op = "finalize_proposal"
)

// ErrUnknownOp is returned for a call whose op is not in the catalogue.
var ErrUnknownOp = errors.New("unknown op")

// Score is one entry of a validator submission.
type Score struct {
	PeerID tensor.PeerID  `yaml:"peer_id" json:"peerId"`
	Score  *tensor.Amount `yaml:"score" json:"score"`
}

// Call is one external operation. Op selects which of the other fields are read.
type Call struct {
	Op     Op              `yaml:"op" json:"op"`
	Caller tensor.Address  `yaml:"caller" json:"caller"`
	Subnet tensor.SubnetID `yaml:"subnet,omitempty" json:"subnet,omitempty"`

	Path               string `yaml:"path,omitempty" json:"path,omitempty"`
	MemoryMB           uint64 `yaml:"memory_mb,omitempty" json:"memoryMb,omitempty"`
	RegistrationWindow uint32 `yaml:"registration_window,omitempty" json:"registrationWindow,omitempty"`
	Reason             string `yaml:"reason,omitempty" json:"reason,omitempty"`

	Hotkey tensor.Address `yaml:"hotkey,omitempty" json:"hotkey,omitempty"`
	PeerID tensor.PeerID  `yaml:"peer_id,omitempty" json:"peerId,omitempty"`
	Meta   []string       `yaml:"meta,omitempty" json:"meta,omitempty"`

	Amount   *tensor.Amount  `yaml:"amount,omitempty" json:"amount,omitempty"`
	Shares   *tensor.Amount  `yaml:"shares,omitempty" json:"shares,omitempty"`
	ToSubnet tensor.SubnetID `yaml:"to_subnet,omitempty" json:"toSubnet,omitempty"`

	Scores []Score `yaml:"scores,omitempty" json:"scores,omitempty"`

	Proposal tensor.ProposalID `yaml:"proposal,omitempty" json:"proposal,omitempty"`
	Vote     string            `yaml:"vote,omitempty" json:"vote,omitempty"`
	Data     string            `yaml:"data,omitempty" json:"data,omitempty"`
}

func (c *Call) meta(i int) []byte {
	if i < len(c.Meta) {
		return []byte(c.Meta[i])
	}
	return nil
}

func (c *Call) registration() *builtin.NodeRegistration {
	return &builtin.NodeRegistration{
		Hotkey: c.Hotkey,
		PeerID: c.PeerID,
		Stake:  c.Amount.Int(),
		MetaA:  c.meta(0),
		MetaB:  c.meta(1),
		MetaC:  c.meta(2),
	}
}

func parseReason(s string) (subnet.DeactivationReason, error) {
	switch strings.ToLower(s) {
	case "democracy":
		return subnet.ReasonDemocracy, nil
	case "council":
		return subnet.ReasonCouncil, nil
	}
	return 0, errors.Errorf("invalid deactivation reason %q", s)
}

func parseVote(s string) proposal.Vote {
	switch strings.ToLower(s) {
	case "yay", "yes":
		return proposal.Yay
	case "nay", "no":
		return proposal.Nay
	}
	return 0
}

// Apply runs the call against net at block.
func (c *Call) Apply(net *builtin.Network, block uint32) error {
	switch c.Op {
	case OpRegisterSubnet:
		_, err := net.RegisterSubnet(c.Caller, block, c.Path, c.MemoryMB, c.RegistrationWindow)
		return err
	case OpActivateSubnet:
		return net.ActivateSubnet(c.Caller, block, c.Subnet)
	case OpRemoveSubnet:
		return net.RemoveSubnet(c.Caller, block, c.Subnet)
	case OpDeactivateSubnet:
		reason, err := parseReason(c.Reason)
		if err != nil {
			return err
		}
		return net.DeactivateSubnet(block, c.Path, reason)

	case OpRegisterSubnetNode:
		return net.RegisterSubnetNode(c.Caller, block, c.Subnet, c.registration())
	case OpActivateSubnetNode:
		return net.ActivateSubnetNode(c.Caller, block, c.Subnet)
	case OpAddSubnetNode:
		return net.AddSubnetNode(c.Caller, block, c.Subnet, c.registration())
	case OpDeactivateSubnetNode:
		return net.DeactivateSubnetNode(c.Caller, block, c.Subnet)
	case OpRemoveSubnetNode:
		return net.RemoveSubnetNode(c.Caller, block, c.Subnet)

	case OpAddToStake:
		return net.AddToStake(c.Caller, block, c.Subnet, c.Amount.Int())
	case OpRemoveStake:
		return net.RemoveStake(c.Caller, block, c.Subnet, c.Amount.Int())
	case OpClaimStakeUnbondings:
		_, err := net.ClaimStakeUnbondings(c.Caller, block, c.Subnet)
		return err
	case OpAddToDelegateStake:
		_, err := net.AddToDelegateStake(c.Caller, block, c.Subnet, c.Amount.Int())
		return err
	case OpRemoveDelegateStake:
		_, err := net.RemoveDelegateStake(c.Caller, block, c.Subnet, c.Shares.Int())
		return err
	case OpClaimDelegateStakeUnbondings:
		_, err := net.ClaimDelegateStakeUnbondings(c.Caller, block, c.Subnet)
		return err
	case OpTransferDelegateStake:
		return net.TransferDelegateStake(c.Caller, block, c.Subnet, c.ToSubnet, c.Shares.Int())
	case OpIncreaseDelegateStake:
		return net.IncreaseDelegateStake(c.Caller, block, c.Subnet, c.Amount.Int())

	case OpValidate:
		data := make([]consensus.NodeScore, 0, len(c.Scores))
		for _, s := range c.Scores {
			data = append(data, consensus.NodeScore{PeerID: s.PeerID, Score: s.Score.Int()})
		}
		return net.Validate(c.Caller, block, c.Subnet, data)
	case OpAttest:
		return net.Attest(c.Caller, block, c.Subnet)

	case OpPropose:
		_, err := net.Propose(c.Caller, block, c.Subnet, c.PeerID, []byte(c.Data))
		return err
	case OpChallengeProposal:
		return net.ChallengeProposal(c.Caller, block, c.Subnet, c.Proposal, []byte(c.Data))
	case OpVote:
		return net.Vote(c.Caller, block, c.Subnet, c.Proposal, parseVote(c.Vote))
	case OpCancelProposal:
		return net.CancelProposal(c.Caller, block, c.Subnet, c.Proposal)
	case OpFinalizeProposal:
		_, err := net.FinalizeProposal(c.Caller, block, c.Subnet, c.Proposal)
		return err
	}
	return errors.Wrap(ErrUnknownOp, string(c.Op))
}
