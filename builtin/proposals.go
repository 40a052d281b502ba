// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/hayotensor/hypertensor/builtin/consensus"
	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/builtin/proposal"
	"github.com/hayotensor/hypertensor/builtin/subnet"
	"github.com/hayotensor/hypertensor/events"
	"github.com/hayotensor/hypertensor/tensor"
)

// Propose accuses the node owning defendantPeer, escrowing the proposal bond.
func (n *Network) Propose(caller tensor.Address, block uint32, id tensor.SubnetID, defendantPeer tensor.PeerID, data []byte) (pid tensor.ProposalID, err error) {
	err = n.call("propose", func(p *params.Values) error {
		sn, err := n.subnets.Lookup(id)
		if err != nil {
			return err
		}
		epoch := tensor.EpochOf(block, p.EpochLength)
		plaintiff, err := n.subnets.GetNode(id, caller)
		if err != nil {
			return err
		}
		if !plaintiff.HasClass(subnet.ClassSubmittable, epoch) {
			return consensus.ErrSubnetNodeNotSubmittable
		}
		defendant, err := n.subnets.AccountByPeer(id, defendantPeer)
		if err != nil {
			return err
		}
		if defendant.IsZero() {
			return subnet.ErrSubnetNodeNotExist
		}
		if defendant == caller {
			return proposal.ErrPlaintiffIsDefendant
		}
		count, err := n.subnets.NodeCount(id)
		if err != nil {
			return err
		}
		if count < uint64(sn.MinNodes) || count < uint64(p.MinProposalNodes) {
			return proposal.ErrSubnetMinNodesNotMet
		}

		nodes, err := n.subnets.NodesWithClass(id, subnet.ClassSubmittable, epoch)
		if err != nil {
			return err
		}
		voters := make([]tensor.Address, 0, len(nodes))
		for _, node := range nodes {
			voters = append(voters, node.Account)
		}
		prop, err := n.proposals.Create(id, caller, defendant, p.ProposalBidAmount, voters, block, data)
		if err != nil {
			return err
		}
		if err := n.pay(caller, tensor.ProposalEscrow, prop.PlaintiffBond); err != nil {
			return err
		}
		pid = prop.ID
		n.emit(&events.ProposalCreated{
			Header:     events.For(id),
			ProposalID: prop.ID,
			Plaintiff:  caller,
			Defendant:  defendant,
		})
		return nil
	})
	if err != nil {
		pid = 0
	}
	return
}

// ChallengeProposal lets the defendant answer, escrowing a bond equal to the plaintiff's.
func (n *Network) ChallengeProposal(caller tensor.Address, block uint32, id tensor.SubnetID, pid tensor.ProposalID, data []byte) error {
	return n.call("challenge_proposal", func(p *params.Values) error {
		prop, err := n.proposals.Lookup(id, pid)
		if err != nil {
			return err
		}
		if err := n.proposals.Challenge(prop, caller, block, data, p); err != nil {
			return err
		}
		if err := n.pay(caller, tensor.ProposalEscrow, prop.DefendantBond); err != nil {
			return err
		}
		n.emit(&events.ProposalChallenged{Header: events.For(id), ProposalID: pid})
		return nil
	})
}

// Vote casts caller's vote on a challenged proposal.
func (n *Network) Vote(caller tensor.Address, block uint32, id tensor.SubnetID, pid tensor.ProposalID, vote proposal.Vote) error {
	return n.call("vote", func(p *params.Values) error {
		prop, err := n.proposals.Lookup(id, pid)
		if err != nil {
			return err
		}
		if err := n.proposals.CastVote(prop, caller, vote, block, p); err != nil {
			return err
		}
		n.emit(&events.ProposalVote{Header: events.For(id), ProposalID: pid, Voter: caller, Vote: vote.String()})
		return nil
	})
}

// CancelProposal withdraws an unchallenged proposal and refunds the plaintiff.
func (n *Network) CancelProposal(caller tensor.Address, block uint32, id tensor.SubnetID, pid tensor.ProposalID) error {
	return n.call("cancel_proposal", func(p *params.Values) error {
		prop, err := n.proposals.Lookup(id, pid)
		if err != nil {
			return err
		}
		res, err := n.proposals.Cancel(prop, caller)
		if err != nil {
			return err
		}
		if err := n.settle(res); err != nil {
			return err
		}
		n.emit(&events.ProposalCancelled{Header: events.For(id), ProposalID: pid})
		return nil
	})
}

// FinalizeProposal resolves a proposal whose window closed. Anyone may call it.
func (n *Network) FinalizeProposal(caller tensor.Address, block uint32, id tensor.SubnetID, pid tensor.ProposalID) (outcome proposal.Outcome, err error) {
	err = n.call("finalize_proposal", func(p *params.Values) error {
		prop, err := n.proposals.Lookup(id, pid)
		if err != nil {
			return err
		}
		res, err := n.proposals.Finalize(prop, block, p)
		if err != nil {
			return err
		}
		if err := n.settle(res); err != nil {
			return err
		}
		if res.EvictDefendant {
			node, err := n.subnets.GetNode(id, prop.Defendant)
			if err != nil {
				return err
			}
			if node.Exists() {
				if err := n.removeNode(id, node, tensor.EpochOf(block, p.EpochLength), subnet.RemovalDispute); err != nil {
					return err
				}
			}
		}
		outcome = res.Outcome
		n.emit(&events.ProposalFinalized{Header: events.For(id), ProposalID: pid, Outcome: res.Outcome.String()})
		logger.Info("proposal finalized", "subnet", id, "id", pid, "outcome", res.Outcome, "by", caller)
		return nil
	})
	if err != nil {
		outcome = proposal.OutcomePending
	}
	return
}

// settle pays a resolution out of escrow.
func (n *Network) settle(res *proposal.Resolution) error {
	for _, payout := range res.Payouts {
		if err := n.pay(tensor.ProposalEscrow, payout.Account, payout.Amount); err != nil {
			return err
		}
	}
	return nil
}
