// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/hayotensor/hypertensor/builtin/consensus"
	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/builtin/subnet"
	"github.com/hayotensor/hypertensor/events"
	"github.com/hayotensor/hypertensor/tensor"
)

// Validate stores the chosen validator's scores for the current epoch.
func (n *Network) Validate(caller tensor.Address, block uint32, id tensor.SubnetID, data []consensus.NodeScore) error {
	return n.call("validate", func(p *params.Values) error {
		if _, err := n.subnets.LookupActive(id); err != nil {
			return err
		}
		epoch := tensor.EpochOf(block, p.EpochLength)
		validator, err := n.consensus.Validator(id, epoch)
		if err != nil {
			return err
		}
		if validator.IsZero() {
			return consensus.ErrNoValidatorChosen
		}
		if caller != validator {
			return consensus.ErrInvalidValidator
		}

		nodes, err := n.subnets.NodesWithClass(id, subnet.ClassIncluded, epoch)
		if err != nil {
			return err
		}
		included := make(map[tensor.PeerID]bool, len(nodes))
		for _, node := range nodes {
			included[node.PeerID] = true
		}
		sub, err := n.consensus.Submit(id, epoch, block, caller, data, included)
		if err != nil {
			return err
		}
		n.emit(&events.ValidatorSubmission{
			Header:    events.For(id),
			Epoch:     epoch,
			Validator: caller,
			Nodes:     len(sub.Data),
		})
		logger.Debug("validator submitted", "subnet", id, "epoch", epoch, "nodes", len(sub.Data), "sum", sub.SumOfScores)
		return nil
	})
}

// Attest records caller's agreement with the current epoch submission.
func (n *Network) Attest(caller tensor.Address, block uint32, id tensor.SubnetID) error {
	return n.call("attest", func(p *params.Values) error {
		if _, err := n.subnets.LookupActive(id); err != nil {
			return err
		}
		epoch := tensor.EpochOf(block, p.EpochLength)
		sub, err := n.consensus.Submission(id, epoch)
		if err != nil {
			return err
		}
		if !sub.Exists() {
			return consensus.ErrSubmissionNotExist
		}
		node, err := n.subnets.GetNode(id, caller)
		if err != nil {
			return err
		}
		if !node.HasClass(subnet.ClassSubmittable, epoch) {
			return consensus.ErrSubnetNodeNotSubmittable
		}
		if err := n.consensus.Attest(id, epoch, block, caller); err != nil {
			return err
		}
		n.emit(&events.Attestation{Header: events.For(id), Epoch: epoch, Account: caller})
		return nil
	})
}
