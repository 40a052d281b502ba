// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/hayotensor/hypertensor/builtin/consensus"
	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/builtin/subnet"
	"github.com/hayotensor/hypertensor/events"
	"github.com/hayotensor/hypertensor/percent"
	"github.com/hayotensor/hypertensor/tensor"
)

func minSubnetDelegateStake(sn *subnet.Subnet, p *params.Values) *big.Int {
	base := new(big.Int).Mul(big.NewInt(int64(sn.MinNodes)), p.MinStakeBalance)
	return percent.Mul(base, p.MinSubnetDelegateStakeFactor)
}

// RegisterSubnet registers a new subnet, charging the registration fee to caller.
func (n *Network) RegisterSubnet(caller tensor.Address, block uint32, path string, memoryMB uint64, window uint32) (id tensor.SubnetID, err error) {
	err = n.call("register_subnet", func(p *params.Values) error {
		sn, err := n.subnets.Register(caller, block, path, memoryMB, window, p)
		if err != nil {
			return err
		}
		if err := n.pay(caller, tensor.RewardVault, p.SubnetRegistrationFee); err != nil {
			return err
		}
		id = sn.ID
		n.emit(&events.SubnetRegistered{
			Header:   events.For(sn.ID),
			Owner:    caller,
			Path:     sn.Path,
			MemoryMB: sn.MemoryMB,
		})
		logger.Info("subnet registered", "subnet", sn.ID, "path", sn.Path, "owner", caller, "minNodes", sn.MinNodes)
		return nil
	})
	return
}

// ActivateSubnet turns a registering subnet active once its registration window closed.
// A subnet that missed its enactment window or its minimums is removed instead and
// the call still succeeds.
func (n *Network) ActivateSubnet(caller tensor.Address, block uint32, id tensor.SubnetID) error {
	return n.call("activate_subnet", func(p *params.Values) error {
		sn, err := n.subnets.Lookup(id)
		if err != nil {
			return err
		}
		if sn.IsActive() {
			return subnet.ErrSubnetActivatedAlready
		}
		if uint64(block) > sn.EnactmentEnd(p.SubnetActivationEnactmentBlocks) {
			return n.deactivate(sn, block, subnet.ReasonEnactmentPeriod, p)
		}
		if uint64(block) <= sn.RegistrationEnd() {
			return subnet.ErrSubnetRegistrationPeriodNotOver
		}
		count, err := n.subnets.NodeCount(id)
		if err != nil {
			return err
		}
		if count < uint64(sn.MinNodes) {
			return n.deactivate(sn, block, subnet.ReasonMinSubnetNodes, p)
		}
		pool, err := n.delegates.Pool(id)
		if err != nil {
			return err
		}
		if pool.TotalBalance.Cmp(minSubnetDelegateStake(sn, p)) < 0 {
			return n.deactivate(sn, block, subnet.ReasonMinSubnetDelegateStake, p)
		}

		if err := n.subnets.Activate(sn, block); err != nil {
			return err
		}
		n.emit(&events.SubnetActivated{Header: events.For(id), Block: block})
		logger.Info("subnet activated", "subnet", id, "block", block, "by", caller)

		epoch := tensor.EpochOf(block, p.EpochLength)
		return n.chooseValidator(sn, epoch+1, block, p)
	})
}

// RemoveSubnet removes a subnet that fails one of its standing conditions.
// Anyone may call it; it fails when every condition still holds.
func (n *Network) RemoveSubnet(caller tensor.Address, block uint32, id tensor.SubnetID) error {
	return n.call("remove_subnet", func(p *params.Values) error {
		sn, err := n.subnets.Lookup(id)
		if err != nil {
			return err
		}
		reason, err := n.failedCondition(sn, block, p)
		if err != nil {
			return err
		}
		if reason == 0 {
			return subnet.ErrInvalidSubnetRemoval
		}
		logger.Debug("removing subnet", "subnet", id, "reason", reason, "by", caller)
		return n.deactivate(sn, block, reason, p)
	})
}

// DeactivateSubnet removes the subnet at path. Governance uses it with
// ReasonDemocracy or ReasonCouncil.
func (n *Network) DeactivateSubnet(block uint32, path string, reason subnet.DeactivationReason) error {
	return n.call("deactivate_subnet", func(p *params.Values) error {
		id, err := n.subnets.IDByPath(path)
		if err != nil {
			return err
		}
		sn, err := n.subnets.Lookup(id)
		if err != nil {
			return err
		}
		return n.deactivate(sn, block, reason, p)
	})
}

// failedCondition returns the first standing condition the subnet no longer meets, or zero.
func (n *Network) failedCondition(sn *subnet.Subnet, block uint32, p *params.Values) (subnet.DeactivationReason, error) {
	if !sn.IsActive() && uint64(block) > sn.EnactmentEnd(p.SubnetActivationEnactmentBlocks) {
		return subnet.ReasonEnactmentPeriod, nil
	}
	penalties, err := n.subnets.SubnetPenalties(sn.ID)
	if err != nil {
		return 0, err
	}
	if penalties > p.MaxSubnetPenaltyCount {
		return subnet.ReasonMaxPenalties, nil
	}
	if !sn.IsActive() {
		return 0, nil
	}
	count, err := n.subnets.NodeCount(sn.ID)
	if err != nil {
		return 0, err
	}
	if count < uint64(sn.MinNodes) {
		return subnet.ReasonMinSubnetNodes, nil
	}
	pool, err := n.delegates.Pool(sn.ID)
	if err != nil {
		return 0, err
	}
	if pool.TotalBalance.Cmp(minSubnetDelegateStake(sn, p)) < 0 {
		return subnet.ReasonMinSubnetDelegateStake, nil
	}
	return 0, nil
}

// deactivate purges every record keyed by the subnet. Stake and delegate shares
// survive so their holders can unbond.
func (n *Network) deactivate(sn *subnet.Subnet, block uint32, reason subnet.DeactivationReason, p *params.Values) error {
	epoch := tensor.EpochOf(block, p.EpochLength)

	var nodes []*subnet.Node
	if err := n.subnets.IterNodes(sn.ID, func(node *subnet.Node) error {
		nodes = append(nodes, node)
		return nil
	}); err != nil {
		return err
	}
	for _, node := range nodes {
		if err := n.removeNode(sn.ID, node, epoch, subnet.RemovalSubnetRemoved); err != nil {
			return err
		}
	}

	epochs := []uint32{epoch, epoch + 1}
	if epoch > 0 {
		epochs = append(epochs, epoch-1)
	}
	n.consensus.Purge(sn.ID, epochs...)

	refunds, err := n.proposals.Purge(sn.ID)
	if err != nil {
		return err
	}
	for _, r := range refunds {
		if err := n.pay(tensor.ProposalEscrow, r.Account, r.Amount); err != nil {
			return err
		}
	}

	if err := n.subnets.Delete(sn); err != nil {
		return err
	}
	n.emit(&events.SubnetDeactivated{
		Header: events.For(sn.ID),
		Path:   sn.Path,
		Reason: reason.String(),
	})
	metricSubnetDeactivation().AddWithLabel(1, map[string]string{"reason": reason.String()})
	logger.Warn("subnet deactivated", "subnet", sn.ID, "path", sn.Path, "reason", reason)
	return nil
}

// chooseValidator picks the validator of epoch among the subnet's submittable nodes,
// keeping an existing choice.
func (n *Network) chooseValidator(sn *subnet.Subnet, epoch, block uint32, p *params.Values) error {
	chosen, err := n.consensus.Validator(sn.ID, epoch)
	if err != nil {
		return err
	}
	if !chosen.IsZero() {
		return nil
	}

	nodes, err := n.subnets.NodesWithClass(sn.ID, subnet.ClassSubmittable, epoch)
	if err != nil {
		return err
	}
	candidates := make([]consensus.Candidate, 0, len(nodes))
	for _, node := range nodes {
		stats, err := n.consensus.Stats(sn.ID, node.Account)
		if err != nil {
			return err
		}
		candidates = append(candidates, consensus.Candidate{
			Account: node.Account,
			Score:   consensus.Score(stats, epoch, p),
		})
	}

	validator, ok := consensus.Choose(candidates, n.host.Random, consensus.Seed(sn.ID, epoch, block))
	if !ok {
		logger.Debug("no validator candidates", "subnet", sn.ID, "epoch", epoch)
		return nil
	}
	if err := n.consensus.SetValidator(sn.ID, epoch, validator); err != nil {
		return err
	}
	n.emit(&events.ValidatorChosen{Header: events.For(sn.ID), Epoch: epoch, Validator: validator})
	return nil
}
