// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/builtin/subnet"
	"github.com/hayotensor/hypertensor/events"
	"github.com/hayotensor/hypertensor/tensor"
)

// NodeRegistration is the payload of RegisterSubnetNode and AddSubnetNode.
type NodeRegistration struct {
	Hotkey tensor.Address
	PeerID tensor.PeerID
	Stake  *big.Int
	MetaA  []byte
	MetaB  []byte
	MetaC  []byte
}

// RegisterSubnetNode adds caller as a node of the subnet and deposits its stake.
// Nodes joining a registering subnet are submittable right away; after activation
// they start as registered and must activate.
func (n *Network) RegisterSubnetNode(caller tensor.Address, block uint32, id tensor.SubnetID, reg *NodeRegistration) error {
	return n.call("register_subnet_node", func(p *params.Values) error {
		_, err := n.registerNode(caller, block, id, reg, p)
		return err
	})
}

// AddSubnetNode registers and activates in one call.
func (n *Network) AddSubnetNode(caller tensor.Address, block uint32, id tensor.SubnetID, reg *NodeRegistration) error {
	return n.call("add_subnet_node", func(p *params.Values) error {
		sn, err := n.registerNode(caller, block, id, reg, p)
		if err != nil {
			return err
		}
		if !sn.IsActive() {
			return nil
		}
		return n.activateNode(caller, block, sn, p)
	})
}

func (n *Network) registerNode(caller tensor.Address, block uint32, id tensor.SubnetID, reg *NodeRegistration, p *params.Values) (*subnet.Subnet, error) {
	sn, err := n.subnets.Lookup(id)
	if err != nil {
		return nil, err
	}
	epoch := tensor.EpochOf(block, p.EpochLength)
	node := &subnet.Node{
		Account:    caller,
		Hotkey:     reg.Hotkey,
		PeerID:     reg.PeerID,
		Class:      subnet.ClassRegistered,
		StartEpoch: epoch,
		MetaA:      reg.MetaA,
		MetaB:      reg.MetaB,
		MetaC:      reg.MetaC,
	}
	if !sn.IsActive() {
		node.Class = subnet.ClassSubmittable
		node.InitializedBlock = block
	}
	if err := n.subnets.AddNode(id, node, p); err != nil {
		return nil, err
	}
	if err := n.stakes.Add(caller, id, reg.Stake, p); err != nil {
		return nil, err
	}
	if err := n.pay(caller, tensor.StakeCustody, reg.Stake); err != nil {
		return nil, err
	}
	n.emit(&events.SubnetNodeAdded{
		Header:  events.For(id),
		Account: caller,
		Hotkey:  reg.Hotkey,
		PeerID:  reg.PeerID,
		Stake:   new(big.Int).Set(reg.Stake),
	})
	logger.Debug("subnet node registered", "subnet", id, "account", caller, "peer", reg.PeerID, "class", node.Class)
	return sn, nil
}

// ActivateSubnetNode moves a registered node to idle from the next epoch.
func (n *Network) ActivateSubnetNode(caller tensor.Address, block uint32, id tensor.SubnetID) error {
	return n.call("activate_subnet_node", func(p *params.Values) error {
		sn, err := n.subnets.Lookup(id)
		if err != nil {
			return err
		}
		return n.activateNode(caller, block, sn, p)
	})
}

func (n *Network) activateNode(caller tensor.Address, block uint32, sn *subnet.Subnet, p *params.Values) error {
	node, err := n.subnets.LookupNode(sn.ID, caller)
	if err != nil {
		return err
	}
	if node.Class != subnet.ClassRegistered {
		return subnet.ErrSubnetNodeAlreadyActivated
	}
	node.InitializedBlock = block
	epoch := tensor.EpochOf(block, p.EpochLength)
	if err := n.subnets.SetClass(sn.ID, node, subnet.ClassIdle, epoch+1); err != nil {
		return err
	}
	n.emit(&events.SubnetNodeActivated{Header: events.For(sn.ID), Account: caller})
	return nil
}

// DeactivateSubnetNode pauses a node back to registered. Its stake is retained.
func (n *Network) DeactivateSubnetNode(caller tensor.Address, block uint32, id tensor.SubnetID) error {
	return n.call("deactivate_subnet_node", func(p *params.Values) error {
		if _, err := n.subnets.LookupActive(id); err != nil {
			return err
		}
		node, err := n.subnets.LookupNode(id, caller)
		if err != nil {
			return err
		}
		if node.Class <= subnet.ClassRegistered {
			return subnet.ErrSubnetNodeNotActivated
		}
		node.InitializedBlock = 0
		if err := n.subnets.SetClass(id, node, subnet.ClassRegistered, tensor.EpochOf(block, p.EpochLength)); err != nil {
			return err
		}
		n.emit(&events.SubnetNodeDeactivated{Header: events.For(id), Account: caller})
		return nil
	})
}

// RemoveSubnetNode removes caller's node. Its stake stays in the ledger for unbonding.
func (n *Network) RemoveSubnetNode(caller tensor.Address, block uint32, id tensor.SubnetID) error {
	return n.call("remove_subnet_node", func(p *params.Values) error {
		if _, err := n.subnets.Lookup(id); err != nil {
			return err
		}
		node, err := n.subnets.LookupNode(id, caller)
		if err != nil {
			return err
		}
		return n.removeNode(id, node, tensor.EpochOf(block, p.EpochLength), subnet.RemovalVoluntary)
	})
}

// removeNode is the single removal path for voluntary exits, evictions and subnet purges.
func (n *Network) removeNode(id tensor.SubnetID, node *subnet.Node, epoch uint32, reason subnet.RemovalReason) error {
	if err := n.subnets.RemoveNode(id, node); err != nil {
		return err
	}
	n.consensus.DeleteStats(id, node.Account)
	// the previous epoch stays unsettled until the second block of this one
	if err := n.consensus.RemoveAttestation(id, epoch, node.Account); err != nil {
		return err
	}
	if epoch > 0 {
		if err := n.consensus.RemoveAttestation(id, epoch-1, node.Account); err != nil {
			return err
		}
	}
	n.emit(&events.SubnetNodeRemoved{
		Header:  events.For(id),
		Account: node.Account,
		Reason:  reason.String(),
	})
	metricNodeRemovals().AddWithLabel(1, map[string]string{"reason": reason.String()})
	logger.Info("subnet node removed", "subnet", id, "account", node.Account, "reason", reason)
	return nil
}
