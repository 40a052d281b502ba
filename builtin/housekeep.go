// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"
	"time"

	"github.com/hayotensor/hypertensor/builtin/consensus"
	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/builtin/subnet"
	"github.com/hayotensor/hypertensor/events"
	"github.com/hayotensor/hypertensor/tensor"
)

// EpochTransition is the plan of a reward pass, computed read-only and applied in one go.
type EpochTransition struct {
	Epoch   uint32
	Subnets []*SubnetTransition
}

// SubnetTransition holds what happens to one subnet at the end of an epoch.
type SubnetTransition struct {
	Subnet      tensor.SubnetID
	Validator   tensor.Address
	Attestation uint64

	Penalize bool
	Slash    bool
	Reward   bool

	NodeEmission     *big.Int
	DelegateEmission *big.Int
	Nodes            []*NodeTransition
}

// NodeTransition holds what happens to one node at the end of an epoch.
type NodeTransition struct {
	Account  tensor.Address
	Expire   bool
	Promote  subnet.Class
	Penalize bool
	Reward   *big.Int
}

// OnInitialize is the per-block hook. The second block of an epoch settles the
// previous epoch, the third prepares the current one. It returns the number of
// subnets processed; an error means the state is corrupted and the host should halt.
func (n *Network) OnInitialize(block uint32) (processed int, err error) {
	err = n.call("on_initialize", func(p *params.Values) error {
		if p.EpochLength == 0 {
			return nil
		}
		epoch := tensor.EpochOf(block, p.EpochLength)
		switch block % p.EpochLength {
		case 1:
			if epoch == 0 {
				return nil
			}
			start := time.Now()
			plan, err := n.computeEpochTransition(epoch-1, p)
			if err != nil {
				return err
			}
			if err := n.applyEpochTransition(plan, block, p); err != nil {
				return err
			}
			processed = len(plan.Subnets)
			metricEpochPassDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"pass": "rewards"})
		case 2:
			start := time.Now()
			count, err := n.prepareEpoch(epoch, block, p)
			if err != nil {
				return err
			}
			processed = count
			metricEpochPassDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"pass": "preliminaries"})
		}
		return nil
	})
	if err != nil {
		processed = 0
	}
	return
}

// prepareEpoch removes subnets that no longer meet their conditions and chooses
// the validator of epoch for the rest.
func (n *Network) prepareEpoch(epoch, block uint32, p *params.Values) (int, error) {
	ids, err := n.subnets.IDs()
	if err != nil {
		return 0, err
	}
	active := 0
	for _, id := range ids {
		sn, err := n.subnets.Get(id)
		if err != nil {
			return 0, err
		}
		reason, err := n.failedCondition(sn, block, p)
		if err != nil {
			return 0, err
		}
		if reason != 0 {
			if err := n.deactivate(sn, block, reason, p); err != nil {
				return 0, err
			}
			continue
		}
		if !sn.IsActive() {
			continue
		}
		active++
		if err := n.chooseValidator(sn, epoch, block, p); err != nil {
			return 0, err
		}
	}
	metricActiveSubnets().Set(int64(active))
	return len(ids), nil
}

// computeEpochTransition decides rewards, penalties and class changes for epoch
// without touching state.
func (n *Network) computeEpochTransition(epoch uint32, p *params.Values) (*EpochTransition, error) {
	plan := &EpochTransition{Epoch: epoch}

	ids, err := n.subnets.IDs()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		sn, err := n.subnets.Get(id)
		if err != nil {
			return nil, err
		}
		if !sn.IsActive() {
			continue
		}
		st, err := n.computeSubnetTransition(sn, epoch, p)
		if err != nil {
			return nil, err
		}
		if st != nil {
			plan.Subnets = append(plan.Subnets, st)
		}
	}
	return plan, nil
}

func (n *Network) computeSubnetTransition(sn *subnet.Subnet, epoch uint32, p *params.Values) (*SubnetTransition, error) {
	validator, err := n.consensus.Validator(sn.ID, epoch)
	if err != nil {
		return nil, err
	}
	if validator.IsZero() {
		return nil, nil
	}
	st := &SubnetTransition{Subnet: sn.ID, Validator: validator}

	sub, err := n.consensus.Submission(sn.ID, epoch)
	if err != nil {
		return nil, err
	}
	if !sub.Exists() {
		st.Penalize, st.Slash = true, true
		return st, nil
	}

	submittable, err := n.subnets.NodesWithClass(sn.ID, subnet.ClassSubmittable, epoch)
	if err != nil {
		return nil, err
	}
	st.Attestation = consensus.AttestationPercentage(len(sub.Attests), len(submittable))

	if len(sub.Data) < int(sn.MinNodes) {
		st.Penalize = true
		st.Slash = st.Attestation < p.MinVastMajorityAttestationPercentage
		return st, nil
	}
	if st.Attestation < p.MinAttestationPercentage {
		st.Penalize, st.Slash = true, true
		return st, nil
	}

	st.Reward = true
	_, st.NodeEmission, st.DelegateEmission = consensus.Emissions(sn.MemoryMB, p)

	err = n.subnets.IterNodes(sn.ID, func(node *subnet.Node) error {
		nt, err := n.computeNodeTransition(sn.ID, node, sub, st, epoch, p)
		if err != nil {
			return err
		}
		if nt != nil {
			st.Nodes = append(st.Nodes, nt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (n *Network) computeNodeTransition(
	id tensor.SubnetID,
	node *subnet.Node,
	sub *consensus.Submission,
	st *SubnetTransition,
	epoch uint32,
	p *params.Values,
) (*NodeTransition, error) {
	nt := &NodeTransition{Account: node.Account}

	switch {
	case node.Class == subnet.ClassRegistered:
		if uint64(node.StartEpoch)+uint64(p.RegisteredNodeGraceEpochs) < uint64(epoch) {
			nt.Expire = true
			return nt, nil
		}
		return nil, nil
	case node.Class == subnet.ClassIdle:
		if node.StartEpoch <= epoch {
			nt.Promote = subnet.ClassIncluded
			return nt, nil
		}
		return nil, nil
	case !node.HasClass(subnet.ClassIncluded, epoch):
		return nil, nil
	}

	score := sub.ScoreOf(node.PeerID)
	if score == nil {
		if st.Attestation > p.NodePenaltyAttestationThreshold {
			nt.Penalize = true
			return nt, nil
		}
		return nil, nil
	}

	penalties, err := n.subnets.NodePenalties(id, node.Account)
	if err != nil {
		return nil, err
	}
	if node.Class == subnet.ClassIncluded && penalties == 0 {
		nt.Promote = subnet.ClassSubmittable
	}

	if sub.HasAttested(node.Account) && score.Sign() > 0 {
		reward := consensus.NodeReward(st.NodeEmission, score, sub.SumOfScores)
		if node.Account == st.Validator {
			reward.Add(reward, consensus.ValidatorBonus(st.NodeEmission, st.Attestation, p))
		}
		nt.Reward = reward
	}

	if nt.Promote == subnet.ClassUnknown && nt.Reward == nil {
		return nil, nil
	}
	return nt, nil
}

// applyEpochTransition writes a plan computed for the epoch before the one containing block.
func (n *Network) applyEpochTransition(plan *EpochTransition, block uint32, p *params.Values) error {
	current := tensor.EpochOf(block, p.EpochLength)
	for _, st := range plan.Subnets {
		if st.Penalize {
			count, err := n.subnets.IncreaseSubnetPenalties(st.Subnet)
			if err != nil {
				return err
			}
			n.emit(&events.SubnetPenalized{Header: events.For(st.Subnet), Epoch: plan.Epoch, Penalty: count})
		}
		if st.Slash {
			if err := n.slashValidator(st, plan.Epoch, current, p); err != nil {
				return err
			}
		}
		if !st.Reward {
			continue
		}

		paid := new(big.Int)
		for _, nt := range st.Nodes {
			reward, err := n.applyNodeTransition(st.Subnet, nt, plan.Epoch, current, p)
			if err != nil {
				return err
			}
			paid.Add(paid, reward)
		}

		delegated := new(big.Int)
		injected, err := n.delegates.InjectReward(st.Subnet, st.DelegateEmission)
		if err != nil {
			return err
		}
		if injected {
			if err := n.host.Currency.Deposit(tensor.DelegateCustody, st.DelegateEmission); err != nil {
				return err
			}
			delegated.Set(st.DelegateEmission)
		}
		if err := n.subnets.DecreaseSubnetPenalties(st.Subnet); err != nil {
			return err
		}
		validator, err := n.subnets.GetNode(st.Subnet, st.Validator)
		if err != nil {
			return err
		}
		if validator.Exists() {
			if err := n.consensus.RecordSuccess(st.Subnet, st.Validator); err != nil {
				return err
			}
		}
		n.emit(&events.RewardsDistributed{
			Header:   events.For(st.Subnet),
			Epoch:    plan.Epoch,
			Nodes:    paid,
			Delegate: delegated,
		})
		logger.Info("epoch rewarded", "subnet", st.Subnet, "epoch", plan.Epoch, "nodes", paid, "delegate", delegated, "attestation", st.Attestation)
	}
	return nil
}

func (n *Network) applyNodeTransition(id tensor.SubnetID, nt *NodeTransition, epoch, current uint32, p *params.Values) (*big.Int, error) {
	paid := new(big.Int)
	node, err := n.subnets.GetNode(id, nt.Account)
	if err != nil {
		return nil, err
	}
	if !node.Exists() {
		return paid, nil
	}

	if nt.Expire {
		return paid, n.removeNode(id, node, current, subnet.RemovalRegistrationExpired)
	}
	if nt.Penalize {
		evicted, err := n.penalizeNode(id, node, current, p)
		if err != nil || evicted {
			return paid, err
		}
	}
	if nt.Promote != subnet.ClassUnknown {
		if err := n.subnets.SetClass(id, node, nt.Promote, epoch+1); err != nil {
			return nil, err
		}
		n.emit(&events.SubnetNodeClassUpdated{
			Header:     events.For(id),
			Account:    node.Account,
			Class:      nt.Promote.String(),
			StartEpoch: epoch + 1,
		})
	}
	if nt.Reward != nil && nt.Reward.Sign() > 0 {
		if err := n.host.Currency.Deposit(tensor.StakeCustody, nt.Reward); err != nil {
			return nil, err
		}
		if err := n.stakes.Reward(node.Account, id, nt.Reward); err != nil {
			return nil, err
		}
		if err := n.subnets.DecreaseNodePenalties(id, node.Account); err != nil {
			return nil, err
		}
		paid.Set(nt.Reward)
	}
	return paid, nil
}

// penalizeNode adds a penalty and evicts the node once it exceeds the ceiling.
func (n *Network) penalizeNode(id tensor.SubnetID, node *subnet.Node, current uint32, p *params.Values) (bool, error) {
	count, err := n.subnets.IncreaseNodePenalties(id, node.Account)
	if err != nil {
		return false, err
	}
	if count <= p.MaxSubnetNodePenalties {
		return false, nil
	}
	return true, n.removeNode(id, node, current, subnet.RemovalMaxPenalties)
}

// slashValidator burns part of the validator's stake according to the attestation reached.
func (n *Network) slashValidator(st *SubnetTransition, epoch, current uint32, p *params.Values) error {
	staked, err := n.stakes.Get(st.Validator, st.Subnet)
	if err != nil {
		return err
	}
	taken, err := n.stakes.Slash(st.Validator, st.Subnet, consensus.SlashAmount(staked, st.Attestation, p))
	if err != nil {
		return err
	}
	if err := n.burn(tensor.StakeCustody, taken); err != nil {
		return err
	}

	node, err := n.subnets.GetNode(st.Subnet, st.Validator)
	if err != nil {
		return err
	}
	if node.Exists() {
		if err := n.consensus.RecordSlash(st.Subnet, st.Validator, epoch); err != nil {
			return err
		}
		if _, err := n.penalizeNode(st.Subnet, node, current, p); err != nil {
			return err
		}
	}

	n.emit(&events.Slashed{Header: events.For(st.Subnet), Epoch: epoch, Account: st.Validator, Amount: taken})
	metricSlashes().Add(1)
	logger.Warn("validator slashed", "subnet", st.Subnet, "epoch", epoch, "validator", st.Validator, "amount", taken, "attestation", st.Attestation)
	return nil
}
