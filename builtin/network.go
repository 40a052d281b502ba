// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/builtin/consensus"
	"github.com/hayotensor/hypertensor/builtin/delegate"
	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/builtin/proposal"
	"github.com/hayotensor/hypertensor/builtin/reverts"
	"github.com/hayotensor/hypertensor/builtin/stake"
	"github.com/hayotensor/hypertensor/builtin/storage"
	"github.com/hayotensor/hypertensor/builtin/subnet"
	"github.com/hayotensor/hypertensor/builtin/unbonding"
	"github.com/hayotensor/hypertensor/events"
	"github.com/hayotensor/hypertensor/log"
	"github.com/hayotensor/hypertensor/state"
	"github.com/hayotensor/hypertensor/tensor"
)

var logger = log.WithContext("pkg", "network")

// ErrNotEnoughBalance is returned when the caller cannot fund a transfer.
var ErrNotEnoughBalance = reverts.New(reverts.Balance, "not enough balance")

// Network implements every state transition of the subnet economy on top of one state.
// Each exported mutating method is atomic: on error the state and the events
// of the call are rolled back.
type Network struct {
	state  *state.State
	params *params.Params
	host   Host
	buf    events.Buffer

	subnets   *subnet.Service
	stakes    *stake.Service
	delegates *delegate.Service
	consensus *consensus.Service
	proposals *proposal.Service
}

func newNetwork(addr tensor.Address, st *state.State, p *params.Params, host Host) *Network {
	sctx := storage.NewContext(addr, st)
	return &Network{
		state:  st,
		params: p,
		host:   host,

		subnets:   subnet.New(sctx),
		stakes:    stake.New(sctx),
		delegates: delegate.New(sctx),
		consensus: consensus.New(sctx),
		proposals: proposal.New(sctx),
	}
}

// call runs fn against a checkpoint of the state.
func (n *Network) call(op string, fn func(p *params.Values) error) (err error) {
	checkpoint := n.state.NewCheckpoint()
	mark := n.buf.Len()
	defer func() {
		outcome := "ok"
		if err != nil {
			n.state.RevertTo(checkpoint)
			n.buf.Truncate(mark)
			outcome = "revert"
			if !reverts.IsRevertErr(err) {
				outcome = "error"
				logger.Error("call failed", "op", op, "err", err)
			}
		} else {
			n.buf.Flush(n.host.Emitter)
		}
		metricCalls().AddWithLabel(1, map[string]string{"op": op, "outcome": outcome})
	}()

	p, err := n.params.Values()
	if err != nil {
		return err
	}
	return fn(p)
}

func (n *Network) emit(ev events.Event) {
	n.buf.Emit(ev)
}

// pay moves amount between accounts through the host currency.
func (n *Network) pay(from, to tensor.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	ok, err := n.host.Currency.Withdraw(from, amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotEnoughBalance
	}
	return n.host.Currency.Deposit(to, amount)
}

// burn destroys amount held by a protocol account.
func (n *Network) burn(from tensor.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	ok, err := n.host.Currency.Withdraw(from, amount)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("%v cannot cover burn of %v", from, amount)
	}
	return nil
}

//
// Getters - no state change
//

// Params returns a snapshot of the governance params.
func (n *Network) Params() (*params.Values, error) {
	return n.params.Values()
}

func (n *Network) Subnet(id tensor.SubnetID) (*subnet.Subnet, error) {
	return n.subnets.Lookup(id)
}

func (n *Network) SubnetIDs() ([]tensor.SubnetID, error) {
	return n.subnets.IDs()
}

func (n *Network) SubnetIDByPath(path string) (tensor.SubnetID, error) {
	return n.subnets.IDByPath(path)
}

func (n *Network) SubnetNode(id tensor.SubnetID, account tensor.Address) (*subnet.Node, error) {
	return n.subnets.LookupNode(id, account)
}

// SubnetNodes lists the nodes of the subnet in insertion order.
func (n *Network) SubnetNodes(id tensor.SubnetID) ([]*subnet.Node, error) {
	var nodes []*subnet.Node
	err := n.subnets.IterNodes(id, func(node *subnet.Node) error {
		nodes = append(nodes, node)
		return nil
	})
	return nodes, err
}

func (n *Network) SubnetPenaltyCount(id tensor.SubnetID) (uint32, error) {
	return n.subnets.SubnetPenalties(id)
}

func (n *Network) SubnetNodePenalties(id tensor.SubnetID, account tensor.Address) (uint32, error) {
	return n.subnets.NodePenalties(id, account)
}

func (n *Network) Stake(account tensor.Address, id tensor.SubnetID) (*big.Int, error) {
	return n.stakes.Get(account, id)
}

func (n *Network) TotalSubnetStake(id tensor.SubnetID) (*big.Int, error) {
	return n.stakes.SubnetTotal(id)
}

func (n *Network) TotalStake() (*big.Int, error) {
	return n.stakes.Total()
}

func (n *Network) StakeUnbondings(account tensor.Address, id tensor.SubnetID) (*unbonding.Ledger, error) {
	return n.stakes.Unbondings(account, id)
}

func (n *Network) LastTxBlock(account tensor.Address) (uint32, error) {
	return n.stakes.LastTxBlock(account)
}

func (n *Network) DelegatePool(id tensor.SubnetID) (*delegate.Pool, error) {
	return n.delegates.Pool(id)
}

func (n *Network) DelegateShares(account tensor.Address, id tensor.SubnetID) (*big.Int, error) {
	return n.delegates.Shares(account, id)
}

func (n *Network) DelegateBalance(account tensor.Address, id tensor.SubnetID) (*big.Int, error) {
	return n.delegates.Balance(account, id)
}

func (n *Network) DelegateUnbondings(account tensor.Address, id tensor.SubnetID) (*unbonding.Ledger, error) {
	return n.delegates.Unbondings(account, id)
}

func (n *Network) Validator(id tensor.SubnetID, epoch uint32) (tensor.Address, error) {
	return n.consensus.Validator(id, epoch)
}

func (n *Network) Submission(id tensor.SubnetID, epoch uint32) (*consensus.Submission, error) {
	return n.consensus.Submission(id, epoch)
}

func (n *Network) ValidatorStats(id tensor.SubnetID, account tensor.Address) (*consensus.ValidatorStats, error) {
	return n.consensus.Stats(id, account)
}

func (n *Network) Proposal(id tensor.ProposalID) (*proposal.Proposal, error) {
	return n.proposals.Get(id)
}

func (n *Network) ProposalIDs(id tensor.SubnetID) ([]tensor.ProposalID, error) {
	return n.proposals.IDs(id)
}

// MinSubnetDelegateStake is the pool balance a subnet needs to activate and stay active.
func (n *Network) MinSubnetDelegateStake(id tensor.SubnetID) (*big.Int, error) {
	sn, err := n.subnets.Lookup(id)
	if err != nil {
		return nil, err
	}
	p, err := n.params.Values()
	if err != nil {
		return nil, err
	}
	return minSubnetDelegateStake(sn, p), nil
}
