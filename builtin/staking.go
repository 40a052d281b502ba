// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/hayotensor/hypertensor/builtin/delegate"
	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/builtin/stake"
	"github.com/hayotensor/hypertensor/events"
	"github.com/hayotensor/hypertensor/tensor"
)

// AddToStake deposits more stake for a node of the subnet.
func (n *Network) AddToStake(caller tensor.Address, block uint32, id tensor.SubnetID, amount *big.Int) error {
	return n.call("add_to_stake", func(p *params.Values) error {
		if _, err := n.subnets.Lookup(id); err != nil {
			return err
		}
		if _, err := n.subnets.LookupNode(id, caller); err != nil {
			return err
		}
		if err := n.stakes.CheckRateLimit(caller, block, p.TxRateLimit); err != nil {
			return err
		}
		if err := n.stakes.Add(caller, id, amount, p); err != nil {
			return err
		}
		if err := n.pay(caller, tensor.StakeCustody, amount); err != nil {
			return err
		}
		if err := n.stakes.RecordTx(caller, block); err != nil {
			return err
		}
		n.emit(&events.StakeAdded{Header: events.For(id), Account: caller, Amount: new(big.Int).Set(amount)})
		return nil
	})
}

// RemoveStake queues amount of caller's stake for unbonding. A live node must keep
// the minimum stake; stake of removed nodes and subnets can be fully withdrawn.
func (n *Network) RemoveStake(caller tensor.Address, block uint32, id tensor.SubnetID, amount *big.Int) error {
	return n.call("remove_stake", func(p *params.Values) error {
		if err := n.stakes.CheckRateLimit(caller, block, p.TxRateLimit); err != nil {
			return err
		}
		node, err := n.subnets.GetNode(id, caller)
		if err != nil {
			return err
		}
		epoch := tensor.EpochOf(block, p.EpochLength)
		if err := n.stakes.Remove(caller, id, amount, epoch, node.Exists(), p); err != nil {
			return err
		}
		if err := n.stakes.RecordTx(caller, block); err != nil {
			return err
		}
		n.emit(&events.StakeRemoved{Header: events.For(id), Account: caller, Amount: new(big.Int).Set(amount)})
		return nil
	})
}

// ClaimStakeUnbondings pays out matured stake unbondings and returns how many were claimed.
func (n *Network) ClaimStakeUnbondings(caller tensor.Address, block uint32, id tensor.SubnetID) (count int, err error) {
	err = n.call("claim_stake_unbondings", func(p *params.Values) error {
		total, claimed, err := n.stakes.Claim(caller, id, tensor.EpochOf(block, p.EpochLength), p.StakeCooldownEpochs)
		if err != nil {
			return err
		}
		if claimed == 0 {
			return stake.ErrNoStakeUnbondingsOrCooldownNotMet
		}
		if err := n.pay(tensor.StakeCustody, caller, total); err != nil {
			return err
		}
		n.emit(&events.StakeUnbondingsClaimed{Header: events.For(id), Account: caller, Amount: total, Entries: claimed})
		count = claimed
		return nil
	})
	if err != nil {
		count = 0
	}
	return
}

// AddToDelegateStake deposits amount into the subnet pool and returns the minted shares.
func (n *Network) AddToDelegateStake(caller tensor.Address, block uint32, id tensor.SubnetID, amount *big.Int) (shares *big.Int, err error) {
	err = n.call("add_to_delegate_stake", func(p *params.Values) error {
		if _, err := n.subnets.Lookup(id); err != nil {
			return err
		}
		if err := n.stakes.CheckRateLimit(caller, block, p.TxRateLimit); err != nil {
			return err
		}
		minted, err := n.delegates.Deposit(caller, id, amount, p)
		if err != nil {
			return err
		}
		if err := n.pay(caller, tensor.DelegateCustody, amount); err != nil {
			return err
		}
		if err := n.stakes.RecordTx(caller, block); err != nil {
			return err
		}
		shares = minted
		n.emit(&events.DelegateStakeAdded{
			Header:  events.For(id),
			Account: caller,
			Amount:  new(big.Int).Set(amount),
			Shares:  new(big.Int).Set(minted),
		})
		return nil
	})
	if err != nil {
		shares = nil
	}
	return
}

// RemoveDelegateStake burns shares and queues their balance for unbonding.
// It works after the subnet was removed.
func (n *Network) RemoveDelegateStake(caller tensor.Address, block uint32, id tensor.SubnetID, shares *big.Int) (balance *big.Int, err error) {
	err = n.call("remove_delegate_stake", func(p *params.Values) error {
		if err := n.stakes.CheckRateLimit(caller, block, p.TxRateLimit); err != nil {
			return err
		}
		released, err := n.delegates.Withdraw(caller, id, shares, tensor.EpochOf(block, p.EpochLength), p)
		if err != nil {
			return err
		}
		if err := n.stakes.RecordTx(caller, block); err != nil {
			return err
		}
		balance = released
		n.emit(&events.DelegateStakeRemoved{
			Header:  events.For(id),
			Account: caller,
			Amount:  new(big.Int).Set(released),
			Shares:  new(big.Int).Set(shares),
		})
		return nil
	})
	if err != nil {
		balance = nil
	}
	return
}

// ClaimDelegateStakeUnbondings pays out matured delegate unbondings.
func (n *Network) ClaimDelegateStakeUnbondings(caller tensor.Address, block uint32, id tensor.SubnetID) (count int, err error) {
	err = n.call("claim_delegate_stake_unbondings", func(p *params.Values) error {
		total, claimed, err := n.delegates.Claim(caller, id, tensor.EpochOf(block, p.EpochLength), p.DelegateStakeCooldownEpochs)
		if err != nil {
			return err
		}
		if claimed == 0 {
			return delegate.ErrNoDelegateStakeUnbondingsOrCooldownNotMet
		}
		if err := n.pay(tensor.DelegateCustody, caller, total); err != nil {
			return err
		}
		n.emit(&events.DelegateUnbondingsClaimed{Header: events.For(id), Account: caller, Amount: total, Entries: claimed})
		count = claimed
		return nil
	})
	if err != nil {
		count = 0
	}
	return
}

// TransferDelegateStake moves caller's shares from one pool to another without unbonding.
func (n *Network) TransferDelegateStake(caller tensor.Address, block uint32, from, to tensor.SubnetID, shares *big.Int) error {
	return n.call("transfer_delegate_stake", func(p *params.Values) error {
		if _, err := n.subnets.Lookup(to); err != nil {
			return err
		}
		balance, minted, err := n.delegates.Transfer(caller, from, to, shares, block, p)
		if err != nil {
			return err
		}
		n.emit(&events.DelegateStakeTransferred{
			Header:   events.For(from),
			Account:  caller,
			ToSubnet: to,
			Amount:   balance,
			Shares:   minted,
		})
		return nil
	})
}

// IncreaseDelegateStake donates amount to the pool, raising the value of every share.
func (n *Network) IncreaseDelegateStake(caller tensor.Address, block uint32, id tensor.SubnetID, amount *big.Int) error {
	return n.call("increase_delegate_stake", func(p *params.Values) error {
		if _, err := n.subnets.Lookup(id); err != nil {
			return err
		}
		if err := n.delegates.Increase(id, amount); err != nil {
			return err
		}
		if err := n.pay(caller, tensor.DelegateCustody, amount); err != nil {
			return err
		}
		n.emit(&events.DelegateStakeIncreased{Header: events.For(id), Account: caller, Amount: new(big.Int).Set(amount)})
		return nil
	})
}
