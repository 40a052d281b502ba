// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events defines the observable events of the network.
package events

import (
	"math/big"

	"github.com/hayotensor/hypertensor/tensor"
)

// Event is emitted by a successful operation or by the block hook.
type Event interface {
	Name() string
	Subnet() tensor.SubnetID
}

// Emitter receives events.
type Emitter interface {
	Emit(ev Event)
}

// EmitFunc adapts a function to Emitter.
type EmitFunc func(ev Event)

func (f EmitFunc) Emit(ev Event) { f(ev) }

// Buffer holds events until they are flushed.
type Buffer struct {
	events []Event
}

func (b *Buffer) Emit(ev Event) {
	b.events = append(b.events, ev)
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Truncate drops the events buffered after the first n.
func (b *Buffer) Truncate(n int) {
	b.events = b.events[:n]
}

// Flush forwards buffered events in order and empties the buffer.
func (b *Buffer) Flush(to Emitter) {
	for _, ev := range b.events {
		to.Emit(ev)
	}
	b.events = b.events[:0]
}

// Recorder keeps every event it receives.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Emit(ev Event) {
	r.Events = append(r.Events, ev)
}

// Named returns recorded events with the given name.
func (r *Recorder) Named(name string) []Event {
	var out []Event
	for _, ev := range r.Events {
		if ev.Name() == name {
			out = append(out, ev)
		}
	}
	return out
}

// Reset forgets recorded events.
func (r *Recorder) Reset() {
	r.Events = nil
}

// Header carries the subnet an event belongs to.
type Header struct {
	SubnetID tensor.SubnetID `json:"subnetId"`
}

func (e Header) Subnet() tensor.SubnetID { return e.SubnetID }

type (
	SubnetRegistered struct {
		Header
		Owner    tensor.Address `json:"owner"`
		Path     string         `json:"path"`
		MemoryMB uint64         `json:"memoryMb"`
	}
	SubnetActivated struct {
		Header
		Block uint32 `json:"block"`
	}
	SubnetDeactivated struct {
		Header
		Path   string `json:"path"`
		Reason string `json:"reason"`
	}
	SubnetNodeAdded struct {
		Header
		Account tensor.Address `json:"account"`
		Hotkey  tensor.Address `json:"hotkey"`
		PeerID  tensor.PeerID  `json:"peerId"`
		Stake   *big.Int       `json:"stake"`
	}
	SubnetNodeActivated struct {
		Header
		Account tensor.Address `json:"account"`
	}
	SubnetNodeDeactivated struct {
		Header
		Account tensor.Address `json:"account"`
	}
	SubnetNodeRemoved struct {
		Header
		Account tensor.Address `json:"account"`
		Reason  string         `json:"reason"`
	}
	SubnetNodeClassUpdated struct {
		Header
		Account    tensor.Address `json:"account"`
		Class      string         `json:"class"`
		StartEpoch uint32         `json:"startEpoch"`
	}
	StakeAdded struct {
		Header
		Account tensor.Address `json:"account"`
		Amount  *big.Int       `json:"amount"`
	}
	StakeRemoved struct {
		Header
		Account tensor.Address `json:"account"`
		Amount  *big.Int       `json:"amount"`
	}
	StakeUnbondingsClaimed struct {
		Header
		Account tensor.Address `json:"account"`
		Amount  *big.Int       `json:"amount"`
		Entries int            `json:"entries"`
	}
	DelegateStakeAdded struct {
		Header
		Account tensor.Address `json:"account"`
		Amount  *big.Int       `json:"amount"`
		Shares  *big.Int       `json:"shares"`
	}
	DelegateStakeRemoved struct {
		Header
		Account tensor.Address `json:"account"`
		Amount  *big.Int       `json:"amount"`
		Shares  *big.Int       `json:"shares"`
	}
	DelegateStakeTransferred struct {
		Header
		Account  tensor.Address  `json:"account"`
		ToSubnet tensor.SubnetID `json:"toSubnet"`
		Amount   *big.Int        `json:"amount"`
		Shares   *big.Int        `json:"shares"`
	}
	DelegateStakeIncreased struct {
		Header
		Account tensor.Address `json:"account"`
		Amount  *big.Int       `json:"amount"`
	}
	DelegateUnbondingsClaimed struct {
		Header
		Account tensor.Address `json:"account"`
		Amount  *big.Int       `json:"amount"`
		Entries int            `json:"entries"`
	}
	ValidatorChosen struct {
		Header
		Epoch     uint32         `json:"epoch"`
		Validator tensor.Address `json:"validator"`
	}
	ValidatorSubmission struct {
		Header
		Epoch     uint32         `json:"epoch"`
		Validator tensor.Address `json:"validator"`
		Nodes     int            `json:"nodes"`
	}
	Attestation struct {
		Header
		Epoch   uint32         `json:"epoch"`
		Account tensor.Address `json:"account"`
	}
	RewardsDistributed struct {
		Header
		Epoch    uint32   `json:"epoch"`
		Nodes    *big.Int `json:"nodes"`
		Delegate *big.Int `json:"delegate"`
	}
	Slashed struct {
		Header
		Epoch   uint32         `json:"epoch"`
		Account tensor.Address `json:"account"`
		Amount  *big.Int       `json:"amount"`
	}
	SubnetPenalized struct {
		Header
		Epoch   uint32 `json:"epoch"`
		Penalty uint32 `json:"penalty"`
	}
	ProposalCreated struct {
		Header
		ProposalID tensor.ProposalID `json:"proposalId"`
		Plaintiff  tensor.Address    `json:"plaintiff"`
		Defendant  tensor.Address    `json:"defendant"`
	}
	ProposalChallenged struct {
		Header
		ProposalID tensor.ProposalID `json:"proposalId"`
	}
	ProposalVote struct {
		Header
		ProposalID tensor.ProposalID `json:"proposalId"`
		Voter      tensor.Address    `json:"voter"`
		Vote       string            `json:"vote"`
	}
	ProposalCancelled struct {
		Header
		ProposalID tensor.ProposalID `json:"proposalId"`
	}
	ProposalFinalized struct {
		Header
		ProposalID tensor.ProposalID `json:"proposalId"`
		Outcome    string            `json:"outcome"`
	}
)

func (SubnetRegistered) Name() string          { return "SubnetRegistered" }
func (SubnetActivated) Name() string           { return "SubnetActivated" }
func (SubnetDeactivated) Name() string         { return "SubnetDeactivated" }
func (SubnetNodeAdded) Name() string           { return "SubnetNodeAdded" }
func (SubnetNodeActivated) Name() string       { return "SubnetNodeActivated" }
func (SubnetNodeDeactivated) Name() string     { return "SubnetNodeDeactivated" }
func (SubnetNodeRemoved) Name() string         { return "SubnetNodeRemoved" }
func (SubnetNodeClassUpdated) Name() string    { return "SubnetNodeClassUpdated" }
func (StakeAdded) Name() string                { return "StakeAdded" }
func (StakeRemoved) Name() string              { return "StakeRemoved" }
func (StakeUnbondingsClaimed) Name() string    { return "StakeUnbondingsClaimed" }
func (DelegateStakeAdded) Name() string        { return "DelegateStakeAdded" }
func (DelegateStakeRemoved) Name() string      { return "DelegateStakeRemoved" }
func (DelegateStakeTransferred) Name() string  { return "DelegateStakeTransferred" }
func (DelegateStakeIncreased) Name() string    { return "DelegateStakeIncreased" }
func (DelegateUnbondingsClaimed) Name() string { return "DelegateUnbondingsClaimed" }
func (ValidatorChosen) Name() string           { return "ValidatorChosen" }
func (ValidatorSubmission) Name() string       { return "ValidatorSubmission" }
func (Attestation) Name() string               { return "Attestation" }
func (RewardsDistributed) Name() string        { return "RewardsDistributed" }
func (Slashed) Name() string                   { return "Slashed" }
func (SubnetPenalized) Name() string           { return "SubnetPenalized" }
func (ProposalCreated) Name() string           { return "ProposalCreated" }
func (ProposalChallenged) Name() string        { return "ProposalChallenged" }
func (ProposalVote) Name() string              { return "ProposalVote" }
func (ProposalCancelled) Name() string         { return "ProposalCancelled" }
func (ProposalFinalized) Name() string         { return "ProposalFinalized" }

// For builds the embedded subnet header of an event.
func For(id tensor.SubnetID) Header {
	return Header{SubnetID: id}
}
