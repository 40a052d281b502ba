// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package proposal

import (
	"math/big"
	"slices"

	"github.com/hayotensor/hypertensor/tensor"
)

type Vote uint8

const (
	Yay Vote = iota + 1
	Nay
)

func (v Vote) String() string {
	switch v {
	case Yay:
		return "Yay"
	case Nay:
		return "Nay"
	}
	return "Invalid"
}

// Outcome is how a proposal ended.
type Outcome uint8

const (
	OutcomePending Outcome = iota
	OutcomeUnchallenged
	OutcomePlaintiffWon
	OutcomeDefendantWon
	OutcomeQuorumNotMet
	OutcomeNoConsensus
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnchallenged:
		return "Unchallenged"
	case OutcomePlaintiffWon:
		return "PlaintiffWon"
	case OutcomeDefendantWon:
		return "DefendantWon"
	case OutcomeQuorumNotMet:
		return "QuorumNotMet"
	case OutcomeNoConsensus:
		return "NoConsensus"
	case OutcomeCancelled:
		return "Cancelled"
	}
	return "Pending"
}

// Proposal is a bonded accusation of one node by another.
type Proposal struct {
	ID             tensor.ProposalID
	SubnetID       tensor.SubnetID
	Plaintiff      tensor.Address
	Defendant      tensor.Address
	PlaintiffBond  *big.Int
	DefendantBond  *big.Int
	EligibleVoters []tensor.Address
	Yay            []tensor.Address
	Nay            []tensor.Address
	StartBlock     uint32
	ChallengeBlock uint32
	PlaintiffData  []byte
	DefendantData  []byte
	Complete       bool
	Outcome        Outcome
}

func (p *Proposal) Exists() bool {
	return p.ID != 0
}

func (p *Proposal) Challenged() bool {
	return p.ChallengeBlock != 0
}

// Posted is the sum of bonds held in escrow for the proposal.
func (p *Proposal) Posted() *big.Int {
	posted := new(big.Int)
	if p.PlaintiffBond != nil {
		posted.Add(posted, p.PlaintiffBond)
	}
	if p.DefendantBond != nil {
		posted.Add(posted, p.DefendantBond)
	}
	return posted
}

// CanVote reports whether account was a submittable non-party node at creation.
func (p *Proposal) CanVote(account tensor.Address) bool {
	if account == p.Plaintiff || account == p.Defendant {
		return false
	}
	return slices.Contains(p.EligibleVoters, account)
}

func (p *Proposal) HasVoted(account tensor.Address) bool {
	return slices.Contains(p.Yay, account) || slices.Contains(p.Nay, account)
}

// EligibleCount is the number of voters excluding the parties.
func (p *Proposal) EligibleCount() int {
	n := 0
	for _, v := range p.EligibleVoters {
		if v != p.Plaintiff && v != p.Defendant {
			n++
		}
	}
	return n
}

// Payout is an amount released from escrow to an account.
type Payout struct {
	Account tensor.Address
	Amount  *big.Int
}

// Resolution is the result of finalizing a proposal.
type Resolution struct {
	Outcome        Outcome
	Payouts        []Payout
	EvictDefendant bool
}

// Total sums every payout.
func (r *Resolution) Total() *big.Int {
	total := new(big.Int)
	for _, p := range r.Payouts {
		total.Add(total, p.Amount)
	}
	return total
}
