// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subnets

import (
	"encoding/hex"

	"github.com/hayotensor/hypertensor/builtin/consensus"
	"github.com/hayotensor/hypertensor/builtin/proposal"
	"github.com/hayotensor/hypertensor/builtin/subnet"
	"github.com/hayotensor/hypertensor/builtin/unbonding"
	"github.com/hayotensor/hypertensor/tensor"
)

type Subnet struct {
	ID                 tensor.SubnetID `json:"id"`
	Path               string          `json:"path"`
	Owner              tensor.Address  `json:"owner"`
	MemoryMB           uint64          `json:"memoryMb"`
	MinNodes           uint32          `json:"minNodes"`
	TargetNodes        uint32          `json:"targetNodes"`
	InitializedBlock   uint32          `json:"initializedBlock"`
	RegistrationWindow uint32          `json:"registrationWindow"`
	ActivatedBlock     uint32          `json:"activatedBlock"`
	Active             bool            `json:"active"`
	Penalties          uint32          `json:"penalties"`
	TotalStake         *tensor.Amount  `json:"totalStake"`
	MinDelegateStake   *tensor.Amount  `json:"minDelegateStake"`
}

type Node struct {
	Account          tensor.Address `json:"account"`
	Hotkey           tensor.Address `json:"hotkey"`
	PeerID           tensor.PeerID  `json:"peerId"`
	Class            string         `json:"class"`
	StartEpoch       uint32         `json:"startEpoch"`
	InitializedBlock uint32         `json:"initializedBlock"`
	Penalties        uint32         `json:"penalties"`
	Stake            *tensor.Amount `json:"stake"`
	Meta             []string       `json:"meta,omitempty"`
}

func convertNode(n *subnet.Node) *Node {
	node := &Node{
		Account:          n.Account,
		Hotkey:           n.Hotkey,
		PeerID:           n.PeerID,
		Class:            n.Class.String(),
		StartEpoch:       n.StartEpoch,
		InitializedBlock: n.InitializedBlock,
	}
	for _, m := range [][]byte{n.MetaA, n.MetaB, n.MetaC} {
		if len(m) > 0 {
			node.Meta = append(node.Meta, hex.EncodeToString(m))
		}
	}
	return node
}

type Unbonding struct {
	Epoch  uint32         `json:"epoch"`
	Amount *tensor.Amount `json:"amount"`
}

func convertUnbondings(l *unbonding.Ledger) []Unbonding {
	out := make([]Unbonding, 0, len(l.Entries))
	for _, e := range l.Entries {
		out = append(out, Unbonding{e.Epoch, tensor.NewAmount(e.Amount)})
	}
	return out
}

type Stake struct {
	Account    tensor.Address  `json:"account"`
	Subnet     tensor.SubnetID `json:"subnet"`
	Stake      *tensor.Amount  `json:"stake"`
	Unbondings []Unbonding     `json:"unbondings"`
}

type Pool struct {
	TotalShares  *tensor.Amount `json:"totalShares"`
	TotalBalance *tensor.Amount `json:"totalBalance"`
}

type Delegate struct {
	Account    tensor.Address  `json:"account"`
	Subnet     tensor.SubnetID `json:"subnet"`
	Shares     *tensor.Amount  `json:"shares"`
	Balance    *tensor.Amount  `json:"balance"`
	Unbondings []Unbonding     `json:"unbondings"`
}

type Score struct {
	PeerID tensor.PeerID  `json:"peerId"`
	Score  *tensor.Amount `json:"score"`
}

type Attest struct {
	Account tensor.Address `json:"account"`
	Block   uint32         `json:"block"`
}

type Submission struct {
	Epoch       uint32         `json:"epoch"`
	Validator   tensor.Address `json:"validator"`
	Submitted   bool           `json:"submitted"`
	Block       uint32         `json:"block,omitempty"`
	SumOfScores *tensor.Amount `json:"sumOfScores,omitempty"`
	Data        []Score        `json:"data,omitempty"`
	Attests     []Attest       `json:"attests,omitempty"`
}

func convertSubmission(epoch uint32, validator tensor.Address, s *consensus.Submission) *Submission {
	sub := &Submission{Epoch: epoch, Validator: validator}
	if !s.Exists() {
		return sub
	}
	sub.Submitted = true
	sub.Block = s.Block
	sub.SumOfScores = tensor.NewAmount(s.SumOfScores)
	for _, d := range s.Data {
		sub.Data = append(sub.Data, Score{d.PeerID, tensor.NewAmount(d.Score)})
	}
	for _, a := range s.Attests {
		sub.Attests = append(sub.Attests, Attest{a.Account, a.Block})
	}
	return sub
}

type Proposal struct {
	ID             tensor.ProposalID `json:"id"`
	Subnet         tensor.SubnetID   `json:"subnet"`
	Plaintiff      tensor.Address    `json:"plaintiff"`
	Defendant      tensor.Address    `json:"defendant"`
	PlaintiffBond  *tensor.Amount    `json:"plaintiffBond"`
	DefendantBond  *tensor.Amount    `json:"defendantBond"`
	EligibleVoters []tensor.Address  `json:"eligibleVoters"`
	Yay            []tensor.Address  `json:"yay"`
	Nay            []tensor.Address  `json:"nay"`
	StartBlock     uint32            `json:"startBlock"`
	ChallengeBlock uint32            `json:"challengeBlock"`
	Complete       bool              `json:"complete"`
	Outcome        string            `json:"outcome"`
}

func convertProposal(p *proposal.Proposal) *Proposal {
	return &Proposal{
		ID:             p.ID,
		Subnet:         p.SubnetID,
		Plaintiff:      p.Plaintiff,
		Defendant:      p.Defendant,
		PlaintiffBond:  tensor.NewAmount(p.PlaintiffBond),
		DefendantBond:  tensor.NewAmount(p.DefendantBond),
		EligibleVoters: p.EligibleVoters,
		Yay:            p.Yay,
		Nay:            p.Nay,
		StartBlock:     p.StartBlock,
		ChallengeBlock: p.ChallengeBlock,
		Complete:       p.Complete,
		Outcome:        p.Outcome.String(),
	}
}
