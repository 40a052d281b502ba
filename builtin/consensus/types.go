// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"math/big"

	"github.com/hayotensor/hypertensor/tensor"
)

// NodeScore is the validator's score for one node.
type NodeScore struct {
	PeerID tensor.PeerID
	Score  *big.Int
}

// Attest is a recorded attestation.
type Attest struct {
	Account tensor.Address
	Block   uint32
}

// Submission is the consensus data a validator posted for an epoch.
type Submission struct {
	Validator   tensor.Address
	Data        []NodeScore
	SumOfScores *big.Int
	Attests     []Attest
	Block       uint32
}

func (s *Submission) Exists() bool {
	return !s.Validator.IsZero()
}

// HasAttested reports whether account attested the submission.
func (s *Submission) HasAttested(account tensor.Address) bool {
	for _, a := range s.Attests {
		if a.Account == account {
			return true
		}
	}
	return false
}

// ScoreOf returns the score assigned to peer, or nil when it was not scored.
func (s *Submission) ScoreOf(peer tensor.PeerID) *big.Int {
	for _, d := range s.Data {
		if d.PeerID == peer {
			return d.Score
		}
	}
	return nil
}

// ValidatorStats tracks how a node performed as validator.
type ValidatorStats struct {
	Validations    uint32
	Successes      uint32
	Consecutive    uint32
	LastSlashEpoch uint32
	Slashed        bool
}
