// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"math/big"

	"github.com/hayotensor/hypertensor/builtin/storage"
	"github.com/hayotensor/hypertensor/log"
	"github.com/hayotensor/hypertensor/tensor"
)

var logger = log.WithContext("pkg", "consensus")

var (
	slotValidators  = storage.Slot("consensus-validators")
	slotSubmissions = storage.Slot("consensus-submissions")
	slotStats       = storage.Slot("consensus-validator-stats")
)

type (
	epochKey = storage.Pair[tensor.SubnetID, storage.Uint32]
	statsKey = storage.Pair[tensor.SubnetID, tensor.Address]
)

func newEpochKey(subnet tensor.SubnetID, epoch uint32) epochKey {
	return storage.NewPair(subnet, storage.Uint32(epoch))
}

// Service stores chosen validators, their submissions and validator statistics.
type Service struct {
	validators  *storage.Mapping[epochKey, tensor.Address]
	submissions *storage.Mapping[epochKey, *Submission]
	stats       *storage.Mapping[statsKey, *ValidatorStats]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		validators:  storage.NewMapping[epochKey, tensor.Address](sctx, slotValidators),
		submissions: storage.NewMapping[epochKey, *Submission](sctx, slotSubmissions),
		stats:       storage.NewMapping[statsKey, *ValidatorStats](sctx, slotStats),
	}
}

// Validator returns the validator chosen for the subnet epoch, or zero.
func (s *Service) Validator(subnet tensor.SubnetID, epoch uint32) (tensor.Address, error) {
	return s.validators.Get(newEpochKey(subnet, epoch))
}

// SetValidator records the validator of the subnet epoch.
func (s *Service) SetValidator(subnet tensor.SubnetID, epoch uint32, validator tensor.Address) error {
	logger.Debug("validator chosen", "subnet", subnet, "epoch", epoch, "validator", validator)
	return s.validators.Set(newEpochKey(subnet, epoch), validator)
}

// Submission returns the submission of the subnet epoch, empty when none was made.
func (s *Service) Submission(subnet tensor.SubnetID, epoch uint32) (*Submission, error) {
	return s.submissions.Get(newEpochKey(subnet, epoch))
}

// Submit stores the validator's scores. Entries are de-duplicated by peer id,
// first wins, and peers outside included are dropped. The validator attests its own submission.
func (s *Service) Submit(
	subnet tensor.SubnetID,
	epoch uint32,
	block uint32,
	validator tensor.Address,
	data []NodeScore,
	included map[tensor.PeerID]bool,
) (*Submission, error) {
	key := newEpochKey(subnet, epoch)
	existing, err := s.submissions.Get(key)
	if err != nil {
		return nil, err
	}
	if existing.Exists() {
		return nil, ErrSubmissionExists
	}

	sub := &Submission{
		Validator:   validator,
		SumOfScores: new(big.Int),
		Attests:     []Attest{{Account: validator, Block: block}},
		Block:       block,
	}
	seen := make(map[tensor.PeerID]bool, len(data))
	for _, d := range data {
		if d.Score == nil || d.Score.Sign() < 0 {
			return nil, ErrInvalidScore
		}
		if seen[d.PeerID] || !included[d.PeerID] {
			continue
		}
		seen[d.PeerID] = true
		sub.Data = append(sub.Data, NodeScore{PeerID: d.PeerID, Score: new(big.Int).Set(d.Score)})
		sub.SumOfScores.Add(sub.SumOfScores, d.Score)
	}
	if err := s.submissions.Set(key, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Attest records account's attestation of the epoch submission.
func (s *Service) Attest(subnet tensor.SubnetID, epoch uint32, block uint32, account tensor.Address) error {
	key := newEpochKey(subnet, epoch)
	sub, err := s.submissions.Get(key)
	if err != nil {
		return err
	}
	if !sub.Exists() {
		return ErrSubmissionNotExist
	}
	if sub.HasAttested(account) {
		return ErrAlreadyAttested
	}
	sub.Attests = append(sub.Attests, Attest{Account: account, Block: block})
	return s.submissions.Set(key, sub)
}

// RemoveAttestation drops account's attestation of the epoch submission, if any.
func (s *Service) RemoveAttestation(subnet tensor.SubnetID, epoch uint32, account tensor.Address) error {
	key := newEpochKey(subnet, epoch)
	sub, err := s.submissions.Get(key)
	if err != nil || !sub.Exists() {
		return err
	}
	kept := sub.Attests[:0]
	for _, a := range sub.Attests {
		if a.Account != account {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(sub.Attests) {
		return nil
	}
	sub.Attests = kept
	return s.submissions.Set(key, sub)
}

// Purge deletes the validator choice and submission of each given epoch.
func (s *Service) Purge(subnet tensor.SubnetID, epochs ...uint32) {
	for _, epoch := range epochs {
		key := newEpochKey(subnet, epoch)
		s.validators.Delete(key)
		s.submissions.Delete(key)
	}
}

// Stats returns the validator statistics of account in the subnet.
func (s *Service) Stats(subnet tensor.SubnetID, account tensor.Address) (*ValidatorStats, error) {
	return s.stats.Get(storage.NewPair(subnet, account))
}

// DeleteStats forgets account's validator statistics.
func (s *Service) DeleteStats(subnet tensor.SubnetID, account tensor.Address) {
	s.stats.Delete(storage.NewPair(subnet, account))
}

// RecordSuccess counts a successful validation and extends the streak.
func (s *Service) RecordSuccess(subnet tensor.SubnetID, account tensor.Address) error {
	stats, err := s.Stats(subnet, account)
	if err != nil {
		return err
	}
	stats.Validations++
	stats.Successes++
	stats.Consecutive++
	return s.stats.Set(storage.NewPair(subnet, account), stats)
}

// RecordSlash counts a failed validation, breaks the streak and marks the slash epoch.
func (s *Service) RecordSlash(subnet tensor.SubnetID, account tensor.Address, epoch uint32) error {
	stats, err := s.Stats(subnet, account)
	if err != nil {
		return err
	}
	stats.Validations++
	stats.Consecutive = 0
	stats.Slashed = true
	stats.LastSlashEpoch = epoch
	return s.stats.Set(storage.NewPair(subnet, account), stats)
}
