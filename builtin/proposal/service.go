// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package proposal

import (
	"math/big"

	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/builtin/storage"
	"github.com/hayotensor/hypertensor/log"
	"github.com/hayotensor/hypertensor/percent"
	"github.com/hayotensor/hypertensor/tensor"
)

var logger = log.WithContext("pkg", "proposal")

var (
	slotProposals  = storage.Slot("proposals")
	slotNextID     = storage.Slot("proposal-next-id")
	slotPlaintiffs = storage.Slot("proposal-plaintiffs")
	slotDefendants = storage.Slot("proposal-defendants")
	slotSubnetList = storage.Slot("proposal-subnet-list")
)

type partyKey = storage.Pair[tensor.SubnetID, tensor.Address]

// Service stores proposals and resolves their bonds. Escrow transfers are up to the caller.
type Service struct {
	sctx       *storage.Context
	proposals  *storage.Mapping[tensor.ProposalID, *Proposal]
	nextID     *storage.Raw[uint32]
	plaintiffs *storage.Mapping[partyKey, tensor.ProposalID]
	defendants *storage.Mapping[partyKey, tensor.ProposalID]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		sctx:       sctx,
		proposals:  storage.NewMapping[tensor.ProposalID, *Proposal](sctx, slotProposals),
		nextID:     storage.NewRaw[uint32](sctx, slotNextID),
		plaintiffs: storage.NewMapping[partyKey, tensor.ProposalID](sctx, slotPlaintiffs),
		defendants: storage.NewMapping[partyKey, tensor.ProposalID](sctx, slotDefendants),
	}
}

func (s *Service) subnetList(subnet tensor.SubnetID) *storage.LinkedList[tensor.ProposalID] {
	return storage.NewLinkedList[tensor.ProposalID](s.sctx, tensor.Blake2b(slotSubnetList[:], subnet.Bytes()))
}

// Get returns the proposal, empty when unknown.
func (s *Service) Get(id tensor.ProposalID) (*Proposal, error) {
	return s.proposals.Get(id)
}

// Lookup returns an open proposal of the subnet.
func (s *Service) Lookup(subnet tensor.SubnetID, id tensor.ProposalID) (*Proposal, error) {
	p, err := s.proposals.Get(id)
	if err != nil {
		return nil, err
	}
	if !p.Exists() || p.SubnetID != subnet {
		return nil, ErrProposalNotExist
	}
	if p.Complete {
		return nil, ErrProposalComplete
	}
	return p, nil
}

// IDs lists the proposals of the subnet in creation order.
func (s *Service) IDs(subnet tensor.SubnetID) ([]tensor.ProposalID, error) {
	return s.subnetList(subnet).All()
}

// ActiveAs returns the open proposal where account is plaintiff and where it is defendant.
func (s *Service) ActiveAs(subnet tensor.SubnetID, account tensor.Address) (plaintiff, defendant tensor.ProposalID, err error) {
	key := storage.NewPair(subnet, account)
	if plaintiff, err = s.plaintiffs.Get(key); err != nil {
		return
	}
	defendant, err = s.defendants.Get(key)
	return
}

// Create stores a new proposal. The caller has already escrowed bond.
func (s *Service) Create(
	subnet tensor.SubnetID,
	plaintiff, defendant tensor.Address,
	bond *big.Int,
	voters []tensor.Address,
	block uint32,
	data []byte,
) (*Proposal, error) {
	if plaintiff == defendant {
		return nil, ErrPlaintiffIsDefendant
	}
	asPlaintiff, _, err := s.ActiveAs(subnet, plaintiff)
	if err != nil {
		return nil, err
	}
	if asPlaintiff != 0 {
		return nil, ErrPlaintiffHasActiveProposal
	}
	_, asDefendant, err := s.ActiveAs(subnet, defendant)
	if err != nil {
		return nil, err
	}
	if asDefendant != 0 {
		return nil, ErrDefendantHasActiveProposal
	}

	last, err := s.nextID.Get()
	if err != nil {
		return nil, err
	}
	if err := s.nextID.Set(last + 1); err != nil {
		return nil, err
	}
	p := &Proposal{
		ID:             tensor.ProposalID(last + 1),
		SubnetID:       subnet,
		Plaintiff:      plaintiff,
		Defendant:      defendant,
		PlaintiffBond:  new(big.Int).Set(bond),
		DefendantBond:  new(big.Int),
		EligibleVoters: voters,
		StartBlock:     block,
		PlaintiffData:  data,
	}
	if err := s.proposals.Set(p.ID, p); err != nil {
		return nil, err
	}
	if err := s.plaintiffs.Set(storage.NewPair(subnet, plaintiff), p.ID); err != nil {
		return nil, err
	}
	if err := s.defendants.Set(storage.NewPair(subnet, defendant), p.ID); err != nil {
		return nil, err
	}
	if err := s.subnetList(subnet).Add(p.ID); err != nil {
		return nil, err
	}
	logger.Debug("proposal created", "subnet", subnet, "id", p.ID, "plaintiff", plaintiff, "defendant", defendant)
	return p, nil
}

// Challenge records the defendant's answer and matching bond.
func (s *Service) Challenge(p *Proposal, caller tensor.Address, block uint32, data []byte, pv *params.Values) error {
	if caller != p.Defendant {
		return ErrNotDefendant
	}
	if p.Challenged() {
		return ErrProposalChallenged
	}
	if uint64(block) > uint64(p.StartBlock)+uint64(pv.ChallengePeriod) {
		return ErrChallengePeriodPassed
	}
	p.ChallengeBlock = block
	p.DefendantBond = new(big.Int).Set(p.PlaintiffBond)
	p.DefendantData = data
	return s.proposals.Set(p.ID, p)
}

// CastVote records a vote of an eligible voter.
func (s *Service) CastVote(p *Proposal, voter tensor.Address, vote Vote, block uint32, pv *params.Values) error {
	if vote != Yay && vote != Nay {
		return ErrInvalidVote
	}
	if !p.Challenged() {
		return ErrProposalUnchallenged
	}
	if uint64(block) > uint64(p.ChallengeBlock)+uint64(pv.VotingPeriod) {
		return ErrVotingPeriodPassed
	}
	if !p.CanVote(voter) {
		return ErrNotEligibleVoter
	}
	if p.HasVoted(voter) {
		return ErrAlreadyVoted
	}
	if vote == Yay {
		p.Yay = append(p.Yay, voter)
	} else {
		p.Nay = append(p.Nay, voter)
	}
	return s.proposals.Set(p.ID, p)
}

// Cancel withdraws an unchallenged proposal and returns the plaintiff refund.
func (s *Service) Cancel(p *Proposal, caller tensor.Address) (*Resolution, error) {
	if caller != p.Plaintiff {
		return nil, ErrNotPlaintiff
	}
	if p.Challenged() {
		return nil, ErrProposalChallenged
	}
	res := &Resolution{
		Outcome: OutcomeCancelled,
		Payouts: []Payout{{p.Plaintiff, new(big.Int).Set(p.PlaintiffBond)}},
	}
	return res, s.complete(p, res.Outcome)
}

// Finalize resolves a proposal whose challenge or voting window has closed.
func (s *Service) Finalize(p *Proposal, block uint32, pv *params.Values) (*Resolution, error) {
	if !p.Challenged() {
		if uint64(block) <= uint64(p.StartBlock)+uint64(pv.ChallengePeriod) {
			return nil, ErrChallengePeriodNotOver
		}
		res := &Resolution{
			Outcome:        OutcomeUnchallenged,
			Payouts:        []Payout{{p.Plaintiff, new(big.Int).Set(p.PlaintiffBond)}},
			EvictDefendant: true,
		}
		return res, s.complete(p, res.Outcome)
	}
	if uint64(block) <= uint64(p.ChallengeBlock)+uint64(pv.VotingPeriod) {
		return nil, ErrVotingPeriodNotOver
	}

	res := tally(p, pv)
	return res, s.complete(p, res.Outcome)
}

func tally(p *Proposal, pv *params.Values) *Resolution {
	refund := func(outcome Outcome) *Resolution {
		return &Resolution{
			Outcome: outcome,
			Payouts: []Payout{
				{p.Plaintiff, new(big.Int).Set(p.PlaintiffBond)},
				{p.Defendant, new(big.Int).Set(p.DefendantBond)},
			},
		}
	}

	yay, nay := uint64(len(p.Yay)), uint64(len(p.Nay))
	cast := yay + nay
	eligible := uint64(p.EligibleCount())
	if eligible == 0 || cast == 0 || percent.DivUint64(cast, eligible) < pv.ProposalQuorum {
		return refund(OutcomeQuorumNotMet)
	}

	var (
		winner       tensor.Address
		winnerBond   *big.Int
		losingBond   *big.Int
		winnerVoters []tensor.Address
		outcome      Outcome
	)
	switch {
	case percent.DivUint64(yay, cast) >= pv.ProposalConsensusThreshold:
		winner, winnerBond, losingBond, winnerVoters, outcome = p.Plaintiff, p.PlaintiffBond, p.DefendantBond, p.Yay, OutcomePlaintiffWon
	case percent.DivUint64(nay, cast) >= pv.ProposalConsensusThreshold:
		winner, winnerBond, losingBond, winnerVoters, outcome = p.Defendant, p.DefendantBond, p.PlaintiffBond, p.Nay, OutcomeDefendantWon
	default:
		return refund(OutcomeNoConsensus)
	}

	n := big.NewInt(int64(len(winnerVoters) + 1))
	share, dust := new(big.Int).QuoRem(losingBond, n, new(big.Int))

	res := &Resolution{
		Outcome:        outcome,
		EvictDefendant: outcome == OutcomePlaintiffWon,
	}
	winnerTotal := new(big.Int).Add(winnerBond, share)
	res.Payouts = append(res.Payouts, Payout{winner, winnerTotal.Add(winnerTotal, dust)})
	for _, v := range winnerVoters {
		res.Payouts = append(res.Payouts, Payout{v, new(big.Int).Set(share)})
	}
	return res
}

func (s *Service) complete(p *Proposal, outcome Outcome) error {
	p.Complete = true
	p.Outcome = outcome
	s.clearParties(p)
	logger.Debug("proposal complete", "subnet", p.SubnetID, "id", p.ID, "outcome", outcome)
	return s.proposals.Set(p.ID, p)
}

func (s *Service) clearParties(p *Proposal) {
	s.plaintiffs.Delete(storage.NewPair(p.SubnetID, p.Plaintiff))
	s.defendants.Delete(storage.NewPair(p.SubnetID, p.Defendant))
}

// Purge deletes every proposal of the subnet and returns the bonds still in
// escrow for incomplete ones.
func (s *Service) Purge(subnet tensor.SubnetID) ([]Payout, error) {
	var refunds []Payout
	list := s.subnetList(subnet)
	err := list.Iter(func(id tensor.ProposalID) error {
		p, err := s.proposals.Get(id)
		if err != nil {
			return err
		}
		if p.Exists() && !p.Complete {
			refunds = append(refunds, Payout{p.Plaintiff, new(big.Int).Set(p.PlaintiffBond)})
			if p.DefendantBond.Sign() > 0 {
				refunds = append(refunds, Payout{p.Defendant, new(big.Int).Set(p.DefendantBond)})
			}
			s.clearParties(p)
		}
		s.proposals.Delete(id)
		return list.Remove(id)
	})
	return refunds, err
}
