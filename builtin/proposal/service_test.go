// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package proposal

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/builtin/storage"
	"github.com/hayotensor/hypertensor/state"
	"github.com/hayotensor/hypertensor/tensor"
	"github.com/hayotensor/hypertensor/test/datagen"
)

type fixture struct {
	svc       *Service
	pv        *params.Values
	plaintiff tensor.Address
	defendant tensor.Address
	voters    []tensor.Address
}

func newFixture(t *testing.T, voters int) *fixture {
	f := &fixture{
		svc:       New(storage.NewContext(tensor.BytesToAddress([]byte("proposal")), state.New(nil))),
		pv:        params.Defaults(),
		plaintiff: datagen.RandAddress(),
		defendant: datagen.RandAddress(),
		voters:    datagen.RandAddresses(voters),
	}
	return f
}

func (f *fixture) create(t *testing.T, block uint32) *Proposal {
	snapshot := append([]tensor.Address{f.plaintiff, f.defendant}, f.voters...)
	p, err := f.svc.Create(1, f.plaintiff, f.defendant, f.pv.ProposalBidAmount, snapshot, block, []byte("evidence"))
	require.NoError(t, err)
	return p
}

func assertConserved(t *testing.T, p *Proposal, res *Resolution) {
	assert.Equal(t, p.Posted().String(), res.Total().String())
}

func TestService_Create(t *testing.T) {
	f := newFixture(t, 3)
	p := f.create(t, 10)
	assert.Equal(t, tensor.ProposalID(1), p.ID)
	assert.Equal(t, 3, p.EligibleCount())

	_, err := f.svc.Create(1, f.plaintiff, datagen.RandAddress(), f.pv.ProposalBidAmount, nil, 10, nil)
	assert.ErrorIs(t, err, ErrPlaintiffHasActiveProposal)
	_, err = f.svc.Create(1, datagen.RandAddress(), f.defendant, f.pv.ProposalBidAmount, nil, 10, nil)
	assert.ErrorIs(t, err, ErrDefendantHasActiveProposal)
	_, err = f.svc.Create(1, f.voters[0], f.voters[0], f.pv.ProposalBidAmount, nil, 10, nil)
	assert.ErrorIs(t, err, ErrPlaintiffIsDefendant)

	// the same parties may dispute in another subnet
	_, err = f.svc.Create(2, f.plaintiff, f.defendant, f.pv.ProposalBidAmount, nil, 10, nil)
	assert.NoError(t, err)

	_, err = f.svc.Lookup(2, p.ID)
	assert.ErrorIs(t, err, ErrProposalNotExist)
}

func TestService_UnchallengedFinalize(t *testing.T) {
	f := newFixture(t, 3)
	p := f.create(t, 10)

	_, err := f.svc.Finalize(p, 10+f.pv.ChallengePeriod, f.pv)
	assert.ErrorIs(t, err, ErrChallengePeriodNotOver)

	res, err := f.svc.Finalize(p, 11+f.pv.ChallengePeriod, f.pv)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnchallenged, res.Outcome)
	assert.True(t, res.EvictDefendant)
	assertConserved(t, p, res)

	_, err = f.svc.Lookup(1, p.ID)
	assert.ErrorIs(t, err, ErrProposalComplete)

	// parties are free again
	f.create(t, 400)
}

func TestService_ChallengeWindow(t *testing.T) {
	f := newFixture(t, 3)
	p := f.create(t, 10)

	assert.ErrorIs(t, f.svc.Challenge(p, f.plaintiff, 11, nil, f.pv), ErrNotDefendant)
	assert.ErrorIs(t, f.svc.Challenge(p, f.defendant, 11+f.pv.ChallengePeriod, nil, f.pv), ErrChallengePeriodPassed)
	require.NoError(t, f.svc.Challenge(p, f.defendant, 10+f.pv.ChallengePeriod, []byte("answer"), f.pv))
	assert.ErrorIs(t, f.svc.Challenge(p, f.defendant, 12, nil, f.pv), ErrProposalChallenged)
	assert.Equal(t, p.PlaintiffBond, p.DefendantBond)

	_, err := f.svc.Cancel(p, f.plaintiff)
	assert.ErrorIs(t, err, ErrProposalChallenged)
}

func TestService_Cancel(t *testing.T) {
	f := newFixture(t, 3)
	p := f.create(t, 10)

	_, err := f.svc.Cancel(p, f.defendant)
	assert.ErrorIs(t, err, ErrNotPlaintiff)

	res, err := f.svc.Cancel(p, f.plaintiff)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, res.Outcome)
	assert.False(t, res.EvictDefendant)
	assertConserved(t, p, res)
}

func TestService_Voting(t *testing.T) {
	f := newFixture(t, 3)
	p := f.create(t, 10)

	assert.ErrorIs(t, f.svc.CastVote(p, f.voters[0], Yay, 11, f.pv), ErrProposalUnchallenged)
	require.NoError(t, f.svc.Challenge(p, f.defendant, 20, nil, f.pv))

	assert.ErrorIs(t, f.svc.CastVote(p, f.voters[0], Vote(9), 21, f.pv), ErrInvalidVote)
	assert.ErrorIs(t, f.svc.CastVote(p, f.plaintiff, Yay, 21, f.pv), ErrNotEligibleVoter)
	assert.ErrorIs(t, f.svc.CastVote(p, datagen.RandAddress(), Yay, 21, f.pv), ErrNotEligibleVoter)
	require.NoError(t, f.svc.CastVote(p, f.voters[0], Yay, 21, f.pv))
	assert.ErrorIs(t, f.svc.CastVote(p, f.voters[0], Nay, 22, f.pv), ErrAlreadyVoted)
	assert.ErrorIs(t, f.svc.CastVote(p, f.voters[1], Nay, 21+f.pv.VotingPeriod, f.pv), ErrVotingPeriodPassed)

	_, err := f.svc.Finalize(p, 20+f.pv.VotingPeriod, f.pv)
	assert.ErrorIs(t, err, ErrVotingPeriodNotOver)
}

func TestService_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		yay     int
		nay     int
		outcome Outcome
		evict   bool
	}{
		{"quorum not met", 2, 0, OutcomeQuorumNotMet, false},
		{"plaintiff won", 3, 0, OutcomePlaintiffWon, true},
		{"defendant won", 0, 4, OutcomeDefendantWon, false},
		{"no consensus", 2, 2, OutcomeNoConsensus, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 4)
			p := f.create(t, 10)
			require.NoError(t, f.svc.Challenge(p, f.defendant, 20, nil, f.pv))
			for i := 0; i < tt.yay; i++ {
				require.NoError(t, f.svc.CastVote(p, f.voters[i], Yay, 21, f.pv))
			}
			for i := 0; i < tt.nay; i++ {
				require.NoError(t, f.svc.CastVote(p, f.voters[tt.yay+i], Nay, 21, f.pv))
			}

			res, err := f.svc.Finalize(p, 21+f.pv.VotingPeriod, f.pv)
			require.NoError(t, err)
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Equal(t, tt.evict, res.EvictDefendant)
			assertConserved(t, p, res)
		})
	}
}

func TestService_WinnerGetsDust(t *testing.T) {
	f := newFixture(t, 4)
	f.pv.ProposalBidAmount = big.NewInt(100)
	p := f.create(t, 10)
	require.NoError(t, f.svc.Challenge(p, f.defendant, 20, nil, f.pv))
	for _, v := range f.voters[:3] {
		require.NoError(t, f.svc.CastVote(p, v, Yay, 21, f.pv))
	}

	res, err := f.svc.Finalize(p, 21+f.pv.VotingPeriod, f.pv)
	require.NoError(t, err)
	require.Len(t, res.Payouts, 4)
	// 100 / 4 = 25 each, no dust; plaintiff also gets its own bond back
	assert.Equal(t, big.NewInt(125), res.Payouts[0].Amount)
	assert.Equal(t, f.plaintiff, res.Payouts[0].Account)
	for _, payout := range res.Payouts[1:] {
		assert.Equal(t, big.NewInt(25), payout.Amount)
	}

	f = newFixture(t, 4)
	f.pv.ProposalBidAmount = big.NewInt(101)
	p = f.create(t, 10)
	require.NoError(t, f.svc.Challenge(p, f.defendant, 20, nil, f.pv))
	for _, v := range f.voters {
		require.NoError(t, f.svc.CastVote(p, v, Nay, 21, f.pv))
	}
	res, err = f.svc.Finalize(p, 21+f.pv.VotingPeriod, f.pv)
	require.NoError(t, err)
	// 101 over 5 is 20 with 1 left for the winner
	assert.Equal(t, big.NewInt(122), res.Payouts[0].Amount)
	assertConserved(t, p, res)
}

func TestService_Purge(t *testing.T) {
	f := newFixture(t, 3)
	open := f.create(t, 10)
	require.NoError(t, f.svc.Challenge(open, f.defendant, 20, nil, f.pv))

	other, err := f.svc.Create(1, f.voters[0], f.voters[1], f.pv.ProposalBidAmount, nil, 30, nil)
	require.NoError(t, err)
	_, err = f.svc.Cancel(other, f.voters[0])
	require.NoError(t, err)

	refunds, err := f.svc.Purge(1)
	require.NoError(t, err)
	require.Len(t, refunds, 2)
	total := new(big.Int).Add(refunds[0].Amount, refunds[1].Amount)
	assert.Equal(t, open.Posted(), total)

	ids, err := f.svc.IDs(1)
	require.NoError(t, err)
	assert.Empty(t, ids)
	got, err := f.svc.Get(open.ID)
	require.NoError(t, err)
	assert.False(t, got.Exists())

	pl, def, err := f.svc.ActiveAs(1, f.plaintiff)
	require.NoError(t, err)
	assert.Zero(t, pl)
	assert.Zero(t, def)
}
