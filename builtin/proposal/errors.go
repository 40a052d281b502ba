// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package proposal

import (
	"github.com/hayotensor/hypertensor/builtin/reverts"
)

var (
	ErrProposalNotExist           = reverts.New(reverts.Dispute, "proposal does not exist")
	ErrProposalComplete           = reverts.New(reverts.Dispute, "proposal already complete")
	ErrPlaintiffIsDefendant       = reverts.New(reverts.Dispute, "plaintiff cannot be the defendant")
	ErrSubnetMinNodesNotMet       = reverts.New(reverts.Dispute, "subnet has too few nodes for proposals")
	ErrPlaintiffHasActiveProposal = reverts.New(reverts.Dispute, "plaintiff has an active proposal")
	ErrDefendantHasActiveProposal = reverts.New(reverts.Dispute, "defendant has an active proposal")
	ErrNotDefendant               = reverts.New(reverts.Dispute, "caller is not the defendant")
	ErrNotPlaintiff               = reverts.New(reverts.Dispute, "caller is not the plaintiff")
	ErrProposalChallenged         = reverts.New(reverts.Dispute, "proposal already challenged")
	ErrProposalUnchallenged       = reverts.New(reverts.Dispute, "proposal not challenged")
	ErrChallengePeriodPassed      = reverts.New(reverts.Dispute, "challenge period passed")
	ErrChallengePeriodNotOver     = reverts.New(reverts.Dispute, "challenge period not over")
	ErrVotingPeriodPassed         = reverts.New(reverts.Dispute, "voting period passed")
	ErrVotingPeriodNotOver        = reverts.New(reverts.Dispute, "voting period not over")
	ErrNotEligibleVoter           = reverts.New(reverts.Dispute, "not an eligible voter")
	ErrAlreadyVoted               = reverts.New(reverts.Dispute, "already voted")
	ErrInvalidVote                = reverts.New(reverts.Dispute, "invalid vote")
)
