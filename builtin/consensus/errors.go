// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package consensus

import (
	"github.com/hayotensor/hypertensor/builtin/reverts"
)

var (
	ErrNoValidatorChosen        = reverts.New(reverts.Consensus, "no validator chosen for epoch")
	ErrInvalidValidator         = reverts.New(reverts.Consensus, "caller is not the chosen validator")
	ErrSubmissionExists         = reverts.New(reverts.Consensus, "validator already submitted")
	ErrSubmissionNotExist       = reverts.New(reverts.Consensus, "no submission for epoch")
	ErrAlreadyAttested          = reverts.New(reverts.Consensus, "already attested")
	ErrSubnetNodeNotSubmittable = reverts.New(reverts.Consensus, "subnet node is not submittable")
	ErrInvalidScore             = reverts.New(reverts.Consensus, "invalid node score")
)
