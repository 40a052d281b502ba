// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind groups revert errors by the component that raised them.
type Kind uint8

const (
	Lifecycle Kind = iota + 1
	Staking
	Delegate
	Consensus
	Dispute
	Balance
)

func (k Kind) String() string {
	switch k {
	case Lifecycle:
		return "lifecycle"
	case Staking:
		return "staking"
	case Delegate:
		return "delegate"
	case Consensus:
		return "consensus"
	case Dispute:
		return "dispute"
	case Balance:
		return "balance"
	}
	return "unknown"
}

// ErrRevert is a domain error. A call failing with it has no effect on state.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of the revert wrapped in err, or 0 for non revert errors.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return 0
}
