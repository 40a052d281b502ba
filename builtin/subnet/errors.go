// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subnet

import (
	"github.com/hayotensor/hypertensor/builtin/reverts"
)

var (
	ErrSubnetExists                    = reverts.New(reverts.Lifecycle, "subnet path already registered")
	ErrMaxSubnets                      = reverts.New(reverts.Lifecycle, "max subnets reached")
	ErrInvalidPath                     = reverts.New(reverts.Lifecycle, "invalid subnet path")
	ErrInvalidMemory                   = reverts.New(reverts.Lifecycle, "invalid subnet memory")
	ErrInvalidRegistrationWindow       = reverts.New(reverts.Lifecycle, "invalid registration window")
	ErrSubnetNotExist                  = reverts.New(reverts.Lifecycle, "subnet does not exist")
	ErrSubnetNotActive                 = reverts.New(reverts.Lifecycle, "subnet is not activated")
	ErrSubnetActivatedAlready          = reverts.New(reverts.Lifecycle, "subnet already activated")
	ErrSubnetRegistrationPeriodNotOver = reverts.New(reverts.Lifecycle, "subnet registration period not over")
	ErrInvalidSubnetRemoval            = reverts.New(reverts.Lifecycle, "subnet removal conditions not met")

	ErrSubnetNodeExists           = reverts.New(reverts.Lifecycle, "subnet node already exists")
	ErrSubnetNodeNotExist         = reverts.New(reverts.Lifecycle, "subnet node does not exist")
	ErrPeerIDExists               = reverts.New(reverts.Lifecycle, "peer id already registered")
	ErrHotkeyExists               = reverts.New(reverts.Lifecycle, "hotkey already registered")
	ErrInvalidPeerID              = reverts.New(reverts.Lifecycle, "invalid peer id")
	ErrMaxSubnetNodes             = reverts.New(reverts.Lifecycle, "max subnet nodes reached")
	ErrSubnetNodeAlreadyActivated = reverts.New(reverts.Lifecycle, "subnet node already activated")
	ErrSubnetNodeNotActivated     = reverts.New(reverts.Lifecycle, "subnet node not activated")
)
