// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subnet

import (
	"github.com/hayotensor/hypertensor/tensor"
)

// Class is the lifecycle classification of a subnet node. Classes are ordered.
type Class uint8

const (
	ClassUnknown = Class(iota) // 0 -> default value, the node does not exist
	ClassRegistered
	ClassIdle
	ClassIncluded
	ClassSubmittable
	ClassAccountant
)

func (c Class) String() string {
	switch c {
	case ClassRegistered:
		return "Registered"
	case ClassIdle:
		return "Idle"
	case ClassIncluded:
		return "Included"
	case ClassSubmittable:
		return "Submittable"
	case ClassAccountant:
		return "Accountant"
	}
	return "Unknown"
}

// Subnet is a registered subnet. ActivatedBlock is zero while registering.
type Subnet struct {
	ID                 tensor.SubnetID
	Path               string
	Owner              tensor.Address
	MemoryMB           uint64
	MinNodes           uint32
	TargetNodes        uint32
	InitializedBlock   uint32
	RegistrationWindow uint32
	ActivatedBlock     uint32
}

func (s *Subnet) Exists() bool {
	return s.ID != 0
}

func (s *Subnet) IsActive() bool {
	return s.ActivatedBlock != 0
}

// RegistrationEnd is the last block of the registration window.
func (s *Subnet) RegistrationEnd() uint64 {
	return uint64(s.InitializedBlock) + uint64(s.RegistrationWindow)
}

// EnactmentEnd is the last block at which the subnet may still be activated.
func (s *Subnet) EnactmentEnd(enactmentBlocks uint32) uint64 {
	return s.RegistrationEnd() + uint64(enactmentBlocks)
}

// Node is a subnet node keyed by (subnet, account).
type Node struct {
	Account          tensor.Address
	Hotkey           tensor.Address
	PeerID           tensor.PeerID
	InitializedBlock uint32
	Class            Class
	StartEpoch       uint32
	MetaA            []byte
	MetaB            []byte
	MetaC            []byte
}

func (n *Node) Exists() bool {
	return n.Class != ClassUnknown
}

// HasClass reports whether the node holds at least the required class at epoch.
func (n *Node) HasClass(required Class, epoch uint32) bool {
	return n.Class >= required && n.StartEpoch <= epoch
}

// DeactivationReason explains why a subnet was removed.
type DeactivationReason uint8

const (
	ReasonMaxPenalties DeactivationReason = iota + 1
	ReasonMinSubnetNodes
	ReasonMinSubnetDelegateStake
	ReasonEnactmentPeriod
	ReasonDemocracy
	ReasonCouncil
)

func (r DeactivationReason) String() string {
	switch r {
	case ReasonMaxPenalties:
		return "MaxPenalties"
	case ReasonMinSubnetNodes:
		return "MinSubnetNodes"
	case ReasonMinSubnetDelegateStake:
		return "MinSubnetDelegateStake"
	case ReasonEnactmentPeriod:
		return "EnactmentPeriod"
	case ReasonDemocracy:
		return "Democracy"
	case ReasonCouncil:
		return "Council"
	}
	return "Unknown"
}

// RemovalReason explains why a node left a subnet.
type RemovalReason uint8

const (
	RemovalVoluntary RemovalReason = iota + 1
	RemovalRegistrationExpired
	RemovalMaxPenalties
	RemovalDispute
	RemovalSubnetRemoved
)

func (r RemovalReason) String() string {
	switch r {
	case RemovalVoluntary:
		return "Voluntary"
	case RemovalRegistrationExpired:
		return "RegistrationExpired"
	case RemovalMaxPenalties:
		return "MaxPenalties"
	case RemovalDispute:
		return "Dispute"
	case RemovalSubnetRemoved:
		return "SubnetRemoved"
	}
	return "Unknown"
}
