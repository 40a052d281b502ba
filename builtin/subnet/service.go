// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subnet

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/builtin/storage"
	"github.com/hayotensor/hypertensor/log"
	"github.com/hayotensor/hypertensor/tensor"
)

var logger = log.WithContext("pkg", "subnet")

const maxPathLength = 256

var (
	slotSubnets         = storage.Slot("subnets")
	slotPaths           = storage.Slot("subnet-paths")
	slotSubnetList      = storage.Slot("subnet-list")
	slotNextID          = storage.Slot("subnet-next-id")
	slotNodes           = storage.Slot("subnet-nodes")
	slotNodeList        = storage.Slot("subnet-node-list")
	slotPeers           = storage.Slot("subnet-peers")
	slotHotkeys         = storage.Slot("subnet-hotkeys")
	slotNodePenalties   = storage.Slot("subnet-node-penalties")
	slotSubnetPenalties = storage.Slot("subnet-penalties")
)

type (
	nodeKey   = storage.Pair[tensor.SubnetID, tensor.Address]
	peerKey   = storage.Pair[tensor.SubnetID, tensor.PeerID]
	hotkeyKey = storage.Pair[tensor.SubnetID, tensor.Address]
)

// Service keeps subnet records, node records and their penalty counters.
type Service struct {
	sctx            *storage.Context
	subnets         *storage.Mapping[tensor.SubnetID, *Subnet]
	paths           *storage.Mapping[storage.String, tensor.SubnetID]
	list            *storage.LinkedList[tensor.SubnetID]
	nextID          *storage.Raw[uint32]
	nodes           *storage.Mapping[nodeKey, *Node]
	peers           *storage.Mapping[peerKey, tensor.Address]
	hotkeys         *storage.Mapping[hotkeyKey, tensor.Address]
	nodePenalties   *storage.Mapping[nodeKey, uint32]
	subnetPenalties *storage.Mapping[tensor.SubnetID, uint32]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		sctx:            sctx,
		subnets:         storage.NewMapping[tensor.SubnetID, *Subnet](sctx, slotSubnets),
		paths:           storage.NewMapping[storage.String, tensor.SubnetID](sctx, slotPaths),
		list:            storage.NewLinkedList[tensor.SubnetID](sctx, slotSubnetList),
		nextID:          storage.NewRaw[uint32](sctx, slotNextID),
		nodes:           storage.NewMapping[nodeKey, *Node](sctx, slotNodes),
		peers:           storage.NewMapping[peerKey, tensor.Address](sctx, slotPeers),
		hotkeys:         storage.NewMapping[hotkeyKey, tensor.Address](sctx, slotHotkeys),
		nodePenalties:   storage.NewMapping[nodeKey, uint32](sctx, slotNodePenalties),
		subnetPenalties: storage.NewMapping[tensor.SubnetID, uint32](sctx, slotSubnetPenalties),
	}
}

func (s *Service) nodeList(id tensor.SubnetID) *storage.LinkedList[tensor.Address] {
	return storage.NewLinkedList[tensor.Address](s.sctx, tensor.Blake2b(slotNodeList[:], id.Bytes()))
}

// Get returns the subnet, or an empty record when it does not exist.
func (s *Service) Get(id tensor.SubnetID) (*Subnet, error) {
	return s.subnets.Get(id)
}

// Lookup returns the subnet or ErrSubnetNotExist.
func (s *Service) Lookup(id tensor.SubnetID) (*Subnet, error) {
	sn, err := s.subnets.Get(id)
	if err != nil {
		return nil, err
	}
	if !sn.Exists() {
		return nil, ErrSubnetNotExist
	}
	return sn, nil
}

// LookupActive returns the subnet or an error when it is missing or still registering.
func (s *Service) LookupActive(id tensor.SubnetID) (*Subnet, error) {
	sn, err := s.Lookup(id)
	if err != nil {
		return nil, err
	}
	if !sn.IsActive() {
		return nil, ErrSubnetNotActive
	}
	return sn, nil
}

// IDByPath returns the subnet registered under path, or zero.
func (s *Service) IDByPath(path string) (tensor.SubnetID, error) {
	return s.paths.Get(storage.String(path))
}

// IDs returns every subnet id in registration order.
func (s *Service) IDs() ([]tensor.SubnetID, error) {
	return s.list.All()
}

// Count returns the number of stored subnets.
func (s *Service) Count() (uint64, error) {
	return s.list.Len()
}

// Register validates and stores a new registering subnet.
func (s *Service) Register(owner tensor.Address, block uint32, path string, memoryMB uint64, window uint32, p *params.Values) (*Subnet, error) {
	path = strings.TrimSpace(path)
	if path == "" || len(path) > maxPathLength {
		return nil, ErrInvalidPath
	}
	existing, err := s.paths.Get(storage.String(path))
	if err != nil {
		return nil, err
	}
	if existing != 0 {
		return nil, ErrSubnetExists
	}
	count, err := s.list.Len()
	if err != nil {
		return nil, err
	}
	if count >= uint64(p.MaxSubnets) {
		return nil, ErrMaxSubnets
	}
	if memoryMB == 0 || memoryMB > p.MaxSubnetMemoryMB {
		return nil, ErrInvalidMemory
	}
	if window < p.MinSubnetRegistrationBlocks || window > p.MaxSubnetRegistrationBlocks {
		return nil, ErrInvalidRegistrationWindow
	}

	last, err := s.nextID.Get()
	if err != nil {
		return nil, err
	}
	id := tensor.SubnetID(last + 1)
	if err := s.nextID.Set(last + 1); err != nil {
		return nil, err
	}

	minNodes := MinNodes(memoryMB, p)
	sn := &Subnet{
		ID:                 id,
		Path:               path,
		Owner:              owner,
		MemoryMB:           memoryMB,
		MinNodes:           minNodes,
		TargetNodes:        TargetNodes(minNodes, p),
		InitializedBlock:   block,
		RegistrationWindow: window,
	}
	if err := s.subnets.Set(id, sn); err != nil {
		return nil, err
	}
	if err := s.paths.Set(storage.String(path), id); err != nil {
		return nil, err
	}
	if err := s.list.Add(id); err != nil {
		return nil, errors.Wrap(err, "failed to add subnet to list")
	}

	logger.Debug("registered subnet", "id", id, "path", path, "memory", memoryMB, "minNodes", sn.MinNodes)
	return sn, nil
}

// Activate marks the subnet as active from block.
func (s *Service) Activate(sn *Subnet, block uint32) error {
	sn.ActivatedBlock = block
	return s.subnets.Set(sn.ID, sn)
}

// Delete removes the subnet record, its path index, list membership and penalty counter.
// Nodes must be removed beforehand.
func (s *Service) Delete(sn *Subnet) error {
	s.subnets.Delete(sn.ID)
	s.paths.Delete(storage.String(sn.Path))
	s.subnetPenalties.Delete(sn.ID)
	return s.list.Remove(sn.ID)
}

// GetNode returns the node, or an empty record when it does not exist.
func (s *Service) GetNode(id tensor.SubnetID, account tensor.Address) (*Node, error) {
	return s.nodes.Get(storage.NewPair(id, account))
}

// LookupNode returns the node or ErrSubnetNodeNotExist.
func (s *Service) LookupNode(id tensor.SubnetID, account tensor.Address) (*Node, error) {
	node, err := s.GetNode(id, account)
	if err != nil {
		return nil, err
	}
	if !node.Exists() {
		return nil, ErrSubnetNodeNotExist
	}
	return node, nil
}

// AccountByPeer resolves a peer id to the owning account, or zero.
func (s *Service) AccountByPeer(id tensor.SubnetID, peer tensor.PeerID) (tensor.Address, error) {
	return s.peers.Get(storage.NewPair(id, peer))
}

// NodeCount returns the number of nodes of any class.
func (s *Service) NodeCount(id tensor.SubnetID) (uint64, error) {
	return s.nodeList(id).Len()
}

// AddNode stores a new node. Class and StartEpoch must be set by the caller.
func (s *Service) AddNode(id tensor.SubnetID, node *Node, p *params.Values) error {
	if !node.PeerID.Valid() {
		return ErrInvalidPeerID
	}
	key := storage.NewPair(id, node.Account)
	exists, err := s.nodes.Has(key)
	if err != nil {
		return err
	}
	if exists {
		return ErrSubnetNodeExists
	}
	owner, err := s.peers.Get(storage.NewPair(id, node.PeerID))
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return ErrPeerIDExists
	}
	owner, err = s.hotkeys.Get(storage.NewPair(id, node.Hotkey))
	if err != nil {
		return err
	}
	if !owner.IsZero() {
		return ErrHotkeyExists
	}
	count, err := s.NodeCount(id)
	if err != nil {
		return err
	}
	if count >= uint64(p.MaxSubnetNodes) {
		return ErrMaxSubnetNodes
	}

	if err := s.nodes.Set(key, node); err != nil {
		return err
	}
	if err := s.peers.Set(storage.NewPair(id, node.PeerID), node.Account); err != nil {
		return err
	}
	if !node.Hotkey.IsZero() {
		if err := s.hotkeys.Set(storage.NewPair(id, node.Hotkey), node.Account); err != nil {
			return err
		}
	}
	return s.nodeList(id).Add(node.Account)
}

// UpdateNode overwrites a node record.
func (s *Service) UpdateNode(id tensor.SubnetID, node *Node) error {
	return s.nodes.Set(storage.NewPair(id, node.Account), node)
}

// SetClass moves the node to class starting at epoch.
func (s *Service) SetClass(id tensor.SubnetID, node *Node, class Class, epoch uint32) error {
	logger.Debug("node class updated", "subnet", id, "account", node.Account, "from", node.Class, "to", class, "epoch", epoch)
	node.Class = class
	node.StartEpoch = epoch
	return s.UpdateNode(id, node)
}

// RemoveNode deletes the node record with its indexes and penalties.
func (s *Service) RemoveNode(id tensor.SubnetID, node *Node) error {
	s.nodes.Delete(storage.NewPair(id, node.Account))
	s.peers.Delete(storage.NewPair(id, node.PeerID))
	if !node.Hotkey.IsZero() {
		s.hotkeys.Delete(storage.NewPair(id, node.Hotkey))
	}
	s.nodePenalties.Delete(storage.NewPair(id, node.Account))
	return s.nodeList(id).Remove(node.Account)
}

// IterNodes visits every node in insertion order. The callback may remove the visited node.
func (s *Service) IterNodes(id tensor.SubnetID, cb func(*Node) error) error {
	return s.nodeList(id).Iter(func(account tensor.Address) error {
		node, err := s.GetNode(id, account)
		if err != nil {
			return err
		}
		if !node.Exists() {
			return errors.Errorf("dangling node list entry %v in subnet %v", account, id)
		}
		return cb(node)
	})
}

// NodesWithClass returns the nodes holding at least class at epoch.
func (s *Service) NodesWithClass(id tensor.SubnetID, class Class, epoch uint32) ([]*Node, error) {
	var nodes []*Node
	err := s.IterNodes(id, func(n *Node) error {
		if n.HasClass(class, epoch) {
			nodes = append(nodes, n)
		}
		return nil
	})
	return nodes, err
}

// NodePenalties returns the penalty count of a node.
func (s *Service) NodePenalties(id tensor.SubnetID, account tensor.Address) (uint32, error) {
	return s.nodePenalties.Get(storage.NewPair(id, account))
}

// IncreaseNodePenalties adds one penalty and returns the new count.
func (s *Service) IncreaseNodePenalties(id tensor.SubnetID, account tensor.Address) (uint32, error) {
	key := storage.NewPair(id, account)
	n, err := s.nodePenalties.Get(key)
	if err != nil {
		return 0, err
	}
	if n < ^uint32(0) {
		n++
	}
	return n, s.nodePenalties.Set(key, n)
}

// DecreaseNodePenalties removes one penalty, saturating at zero.
func (s *Service) DecreaseNodePenalties(id tensor.SubnetID, account tensor.Address) error {
	key := storage.NewPair(id, account)
	n, err := s.nodePenalties.Get(key)
	if err != nil || n == 0 {
		return err
	}
	if n == 1 {
		s.nodePenalties.Delete(key)
		return nil
	}
	return s.nodePenalties.Set(key, n-1)
}

// SubnetPenalties returns the penalty count of a subnet.
func (s *Service) SubnetPenalties(id tensor.SubnetID) (uint32, error) {
	return s.subnetPenalties.Get(id)
}

// IncreaseSubnetPenalties adds one penalty and returns the new count.
func (s *Service) IncreaseSubnetPenalties(id tensor.SubnetID) (uint32, error) {
	n, err := s.subnetPenalties.Get(id)
	if err != nil {
		return 0, err
	}
	if n < ^uint32(0) {
		n++
	}
	return n, s.subnetPenalties.Set(id, n)
}

// DecreaseSubnetPenalties removes one penalty, saturating at zero.
func (s *Service) DecreaseSubnetPenalties(id tensor.SubnetID) error {
	n, err := s.subnetPenalties.Get(id)
	if err != nil || n == 0 {
		return err
	}
	return s.subnetPenalties.Set(id, n-1)
}
