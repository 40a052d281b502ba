// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subnets

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/api/utils"
	"github.com/hayotensor/hypertensor/builtin"
	"github.com/hayotensor/hypertensor/builtin/reverts"
	"github.com/hayotensor/hypertensor/chain"
	"github.com/hayotensor/hypertensor/tensor"
)

type Subnets struct {
	repo *chain.Repository
}

func New(repo *chain.Repository) *Subnets {
	return &Subnets{repo}
}

// network binds a read view over the best block.
func (s *Subnets) network() *builtin.Network {
	return builtin.Subnets.WithState(s.repo.NewState(), builtin.Host{})
}

// lookupErr turns domain lookups into 404.
func lookupErr(err error) error {
	if reverts.IsRevertErr(err) {
		return utils.NotFound(err)
	}
	return err
}

func (s *Subnets) subnet(net *builtin.Network, id tensor.SubnetID) (*Subnet, error) {
	sn, err := net.Subnet(id)
	if err != nil {
		return nil, lookupErr(err)
	}
	penalties, err := net.SubnetPenaltyCount(id)
	if err != nil {
		return nil, err
	}
	total, err := net.TotalSubnetStake(id)
	if err != nil {
		return nil, err
	}
	minDelegate, err := net.MinSubnetDelegateStake(id)
	if err != nil {
		return nil, err
	}
	return &Subnet{
		ID:                 sn.ID,
		Path:               sn.Path,
		Owner:              sn.Owner,
		MemoryMB:           sn.MemoryMB,
		MinNodes:           sn.MinNodes,
		TargetNodes:        sn.TargetNodes,
		InitializedBlock:   sn.InitializedBlock,
		RegistrationWindow: sn.RegistrationWindow,
		ActivatedBlock:     sn.ActivatedBlock,
		Active:             sn.IsActive(),
		Penalties:          penalties,
		TotalStake:         tensor.NewAmount(total),
		MinDelegateStake:   tensor.NewAmount(minDelegate),
	}, nil
}

func (s *Subnets) handleGetSubnets(w http.ResponseWriter, _ *http.Request) error {
	net := s.network()
	ids, err := net.SubnetIDs()
	if err != nil {
		return err
	}
	out := make([]*Subnet, 0, len(ids))
	for _, id := range ids {
		sn, err := s.subnet(net, id)
		if err != nil {
			return err
		}
		out = append(out, sn)
	}
	return utils.WriteJSON(w, out)
}

func (s *Subnets) handleGetSubnet(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParseSubnetID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	sn, err := s.subnet(s.network(), id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, sn)
}

func (s *Subnets) node(net *builtin.Network, id tensor.SubnetID, account tensor.Address) (*Node, error) {
	n, err := net.SubnetNode(id, account)
	if err != nil {
		return nil, lookupErr(err)
	}
	node := convertNode(n)
	if node.Penalties, err = net.SubnetNodePenalties(id, account); err != nil {
		return nil, err
	}
	stake, err := net.Stake(account, id)
	if err != nil {
		return nil, err
	}
	node.Stake = tensor.NewAmount(stake)
	return node, nil
}

func (s *Subnets) handleGetNodes(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParseSubnetID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	net := s.network()
	if _, err := net.Subnet(id); err != nil {
		return lookupErr(err)
	}
	nodes, err := net.SubnetNodes(id)
	if err != nil {
		return err
	}
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		node, err := s.node(net, id, n.Account)
		if err != nil {
			return err
		}
		out = append(out, node)
	}
	return utils.WriteJSON(w, out)
}

func (s *Subnets) handleGetNode(w http.ResponseWriter, req *http.Request) error {
	id, account, err := parseSubnetAccount(req)
	if err != nil {
		return err
	}
	node, err := s.node(s.network(), id, account)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, node)
}

func (s *Subnets) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	id, account, err := parseSubnetAccount(req)
	if err != nil {
		return err
	}
	net := s.network()
	stake, err := net.Stake(account, id)
	if err != nil {
		return err
	}
	ledger, err := net.StakeUnbondings(account, id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Stake{
		Account:    account,
		Subnet:     id,
		Stake:      tensor.NewAmount(stake),
		Unbondings: convertUnbondings(ledger),
	})
}

func (s *Subnets) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParseSubnetID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	pool, err := s.network().DelegatePool(id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Pool{
		TotalShares:  tensor.NewAmount(pool.TotalShares),
		TotalBalance: tensor.NewAmount(pool.TotalBalance),
	})
}

func (s *Subnets) handleGetDelegate(w http.ResponseWriter, req *http.Request) error {
	id, account, err := parseSubnetAccount(req)
	if err != nil {
		return err
	}
	net := s.network()
	shares, err := net.DelegateShares(account, id)
	if err != nil {
		return err
	}
	balance, err := net.DelegateBalance(account, id)
	if err != nil {
		return err
	}
	ledger, err := net.DelegateUnbondings(account, id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Delegate{
		Account:    account,
		Subnet:     id,
		Shares:     tensor.NewAmount(shares),
		Balance:    tensor.NewAmount(balance),
		Unbondings: convertUnbondings(ledger),
	})
}

func (s *Subnets) handleGetProposals(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParseSubnetID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	net := s.network()
	ids, err := net.ProposalIDs(id)
	if err != nil {
		return err
	}
	out := make([]*Proposal, 0, len(ids))
	for _, pid := range ids {
		p, err := net.Proposal(pid)
		if err != nil {
			return err
		}
		out = append(out, convertProposal(p))
	}
	return utils.WriteJSON(w, out)
}

func (s *Subnets) handleGetProposal(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParseSubnetID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	pid, err := strconv.ParseUint(mux.Vars(req)["pid"], 10, 32)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "pid"))
	}
	p, err := s.network().Proposal(tensor.ProposalID(pid))
	if err != nil {
		return err
	}
	if !p.Exists() || p.SubnetID != id {
		return utils.NotFound(errors.New("proposal not found"))
	}
	return utils.WriteJSON(w, convertProposal(p))
}

func (s *Subnets) handleGetSubmission(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.ParseSubnetID(mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	epoch, err := utils.ParseUint32("epoch", mux.Vars(req)["epoch"], 0)
	if err != nil {
		return err
	}
	net := s.network()
	validator, err := net.Validator(id, epoch)
	if err != nil {
		return err
	}
	sub, err := net.Submission(id, epoch)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertSubmission(epoch, validator, sub))
}

func parseSubnetAccount(req *http.Request) (tensor.SubnetID, tensor.Address, error) {
	id, err := utils.ParseSubnetID(mux.Vars(req)["id"])
	if err != nil {
		return 0, tensor.Address{}, err
	}
	account, err := utils.ParseAddress(mux.Vars(req)["account"])
	if err != nil {
		return 0, tensor.Address{}, err
	}
	return id, account, nil
}

func (s *Subnets) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).Name("GET /subnets").HandlerFunc(utils.WrapHandlerFunc(s.handleGetSubnets))
	sub.Path("/{id}").Methods(http.MethodGet).Name("GET /subnets/{id}").HandlerFunc(utils.WrapHandlerFunc(s.handleGetSubnet))
	sub.Path("/{id}/nodes").Methods(http.MethodGet).Name("GET /subnets/{id}/nodes").HandlerFunc(utils.WrapHandlerFunc(s.handleGetNodes))
	sub.Path("/{id}/nodes/{account}").Methods(http.MethodGet).Name("GET /subnets/{id}/nodes/{account}").HandlerFunc(utils.WrapHandlerFunc(s.handleGetNode))
	sub.Path("/{id}/stake/{account}").Methods(http.MethodGet).Name("GET /subnets/{id}/stake/{account}").HandlerFunc(utils.WrapHandlerFunc(s.handleGetStake))
	sub.Path("/{id}/pool").Methods(http.MethodGet).Name("GET /subnets/{id}/pool").HandlerFunc(utils.WrapHandlerFunc(s.handleGetPool))
	sub.Path("/{id}/delegates/{account}").Methods(http.MethodGet).Name("GET /subnets/{id}/delegates/{account}").HandlerFunc(utils.WrapHandlerFunc(s.handleGetDelegate))
	sub.Path("/{id}/proposals").Methods(http.MethodGet).Name("GET /subnets/{id}/proposals").HandlerFunc(utils.WrapHandlerFunc(s.handleGetProposals))
	sub.Path("/{id}/proposals/{pid}").Methods(http.MethodGet).Name("GET /subnets/{id}/proposals/{pid}").HandlerFunc(utils.WrapHandlerFunc(s.handleGetProposal))
	sub.Path("/{id}/epochs/{epoch}/submission").Methods(http.MethodGet).Name("GET /subnets/{id}/epochs/{epoch}/submission").HandlerFunc(utils.WrapHandlerFunc(s.handleGetSubmission))
}
