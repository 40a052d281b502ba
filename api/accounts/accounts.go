// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hayotensor/hypertensor/api/utils"
	"github.com/hayotensor/hypertensor/builtin"
	"github.com/hayotensor/hypertensor/chain"
	"github.com/hayotensor/hypertensor/tensor"
)

// Account is the balance and positions of an account.
type Account struct {
	Balance     *tensor.Amount `json:"balance"`
	LastTxBlock uint32         `json:"lastTxBlock"`
	Positions   []Position     `json:"positions"`
}

// Position is a non-zero stake or delegation in one subnet.
type Position struct {
	Subnet         tensor.SubnetID `json:"subnet"`
	Stake          *tensor.Amount  `json:"stake"`
	DelegateShares *tensor.Amount  `json:"delegateShares"`
}

type Accounts struct {
	repo *chain.Repository
}

func New(repo *chain.Repository) *Accounts {
	return &Accounts{repo}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	st := a.repo.NewState()
	balance, err := builtin.Balance.WithState(st).Balance(addr)
	if err != nil {
		return err
	}
	net := builtin.Subnets.WithState(st, builtin.Host{})
	last, err := net.LastTxBlock(addr)
	if err != nil {
		return err
	}
	ids, err := net.SubnetIDs()
	if err != nil {
		return err
	}

	acc := &Account{
		Balance:     tensor.NewAmount(balance),
		LastTxBlock: last,
		Positions:   []Position{},
	}
	for _, id := range ids {
		stake, err := net.Stake(addr, id)
		if err != nil {
			return err
		}
		shares, err := net.DelegateShares(addr, id)
		if err != nil {
			return err
		}
		if stake.Sign() == 0 && shares.Sign() == 0 {
			continue
		}
		acc.Positions = append(acc.Positions, Position{id, tensor.NewAmount(stake), tensor.NewAmount(shares)})
	}
	return utils.WriteJSON(w, acc)
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
