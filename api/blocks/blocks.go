// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blocks

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/api/utils"
	"github.com/hayotensor/hypertensor/chain"
	"github.com/hayotensor/hypertensor/tensor"
)

// Block is the JSON form of a block summary.
type Block struct {
	Number    uint32         `json:"number"`
	Timestamp uint64         `json:"timestamp"`
	StateHash tensor.Bytes32 `json:"stateHash"`
	Calls     uint32         `json:"calls"`
	Reverted  uint32         `json:"reverted"`
	Events    uint32         `json:"events"`
}

type Blocks struct {
	repo *chain.Repository
}

func New(repo *chain.Repository) *Blocks {
	return &Blocks{repo}
}

func (b *Blocks) handleGetBlock(w http.ResponseWriter, req *http.Request) error {
	revision := mux.Vars(req)["revision"]
	best := b.repo.BestBlockSummary()

	summary := best
	if revision != "best" {
		n, err := utils.ParseUint32("revision", revision, 0)
		if err != nil {
			return err
		}
		if n > best.Number {
			return utils.NotFound(errors.New("block not found"))
		}
		if summary, err = b.repo.GetBlockSummary(n); err != nil {
			if b.repo.IsNotFound(err) {
				return utils.NotFound(errors.New("block not found"))
			}
			return err
		}
	}
	return utils.WriteJSON(w, &Block{
		Number:    summary.Number,
		Timestamp: summary.Timestamp,
		StateHash: summary.StateHash,
		Calls:     summary.Calls,
		Reverted:  summary.Reverted,
		Events:    summary.Events,
	})
}

func (b *Blocks) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{revision}").
		Methods(http.MethodGet).
		Name("GET /blocks/{revision}").
		HandlerFunc(utils.WrapHandlerFunc(b.handleGetBlock))
}
