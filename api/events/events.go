// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/api/utils"
	"github.com/hayotensor/hypertensor/eventdb"
)

const defaultLimit = 1000

type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

// New creates the events module. Queries return at most limit records.
func New(db *eventdb.EventDB, limit uint64) *Events {
	if limit == 0 {
		limit = defaultLimit
	}
	return &Events{db, limit}
}

// parseFilter reads from, to, subnet, name (repeatable or comma separated), order, offset and limit.
func (e *Events) parseFilter(req *http.Request) (*eventdb.Filter, error) {
	q := req.URL.Query()
	filter := &eventdb.Filter{Order: eventdb.ASC}

	from, err := utils.ParseUint32("from", q.Get("from"), 0)
	if err != nil {
		return nil, err
	}
	to, err := utils.ParseUint32("to", q.Get("to"), ^uint32(0))
	if err != nil {
		return nil, err
	}
	if from > to {
		return nil, utils.BadRequest(errors.New("from is greater than to"))
	}
	filter.Range = &eventdb.Range{From: from, To: to}

	if s := q.Get("subnet"); s != "" {
		id, err := utils.ParseSubnetID(s)
		if err != nil {
			return nil, err
		}
		filter.Subnet = &id
	}
	for _, name := range q["name"] {
		for _, n := range strings.Split(name, ",") {
			if n = strings.TrimSpace(n); n != "" {
				filter.Names = append(filter.Names, n)
			}
		}
	}
	switch order := eventdb.OrderType(strings.ToLower(q.Get("order"))); order {
	case "", eventdb.ASC:
	case eventdb.DESC:
		filter.Order = eventdb.DESC
	default:
		return nil, utils.BadRequest(errors.Errorf("invalid order %q", order))
	}

	offset, err := utils.ParseUint32("offset", q.Get("offset"), 0)
	if err != nil {
		return nil, err
	}
	limit, err := utils.ParseUint32("limit", q.Get("limit"), uint32(e.limit))
	if err != nil {
		return nil, err
	}
	if uint64(limit) > e.limit {
		return nil, utils.BadRequest(errors.Errorf("limit exceeds %d", e.limit))
	}
	filter.Options = &eventdb.Options{Offset: uint64(offset), Limit: uint64(limit)}
	return filter, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := e.parseFilter(req)
	if err != nil {
		return err
	}
	records, err := e.db.Filter(req.Context(), filter)
	if err != nil {
		return err
	}
	if records == nil {
		records = []*eventdb.Record{}
	}
	return utils.WriteJSON(w, records)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
