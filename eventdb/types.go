// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/events"
	"github.com/hayotensor/hypertensor/tensor"
)

type OrderType string

const (
	ASC  OrderType = "asc"
	DESC OrderType = "desc"
)

// Record is an archived event. Data holds the JSON form of the event.
type Record struct {
	BlockNumber uint32          `json:"blockNumber"`
	Index       uint32          `json:"index"`
	Name        string          `json:"name"`
	Subnet      tensor.SubnetID `json:"subnet"`
	Data        json.RawMessage `json:"data"`
}

// NewRecords encodes the events emitted in one block, keeping their order.
func NewRecords(blockNumber uint32, evs []events.Event) ([]*Record, error) {
	records := make([]*Record, 0, len(evs))
	for i, ev := range evs {
		data, err := json.Marshal(ev)
		if err != nil {
			return nil, errors.Wrapf(err, "encode %v", ev.Name())
		}
		records = append(records, &Record{
			BlockNumber: blockNumber,
			Index:       uint32(i),
			Name:        ev.Name(),
			Subnet:      ev.Subnet(),
			Data:        data,
		})
	}
	return records, nil
}

type Range struct {
	From uint32 `json:"from"`
	To   uint32 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects records. Empty fields match everything.
type Filter struct {
	Range   *Range           `json:"range"`
	Subnet  *tensor.SubnetID `json:"subnet"`
	Names   []string         `json:"names"`
	Order   OrderType        `json:"order"` // default asc
	Options *Options         `json:"options"`
}
