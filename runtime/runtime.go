// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"time"

	"github.com/pkg/errors"

	"github.com/hayotensor/hypertensor/builtin"
	"github.com/hayotensor/hypertensor/builtin/reverts"
	"github.com/hayotensor/hypertensor/events"
	"github.com/hayotensor/hypertensor/log"
	"github.com/hayotensor/hypertensor/metrics"
	"github.com/hayotensor/hypertensor/state"
	"github.com/hayotensor/hypertensor/tensor"
)

var (
	logger = log.WithContext("pkg", "runtime")

	metricBlockDuration = metrics.LazyLoadHistogram("runtime_block_duration_ms", metrics.Bucket10s)
	metricBlockCalls    = metrics.LazyLoadCounterVec("runtime_block_calls_count", []string{"reverted"})
)

// Receipt is the result of one call.
type Receipt struct {
	Op       Op             `json:"op"`
	Caller   tensor.Address `json:"caller"`
	Reverted bool           `json:"reverted"`
	// Err is nil for a successful call.
	Err error `json:"-"`
}

// Output is the result of executing a block.
type Output struct {
	Block uint32
	// Processed is the number of subnets the block hook handled.
	Processed int
	Receipts  []*Receipt
	// Events lists everything emitted by the hook and the successful calls, in order.
	Events []events.Event
}

// Runtime executes blocks of calls against one state.
type Runtime struct {
	state *state.State
	host  builtin.Host
}

// New creates a runtime. Events are forwarded to host.Emitter when set.
func New(st *state.State, host builtin.Host) *Runtime {
	return &Runtime{state: st, host: host}
}

// State returns the underlying state.
func (rt *Runtime) State() *state.State {
	return rt.state
}

// Network binds a network to the runtime state, emitting into em.
func (rt *Runtime) Network(em events.Emitter) *builtin.Network {
	host := rt.host
	host.Emitter = em
	return builtin.Subnets.WithState(rt.state, host)
}

// ExecuteBlock runs the block hook then every call in order. A failing call is
// recorded in its receipt and never stops the block; only a hook failure does.
func (rt *Runtime) ExecuteBlock(block uint32, calls []*Call) (*Output, error) {
	start := time.Now()
	out := &Output{Block: block}

	var em events.Emitter = events.EmitFunc(func(ev events.Event) {
		out.Events = append(out.Events, ev)
		if rt.host.Emitter != nil {
			rt.host.Emitter.Emit(ev)
		}
	})
	net := rt.Network(em)

	processed, err := net.OnInitialize(block)
	if err != nil {
		return nil, errors.WithMessagef(err, "block %d hook", block)
	}
	out.Processed = processed

	for _, c := range calls {
		err := c.Apply(net, block)
		receipt := &Receipt{Op: c.Op, Caller: c.Caller, Reverted: err != nil, Err: err}
		out.Receipts = append(out.Receipts, receipt)

		if err != nil {
			if reverts.IsRevertErr(err) {
				logger.Debug("call reverted", "block", block, "op", c.Op, "caller", c.Caller, "err", err)
			} else {
				logger.Warn("call failed", "block", block, "op", c.Op, "caller", c.Caller, "err", err)
			}
		}
		metricBlockCalls().AddWithLabel(1, map[string]string{"reverted": boolLabel(receipt.Reverted)})
	}

	metricBlockDuration().Observe(time.Since(start).Milliseconds())
	logger.Debug("block executed", "block", block, "calls", len(calls), "events", len(out.Events), "elapsed", time.Since(start))
	return out, nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
