// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayotensor/hypertensor/tensor"
)

func TestBuffer(t *testing.T) {
	var buf Buffer
	buf.Emit(SubnetActivated{Header: For(1), Block: 10})
	n := buf.Len()
	buf.Emit(SubnetActivated{Header: For(2), Block: 11})
	buf.Truncate(n)

	rec := &Recorder{}
	buf.Flush(rec)
	assert.Equal(t, 0, buf.Len())
	require.Len(t, rec.Events, 1)
	assert.Equal(t, tensor.SubnetID(1), rec.Events[0].Subnet())
	assert.Len(t, rec.Named("SubnetActivated"), 1)
	assert.Empty(t, rec.Named("Slashed"))
}

func TestEventJSON(t *testing.T) {
	ev := StakeAdded{Header: For(3), Account: tensor.BytesToAddress([]byte{1}), Amount: big.NewInt(5)}
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"subnetId":3,"account":"0x0000000000000000000000000000000000000001","amount":5}`, string(data))
}
