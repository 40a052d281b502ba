// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subnets

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayotensor/hypertensor/runtime"
	"github.com/hayotensor/hypertensor/tensor"
	"github.com/hayotensor/hypertensor/test/testchain"
)

var ts *httptest.Server

func initSubnetsServer(t *testing.T) *testchain.Chain {
	tc, err := testchain.NewDefault()
	require.NoError(t, err)

	accs := tc.Accounts()
	_, err = tc.MintBlock(&runtime.Call{
		Op:                 runtime.OpRegisterSubnet,
		Caller:             accs[0].Address,
		Path:               "vision/detect",
		MemoryMB:           50000,
		RegistrationWindow: 100,
	})
	require.NoError(t, err)
	_, err = tc.MintBlock(
		&runtime.Call{
			Op:     runtime.OpRegisterSubnetNode,
			Caller: accs[1].Address,
			Subnet: 1,
			Hotkey: accs[2].Address,
			PeerID: "12D3KooWvision1",
			Meta:   []string{"a"},
			Amount: tensor.NewAmount(tensor.Tokens(1000)),
		},
		&runtime.Call{
			Op:     runtime.OpAddToDelegateStake,
			Caller: accs[3].Address,
			Subnet: 1,
			Amount: tensor.NewAmount(tensor.Tokens(300)),
		},
	)
	require.NoError(t, err)

	router := mux.NewRouter()
	New(tc.Repo()).Mount(router, "/subnets")
	ts = httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
		tc.Close()
	})
	return tc
}

func httpGetAndCheckResponseStatus(t *testing.T, url string, status int) []byte {
	res, err := http.Get(ts.URL + url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, status, res.StatusCode, string(body))
	return body
}

func TestSubnets(t *testing.T) {
	tc := initSubnetsServer(t)
	accs := tc.Accounts()

	for name, tt := range map[string]func(*testing.T){
		"getSubnets": func(t *testing.T) {
			var subnets []*Subnet
			require.NoError(t, json.Unmarshal(httpGetAndCheckResponseStatus(t, "/subnets", http.StatusOK), &subnets))
			require.Len(t, subnets, 1)
			assert.Equal(t, "vision/detect", subnets[0].Path)
			assert.Equal(t, accs[0].Address, subnets[0].Owner)
			assert.Equal(t, uint32(1), subnets[0].InitializedBlock)
		},
		"getSubnetBadID": func(t *testing.T) {
			httpGetAndCheckResponseStatus(t, "/subnets/abc", http.StatusBadRequest)
		},
		"getNode": func(t *testing.T) {
			var node Node
			body := httpGetAndCheckResponseStatus(t, "/subnets/1/nodes/"+accs[1].Address.String(), http.StatusOK)
			require.NoError(t, json.Unmarshal(body, &node))
			assert.Equal(t, accs[2].Address, node.Hotkey)
			assert.NotEmpty(t, node.Class)
			assert.Equal(t, []string{"61"}, node.Meta)
			assert.Equal(t, tensor.Tokens(1000), node.Stake.Int())
		},
		"getMissingNode": func(t *testing.T) {
			httpGetAndCheckResponseStatus(t, "/subnets/1/nodes/"+accs[5].Address.String(), http.StatusNotFound)
			httpGetAndCheckResponseStatus(t, "/subnets/2/nodes", http.StatusNotFound)
		},
		"getStake": func(t *testing.T) {
			var stake Stake
			body := httpGetAndCheckResponseStatus(t, "/subnets/1/stake/"+accs[1].Address.String(), http.StatusOK)
			require.NoError(t, json.Unmarshal(body, &stake))
			assert.Equal(t, tensor.Tokens(1000), stake.Stake.Int())
			assert.NotNil(t, stake.Unbondings)
			assert.Empty(t, stake.Unbondings)
		},
		"getPoolAndDelegate": func(t *testing.T) {
			var pool Pool
			require.NoError(t, json.Unmarshal(httpGetAndCheckResponseStatus(t, "/subnets/1/pool", http.StatusOK), &pool))
			assert.Positive(t, pool.TotalShares.Int().Sign())
			assert.Positive(t, pool.TotalBalance.Int().Sign())

			var delegate Delegate
			body := httpGetAndCheckResponseStatus(t, "/subnets/1/delegates/"+accs[3].Address.String(), http.StatusOK)
			require.NoError(t, json.Unmarshal(body, &delegate))
			assert.Equal(t, pool.TotalShares.Int(), delegate.Shares.Int())
			assert.Positive(t, delegate.Balance.Int().Sign())
		},
		"getProposals": func(t *testing.T) {
			assert.JSONEq(t, "[]", string(httpGetAndCheckResponseStatus(t, "/subnets/1/proposals", http.StatusOK)))
			httpGetAndCheckResponseStatus(t, "/subnets/1/proposals/1", http.StatusNotFound)
			httpGetAndCheckResponseStatus(t, "/subnets/1/proposals/x", http.StatusBadRequest)
		},
		"getSubmission": func(t *testing.T) {
			var sub Submission
			require.NoError(t, json.Unmarshal(httpGetAndCheckResponseStatus(t, "/subnets/1/epochs/0/submission", http.StatusOK), &sub))
			assert.False(t, sub.Submitted)
			assert.Equal(t, uint32(0), sub.Epoch)
		},
	} {
		t.Run(name, tt)
	}
}
