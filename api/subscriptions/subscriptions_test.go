// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayotensor/hypertensor/eventdb"
	"github.com/hayotensor/hypertensor/runtime"
	"github.com/hayotensor/hypertensor/tensor"
	"github.com/hayotensor/hypertensor/test/testchain"
)

func registerSubnet(caller tensor.Address, path string) *runtime.Call {
	return &runtime.Call{
		Op:                 runtime.OpRegisterSubnet,
		Caller:             caller,
		Path:               path,
		MemoryMB:           50000,
		RegistrationWindow: 100,
	}
}

func initServer(t *testing.T, backtraceLimit uint32) (*testchain.Chain, string) {
	tc, err := testchain.NewDefault()
	require.NoError(t, err)

	sub := New(tc.Repo(), tc.EventDB(), []string{"*"}, backtraceLimit)
	router := mux.NewRouter()
	sub.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)

	t.Cleanup(func() {
		sub.Close()
		ts.Close()
		tc.Close()
	})
	return tc, "ws" + strings.TrimPrefix(ts.URL, "http") + "/subscriptions/events"
}

func readRecord(t *testing.T, conn *websocket.Conn) *eventdb.Record {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var rec eventdb.Record
	require.NoError(t, conn.ReadJSON(&rec))
	return &rec
}

func TestSubscribeEvents(t *testing.T) {
	tc, url := initServer(t, 100)
	owner := tc.Accounts()[0].Address

	_, err := tc.MintBlock(registerSubnet(owner, "first"))
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?pos=0&name=SubnetRegistered", nil)
	require.NoError(t, err)
	defer conn.Close()

	// catch up from the requested position
	rec := readRecord(t, conn)
	assert.Equal(t, uint32(1), rec.BlockNumber)
	assert.Equal(t, "SubnetRegistered", rec.Name)
	assert.Equal(t, tensor.SubnetID(1), rec.Subnet)

	// then follow new blocks
	_, err = tc.MintBlock(registerSubnet(tc.Accounts()[1].Address, "second"))
	require.NoError(t, err)

	rec = readRecord(t, conn)
	assert.Equal(t, uint32(2), rec.BlockNumber)
	assert.Equal(t, tensor.SubnetID(2), rec.Subnet)
}

func TestSubscribeEventsBySubnet(t *testing.T) {
	tc, url := initServer(t, 100)

	_, err := tc.MintBlock(
		registerSubnet(tc.Accounts()[0].Address, "first"),
		registerSubnet(tc.Accounts()[1].Address, "second"),
	)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?pos=0&subnet=2", nil)
	require.NoError(t, err)
	defer conn.Close()

	rec := readRecord(t, conn)
	assert.Equal(t, tensor.SubnetID(2), rec.Subnet)
}

func TestSubscribeBadRequest(t *testing.T) {
	tc, url := initServer(t, 5)
	require.NoError(t, tc.MintUntil(10))

	tests := []struct {
		query  string
		status int
	}{
		{"?pos=11", http.StatusBadRequest},
		{"?pos=abc", http.StatusBadRequest},
		{"?pos=0", http.StatusForbidden},
		{"?subnet=x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(url+tt.query, nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestEventFilter(t *testing.T) {
	id := tensor.SubnetID(3)
	rec := &eventdb.Record{Name: "StakeAdded", Subnet: 3}

	assert.True(t, (*EventFilter)(nil).Match(rec))
	assert.True(t, (&EventFilter{}).Match(rec))
	assert.True(t, (&EventFilter{Subnet: &id, Names: map[string]bool{"StakeAdded": true}}).Match(rec))
	assert.False(t, (&EventFilter{Names: map[string]bool{"StakeRemoved": true}}).Match(rec))

	other := tensor.SubnetID(4)
	assert.False(t, (&EventFilter{Subnet: &other}).Match(rec))
}
