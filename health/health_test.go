// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_NewBestBlock(t *testing.T) {
	h := New(time.Minute)

	status := h.Status()
	assert.False(t, status.Healthy)
	assert.Nil(t, status.BlockIngestion)

	h.NewBestBlock(7)
	status = h.Status()
	assert.True(t, status.Healthy)
	require.NotNil(t, status.BlockIngestion)
	assert.Equal(t, uint32(7), status.BlockIngestion.BestBlock)
	assert.WithinDuration(t, time.Now(), *status.BlockIngestion.BestBlockIngestionTimestamp, time.Second)
}

func TestHealth_Stale(t *testing.T) {
	h := New(time.Minute)
	h.NewBestBlock(1)
	h.newBestBlock = time.Now().Add(-2 * time.Minute)
	assert.False(t, h.Status().Healthy)

	// no tolerance never goes stale
	h.tolerance = 0
	assert.True(t, h.Status().Healthy)
}

func TestHealth_Nil(t *testing.T) {
	var h *Health
	assert.NotPanics(t, func() { h.NewBestBlock(1) })
}
