// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subnet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hayotensor/hypertensor/builtin/params"
)

func TestMinNodes(t *testing.T) {
	p := params.Defaults()

	tests := []struct {
		name     string
		memoryMB uint64
		min      uint32
		target   uint32
	}{
		{"floor", 1, 1, 2},
		{"below curve", 50_000, 3, 6},
		{"at curve start", 250_000, 15, 30},
		// simple = 31, mult = 1 - 0.8 * (0.5-0.25)/0.75 = 0.7333..
		{"mid curve", 1_000_000 / 2, 23, 46},
		// simple = 62, mult = 0.2 -> ceil(12.4)
		{"max memory", 1_000_000, 13, 26},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min := MinNodes(tt.memoryMB, p)
			assert.Equal(t, tt.min, min)
			assert.Equal(t, tt.target, TargetNodes(min, p))
		})
	}
}

func TestMinNodesClamped(t *testing.T) {
	p := params.Defaults()
	p.MaxSubnetNodes = 10

	assert.Equal(t, uint32(10), MinNodes(320_000, p))
	assert.Equal(t, uint32(10), TargetNodes(8, p))
}
