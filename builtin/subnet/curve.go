// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subnet

import (
	"math"

	"github.com/hayotensor/hypertensor/builtin/params"
	"github.com/hayotensor/hypertensor/percent"
)

// MinNodes returns the minimum node count for a subnet of the given memory.
//
// Below MinNodesCurveXStart (a fraction of MaxSubnetMemoryMB) it is memory / BaseSubnetNodeMemoryMB.
// Above it that value is scaled by a multiplier falling linearly from YStart at XStart to YEnd at 100%,
// rounded up.
func MinNodes(memoryMB uint64, p *params.Values) uint32 {
	var simple uint64
	if p.BaseSubnetNodeMemoryMB > 0 {
		simple = memoryMB / p.BaseSubnetNodeMemoryMB
	}

	min := simple
	x := percent.DivUint64(memoryMB, p.MaxSubnetMemoryMB)
	if x > p.MinNodesCurveXStart && p.MinNodesCurveXStart < percent.Factor {
		if x > percent.Factor {
			x = percent.Factor
		}
		mult := p.MinNodesCurveYStart
		if p.MinNodesCurveYStart > p.MinNodesCurveYEnd {
			drop := (p.MinNodesCurveYStart - p.MinNodesCurveYEnd) * (x - p.MinNodesCurveXStart) /
				(percent.Factor - p.MinNodesCurveXStart)
			mult = p.MinNodesCurveYStart - drop
		}
		scaled := simple * mult
		min = scaled / percent.Factor
		if scaled%percent.Factor != 0 {
			min++
		}
	}

	return clampNodes(min, p)
}

// TargetNodes returns min + min * TargetSubnetNodesMultiplier.
func TargetNodes(min uint32, p *params.Values) uint32 {
	target := uint64(min) + percent.MulUint64(uint64(min), p.TargetSubnetNodesMultiplier)
	return clampNodes(target, p)
}

func clampNodes(n uint64, p *params.Values) uint32 {
	if n < uint64(p.MinSubnetNodes) {
		n = uint64(p.MinSubnetNodes)
	}
	if p.MaxSubnetNodes > 0 && n > uint64(p.MaxSubnetNodes) {
		n = uint64(p.MaxSubnetNodes)
	}
	if n > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(n)
}
