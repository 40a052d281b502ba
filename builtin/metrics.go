// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/hayotensor/hypertensor/metrics"
)

var (
	metricCalls              = metrics.LazyLoadCounterVec("network_calls_count", []string{"op", "outcome"})
	metricEpochPassDuration  = metrics.LazyLoadHistogramVec("network_epoch_pass_duration_ms", []string{"pass"}, metrics.Bucket10s)
	metricSlashes            = metrics.LazyLoadCounter("network_slashes_count")
	metricNodeRemovals       = metrics.LazyLoadCounterVec("network_node_removals_count", []string{"reason"})
	metricSubnetDeactivation = metrics.LazyLoadCounterVec("network_subnet_deactivations_count", []string{"reason"})
	metricActiveSubnets      = metrics.LazyLoadGauge("network_active_subnets")
)
