// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package packer

import "github.com/hayotensor/hypertensor/metrics"

var (
	metricBestBlock    = metrics.LazyLoadGauge("packer_best_block")
	metricPackedEvents = metrics.LazyLoadCounter("packer_events_count")
)
