// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

type noopService struct{}

func (noopService) Counter(string) CountMeter { return noopMeter{} }
func (noopService) CounterVec(string, []string) CountVecMeter { return noopMeter{} }
func (noopService) Gauge(string) GaugeMeter { return noopMeter{} }
func (noopService) GaugeVec(string, []string) GaugeVecMeter { return noopMeter{} }
func (noopService) Histogram(string, []int64) HistogramMeter { return noopMeter{} }
func (noopService) HistogramVec(string, []string, []int64) HistogramVecMeter { return noopMeter{} }
func (noopService) Handler() http.Handler { return nil }

type noopMeter struct{}

func (noopMeter) Add(int64) {}
func (noopMeter) Set(int64) {}
func (noopMeter) Observe(int64) {}
func (noopMeter) AddWithLabel(int64, map[string]string) {}
func (noopMeter) SetWithLabel(int64, map[string]string) {}
func (noopMeter) ObserveWithLabels(int64, map[string]string) {}
