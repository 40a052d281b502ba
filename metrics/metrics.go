// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics is a small facade over prometheus. Meters are no-ops until
// InitializePrometheusMetrics is called, so packages may declare them freely.
package metrics

import (
	"net/http"
	"sync"
)

var (
	mu      sync.RWMutex
	service Service = noopService{}
)

// Service creates and serves meters.
type Service interface {
	Counter(name string) CountMeter
	CounterVec(name string, labels []string) CountVecMeter
	Gauge(name string) GaugeMeter
	GaugeVec(name string, labels []string) GaugeVecMeter
	Histogram(name string, buckets []int64) HistogramMeter
	HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter
	Handler() http.Handler
}

func current() Service {
	mu.RLock()
	defer mu.RUnlock()
	return service
}

// Enabled reports whether meters are backed by prometheus.
func Enabled() bool {
	_, ok := current().(*promService)
	return ok
}

// HTTPHandler serves the collected metrics, nil when disabled.
func HTTPHandler() http.Handler {
	return current().Handler()
}

// Millisecond buckets.
var (
	Bucket10s  = []int64{0, 500, 1000, 2000, 3000, 4000, 5000, 7500, 10_000}
	BucketHTTP = []int64{0, 1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000}
)

type CountMeter interface {
	Add(int64)
}

type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

type GaugeVecMeter interface {
	AddWithLabel(int64, map[string]string)
	SetWithLabel(int64, map[string]string)
}

type HistogramMeter interface {
	Observe(int64)
}

type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

func Counter(name string) CountMeter { return current().Counter(name) }

func CounterVec(name string, labels []string) CountVecMeter {
	return current().CounterVec(name, labels)
}

func Gauge(name string) GaugeMeter { return current().Gauge(name) }

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return current().GaugeVec(name, labels)
}

func Histogram(name string, buckets []int64) HistogramMeter {
	return current().Histogram(name, buckets)
}

func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return current().HistogramVec(name, labels, buckets)
}

// lazy resolves the meter on first use, after the service has been chosen.
func lazy[T any](f func() T) func() T {
	var (
		once sync.Once
		v    T
	)
	return func() T {
		once.Do(func() { v = f() })
		return v
	}
}

func LazyLoadCounter(name string) func() CountMeter {
	return lazy(func() CountMeter { return Counter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return lazy(func() CountVecMeter { return CounterVec(name, labels) })
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return lazy(func() GaugeMeter { return Gauge(name) })
}

func LazyLoadGaugeVec(name string, labels []string) func() GaugeVecMeter {
	return lazy(func() GaugeVecMeter { return GaugeVec(name, labels) })
}

func LazyLoadHistogram(name string, buckets []int64) func() HistogramMeter {
	return lazy(func() HistogramMeter { return Histogram(name, buckets) })
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return lazy(func() HistogramVecMeter { return HistogramVec(name, labels, buckets) })
}
