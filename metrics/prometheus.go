// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hayotensor/hypertensor/log"
)

const namespace = "hypertensor"

var logger = log.WithContext("pkg", "metrics")

// InitializePrometheusMetrics switches every meter created from now on to prometheus.
// Calling it again keeps the existing registry.
func InitializePrometheusMetrics() {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := service.(*promService); !ok {
		service = newPromService()
	}
}

type promService struct {
	registry *prometheus.Registry
	meters   sync.Map // name => meter
}

func newPromService() *promService {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
	)
	return &promService{registry: reg}
}

// meter returns the meter registered under name, creating it with newFn.
func meter[T any](s *promService, name string, newFn func() (prometheus.Collector, T)) T {
	if v, ok := s.meters.Load(name); ok {
		return v.(T)
	}
	c, m := newFn()
	if err := s.registry.Register(c); err != nil {
		logger.Warn("unable to register metric", "name", name, "err", err)
	}
	v, _ := s.meters.LoadOrStore(name, m)
	return v.(T)
}

func floatBuckets(buckets []int64) []float64 {
	if len(buckets) == 0 {
		return nil
	}
	out := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, float64(b))
	}
	return out
}

func (s *promService) Counter(name string) CountMeter {
	return meter(s, name, func() (prometheus.Collector, CountMeter) {
		c := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
		return c, promCounter{c}
	})
}

func (s *promService) CounterVec(name string, labels []string) CountVecMeter {
	return meter(s, name, func() (prometheus.Collector, CountVecMeter) {
		c := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
		return c, promCounterVec{c}
	})
}

func (s *promService) Gauge(name string) GaugeMeter {
	return meter(s, name, func() (prometheus.Collector, GaugeMeter) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
		return g, promGauge{g}
	})
}

func (s *promService) GaugeVec(name string, labels []string) GaugeVecMeter {
	return meter(s, name, func() (prometheus.Collector, GaugeVecMeter) {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: name}, labels)
		return g, promGaugeVec{g}
	})
}

func (s *promService) Histogram(name string, buckets []int64) HistogramMeter {
	return meter(s, name, func() (prometheus.Collector, HistogramMeter) {
		h := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets(buckets),
		})
		return h, promHistogram{h}
	})
}

func (s *promService) HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return meter(s, name, func() (prometheus.Collector, HistogramVecMeter) {
		h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets(buckets),
		}, labels)
		return h, promHistogramVec{h}
	})
}

func (s *promService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

type promCounter struct{ c prometheus.Counter }

func (m promCounter) Add(i int64) { m.c.Add(float64(i)) }

type promCounterVec struct{ c *prometheus.CounterVec }

func (m promCounterVec) AddWithLabel(i int64, labels map[string]string) {
	m.c.With(labels).Add(float64(i))
}

type promGauge struct{ g prometheus.Gauge }

func (m promGauge) Add(i int64) { m.g.Add(float64(i)) }
func (m promGauge) Set(i int64) { m.g.Set(float64(i)) }

type promGaugeVec struct{ g *prometheus.GaugeVec }

func (m promGaugeVec) AddWithLabel(i int64, labels map[string]string) {
	m.g.With(labels).Add(float64(i))
}

func (m promGaugeVec) SetWithLabel(i int64, labels map[string]string) {
	m.g.With(labels).Set(float64(i))
}

type promHistogram struct{ h prometheus.Histogram }

func (m promHistogram) Observe(i int64) { m.h.Observe(float64(i)) }

type promHistogramVec struct{ h *prometheus.HistogramVec }

func (m promHistogramVec) ObserveWithLabels(i int64, labels map[string]string) {
	m.h.With(labels).Observe(float64(i))
}
