// Copyright (c) 2025 The Hypertensor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	s := noopService{}
	assert.Nil(t, s.Handler())

	// must not panic
	s.Counter("c").Add(1)
	s.CounterVec("cv", []string{"l"}).AddWithLabel(1, map[string]string{"l": "x"})
	s.Gauge("g").Set(3)
	s.GaugeVec("gv", []string{"l"}).SetWithLabel(1, map[string]string{"l": "x"})
	s.Histogram("h", Bucket10s).Observe(10)
	s.HistogramVec("hv", []string{"l"}, nil).ObserveWithLabels(1, map[string]string{"l": "x"})
}

func TestPrometheus(t *testing.T) {
	s := newPromService()

	c := s.Counter("calls")
	c.Add(2)
	s.Counter("calls").Add(3)
	assert.Equal(t, float64(5), testutil.ToFloat64(c.(promCounter).c))

	cv := s.CounterVec("calls_by_op", []string{"op"})
	cv.AddWithLabel(1, map[string]string{"op": "attest"})
	cv.AddWithLabel(4, map[string]string{"op": "attest"})
	cv.AddWithLabel(1, map[string]string{"op": "validate"})
	vec := cv.(promCounterVec).c
	assert.Equal(t, float64(5), testutil.ToFloat64(vec.WithLabelValues("attest")))
	assert.Equal(t, float64(1), testutil.ToFloat64(vec.WithLabelValues("validate")))

	g := s.Gauge("active")
	g.Set(7)
	g.Add(-2)
	assert.Equal(t, float64(5), testutil.ToFloat64(g.(promGauge).g))

	gv := s.GaugeVec("pool", []string{"subnet"})
	gv.SetWithLabel(10, map[string]string{"subnet": "1"})
	gv.AddWithLabel(5, map[string]string{"subnet": "1"})
	assert.Equal(t, float64(15), testutil.ToFloat64(gv.(promGaugeVec).g.WithLabelValues("1")))

	s.Histogram("duration", Bucket10s).Observe(700)
	s.HistogramVec("pass", []string{"pass"}, nil).ObserveWithLabels(3, map[string]string{"pass": "reward"})

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	for _, name := range []string{
		"hypertensor_calls 5",
		`hypertensor_calls_by_op{op="attest"} 5`,
		"hypertensor_active 5",
		"hypertensor_duration_bucket",
		`hypertensor_pass_count{pass="reward"} 1`,
		"go_goroutines",
	} {
		assert.Contains(t, string(body), name)
	}
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	f := lazy(func() int {
		calls++
		return calls
	})
	assert.Equal(t, 1, f())
	assert.Equal(t, 1, f())
	assert.Equal(t, 1, calls)
}
