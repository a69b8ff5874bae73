package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func families(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func TestObserveSearch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.AddCandidates(5, 2)
	m.AddCandidates(3, 0)
	m.ObserveSearch(4, 2, 20*time.Millisecond)

	fams := families(t, reg)
	assert.Equal(t, 1.0, fams["collision_searches_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 2.0, fams["collision_events_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 4.0, fams["collision_search_vessels"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, uint64(1), fams["collision_search_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount())

	stages := map[string]float64{}
	for _, metric := range fams["collision_candidates_total"].GetMetric() {
		stages[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"coarse": 8, "refined": 2}, stages)
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New(reg)
	require.NoError(t, err)
	b, err := New(reg)
	require.NoError(t, err)
	assert.Same(t, a.Events, b.Events)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.AddCandidates(1, 1)
	m.ObserveSearch(1, 1, time.Second)
	assert.NotNil(t, m.Handler())
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	m.ObserveSearch(2, 3, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "collision_events_total 3")
}
