// Package metrics exposes Prometheus collectors for detection runs.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the search collectors. A nil *Metrics records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	Searches       prometheus.Counter
	Events         prometheus.Counter
	Candidates     *prometheus.CounterVec
	SearchDuration prometheus.Histogram
	Vessels        prometheus.Gauge
}

// New registers the collectors against reg, defaulting to the global
// registry when nil. Registering twice on one registry reuses the existing
// collectors.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	searches, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "collision_searches_total",
		Help: "Completed proximity searches.",
	}))
	if err != nil {
		return nil, err
	}
	events, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "collision_events_total",
		Help: "Collision events emitted by proximity searches.",
	}))
	if err != nil {
		return nil, err
	}
	candidates, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "collision_candidates_total",
		Help: "Candidate reports by stage: coarse (inside the time/coordinate box) and refined (inside the distance threshold).",
	}, []string{"stage"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "collision_search_duration_seconds",
		Help:    "Wall time of proximity searches.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}))
	if err != nil {
		return nil, err
	}
	vessels, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "collision_search_vessels",
		Help: "Vessels covered by the most recent search.",
	}))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:       gatherer,
		Searches:       searches,
		Events:         events,
		Candidates:     candidates,
		SearchDuration: duration,
		Vessels:        vessels,
	}, nil
}

// AddCandidates records the pool sizes of one reference report.
func (m *Metrics) AddCandidates(coarse, refined int) {
	if m == nil {
		return
	}
	m.Candidates.WithLabelValues("coarse").Add(float64(coarse))
	m.Candidates.WithLabelValues("refined").Add(float64(refined))
}

// ObserveSearch records a completed search.
func (m *Metrics) ObserveSearch(vessels, events int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Searches.Inc()
	m.Events.Add(float64(events))
	m.Vessels.Set(float64(vessels))
	m.SearchDuration.Observe(elapsed.Seconds())
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if m != nil && m.gatherer != nil {
		gatherer = m.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
