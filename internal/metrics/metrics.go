// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics holds the Prometheus collectors for provider adapter calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sourcefinder"

// Metrics groups the adapter collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	requests    *prometheus.CounterVec
	failures    *prometheus.CounterVec
	suggestions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheHits   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adapter_requests_total",
			Help:      "Adapter searches started.",
		}, []string{"adapter"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adapter_failures_total",
			Help:      "Adapter searches that failed and contributed nothing.",
		}, []string{"adapter"}),
		suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adapter_suggestions_total",
			Help:      "Suggestions returned by adapters before deduplication.",
		}, []string{"adapter"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "adapter_duration_seconds",
			Help:      "Adapter search latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		}, []string{"adapter"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Adapter searches answered from the response cache.",
		}, []string{"adapter"}),
	}
	reg.MustRegister(m.requests, m.failures, m.suggestions, m.duration, m.cacheHits)
	return m
}

// ObserveSearch records one finished adapter search.
func (m *Metrics) ObserveSearch(adapter string, elapsed time.Duration, n int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(adapter).Inc()
	m.suggestions.WithLabelValues(adapter).Add(float64(n))
	m.duration.WithLabelValues(adapter).Observe(elapsed.Seconds())
}

// AdapterFailed records a failure absorbed at the adapter boundary.
func (m *Metrics) AdapterFailed(adapter string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(adapter).Inc()
}

// CacheHit records an adapter search served from cache.
func (m *Metrics) CacheHit(adapter string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(adapter).Inc()
}
