// Package metrics exposes Prometheus collectors for the analytics service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ingestItemsTotal           *prometheus.CounterVec
	ingestCyclesTotal          *prometheus.CounterVec
	ingestCycleDurationSeconds prometheus.Histogram
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Item outcomes recorded per processed raw result.
const (
	OutcomeCommitted = "committed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		ingestItemsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sims_ingest_items_total",
				Help: "Total raw results processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		ingestCyclesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sims_ingest_cycles_total",
				Help: "Total ingestion cycles, labeled by status.",
			},
			[]string{"status"},
		)

		ingestCycleDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sims_ingest_cycle_duration_seconds",
				Help:    "Histogram of ingestion cycle durations.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveItem increments the per-item counter for the given outcome.
func ObserveItem(outcome string) {
	ingestItemsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCycle records one completed ingestion cycle.
func ObserveCycle(status string, duration time.Duration) {
	ingestCyclesTotal.WithLabelValues(status).Inc()
	ingestCycleDurationSeconds.Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
