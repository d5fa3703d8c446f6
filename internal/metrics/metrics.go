// Reelpick - Movie Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

// Package metrics holds the Prometheus instrumentation for the recommendation
// pipeline. Collectors register on the default registry through promauto; the
// embedding application decides whether and where to expose them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by catalog and pipeline counters.
const (
	OutcomeSuccess     = "success"
	OutcomeNotFound    = "not_found"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
	OutcomeCancelled   = "cancelled"
	OutcomeRejected    = "rejected"
	OutcomeEmpty       = "empty"
)

var (
	// Upstream Catalog Metrics
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Total number of upstream catalog requests",
		},
		[]string{"catalog", "operation", "outcome"},
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Duration of upstream catalog requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"catalog", "operation"},
	)

	CatalogRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_rate_limit_retries_total",
			Help: "Total number of retries after HTTP 429 responses",
		},
		[]string{"catalog"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"}, // "metadata", "trailer"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (capacity)",
		},
		[]string{"cache"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected", "cancelled"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Pipeline Metrics
	RecommendStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_stage_duration_seconds",
			Help:    "Duration of each recommendation pipeline stage in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"}, // "profile", "discover", "select", "metadata", "trailer"
	)

	RecommendCandidates = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_candidates",
			Help: "Number of items leaving each pipeline stage on the last request",
		},
		[]string{"stage"},
	)

	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // success, empty, cancelled, error, superseded
	)

	SubQueryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_subquery_failures_total",
			Help: "Upstream sub-queries that failed and were skipped",
		},
		[]string{"source"},
	)
)

// RecordCatalogRequest records the outcome and latency of one upstream call.
func RecordCatalogRequest(catalog, operation, outcome string, duration time.Duration) {
	CatalogRequests.WithLabelValues(catalog, operation, outcome).Inc()
	CatalogRequestDuration.WithLabelValues(catalog, operation).Observe(duration.Seconds())
}

// RecordStage records how long a pipeline stage took and how many items it produced.
func RecordStage(stage string, duration time.Duration, items int) {
	RecommendStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	RecommendCandidates.WithLabelValues(stage).Set(float64(items))
}

// RecordCacheLookup records a hit or a miss for the named cache.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
		return
	}
	CacheMisses.WithLabelValues(cache).Inc()
}
