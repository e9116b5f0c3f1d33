// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

// Package metrics exposes Prometheus instrumentation for the
// recommendation service: API latency, recommendation rounds, live
// search volume, and circuit breaker state.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tablepick_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablepick_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// Recommendation Metrics
	RecommendationRounds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablepick_recommendation_rounds_total",
			Help: "Total number of recommendation rounds served",
		},
		[]string{"source"}, // "session", "nearby", "city", "wishlist", "similar"
	)

	SessionFeedback = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablepick_session_feedback_total",
			Help: "Total number of feedback entries collected",
		},
		[]string{"kind"}, // "liked", "disliked"
	)

	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tablepick_sessions_started_total",
			Help: "Total number of recommendation sessions started",
		},
	)

	ProfileRebuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tablepick_profile_rebuilds_total",
			Help: "Total number of preference profile rebuilds",
		},
	)

	// Live Search Metrics
	LiveSearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablepick_live_search_requests_total",
			Help: "Total number of live place-search requests",
		},
		[]string{"operation", "status"}, // operation: "nearby", "text"; status: "success", "error", "rejected"
	)

	LiveSearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tablepick_live_search_duration_seconds",
			Help:    "Duration of live place-search requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tablepick_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablepick_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// ObserveHTTPRequest records one completed HTTP request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
}
