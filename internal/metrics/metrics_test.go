// TablePick - Preference-Driven Restaurant Recommendations
// Copyright 2026 TablePick Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablepick/tablepick

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations", "200"))

	ObserveHTTPRequest("GET", "/api/v1/recommendations", 200, 15*time.Millisecond)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/recommendations", "200"))
	if after != before+1 {
		t.Errorf("request counter = %v, want %v", after, before+1)
	}
}

func TestRecommendationCounters(t *testing.T) {
	before := testutil.ToFloat64(RecommendationRounds.WithLabelValues("session"))
	RecommendationRounds.WithLabelValues("session").Inc()
	if got := testutil.ToFloat64(RecommendationRounds.WithLabelValues("session")); got != before+1 {
		t.Errorf("rounds counter = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(SessionFeedback.WithLabelValues("liked"))
	SessionFeedback.WithLabelValues("liked").Inc()
	if got := testutil.ToFloat64(SessionFeedback.WithLabelValues("liked")); got != before+1 {
		t.Errorf("feedback counter = %v, want %v", got, before+1)
	}
}

func TestCircuitBreakerGauge(t *testing.T) {
	CircuitBreakerState.WithLabelValues("places-api").Set(2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("places-api")); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}
	CircuitBreakerState.WithLabelValues("places-api").Set(0)
}
