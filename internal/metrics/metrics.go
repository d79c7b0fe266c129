// Package metrics holds the process prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedRequestsTotal counts feed pages served by requested and effective strategy.
	FeedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitzty_feed_requests_total",
			Help: "Total number of feed pages served",
		},
		[]string{"requested", "strategy"},
	)

	// FeedDuration tracks feed selection latency.
	FeedDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitzty_feed_duration_seconds",
			Help:    "Duration of feed selection in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"strategy"},
	)

	// XPAwardedTotal sums experience points awarded by action.
	XPAwardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitzty_xp_awarded_total",
			Help: "Total experience points awarded",
		},
		[]string{"action"},
	)

	// UnlocksGrantedTotal counts avatar items unlocked through XP.
	UnlocksGrantedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitzty_unlocks_granted_total",
			Help: "Total number of avatar unlocks granted",
		},
	)

	// RecommendationFallbacksTotal counts generations that degraded, by reason.
	RecommendationFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitzty_recommendation_fallbacks_total",
			Help: "Total number of recommendation generations that used the fallback",
		},
		[]string{"part", "reason"},
	)

	// RecommendationsGeneratedTotal counts persisted recommendations.
	RecommendationsGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fitzty_recommendations_generated_total",
			Help: "Total number of recommendations persisted",
		},
	)

	// LLMCircuitState is 0 closed, 1 half-open, 2 open.
	LLMCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitzty_llm_circuit_state",
			Help: "LLM circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)

	// CacheLookupsTotal counts followee cache lookups by result.
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitzty_cache_lookups_total",
			Help: "Total number of followee cache lookups",
		},
		[]string{"result"},
	)
)

// ObserveFeed records one served feed page.
func ObserveFeed(requested, strategy string, d time.Duration) {
	FeedRequestsTotal.WithLabelValues(requested, strategy).Inc()
	FeedDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

// AddXP records an XP award.
func AddXP(action string, xp int) {
	if xp <= 0 {
		return
	}
	XPAwardedTotal.WithLabelValues(action).Add(float64(xp))
}

// SetCircuitState mirrors a breaker state. The numbering matches gobreaker's State.
func SetCircuitState(state int) {
	LLMCircuitState.Set(float64(state))
}
