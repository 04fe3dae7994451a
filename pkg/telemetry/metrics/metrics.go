// Package metrics exposes Prometheus collectors for the governance engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for governance activity.
type Metrics struct {
	// Admission decisions
	decisions *prometheus.CounterVec

	// Budget state per session
	budgetRemaining *prometheus.GaugeVec
	budgetUsage     *prometheus.GaugeVec

	// Top-ups
	topUps *prometheus.CounterVec

	// Consent failures
	consentFailures *prometheus.CounterVec

	// Sessions
	activeSessions prometheus.Gauge

	// Transport latency
	transportDuration *prometheus.HistogramVec
}

// NewMetrics creates a Metrics instance registered on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a Metrics instance registered on the given
// registerer. Tests pass a fresh registry to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oecs_govern_decisions_total",
				Help: "Total admission decisions by mode and decision kind",
			},
			[]string{"mode", "decision"},
		),

		budgetRemaining: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "oecs_session_budget_remaining",
				Help: "Remaining risk budget per session",
			},
			[]string{"session_id"},
		),

		budgetUsage: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "oecs_session_budget_usage_ratio",
				Help: "Spent/allocated budget ratio per session (0.0-1.0)",
			},
			[]string{"session_id"},
		),

		topUps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oecs_session_topups_total",
				Help: "Total budget top-ups",
			},
			[]string{"session_id"},
		),

		consentFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oecs_consent_failures_total",
				Help: "Total consent failures by kind",
			},
			[]string{"kind"},
		),

		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "oecs_sessions_active",
				Help: "Currently active sessions",
			},
		),

		transportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oecs_transport_request_duration_seconds",
				Help:    "Model transport round-trip duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~200s
			},
			[]string{"provider", "outcome"},
		),
	}
}

// RecordDecision records one admission decision.
func (m *Metrics) RecordDecision(mode, decision string) {
	m.decisions.WithLabelValues(mode, decision).Inc()
}

// UpdateBudget updates the per-session budget gauges.
func (m *Metrics) UpdateBudget(sessionID string, allocated, spent float64) {
	m.budgetRemaining.WithLabelValues(sessionID).Set(allocated - spent)
	if allocated > 0 {
		m.budgetUsage.WithLabelValues(sessionID).Set(spent / allocated)
	}
}

// RecordTopUp records a budget top-up.
func (m *Metrics) RecordTopUp(sessionID string) {
	m.topUps.WithLabelValues(sessionID).Inc()
}

// RecordConsentFailure records a rejected contract phrase or ticket.
func (m *Metrics) RecordConsentFailure(kind string) {
	m.consentFailures.WithLabelValues(kind).Inc()
}

// SessionStarted increments the active session gauge.
func (m *Metrics) SessionStarted() {
	m.activeSessions.Inc()
}

// SessionEnded decrements the active session gauge and drops the session's
// budget gauges.
func (m *Metrics) SessionEnded(sessionID string) {
	m.activeSessions.Dec()
	m.budgetRemaining.DeleteLabelValues(sessionID)
	m.budgetUsage.DeleteLabelValues(sessionID)
}

// RecordTransportDuration records one model transport round trip.
func (m *Metrics) RecordTransportDuration(provider, outcome string, seconds float64) {
	m.transportDuration.WithLabelValues(provider, outcome).Observe(seconds)
}
