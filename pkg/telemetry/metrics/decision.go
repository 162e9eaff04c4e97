package metrics

import "github.com/prometheus/client_golang/prometheus"

// DecisionMetrics tracks Guard decisions.
//
// Metrics:
//   - <ns>_decisions_total: decisions by outcome ("allow" / "deny")
//   - <ns>_decision_seconds: decision latency
//   - <ns>_evaluation_errors_total: internal faults converted to deny
type DecisionMetrics struct {
	decisionsTotal *prometheus.CounterVec
	decisionTime   prometheus.Histogram
	errorsTotal    prometheus.Counter
}

// NewDecisionMetrics creates and registers decision metrics with the
// provided registry.
func NewDecisionMetrics(namespace string, registry *prometheus.Registry) *DecisionMetrics {
	m := &DecisionMetrics{
		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Total number of authorization decisions",
			},
			[]string{"outcome"},
		),
		decisionTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "decision_seconds",
				Help:      "Authorization decision latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
		errorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluation_errors_total",
				Help:      "Total number of internal faults converted to a deny",
			},
		),
	}

	registry.MustRegister(m.decisionsTotal, m.decisionTime, m.errorsTotal)
	return m
}

// ObserveDecision records one decision and its latency.
func (m *DecisionMetrics) ObserveDecision(allowed bool, seconds float64) {
	if m == nil {
		return
	}
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	m.decisionsTotal.WithLabelValues(outcome).Inc()
	m.decisionTime.Observe(seconds)
}

// IncEvaluationError records an internal fault that degraded to a deny.
func (m *DecisionMetrics) IncEvaluationError() {
	if m == nil {
		return
	}
	m.errorsTotal.Inc()
}
