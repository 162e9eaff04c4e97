package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDecisionMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewDecisionMetrics("warden", registry)

	m.ObserveDecision(true, 0.001)
	m.ObserveDecision(false, 0.002)
	m.ObserveDecision(false, 0.003)
	m.IncEvaluationError()

	if got := testutil.ToFloat64(m.decisionsTotal.WithLabelValues("allow")); got != 1 {
		t.Errorf("allow decisions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.decisionsTotal.WithLabelValues("deny")); got != 2 {
		t.Errorf("deny decisions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.errorsTotal); got != 1 {
		t.Errorf("evaluation errors = %v, want 1", got)
	}
}

func TestCacheMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewCacheMetrics("warden", registry)

	m.Hit("guard")
	m.Hit("guard")
	m.Miss("guard")
	m.SetEntries("guard", 7)
	m.Eviction("guard")

	if got := testutil.ToFloat64(m.hitsTotal.WithLabelValues("guard")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.missesTotal.WithLabelValues("guard")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.entries.WithLabelValues("guard")); got != 7 {
		t.Errorf("entries = %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.evictionsTotal.WithLabelValues("guard")); got != 1 {
		t.Errorf("evictions = %v, want 1", got)
	}
}

func TestNilReceiversAreSafe(t *testing.T) {
	var d *DecisionMetrics
	d.ObserveDecision(true, 0)
	d.IncEvaluationError()

	var c *CacheMetrics
	c.Hit("x")
	c.Miss("x")
	c.SetEntries("x", 1)
	c.Eviction("x")
}
