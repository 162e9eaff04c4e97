// Package guard implements the decision point of the engine: given an
// inquiry, a storage of policies and a matching strategy, it answers allow
// or deny.
//
// Aggregation follows deny-override with fail-closed semantics: the answer
// is allow only when at least one matching policy allows and none denies;
// no matching policy means deny; and any internal fault while retrieving or
// evaluating candidates means deny. A fault is reported to the logger and
// the metrics, never to the caller.
package guard

import (
	"context"
	"log/slog"
	"time"

	"warden-hq/warden/pkg/checker"
	"warden-hq/warden/pkg/policy"
	"warden-hq/warden/pkg/storage"
	"warden-hq/warden/pkg/telemetry/metrics"
)

// Guard is the decision engine over a (Storage, Checker) pair. Safe for
// concurrent use.
type Guard struct {
	storage storage.Storage
	checker checker.Checker
	logger  *slog.Logger
	metrics *metrics.DecisionMetrics
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the audit logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// WithMetrics enables decision instrumentation.
func WithMetrics(m *metrics.DecisionMetrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

// New creates a Guard deciding against st with chk.
func New(st storage.Storage, chk checker.Checker, opts ...Option) *Guard {
	g := &Guard{
		storage: st,
		checker: chk,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "guard")
	return g
}

// IsAllowed decides the inquiry. It never fails: every internal fault is
// converted to a deny, logged, and counted.
func (g *Guard) IsAllowed(ctx context.Context, inquiry *policy.Inquiry) bool {
	start := time.Now()
	allowed, matched := g.decide(ctx, inquiry)

	g.metrics.ObserveDecision(allowed, time.Since(start).Seconds())
	if allowed {
		g.logger.Info("inquiry allowed", "inquiry", inquiry, "matched", matched)
	} else {
		g.logger.Info("inquiry denied", "inquiry", inquiry, "matched", matched)
	}
	return allowed
}

// decide evaluates the candidate set. Recovering here keeps a panicking
// rule evaluation (policies and inquiries carry host-supplied dynamic
// values) from ever leaking out of the decision boundary.
func (g *Guard) decide(ctx context.Context, inquiry *policy.Inquiry) (allowed bool, matched []string) {
	defer func() {
		if r := recover(); r != nil {
			g.metrics.IncEvaluationError()
			g.logger.Error("panic during policy evaluation, denying", "panic", r, "inquiry", inquiry)
			allowed = false
			matched = nil
		}
	}()

	candidates, err := g.storage.FindForInquiry(ctx, inquiry, g.checker)
	if err != nil {
		g.metrics.IncEvaluationError()
		g.logger.Error("policy retrieval failed, denying", "error", err, "inquiry", inquiry)
		return false, nil
	}

	var anyAllow, anyDeny bool
	for _, p := range candidates {
		fits, err := g.checker.Fits(p, inquiry)
		if err != nil {
			g.metrics.IncEvaluationError()
			g.logger.Error("policy evaluation failed, denying",
				"error", err, "uid", p.UID, "inquiry", inquiry)
			return false, nil
		}
		if !fits {
			continue
		}

		matched = append(matched, p.UID)
		if p.AllowAccess() {
			anyAllow = true
		} else {
			anyDeny = true
		}
	}

	return anyAllow && !anyDeny, matched
}
