// Package checker implements the strategies that decide whether a single
// policy matches a single inquiry.
//
// Four strategies exist: Exact, Fuzzy and Regex evaluate string-based
// policies (differing only in how one pattern is compared to one inquiry
// string), while Rules evaluates rule-based policies. Every strategy only
// considers policies of its own family; the other family's policies simply
// do not match, they are never an error.
package checker

import (
	"fmt"

	"warden-hq/warden/pkg/pattern"
	"warden-hq/warden/pkg/policy"
	"warden-hq/warden/pkg/rules"
)

// Kind identifies a checker strategy. Storages use it for filter pushdown
// and the decision cache uses it as part of its memoization key.
type Kind string

const (
	// KindExact matches patterns by literal string equality.
	KindExact Kind = "exact"

	// KindFuzzy matches when the inquiry string contains the pattern.
	KindFuzzy Kind = "fuzzy"

	// KindRegex matches tag-compiled patterns against the whole string.
	KindRegex Kind = "regex"

	// KindRules evaluates rule-based policies.
	KindRules Kind = "rules"
)

// UnknownCheckerTypeError indicates a component (typically a storage's
// filter pushdown) received a checker kind it does not recognize.
type UnknownCheckerTypeError struct {
	Kind Kind
}

// Error returns the error message.
func (e *UnknownCheckerTypeError) Error() string {
	return fmt.Sprintf("checker: unknown checker kind %q", e.Kind)
}

// Checker decides whether a policy matches an inquiry. Implementations are
// stateless apart from the shared pattern compiler and safe for concurrent
// use.
type Checker interface {
	// Kind identifies the strategy.
	Kind() Kind

	// Fits reports whether the policy matches the inquiry. Policies of the
	// wrong family yield (false, nil). An error (e.g. a malformed pattern
	// template) means the match could not be decided; the Guard turns it
	// into a deny.
	Fits(p *policy.Policy, inquiry *policy.Inquiry) (bool, error)
}

// New constructs a checker by kind. The compiler is shared by reference and
// only consulted by the regex strategy; nil means a private compiler with
// the default cache size.
func New(kind Kind, compiler *pattern.Compiler) (Checker, error) {
	switch kind {
	case KindExact:
		return NewExact(), nil
	case KindFuzzy:
		return NewFuzzy(), nil
	case KindRegex:
		return NewRegex(compiler), nil
	case KindRules:
		return NewRules(), nil
	default:
		return nil, &UnknownCheckerTypeError{Kind: kind}
	}
}

// stringValue extracts an inquiry field for string-based matching. A nil
// field counts as the empty string, mirroring an inquiry built without it.
func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", true
	case string:
		return s, true
	default:
		return "", false
	}
}

// contextSatisfied evaluates a policy's context rules against the inquiry's
// context map. Every entry must be satisfied; a missing context key fails.
// Literal context values act as an implicit equality rule.
func contextSatisfied(p *policy.Policy, inquiry *policy.Inquiry) bool {
	for name, cond := range p.Context {
		value, ok := inquiry.Context[name]
		if !ok {
			return false
		}
		if !asRule(cond).Satisfied(value, inquiry) {
			return false
		}
	}
	return true
}

// asRule passes Rules through and wraps literals as implicit equality.
func asRule(v any) policy.Rule {
	if r, ok := v.(policy.Rule); ok {
		return r
	}
	return &rules.Eq{Value: v}
}
