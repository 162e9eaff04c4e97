package checker

import "warden-hq/warden/pkg/policy"

// Rules evaluates rule-based policies: within a field at least one
// condition must be satisfied, where a condition is either a bare Rule
// applied to the whole inquiry field value or a field map whose every entry
// must be satisfied against the inquiry's field map at the same key.
type Rules struct{}

// NewRules creates the rule-based strategy.
func NewRules() *Rules {
	return &Rules{}
}

// Kind implements Checker.
func (c *Rules) Kind() Kind {
	return KindRules
}

// Fits implements Checker.
func (c *Rules) Fits(p *policy.Policy, inquiry *policy.Inquiry) (bool, error) {
	typ, ok := p.DeriveType()
	if !ok || typ != policy.TypeRuleBased {
		return false, nil
	}

	fields := []struct {
		conditions []any
		value      any
	}{
		{p.Subjects, inquiry.Subject},
		{p.Resources, inquiry.Resource},
		{p.Actions, inquiry.Action},
	}

	for _, f := range fields {
		if !fieldMatches(f.conditions, f.value, inquiry) {
			return false, nil
		}
	}

	return contextSatisfied(p, inquiry), nil
}

// fieldMatches ORs the field's conditions against the inquiry value.
func fieldMatches(conditions []any, value any, inquiry *policy.Inquiry) bool {
	for _, cond := range conditions {
		if conditionMatches(cond, value, inquiry) {
			return true
		}
	}
	return false
}

func conditionMatches(cond, value any, inquiry *policy.Inquiry) bool {
	fieldMap, ok := cond.(map[string]any)
	if !ok {
		// Bare Rule (or literal) applied to the whole field value.
		return asRule(cond).Satisfied(value, inquiry)
	}

	inquiryMap, ok := value.(map[string]any)
	if !ok {
		return false
	}

	for key, sub := range fieldMap {
		v, ok := inquiryMap[key]
		if !ok {
			return false
		}
		if !asRule(sub).Satisfied(v, inquiry) {
			return false
		}
	}
	return true
}
