package rules

import "warden-hq/warden/pkg/policy"

// In is satisfied when the checked value equals one element of the
// configured list.
type In struct {
	Values []any `json:"values"`
}

// Satisfied implements policy.Rule.
func (r *In) Satisfied(what any, _ *policy.Inquiry) bool {
	return containsValue(r.Values, what)
}

// NotIn is satisfied when the checked value equals no element of the
// configured list.
type NotIn struct {
	Values []any `json:"values"`
}

// Satisfied implements policy.Rule.
func (r *NotIn) Satisfied(what any, _ *policy.Inquiry) bool {
	return !containsValue(r.Values, what)
}

// AllIn is satisfied when the checked value is a sequence whose every
// element appears in the configured list. A non-sequence is unsatisfied.
type AllIn struct {
	Values []any `json:"values"`
}

// Satisfied implements policy.Rule.
func (r *AllIn) Satisfied(what any, _ *policy.Inquiry) bool {
	seq, ok := asSequence(what)
	if !ok {
		return false
	}
	for _, el := range seq {
		if !containsValue(r.Values, el) {
			return false
		}
	}
	return true
}

// AllNotIn is satisfied when the checked value is a sequence with at least
// one element outside the configured list.
type AllNotIn struct {
	Values []any `json:"values"`
}

// Satisfied implements policy.Rule.
func (r *AllNotIn) Satisfied(what any, _ *policy.Inquiry) bool {
	seq, ok := asSequence(what)
	if !ok {
		return false
	}
	for _, el := range seq {
		if !containsValue(r.Values, el) {
			return true
		}
	}
	return false
}

// AnyIn is satisfied when the checked value is a sequence with at least one
// element in the configured list.
type AnyIn struct {
	Values []any `json:"values"`
}

// Satisfied implements policy.Rule.
func (r *AnyIn) Satisfied(what any, _ *policy.Inquiry) bool {
	seq, ok := asSequence(what)
	if !ok {
		return false
	}
	for _, el := range seq {
		if containsValue(r.Values, el) {
			return true
		}
	}
	return false
}

// AnyNotIn is satisfied when the checked value is a sequence with no element
// in the configured list.
type AnyNotIn struct {
	Values []any `json:"values"`
}

// Satisfied implements policy.Rule.
func (r *AnyNotIn) Satisfied(what any, _ *policy.Inquiry) bool {
	seq, ok := asSequence(what)
	if !ok {
		return false
	}
	for _, el := range seq {
		if containsValue(r.Values, el) {
			return false
		}
	}
	return true
}

func containsValue(list []any, v any) bool {
	for _, el := range list {
		if equals(el, v) {
			return true
		}
	}
	return false
}
