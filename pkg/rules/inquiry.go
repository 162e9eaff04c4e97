package rules

import "warden-hq/warden/pkg/policy"

// Inquiry-bound rules compare the checked value against a field of the
// inquiry currently under evaluation rather than a constant, enabling
// policies like "the resource owner must be the requesting subject".

// SubjectEqual is satisfied when the checked value equals the inquiry's
// subject.
type SubjectEqual struct{}

// Satisfied implements policy.Rule.
func (r *SubjectEqual) Satisfied(what any, inquiry *policy.Inquiry) bool {
	return inquiry != nil && equals(what, inquiry.Subject)
}

// ActionEqual is satisfied when the checked value equals the inquiry's
// action.
type ActionEqual struct{}

// Satisfied implements policy.Rule.
func (r *ActionEqual) Satisfied(what any, inquiry *policy.Inquiry) bool {
	return inquiry != nil && equals(what, inquiry.Action)
}

// ResourceIn is satisfied when the checked value is a sequence containing
// the inquiry's resource.
type ResourceIn struct{}

// Satisfied implements policy.Rule.
func (r *ResourceIn) Satisfied(what any, inquiry *policy.Inquiry) bool {
	if inquiry == nil {
		return false
	}
	seq, ok := asSequence(what)
	if !ok {
		return false
	}
	for _, el := range seq {
		if equals(el, inquiry.Resource) {
			return true
		}
	}
	return false
}
