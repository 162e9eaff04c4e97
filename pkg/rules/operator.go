package rules

import "warden-hq/warden/pkg/policy"

// Eq is satisfied when the checked value equals the configured one.
type Eq struct {
	Value any `json:"value"`
}

// Satisfied implements policy.Rule.
func (r *Eq) Satisfied(what any, _ *policy.Inquiry) bool {
	return equals(r.Value, what)
}

// NotEq is satisfied when the checked value differs from the configured one.
type NotEq struct {
	Value any `json:"value"`
}

// Satisfied implements policy.Rule.
func (r *NotEq) Satisfied(what any, _ *policy.Inquiry) bool {
	return !equals(r.Value, what)
}

// Greater is satisfied when the checked value orders strictly after the
// configured one. Unorderable pairs are unsatisfied.
type Greater struct {
	Value any `json:"value"`
}

// Satisfied implements policy.Rule.
func (r *Greater) Satisfied(what any, _ *policy.Inquiry) bool {
	c, ok := compareOrdered(what, r.Value)
	return ok && c > 0
}

// Less is satisfied when the checked value orders strictly before the
// configured one.
type Less struct {
	Value any `json:"value"`
}

// Satisfied implements policy.Rule.
func (r *Less) Satisfied(what any, _ *policy.Inquiry) bool {
	c, ok := compareOrdered(what, r.Value)
	return ok && c < 0
}

// GreaterOrEqual is satisfied when the checked value orders after or equal
// to the configured one.
type GreaterOrEqual struct {
	Value any `json:"value"`
}

// Satisfied implements policy.Rule.
func (r *GreaterOrEqual) Satisfied(what any, _ *policy.Inquiry) bool {
	c, ok := compareOrdered(what, r.Value)
	return ok && c >= 0
}

// LessOrEqual is satisfied when the checked value orders before or equal to
// the configured one.
type LessOrEqual struct {
	Value any `json:"value"`
}

// Satisfied implements policy.Rule.
func (r *LessOrEqual) Satisfied(what any, _ *policy.Inquiry) bool {
	c, ok := compareOrdered(what, r.Value)
	return ok && c <= 0
}
