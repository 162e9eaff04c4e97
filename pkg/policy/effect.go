package policy

// Effect is the outcome a policy attaches to a match.
type Effect string

const (
	// Allow grants access when the policy matches.
	Allow Effect = "allow"

	// Deny refuses access when the policy matches. Any matching deny policy
	// overrides every matching allow policy.
	Deny Effect = "deny"
)

// Valid reports whether e is one of the two known effects.
func (e Effect) Valid() bool {
	return e == Allow || e == Deny
}
