// Package policy defines the core value objects of the decision engine:
// Policy (a stored access rule), Inquiry (the ephemeral request being
// authorized), Effect (allow/deny), and the Rule predicate interface together
// with the tagged-envelope serialization registry that lets every Rule
// variant round-trip through a structured document.
//
// Policies come in two families. String-based policies list plain string
// patterns for subjects, resources and actions; rule-based policies list
// field maps (or bare Rules) instead. The family is derived from the
// condition values and the two must not be mixed within one policy.
package policy
