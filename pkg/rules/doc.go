// Package rules implements every Rule variant understood by the decision
// engine: comparison and boolean operators, string and list predicates, a
// network CIDR check, inquiry-bound rules, and the And/Or/Not combinators.
//
// Rules are small immutable structs used by pointer. Each variant registers
// itself with pkg/policy under a stable tag, so any rule survives a
// structured-document round trip with its variant identity intact.
//
// Rules evaluate permissively typed values (whatever the host put into an
// inquiry or policy document). A value a rule cannot interpret makes the
// rule unsatisfied rather than panicking; the Guard's fail-closed stance
// turns every malformed input into a deny.
package rules
