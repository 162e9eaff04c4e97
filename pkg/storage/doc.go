// Package storage defines the policy persistence contract consumed by the
// Guard and the caching layer, the error taxonomy shared by all backends,
// and two reference implementations: an in-memory store and an observable
// wrapper that turns mutations into "policy set changed" notifications.
//
// Concrete durable backends live in subpackages (sqlite, file). Backends
// may pre-filter FindForInquiry results by the checker's kind for
// efficiency, but must never omit a policy the checker would deem a match;
// the Guard always re-applies the checker to every candidate.
package storage
