// Package metrics provides Prometheus collectors for the decision engine:
// decision outcomes and latency, evaluation faults, and cache behavior.
//
// Collectors are registered on a caller-supplied registry so embedding
// applications keep control of their metrics endpoint. All recording
// methods are nil-safe; components constructed without metrics simply
// record nothing.
package metrics
