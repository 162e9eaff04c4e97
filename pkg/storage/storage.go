package storage

import (
	"context"

	"warden-hq/warden/pkg/checker"
	"warden-hq/warden/pkg/policy"
)

// Storage persists policies and serves candidate sets for decisions.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Add persists a new policy. Fails with *PolicyExistsError when the
	// uid is already stored.
	Add(ctx context.Context, p *policy.Policy) error

	// Get returns the policy with the given uid, or (nil, nil) when absent.
	Get(ctx context.Context, uid string) (*policy.Policy, error)

	// GetAll returns a page of stored policies in a stable order. Fails
	// with ErrInvalidPagination when limit <= 0 or offset < 0.
	GetAll(ctx context.Context, limit, offset int) ([]*policy.Policy, error)

	// FindForInquiry returns the candidate policies for an inquiry. The
	// checker's kind may be used to pre-filter (an unrecognized kind fails
	// with *checker.UnknownCheckerTypeError); a nil checker disables
	// filtering. Candidates are a fresh, restartable result: re-querying
	// starts over, there is no cursor state.
	FindForInquiry(ctx context.Context, inquiry *policy.Inquiry, chk checker.Checker) ([]*policy.Policy, error)

	// Update replaces the stored policy with the same uid. Fails with
	// *PolicyUpdateError when the uid is absent.
	Update(ctx context.Context, p *policy.Policy) error

	// Delete removes the policy with the given uid. Fails with
	// *PolicyNotFoundError when the uid is absent.
	Delete(ctx context.Context, uid string) error
}

// TypeForChecker maps a checker to the policy family its candidates must
// belong to. ok=false means no pre-filtering (nil checker).
func TypeForChecker(chk checker.Checker) (policy.Type, bool, error) {
	if chk == nil {
		return "", false, nil
	}
	switch chk.Kind() {
	case checker.KindExact, checker.KindFuzzy, checker.KindRegex:
		return policy.TypeStringBased, true, nil
	case checker.KindRules:
		return policy.TypeRuleBased, true, nil
	default:
		return "", false, &checker.UnknownCheckerTypeError{Kind: chk.Kind()}
	}
}
