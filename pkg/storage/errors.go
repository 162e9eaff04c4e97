package storage

import (
	"errors"
	"fmt"
)

// ErrInvalidPagination indicates a GetAll call with limit <= 0 or a
// negative offset.
var ErrInvalidPagination = errors.New("storage: limit must be positive and offset non-negative")

// ValidatePagination checks GetAll arguments; every backend applies it.
func ValidatePagination(limit, offset int) error {
	if limit <= 0 || offset < 0 {
		return fmt.Errorf("%w (limit=%d, offset=%d)", ErrInvalidPagination, limit, offset)
	}
	return nil
}

// PolicyExistsError indicates an Add for a uid that is already stored.
type PolicyExistsError struct {
	UID string
}

// Error returns the error message.
func (e *PolicyExistsError) Error() string {
	return fmt.Sprintf("storage: policy with uid %q already exists", e.UID)
}

// PolicyNotFoundError indicates an operation on a uid that is not stored.
type PolicyNotFoundError struct {
	UID string
}

// Error returns the error message.
func (e *PolicyNotFoundError) Error() string {
	return fmt.Sprintf("storage: policy with uid %q not found", e.UID)
}

// PolicyCreationError indicates a policy could not be persisted on Add.
type PolicyCreationError struct {
	UID   string
	Cause error
}

// Error returns the error message.
func (e *PolicyCreationError) Error() string {
	return fmt.Sprintf("storage: create policy %q: %v", e.UID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *PolicyCreationError) Unwrap() error {
	return e.Cause
}

// PolicyUpdateError indicates a policy could not be updated, including
// updates of a uid that was never stored.
type PolicyUpdateError struct {
	UID   string
	Cause error
}

// Error returns the error message.
func (e *PolicyUpdateError) Error() string {
	return fmt.Sprintf("storage: update policy %q: %v", e.UID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *PolicyUpdateError) Unwrap() error {
	return e.Cause
}

// PolicyDeletionError indicates a policy could not be deleted.
type PolicyDeletionError struct {
	UID   string
	Cause error
}

// Error returns the error message.
func (e *PolicyDeletionError) Error() string {
	return fmt.Sprintf("storage: delete policy %q: %v", e.UID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *PolicyDeletionError) Unwrap() error {
	return e.Cause
}
