package repository

import (
	"errors"
	"fmt"
)

// ValidationError reports caller-supplied input that violates a
// precondition. It never results from a store call and is always locally
// recoverable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// StoreError wraps a failure of the persistent store itself. It is surfaced
// to the caller unchanged and never retried internally; blind retry of a
// non-idempotent upsert or bulk update risks double effects.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error in %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// InconsistentStateError is raised by repair audits when observed data
// violates the tenant-ownership invariant, e.g. artworks pointing at a
// tenant with no settings record. It is reported, never auto-corrected.
type InconsistentStateError struct {
	TenantID string
	Detail   string
}

func (e *InconsistentStateError) Error() string {
	return fmt.Sprintf("inconsistent state for tenant %q: %s", e.TenantID, e.Detail)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStoreError reports whether err is (or wraps) a StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
