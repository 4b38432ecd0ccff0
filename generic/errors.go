/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Store errors - Snapshot/config reads and writes that failed
  2. Validation errors - Malformed dates, periods and quota edits
  3. Quota errors - Requests that exceed an entitlement

NOT AN ERROR:
  An identity that matches nobody is a normal "false" from the resolver.
  A missing prior snapshot is a valid zero opening balance, never ErrStoreRead.

USAGE:
  if errors.Is(err, generic.ErrStoreRead) {
      // do not save: inputs are unknown, not zero
  }

SEE ALSO:
  - store.go: RecordStore contract
  - timeoff/service.go: Per-employee save failures
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStoreRead is returned when prior snapshots or configuration could not
	// be fetched. Callers must not compute-and-save with empty inputs.
	ErrStoreRead = errors.New("store read failed")

	// ErrStoreWrite is returned when a record could not be upserted.
	ErrStoreWrite = errors.New("store write failed")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPeriod is returned when a month key is malformed.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidDate is returned when a calendar date is malformed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidRange is returned when a request ends before it starts.
	ErrInvalidRange = errors.New("invalid date range: end before start")

	// ErrInvalidField is returned when a manual edit names an unknown ledger column.
	ErrInvalidField = errors.New("unknown ledger field")

	// ErrQuotaExists is returned when renaming onto an existing leave type.
	ErrQuotaExists = errors.New("leave type already exists")

	// ErrQuotaNotFound is returned when a leave type is not in the catalog.
	ErrQuotaNotFound = errors.New("leave type not found")

	// ErrNegativeQuota is returned when an entitlement is below zero.
	ErrNegativeQuota = errors.New("entitlement must not be negative")

	// ErrInvalidQuotaName is returned for blank leave type names.
	ErrInvalidQuotaName = errors.New("leave type name must not be blank")

	// ErrUnknownLeaveType is returned when validating against a type with no quota.
	ErrUnknownLeaveType = errors.New("unknown leave type")

	// ErrQuotaExceeded is returned when a request would exceed its entitlement.
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// StoreError records which store operation failed.
type StoreError struct {
	Op   string // e.g. "list", "upsert"
	Kind error  // ErrStoreRead or ErrStoreWrite
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%v (%s): %v", e.Kind, e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// ReadError wraps a failed read.
func ReadError(op string, err error) error {
	return &StoreError{Op: op, Kind: ErrStoreRead, Err: err}
}

// WriteError wraps a failed write.
func WriteError(op string, err error) error {
	return &StoreError{Op: op, Kind: ErrStoreWrite, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidField) ||
		errors.Is(err, ErrNegativeQuota) ||
		errors.Is(err, ErrInvalidQuotaName) ||
		errors.Is(err, ErrUnknownLeaveType)
}

// IsConflict returns true if the error is a state conflict (409).
func IsConflict(err error) bool {
	return errors.Is(err, ErrQuotaExists) || errors.Is(err, ErrQuotaExceeded)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrQuotaNotFound)
}

// IsStoreError returns true for read/write failures at the store boundary.
func IsStoreError(err error) bool {
	return errors.Is(err, ErrStoreRead) || errors.Is(err, ErrStoreWrite)
}
