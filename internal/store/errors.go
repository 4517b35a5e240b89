package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would violate a unique constraint.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or violates a referential or check constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrStateConflict is returned when a conditional status update finds the
	// record in a different state than required.
	ErrStateConflict = errors.New("entity is not in the expected state")

	// Entity-specific "not found" errors

	// ErrProviderNotFound indicates that the requested provider does not exist.
	ErrProviderNotFound = fmt.Errorf("%w: provider", ErrNotFound)

	// ErrPatientNotFound indicates that the requested patient does not exist.
	ErrPatientNotFound = fmt.Errorf("%w: patient", ErrNotFound)

	// ErrCarePlanNotFound indicates that the requested care plan does not exist.
	ErrCarePlanNotFound = fmt.Errorf("%w: care plan", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrNPIExists indicates that a provider with the given NPI already exists.
	ErrNPIExists = fmt.Errorf("%w: npi", ErrDuplicate)

	// ErrMRNExists indicates that a patient with the given MRN already exists.
	ErrMRNExists = fmt.Errorf("%w: mrn", ErrDuplicate)

	// ErrPatientIdentityExists indicates that a patient without MRN already
	// exists for the given name and date of birth.
	ErrPatientIdentityExists = fmt.Errorf("%w: patient identity", ErrDuplicate)

	// ErrSameDayOrderExists indicates that the patient already has an order for
	// the medication on the same date.
	ErrSameDayOrderExists = fmt.Errorf("%w: same-day order", ErrDuplicate)

	// ErrActiveCarePlanExists indicates that the patient already has a care
	// plan in flight.
	ErrActiveCarePlanExists = fmt.Errorf("%w: active care plan", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "patient", "care_plan")
	Operation string // The operation that failed (e.g., "create", "claim")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
