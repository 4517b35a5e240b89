package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/careplan-api/internal/apperr"
	"github.com/phrazzld/careplan-api/internal/store"
)

// ErrNilCarePlanStore is returned by constructors given no care plan store.
var ErrNilCarePlanStore = errors.New("care plan store cannot be nil")

// CarePlanServiceError wraps unexpected failures of the care plan service
// with the operation that failed.
type CarePlanServiceError struct {
	Operation string
	Err       error
}

// Error implements the error interface for CarePlanServiceError.
func (e *CarePlanServiceError) Error() string {
	return fmt.Sprintf("careplan service %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *CarePlanServiceError) Unwrap() error {
	return e.Err
}

// NewCarePlanServiceError maps err for the caller. A missing care plan becomes
// a not-found application error; anything else is wrapped with operation.
func NewCarePlanServiceError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if store.IsNotFoundError(err) {
		return apperr.NotFound(apperr.CodeCarePlanNotFound, "Care plan not found.", err)
	}
	return &CarePlanServiceError{Operation: operation, Err: err}
}
