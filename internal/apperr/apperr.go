// Package apperr defines the single error type that crosses the boundary
// between business logic and transport. Every business failure carries a kind,
// a stable machine-readable code, a human-readable message and the HTTP status
// it maps to.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error. Its value is the "type" field of the
// JSON error body.
type Kind string

// Error kinds
const (
	KindValidation Kind = "validation_error"
	KindBlock      Kind = "block"
	KindWarning    Kind = "warning"
	KindNotFound   Kind = "not_found"
	KindAuth       Kind = "unauthorized"
	KindInternal   Kind = "error"
)

// Stable error codes
const (
	CodeInvalidInput            = "invalid_input"
	CodeDuplicateNPI            = "duplicate_npi"
	CodeDuplicateOrderSameDay   = "duplicate_order_same_day"
	CodeDuplicateOrderPrevious  = "duplicate_order_previous"
	CodeDuplicateActiveCarePlan = "duplicate_active_careplan"
	CodeCarePlanNotFound        = "careplan_not_found"
	CodeUnauthorized            = "unauthorized"
	CodeInvalidCredentials      = "invalid_credentials"
	CodeTokenExpired            = "token_expired"
	CodeInternal                = "internal_error"
)

// Error is a business failure with an explicit (kind, code, message, status).
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Status  int
	Detail  map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NeedsConfirmation reports whether the caller must resubmit with explicit
// confirmation.
func (e *Error) NeedsConfirmation() bool {
	return e.Kind == KindWarning
}

// Validation returns a 400 error for malformed input.
func Validation(message string, cause error) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeInvalidInput,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     cause,
	}
}

// Block returns a 409 error for a well-formed request that breaks a
// uniqueness or one-in-flight rule.
func Block(code, message string, detail map[string]any) *Error {
	return &Error{
		Kind:    KindBlock,
		Code:    code,
		Message: message,
		Status:  http.StatusConflict,
		Detail:  detail,
	}
}

// Warning returns a success-coded advisory that asks the caller to resubmit
// with confirmation.
func Warning(code, message string, detail map[string]any) *Error {
	return &Error{
		Kind:    KindWarning,
		Code:    code,
		Message: message,
		Status:  http.StatusOK,
		Detail:  detail,
	}
}

// NotFound returns a 404 error.
func NotFound(code, message string, cause error) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    code,
		Message: message,
		Status:  http.StatusNotFound,
		Err:     cause,
	}
}

// Unauthorized returns a 401 error for a missing or rejected credential.
func Unauthorized(code, message string, cause error) *Error {
	return &Error{
		Kind:    KindAuth,
		Code:    code,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     cause,
	}
}

// Internal wraps an unexpected failure. Its message is safe to show.
func Internal(cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Code:    CodeInternal,
		Message: "An unexpected error occurred",
		Status:  http.StatusInternalServerError,
		Err:     cause,
	}
}

// From returns err as an *Error, wrapping anything else as Internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code string) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}
