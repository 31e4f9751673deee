// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports bad or missing input fields.
type ValidationError struct {
	Message string
	Details interface{}
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidation(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// AuthError covers both missing credentials and wrong-role access.
// Forbidden distinguishes a 403 from a 401.
type AuthError struct {
	Message   string
	Forbidden bool
}

func (e *AuthError) Error() string { return e.Message }

func NewUnauthorized(message string) *AuthError {
	return &AuthError{Message: message}
}

func NewForbidden(message string) *AuthError {
	return &AuthError{Message: message, Forbidden: true}
}

// NotFoundError means the entity is absent or not owned by the caller.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NewNotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ConflictError surfaces a unique-pair violation as a domain error
// instead of a raw constraint failure.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func NewConflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// MissingFieldError aborts a catalog import when a required feed field
// is absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required feed field: %s", e.Field)
}

// ImportError wraps any failure of the catalog import pipeline.
type ImportError struct {
	Detail string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import failed: %s: %v", e.Detail, e.Err)
	}
	return "import failed: " + e.Detail
}

func (e *ImportError) Unwrap() error { return e.Err }

// TransientJobError marks a background-job failure as retryable.
type TransientJobError struct {
	Err error
}

func (e *TransientJobError) Error() string { return "transient job error: " + e.Err.Error() }

func (e *TransientJobError) Unwrap() error { return e.Err }

// IsNotFound is a convenience for callers that only care about absence.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
