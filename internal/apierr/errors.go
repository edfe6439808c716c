// Package apierr defines the error kinds surfaced by the data access layer.
package apierr

import (
	"errors"
	"fmt"
)

// Sentinel errors for matching with errors.Is
var (
	ErrFetch      = errors.New("fetch failed")
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// FetchError represents a transport failure or a non-2xx response.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": fetch failed"
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is allows comparison with ErrFetch
func (e *FetchError) Is(target error) bool {
	if target == ErrFetch {
		return true
	}
	_, ok := target.(*FetchError)
	return ok
}

// NewFetchError creates a new FetchError
func NewFetchError(op string, status int, err error) *FetchError {
	return &FetchError{Op: op, StatusCode: status, Err: err}
}

// ValidationError represents input rejected before or by the backing store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

// Is allows comparison with ErrValidation
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError represents a mutation that targets a missing id.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Kind, e.ID)
}

// Is allows comparison with ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	_, ok := target.(*NotFoundError)
	return ok
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind string, id int64) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}
