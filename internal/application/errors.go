package application

import (
	"errors"
	"fmt"

	"github.com/example/internlog/internal/persistence"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrExportFailed is returned when a report could not be rendered.
	ErrExportFailed = errors.New("application: report export failed")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	// Message is a single user-facing summary of the problem.
	Message     string
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if v.Message != "" {
		return "validation failed: " + v.Message
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
	if v.Message == "" {
		v.Message = other.Message
	}
}

// StorageError wraps a repository failure that is not a domain outcome.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("application: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether the backend could not be reached or is not
// configured, as opposed to failing a single operation.
func (e *StorageError) IsUnavailable() bool {
	return e != nil && errors.Is(e.Err, persistence.ErrUnavailable)
}
