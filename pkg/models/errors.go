package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers unknown order, product, extra and user ids.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned for a status change the state
	// machine does not allow, and for a change lost to a concurrent
	// update. Callers should re-fetch the order before retrying.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTimeout is returned when a store operation exceeds the
	// caller-supplied deadline.
	ErrTimeout = errors.New("operation timed out")
)

// NotFoundf wraps ErrNotFound with the kind and id that were looked up.
func NotFoundf(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// ValidationError reports malformed input rejected before any persistence.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validationf builds a ValidationError for the given field.
func Validationf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// StorageError wraps a failure inside the persistence layer (constraint
// violation, connection failure). The store never retries; the error
// propagates to the caller as-is.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
