// Package apperr defines the sentinel error kinds shared across the
// pipeline, following the teacher's plain-wrapped-error style
// (internal/database/db.go) plus the NotFoundError/Is* convention from
// the wider example pack's database error helpers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup finds no matching row.
	ErrNotFound = errors.New("not found")

	// ErrConnection is the "ConnectionError" of spec.md §4.2/§7: raised
	// once a transient network operation exhausts its retry budget.
	ErrConnection = errors.New("connection error")
)

// ConnectionError wraps ErrConnection with the last underlying cause and
// the endpoint that failed, so collectors can log a useful message while
// still matching on errors.Is(err, ErrConnection).
type ConnectionError struct {
	Endpoint string
	Attempts int
	Cause    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error calling %s after %d attempts: %v", e.Endpoint, e.Attempts, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return ErrConnection
}

// NewConnectionError builds a ConnectionError.
func NewConnectionError(endpoint string, attempts int, cause error) error {
	return &ConnectionError{Endpoint: endpoint, Attempts: attempts, Cause: cause}
}

// IsConnection reports whether err is (or wraps) a connection error.
func IsConnection(err error) bool {
	return errors.Is(err, ErrConnection)
}

// NotFoundError wraps ErrNotFound with the entity and key that were
// looked up.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}

// IsNotFound reports whether err is (or wraps) a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
