// internal/db/errors.go
package db

import (
	"errors"
	"fmt"
)

// ErrReadOnly is returned by every write path when the connection is in
// read-only mode.
var ErrReadOnly = errors.New("connection is read-only")

// ConnectionError wraps connection failures.
type ConnectionError struct {
	Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %v", e.Underlying)
}

func (e *ConnectionError) Unwrap() error { return e.Underlying }

// QueryError wraps read-operation failures.
type QueryError struct {
	Underlying error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Underlying)
}

func (e *QueryError) Unwrap() error { return e.Underlying }

// WriteError wraps mutation failures.
type WriteError struct {
	Underlying error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write failed: %v", e.Underlying)
}

func (e *WriteError) Unwrap() error { return e.Underlying }

// WrapConnectionError creates a ConnectionError from an underlying error.
func WrapConnectionError(err error) error {
	return &ConnectionError{Underlying: err}
}

// WrapQueryError creates a QueryError from an underlying error.
func WrapQueryError(err error) error {
	return &QueryError{Underlying: err}
}

// WrapWriteError creates a WriteError from an underlying error.
func WrapWriteError(err error) error {
	return &WriteError{Underlying: err}
}
