package database

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOpen is wrapped by ConnectionError when the store was never opened.
	ErrNotOpen = errors.New("database not open")

	// ErrClosed is wrapped by ConnectionError after Close.
	ErrClosed = errors.New("database is closed")

	// ErrNotFound is returned by single-row lookups that match nothing.
	ErrNotFound = errors.New("not found")
)

// ConnectionError reports that no usable connection to the catalog exists.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connection unavailable: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError reports a failed statement. Op names the logical operation
// (e.g. "list_items_candidates") and Err is the underlying driver error.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err is or wraps a ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsQueryError reports whether err is or wraps a QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}
