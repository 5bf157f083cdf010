package catalog

import "errors"

var (
	// ErrInvalidArgument marks malformed filter input. It is returned before
	// any query runs.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when a single item lookup matches nothing.
	ErrNotFound = errors.New("not found")
)
