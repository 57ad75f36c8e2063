package storage

import "errors"

// Sentinel errors shared by every store backend. Backends wrap them with the
// failing operation, so match with errors.Is.
var (
	// ErrNotFound means no run, seller or strategy matched the lookup.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey means the row is already stored for its run. Stored runs
	// are immutable, so re-running the same dataset reports this instead of updating.
	ErrDuplicateKey = errors.New("duplicate key: row already stored for this run")

	// ErrInvalidInput means a row lacks its run id or seller id.
	ErrInvalidInput = errors.New("invalid input")
)
