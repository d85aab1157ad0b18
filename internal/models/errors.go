package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for input validation.
var (
	ErrInvalidTitle = errors.New("title is required")
)

// Sentinel errors for lookups and search outcomes.
var (
	// ErrNotFound indicates a title or id absent from the graph store.
	ErrNotFound = errors.New("vertex not found")

	// ErrUnreachable indicates the search exhausted every reachable node without a meeting.
	ErrUnreachable = errors.New("no path exists")

	// ErrSearchLimit indicates a configured hop or visit cap stopped the search before it
	// could prove either a path or unreachability.
	ErrSearchLimit = errors.New("search limit reached")

	// ErrStoreConnection indicates I/O against the graph store failed after all retries.
	ErrStoreConnection = errors.New("graph store unavailable")

	// ErrInternalInconsistency indicates corrupted search state or store data.
	ErrInternalInconsistency = errors.New("internal inconsistency")
)

// ErrDuplicateKey indicates a unique constraint violation on a vertex id or title.
var ErrDuplicateKey = errors.New("duplicate key")

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return fmt.Errorf("%s exceeds maximum length of %d: %w", field, maxLen, ErrInvalidTitle)
}
