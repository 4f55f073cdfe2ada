package cancellation

import (
	"context"
	"errors"
)

// Common, reusable store errors. Sentinel variables let callers detect
// conditions via errors.Is instead of brittle string comparisons.
var (
	// ErrNoStore indicates an elevation or adoption was requested on a
	// registry that has no entry store configured.
	ErrNoStore = errors.New("cancellation: no entry store configured")

	// ErrEntryNotFound is returned when opening a durable entry whose id is
	// unknown to the store.
	ErrEntryNotFound = errors.New("cancellation: entry not found")

	// ErrEntryExists is returned when creating a durable entry under an id
	// that is already taken.
	ErrEntryExists = errors.New("cancellation: entry already exists")
)

// Entry is a durable cancellation record readable by any process possessing
// its id. Writes are cancel-only and monotonic, so briefly stale reads are
// acceptable - cancellation is advisory and checked at safe suspension
// points.
type Entry interface {
	// IsCancelled reads the durable cancel state.
	IsCancelled(ctx context.Context) (bool, error)

	// Cancel marks the entry cancelled. Cancelling an already cancelled
	// entry is a no-op.
	Cancel(ctx context.Context) error
}

// EntryStore mints and opens durable entries shared across processes.
type EntryStore interface {
	// Create allocates a durable entry for id.
	Create(ctx context.Context, id string) (Entry, error)

	// Open binds to an existing entry by id.
	Open(ctx context.Context, id string) (Entry, error)
}
