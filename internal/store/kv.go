package store

import "context"

// KV is a minimal durable key-value slot: get, set, and delete on string
// keys. It abstracts the process-local storage medium backing the offline
// pending-review queue.
//
// Implementations surface exhausted storage as ErrQuotaExceeded (possibly
// wrapped) so that callers can treat a full queue as a recoverable
// condition.
type KV interface {
	// Get returns the value stored under key. The second return value is
	// false when the key has never been set (or was deleted).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
