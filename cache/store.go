package cache

import "context"

// Store is the persistent tier. It holds one opaque sealed blob per account.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use. The cache
//   never issues two writes for the same account at once.
// - Errors: Load returns ErrNotFound on a miss; Delete is idempotent.
// - Ownership: implementations must not retain data passed to Save.
type Store interface {
	// Load returns the blob stored for id.
	Load(ctx context.Context, id string) ([]byte, error)

	// Save replaces the blob stored for id.
	Save(ctx context.Context, id string, data []byte) error

	// Delete removes the blob stored for id.
	Delete(ctx context.Context, id string) error

	// Ping reports whether the store is usable.
	Ping(ctx context.Context) error

	// Kind names the implementation, e.g. "memory", "file" or "sqlite".
	Kind() string
}
