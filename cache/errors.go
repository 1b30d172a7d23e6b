package cache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrInvalidAccountID is returned for empty or malformed account ids.
	ErrInvalidAccountID = errors.New("cache: account id is invalid")

	// ErrAccountIDTooLong is returned for ids longer than MaxAccountIDLength.
	ErrAccountIDTooLong = errors.New("cache: account id exceeds max length")

	// ErrEntryNotFound is returned when a modification targets an account
	// that is neither resident nor persisted.
	ErrEntryNotFound = errors.New("cache: entry not found")

	// ErrNotFound is returned by a Store for an id it holds nothing for.
	ErrNotFound = errors.New("cache: not found in store")

	// ErrCorruptEntry wraps persisted data that cannot be unsealed or parsed.
	ErrCorruptEntry = errors.New("cache: persisted entry is corrupt")

	// ErrClosed is returned by operations on a closed cache.
	ErrClosed = errors.New("cache: closed")

	// ErrNilStore is returned by New without a store.
	ErrNilStore = errors.New("cache: store is nil")
)
