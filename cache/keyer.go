package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Keyer maps account ids to the names a Store persists them under.
//
// Contract:
// - Determinism: the same id must always yield the same name.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(accountID string) string
}

// KeyerFunc adapts a function to Keyer.
type KeyerFunc func(accountID string) string

// Key calls f.
func (f KeyerFunc) Key(accountID string) string { return f(accountID) }

// DefaultKeyer names entries by a truncated SHA-256 of the account id, so
// ids never appear in file names or table rows.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key returns "acct-" followed by 32 hex characters.
func (k *DefaultKeyer) Key(accountID string) string {
	sum := sha256.Sum256([]byte(accountID))
	return "acct-" + hex.EncodeToString(sum[:16])
}

// IdentityKeyer uses the account id unchanged. Ids must already satisfy
// ValidateAccountID.
var IdentityKeyer Keyer = KeyerFunc(func(accountID string) string { return accountID })

// Ensure DefaultKeyer implements Keyer
var _ Keyer = (*DefaultKeyer)(nil)
