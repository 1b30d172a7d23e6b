package account

import (
	"context"

	"github.com/jonwraymond/accountkit/record"
)

// Credentials identify an account holder to the authority.
type Credentials struct {
	Email    string
	Password string
}

// Service is the external account authority.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines.
// - Errors: unknown accounts are reported as ErrNotFound and bad
//   credentials as ErrInvalidCredentials.
type Service interface {
	// SupportedKeys returns the keys the authority stores.
	SupportedKeys() record.KeySet

	// SignUp creates an account and returns its details. The result binds
	// UserID.
	SignUp(ctx context.Context, creds Credentials, details record.Snapshot) (record.Snapshot, error)

	// Login verifies creds and returns the account's details.
	Login(ctx context.Context, creds Credentials) (record.Snapshot, error)

	// Update applies mod to the account identified by userID.
	Update(ctx context.Context, userID string, mod record.Modification) error

	// Logout ends the authority's session for userID.
	Logout(ctx context.Context, userID string) error

	// Delete removes the account identified by userID.
	Delete(ctx context.Context, userID string) error
}

// SecondaryStorage keeps the attributes the authority does not support.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Load of an unknown account returns ErrNotFound.
type SecondaryStorage interface {
	Store(ctx context.Context, userID string, details record.Snapshot) error
	Load(ctx context.Context, userID string, keys record.KeySet) (record.Snapshot, error)
	Modify(ctx context.Context, userID string, mod record.Modification) error
	Delete(ctx context.Context, userID string) error
}

// Split divides details into the bindings whose keys primary names and
// everything else.
func Split(details record.Snapshot, primary record.KeySet) (primaryPart, secondaryPart record.Snapshot) {
	primaryPart = record.NewBuilder().MergeKeys(primary, details).Build()

	secondary := details.Builder()
	for _, k := range primaryPart.Keys() {
		secondary.Remove(k)
	}
	return primaryPart, secondary.Build()
}

// SplitModification divides both sides of mod the way Split does.
func SplitModification(mod record.Modification, primary record.KeySet) (primaryPart, secondaryPart record.Modification) {
	pm, sm := Split(mod.Modified, primary)
	pr, sr := Split(mod.Removed, primary)
	return record.NewModification(pm, pr), record.NewModification(sm, sr)
}
