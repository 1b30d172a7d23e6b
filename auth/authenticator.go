package auth

import "context"

// Authenticator verifies a credential and returns the identity it proves.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: methods should honor cancellation/deadlines.
// - Errors: a rejected credential is reported with one of the package's
//   sentinel errors; anything else is an internal failure.
type Authenticator interface {
	// Name returns a unique identifier for this authenticator.
	Name() string

	// Authenticate verifies credential.
	Authenticate(ctx context.Context, credential string) (*Identity, error)
}

// AuthenticatorFunc is an adapter to allow use of ordinary functions as Authenticators.
type AuthenticatorFunc struct {
	name string
	auth func(ctx context.Context, credential string) (*Identity, error)
}

// NewAuthenticatorFunc creates an AuthenticatorFunc.
func NewAuthenticatorFunc(name string, auth func(ctx context.Context, credential string) (*Identity, error)) *AuthenticatorFunc {
	return &AuthenticatorFunc{name: name, auth: auth}
}

// Name returns the authenticator name.
func (f *AuthenticatorFunc) Name() string {
	return f.name
}

// Authenticate calls the wrapped function.
func (f *AuthenticatorFunc) Authenticate(ctx context.Context, credential string) (*Identity, error) {
	return f.auth(ctx, credential)
}
