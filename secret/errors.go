package secret

import "errors"

var (
	// ErrInvalidRef indicates a malformed provider name or reference.
	ErrInvalidRef = errors.New("secret: invalid reference")

	// ErrProviderNotRegistered indicates a reference names an unknown provider.
	ErrProviderNotRegistered = errors.New("secret: provider not registered")

	// ErrProviderExists indicates a second registration under one name.
	ErrProviderExists = errors.New("secret: provider already registered")

	// ErrNotFound indicates the provider has no value for a reference.
	ErrNotFound = errors.New("secret: not found")

	// ErrEmptyValue indicates a strict resolver received an empty value.
	ErrEmptyValue = errors.New("secret: empty value")

	// ErrMissingEnv indicates ${VAR} expansion named an unset variable.
	ErrMissingEnv = errors.New("secret: missing required environment variables")
)
