package vault

import "errors"

var (
	// ErrSecretTooShort indicates the sealing secret is below MinSecretLength.
	ErrSecretTooShort = errors.New("vault: secret too short")

	// ErrMalformed indicates a sealed blob is truncated or not a sealed blob.
	ErrMalformed = errors.New("vault: malformed sealed entry")

	// ErrUnsupportedVersion indicates a sealed blob uses an unknown format.
	ErrUnsupportedVersion = errors.New("vault: unsupported seal version")

	// ErrOpen indicates authentication failed: wrong key, wrong account or
	// tampered data.
	ErrOpen = errors.New("vault: cannot open sealed entry")
)
