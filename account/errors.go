package account

import "errors"

var (
	// ErrNotFound indicates no account exists for an id or credentials.
	ErrNotFound = errors.New("account: not found")

	// ErrAlreadyExists indicates sign-up for an email that is taken.
	ErrAlreadyExists = errors.New("account: already exists")

	// ErrInvalidCredentials indicates a wrong email or password.
	ErrInvalidCredentials = errors.New("account: invalid credentials")

	// ErrMissingUserID indicates the authority returned details without a user id.
	ErrMissingUserID = errors.New("account: details carry no user id")

	// ErrNoAuthenticator indicates token sign-in without an authenticator.
	ErrNoAuthenticator = errors.New("account: no authenticator configured")

	// ErrInvalidDate indicates a malformed calendar date.
	ErrInvalidDate = errors.New("account: invalid date")

	// ErrInvalidGender indicates an unknown gender identity name.
	ErrInvalidGender = errors.New("account: invalid gender identity")
)
