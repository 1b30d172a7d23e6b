package config

import "errors"

var (
	// ErrInvalidStore indicates an unknown store kind.
	ErrInvalidStore = errors.New("config: invalid store kind")

	// ErrMissingDataDir indicates a file or sqlite store without a location.
	ErrMissingDataDir = errors.New("config: data directory is required")

	// ErrInvalidWritePolicy indicates out-of-range persistence tuning.
	ErrInvalidWritePolicy = errors.New("config: invalid write policy")
)
