package health

import "errors"

var (
	// ErrCheckFailed marks a check that crossed its critical threshold.
	ErrCheckFailed = errors.New("health: threshold exceeded")

	// ErrCheckTimeout is reported when a check outlives the aggregator timeout.
	ErrCheckTimeout = errors.New("health: check timed out")

	// ErrCheckerNotFound is returned by Aggregator.Check for unknown names.
	ErrCheckerNotFound = errors.New("health: no checker registered")
)
