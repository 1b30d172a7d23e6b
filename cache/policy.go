package cache

import (
	"time"

	"github.com/jonwraymond/accountkit/resilience"
)

// Policy configures how the cache persists entries.
type Policy struct {
	// Write guards each store write with retry, a circuit breaker and a
	// concurrency limit.
	Write resilience.PolicyConfig

	// FlushOnClose rewrites entries whose last write failed during Close.
	FlushOnClose bool
}

// DefaultPolicy returns the default persistence policy.
// Three attempts with exponential backoff from 50ms, a breaker that opens
// after five consecutive failures for 30s, and at most eight concurrent
// writes.
func DefaultPolicy() Policy {
	return Policy{
		Write: resilience.PolicyConfig{
			RetryAttempts:     3,
			RetryBackoff:      resilience.BackoffExponential,
			RetryDelay:        50 * time.Millisecond,
			RetryMaxDelay:     2 * time.Second,
			BreakerFailures:   5,
			BreakerReset:      30 * time.Second,
			MaxConcurrent:     8,
			MaxConcurrentWait: -1,
		},
		FlushOnClose: true,
	}
}

// SingleAttemptPolicy returns a policy that writes once with no breaker and
// no concurrency limit.
func SingleAttemptPolicy() Policy {
	return Policy{Write: resilience.PolicyConfig{RetryAttempts: 1}}
}

// Executor builds the write executor for p.
func (p Policy) Executor() *resilience.Executor {
	return resilience.NewPolicy(p.Write)
}
