// Package resilience guards persistent-store writes.
//
// The cache persists every accepted mutation asynchronously. A store write
// can fail transiently (a locked database, a full disk that is cleaned up) or
// permanently (a sealing error). The patterns here let the cache retry the
// former, stop hammering a store that keeps failing, and bound how many
// writes are in flight at once:
//
//   - Retry: re-runs a write with exponential, linear or constant backoff.
//     Errors wrapped with Permanent are never retried.
//   - CircuitBreaker: fails fast with ErrCircuitOpen after repeated
//     failures, then probes the store again after a reset timeout.
//   - Bulkhead: caps concurrent writes.
//
// Executor composes them:
//
//	exec := resilience.NewExecutor(
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 4})),
//	    resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})),
//	    resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{MaxAttempts: 3})),
//	)
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return store.Put(ctx, id, blob)
//	})
package resilience
