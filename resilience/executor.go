package resilience

import (
	"context"
	"time"
)

// Executor composes the resilience patterns around one operation.
type Executor struct {
	bulkhead       *Bulkhead
	circuitBreaker *CircuitBreaker
	retry          *Retry
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor. With no options it simply
// runs the operation.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker adds a circuit breaker to the executor.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) { e.circuitBreaker = cb }
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) { e.retry = r }
}

// WithBulkhead adds bulkhead isolation to the executor.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) { e.bulkhead = b }
}

// Execute runs op through the configured patterns. From outermost to
// innermost: bulkhead, retry, circuit breaker. Each retry attempt passes the
// breaker, so an opening circuit ends the retry loop early.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	execute := op

	if e.circuitBreaker != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.circuitBreaker.Execute(ctx, inner)
		}
	}

	if e.retry != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.retry.Execute(ctx, inner)
		}
	}

	if e.bulkhead != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.bulkhead.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}

// CircuitBreaker returns the configured breaker, or nil.
func (e *Executor) CircuitBreaker() *CircuitBreaker { return e.circuitBreaker }

// Bulkhead returns the configured bulkhead, or nil.
func (e *Executor) Bulkhead() *Bulkhead { return e.bulkhead }

// PolicyConfig is the flat form of a write policy, suitable for
// environment-driven configuration.
type PolicyConfig struct {
	RetryAttempts     int
	RetryBackoff      BackoffStrategy
	RetryDelay        time.Duration
	RetryMaxDelay     time.Duration
	BreakerFailures   int // zero disables the breaker
	BreakerReset      time.Duration
	MaxConcurrent     int // zero disables the bulkhead
	MaxConcurrentWait time.Duration
	OnStateChange     func(from, to State)
}

// NewPolicy builds an Executor from a PolicyConfig.
func NewPolicy(cfg PolicyConfig) *Executor {
	var opts []ExecutorOption
	if cfg.MaxConcurrent > 0 {
		opts = append(opts, WithBulkhead(NewBulkhead(BulkheadConfig{
			MaxConcurrent: cfg.MaxConcurrent,
			MaxWait:       cfg.MaxConcurrentWait,
		})))
	}
	if cfg.BreakerFailures > 0 {
		opts = append(opts, WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{
			MaxFailures:   cfg.BreakerFailures,
			ResetTimeout:  cfg.BreakerReset,
			OnStateChange: cfg.OnStateChange,
		})))
	}
	if cfg.RetryAttempts > 1 {
		opts = append(opts, WithRetry(NewRetry(RetryConfig{
			MaxAttempts:  cfg.RetryAttempts,
			Strategy:     cfg.RetryBackoff,
			InitialDelay: cfg.RetryDelay,
			MaxDelay:     cfg.RetryMaxDelay,
			Jitter:       true,
		})))
	}
	return NewExecutor(opts...)
}
