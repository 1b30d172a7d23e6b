package observe

import (
	"context"
	"time"
)

// OpFunc is the signature of an observed operation body.
type OpFunc func(ctx context.Context) error

// Middleware wraps operations with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Run may be called from any goroutine.
//   - Context: the span context is passed to the operation body.
//   - Errors: errors from the body are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NopMiddleware returns a Middleware that only runs the body.
func NopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// Logger returns the underlying logger.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// Run executes fn inside a span, then records metrics and a log line.
// Successful operations log at debug so hot paths stay quiet.
func (m *Middleware) Run(ctx context.Context, op Op, fn OpFunc) error {
	ctx, span := m.tracer.StartSpan(ctx, op)
	start := time.Now()

	err := fn(ctx)

	duration := time.Since(start)
	m.tracer.EndSpan(span, err)
	m.metrics.RecordOperation(ctx, op, duration, err)

	opLogger := m.logger.WithOp(op)
	fields := []Field{F("duration_ms", float64(duration.Microseconds())/1000)}
	if err != nil {
		fields = append(fields, F("error", err))
		opLogger.Error(ctx, "operation failed", fields...)
	} else {
		opLogger.Debug(ctx, "operation completed", fields...)
	}

	return err
}

// Wrap returns fn bound to op and wrapped by Run.
func (m *Middleware) Wrap(op Op, fn OpFunc) OpFunc {
	return func(ctx context.Context) error {
		return m.Run(ctx, op, fn)
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
