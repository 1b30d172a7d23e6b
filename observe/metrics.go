package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricOpTotal    = "accountkit.op.total"
	MetricOpErrors   = "accountkit.op.errors"
	MetricOpDuration = "accountkit.op.duration_ms"
)

// Metrics records operation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOperation records one operation with its duration and error status.
	RecordOperation(ctx context.Context, op Op, duration time.Duration, err error)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates the operation instruments on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		MetricOpTotal,
		metric.WithDescription("Total number of account record operations"),
		metric.WithUnit("{op}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		MetricOpErrors,
		metric.WithDescription("Total number of failed account record operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		MetricOpDuration,
		metric.WithDescription("Account record operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

// RecordOperation records metrics for one operation. Account ids are never
// attached as attributes.
func (m *metricsImpl) RecordOperation(ctx context.Context, op Op, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("op.name", op.FullName()),
	}
	if op.Store != "" {
		attrs = append(attrs, attribute.String("store.kind", op.Store))
	}
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

type noopMetrics struct{}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordOperation(context.Context, Op, time.Duration, error) {}
