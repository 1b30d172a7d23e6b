package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Op describes one observed operation against account records.
type Op struct {
	Component string // Emitting component, e.g. "cache" or "account" (optional)
	Name      string // Operation name, e.g. "load" (required)
	AccountID string // Account the operation targets (optional)
	Store     string // Backing store kind, e.g. "sqlite" (optional)
}

// FullName returns <component>.<name>, or just the name without a component.
func (o Op) FullName() string {
	if o.Component != "" {
		return o.Component + "." + o.Name
	}
	return o.Name
}

// SpanName returns the deterministic span name for this operation.
// Format: accountkit.<component>.<name> or accountkit.<name>
func (o Op) SpanName() string {
	return "accountkit." + o.FullName()
}

// Validate reports ErrMissingOpName when the operation has no name.
func (o Op) Validate() error {
	if o.Name == "" {
		return ErrMissingOpName
	}
	return nil
}

// Tracer wraps OpenTelemetry tracing with operation-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an operation.
	StartSpan(ctx context.Context, op Op) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with operation metadata as attributes.
// The account id is a span attribute only; it never becomes a metric label.
func (t *tracerImpl) StartSpan(ctx context.Context, op Op) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("op.name", op.FullName()),
		attribute.Bool("op.error", false),
	}
	if op.Component != "" {
		attrs = append(attrs, attribute.String("op.component", op.Component))
	}
	if op.AccountID != "" {
		attrs = append(attrs, attribute.String("account.id", op.AccountID))
	}
	if op.Store != "" {
		attrs = append(attrs, attribute.String("store.kind", op.Store))
	}

	return t.tracer.Start(ctx, op.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("op.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

// NopTracer returns a Tracer whose spans are never recorded.
func NopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, op Op) (context.Context, trace.Span) {
	return t.noop.Start(ctx, op.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, err error) {
	span.End()
}
