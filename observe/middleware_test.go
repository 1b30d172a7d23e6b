package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestMiddleware_RunSuccess(t *testing.T) {
	tracer, sr := newRecordingTracer()
	metrics, reader := newTestMetrics(t)
	var buf bytes.Buffer
	mw := NewMiddleware(tracer, metrics, NewLoggerWithWriter("debug", &buf))

	var sawSpan bool
	err := mw.Run(context.Background(), Op{Component: "cache", Name: "load", AccountID: "u1"}, func(ctx context.Context) error {
		sawSpan = trace.SpanContextFromContext(ctx).IsValid()
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !sawSpan {
		t.Error("body did not receive the span context")
	}
	if len(sr.Ended()) != 1 {
		t.Errorf("expected 1 ended span, got %d", len(sr.Ended()))
	}
	if findMetric(collect(t, reader), MetricOpTotal) == nil {
		t.Error("total counter not recorded")
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["level"] != "debug" || entry["msg"] != "operation completed" {
		t.Errorf("unexpected log entry: %v", entry)
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("duration_ms missing")
	}
}

func TestMiddleware_RunErrorPropagatesUnchanged(t *testing.T) {
	var buf bytes.Buffer
	mw := NewMiddleware(nil, nil, NewLoggerWithWriter("info", &buf))
	sentinel := errors.New("write failed")

	err := mw.Run(context.Background(), Op{Name: "persist"}, func(context.Context) error { return sentinel })
	if err != sentinel {
		t.Fatalf("Run() error = %v, want sentinel", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["level"] != "error" || entry["error"] != "write failed" {
		t.Errorf("unexpected log entry: %v", entry)
	}
}

func TestMiddleware_Wrap(t *testing.T) {
	calls := 0
	fn := NopMiddleware().Wrap(Op{Name: "flush"}, func(context.Context) error {
		calls++
		return nil
	})
	for i := 0; i < 3; i++ {
		if err := fn(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}
