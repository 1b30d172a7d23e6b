package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("Status.String() = %v, want %v", got, tt.want)
			}
			text, _ := tt.status.MarshalText()
			if string(text) != tt.want {
				t.Errorf("Status.MarshalText() = %s, want %v", text, tt.want)
			}
		})
	}
}

func TestResultConstructors(t *testing.T) {
	diskErr := errors.New("disk gone")
	tests := []struct {
		name   string
		result Result
		status Status
		err    error
	}{
		{"healthy", Healthy("ok"), StatusHealthy, nil},
		{"degraded", Degraded("2 entries not yet persisted"), StatusDegraded, nil},
		{"unhealthy", Unhealthy("store unreachable", diskErr), StatusUnhealthy, diskErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.Status != tt.status {
				t.Errorf("Status = %v, want %v", tt.result.Status, tt.status)
			}
			if tt.result.Error != tt.err {
				t.Errorf("Error = %v, want %v", tt.result.Error, tt.err)
			}
			if tt.result.Timestamp.IsZero() {
				t.Error("Timestamp should be set")
			}
		})
	}

	r := Healthy("ok").WithDetails(map[string]any{"dirty": 0})
	if r.Details["dirty"] != 0 {
		t.Errorf("Details = %v", r.Details)
	}
}

func TestStatus_Worse(t *testing.T) {
	tests := []struct {
		a, b, want Status
	}{
		{StatusHealthy, StatusHealthy, StatusHealthy},
		{StatusHealthy, StatusDegraded, StatusDegraded},
		{StatusUnhealthy, StatusDegraded, StatusUnhealthy},
		{StatusDegraded, StatusHealthy, StatusDegraded},
	}
	for _, tt := range tests {
		if got := tt.a.Worse(tt.b); got != tt.want {
			t.Errorf("%v.Worse(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCheckerFunc(t *testing.T) {
	checker := NewCheckerFunc("cancellable", func(ctx context.Context) Result {
		if err := ctx.Err(); err != nil {
			return Unhealthy("cancelled", err)
		}
		return Healthy("ok")
	})
	if checker.Name() != "cancellable" {
		t.Errorf("Name() = %q", checker.Name())
	}
	if r := checker.Check(context.Background()); r.Status != StatusHealthy {
		t.Errorf("Check() = %v, want healthy", r.Status)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if r := checker.Check(ctx); r.Status != StatusUnhealthy || !errors.Is(r.Error, context.Canceled) {
		t.Errorf("Check(cancelled) = %v (%v), want unhealthy", r.Status, r.Error)
	}
}

func TestPingChecker(t *testing.T) {
	var pingErr error
	checker := NewPingChecker("store", func(context.Context) error { return pingErr })

	if r := checker.Check(context.Background()); r.Status != StatusHealthy {
		t.Fatalf("Status = %v, want healthy", r.Status)
	}

	pingErr = errors.New("disk gone")
	r := checker.Check(context.Background())
	if r.Status != StatusUnhealthy || !errors.Is(r.Error, pingErr) {
		t.Fatalf("Check() = %v (%v), want unhealthy with ping error", r.Status, r.Error)
	}
	if r.Message != "store unreachable" {
		t.Errorf("Message = %q", r.Message)
	}
}
