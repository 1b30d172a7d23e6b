package observe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "minimal",
			cfg:  Config{ServiceName: "accountkit"},
		},
		{
			name:    "missing service name",
			cfg:     Config{},
			wantErr: ErrMissingServiceName,
		},
		{
			name: "bad tracing exporter",
			cfg: Config{
				ServiceName: "accountkit",
				Tracing:     TracingConfig{Enabled: true, Exporter: "zipkin", SamplePct: 1},
			},
			wantErr: ErrInvalidTracingExporter,
		},
		{
			name: "sample pct out of range",
			cfg: Config{
				ServiceName: "accountkit",
				Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.5},
			},
			wantErr: ErrInvalidSamplePct,
		},
		{
			name: "bad metrics exporter",
			cfg: Config{
				ServiceName: "accountkit",
				Metrics:     MetricsConfig{Enabled: true, Exporter: "statsd"},
			},
			wantErr: ErrInvalidMetricsExporter,
		},
		{
			name: "bad log level",
			cfg: Config{
				ServiceName: "accountkit",
				Logging:     LoggingConfig{Enabled: true, Level: "trace"},
			},
			wantErr: ErrInvalidLogLevel,
		},
		{
			name: "disabled sections are not checked",
			cfg: Config{
				ServiceName: "accountkit",
				Tracing:     TracingConfig{Exporter: "zipkin", SamplePct: 7},
				Logging:     LoggingConfig{Level: "trace"},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewObserver_AllDisabled(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "accountkit"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("expected non-nil tracer, meter and logger")
	}
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestNewObserver_NoneExporters(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "accountkit",
		Version:     "test",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     LoggingConfig{Enabled: true, Level: "error"},
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	mw, err := MiddlewareFromObserver(obs)
	if err != nil {
		t.Fatalf("MiddlewareFromObserver() error = %v", err)
	}
	if err := mw.Run(context.Background(), Op{Name: "ping"}, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if err := obs.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	// A second shutdown must not panic.
	_ = obs.Shutdown(context.Background())
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	if _, err := NewObserver(context.Background(), Config{}); !errors.Is(err, ErrMissingServiceName) {
		t.Fatalf("NewObserver() error = %v, want ErrMissingServiceName", err)
	}
}

func TestNopObserver(t *testing.T) {
	obs := NopObserver()
	obs.Logger().WithOp(Op{Name: "x"}).Error(context.Background(), "ignored")
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestNewObserver_LoggingOutput(t *testing.T) {
	var buf bytes.Buffer
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "accountkit",
		Logging:     LoggingConfig{Enabled: true, Level: "warn", Output: &buf},
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	log := obs.Logger().WithOp(Op{Component: "cache", Name: "load", AccountID: "u1"})
	log.Info(context.Background(), "dropped")
	log.Warn(context.Background(), "kept", F("password", "hunter2"))

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info entry written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"kept"`) || !strings.Contains(out, `"account.id":"u1"`) {
		t.Errorf("missing warn entry: %s", out)
	}
	if strings.Contains(out, "hunter2") {
		t.Errorf("password not redacted: %s", out)
	}
}
