package config

import (
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/accountkit/observe"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Store != StoreFile || cfg.Codec != "cbor" || cfg.LogLevel != "info" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Write.RetryAttempts != 3 || cfg.Write.RetryDelay != 50*time.Millisecond || !cfg.Write.FlushOnClose {
		t.Errorf("write defaults = %+v", cfg.Write)
	}
	if cfg.HealthTimeout != 5*time.Second {
		t.Errorf("HealthTimeout = %v", cfg.HealthTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ACCOUNTKIT_STORE", "sqlite")
	t.Setenv("ACCOUNTKIT_SQLITE_PATH", "/var/lib/accountkit/entries.db")
	t.Setenv("ACCOUNTKIT_CODEC", "json")
	t.Setenv("ACCOUNTKIT_WRITE_RETRY_ATTEMPTS", "5")
	t.Setenv("ACCOUNTKIT_WRITE_BREAKER_RESET", "1m")
	t.Setenv("ACCOUNTKIT_WRITE_FLUSH_ON_CLOSE", "false")
	t.Setenv("ACCOUNTKIT_HEAP_LIMIT", "1048576")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store != StoreSQLite || cfg.Codec != "json" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DatabasePath() != "/var/lib/accountkit/entries.db" {
		t.Errorf("DatabasePath() = %q", cfg.DatabasePath())
	}
	if cfg.HeapLimit != 1<<20 {
		t.Errorf("HeapLimit = %d", cfg.HeapLimit)
	}

	p := cfg.Policy()
	if p.Write.RetryAttempts != 5 || p.Write.BreakerReset != time.Minute || p.FlushOnClose {
		t.Errorf("Policy() = %+v", p)
	}
}

func TestLoad_ParseError(t *testing.T) {
	if _, err := LoadFrom(map[string]string{"ACCOUNTKIT_WRITE_RETRY_ATTEMPTS": "many"}); err == nil {
		t.Error("LoadFrom() should reject a non-numeric attempt count")
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() Config {
		cfg, err := LoadFrom(map[string]string{})
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"memory needs no dir", func(c *Config) { c.Store = StoreMemory; c.DataDir = "" }, nil},
		{"unknown store", func(c *Config) { c.Store = "s3" }, ErrInvalidStore},
		{"file without dir", func(c *Config) { c.DataDir = "" }, ErrMissingDataDir},
		{"sqlite with explicit path", func(c *Config) { c.Store = StoreSQLite; c.DataDir = ""; c.SQLitePath = "x.db" }, nil},
		{"sqlite without location", func(c *Config) { c.Store = StoreSQLite; c.DataDir = "" }, ErrMissingDataDir},
		{"zero attempts", func(c *Config) { c.Write.RetryAttempts = 0 }, ErrInvalidWritePolicy},
		{"negative bulkhead", func(c *Config) { c.Write.MaxConcurrent = -1 }, ErrInvalidWritePolicy},
		{"bad tracing exporter", func(c *Config) { c.TracingExporter = "zipkin" }, observe.ErrInvalidTracingExporter},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, observe.ErrInvalidLogLevel},
		{"empty service name", func(c *Config) { c.ServiceName = "" }, observe.ErrMissingServiceName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}

	bad := base()
	bad.Codec = "xml"
	if err := bad.Validate(); err == nil {
		t.Error("Validate() should reject an unknown codec")
	}
}

func TestConfig_ObserveConfig(t *testing.T) {
	cfg := Config{ServiceName: "svc", TracingExporter: "none", MetricsExporter: "stdout", LogLevel: "debug"}
	obs := cfg.ObserveConfig()
	if obs.Tracing.Enabled {
		t.Error("tracing exporter none should disable tracing")
	}
	if !obs.Metrics.Enabled || obs.Metrics.Exporter != "stdout" {
		t.Errorf("Metrics = %+v", obs.Metrics)
	}
	if !obs.Logging.Enabled || obs.Logging.Level != "debug" {
		t.Errorf("Logging = %+v", obs.Logging)
	}
}
