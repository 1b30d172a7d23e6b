package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jonwraymond/accountkit/cache"
	"github.com/jonwraymond/accountkit/observe"
	"github.com/jonwraymond/accountkit/record"
	"github.com/jonwraymond/accountkit/resilience"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// ValidStores lists the accepted ACCOUNTKIT_STORE values.
var ValidStores = []string{StoreMemory, StoreFile, StoreSQLite}

// Config holds process-wide accountkit settings.
type Config struct {
	ServiceName string `env:"ACCOUNTKIT_SERVICE_NAME" envDefault:"accountkit"`
	Version     string `env:"ACCOUNTKIT_VERSION"`

	Store      string `env:"ACCOUNTKIT_STORE"       envDefault:"file"`
	DataDir    string `env:"ACCOUNTKIT_DATA_DIR"    envDefault:".accountkit"`
	SQLitePath string `env:"ACCOUNTKIT_SQLITE_PATH"`
	Codec      string `env:"ACCOUNTKIT_CODEC"       envDefault:"cbor"`

	SealKey   string `env:"ACCOUNTKIT_SEAL_KEY"`
	SecretDir string `env:"ACCOUNTKIT_SECRET_DIR"`

	LogLevel         string  `env:"ACCOUNTKIT_LOG_LEVEL"          envDefault:"info"`
	TracingExporter  string  `env:"ACCOUNTKIT_TRACING_EXPORTER"   envDefault:"none"`
	TracingSamplePct float64 `env:"ACCOUNTKIT_TRACING_SAMPLE_PCT" envDefault:"1"`
	MetricsExporter  string  `env:"ACCOUNTKIT_METRICS_EXPORTER"   envDefault:"none"`

	Write WriteConfig `envPrefix:"ACCOUNTKIT_WRITE_"`

	HeapLimit     uint64        `env:"ACCOUNTKIT_HEAP_LIMIT"`
	HealthTimeout time.Duration `env:"ACCOUNTKIT_HEALTH_TIMEOUT" envDefault:"5s"`
}

// WriteConfig tunes how the cache persists entries.
type WriteConfig struct {
	RetryAttempts   int           `env:"RETRY_ATTEMPTS"   envDefault:"3"`
	RetryDelay      time.Duration `env:"RETRY_DELAY"      envDefault:"50ms"`
	RetryMaxDelay   time.Duration `env:"RETRY_MAX_DELAY"  envDefault:"2s"`
	BreakerFailures int           `env:"BREAKER_FAILURES" envDefault:"5"`
	BreakerReset    time.Duration `env:"BREAKER_RESET"    envDefault:"30s"`
	MaxConcurrent   int           `env:"MAX_CONCURRENT"   envDefault:"8"`
	FlushOnClose    bool          `env:"FLUSH_ON_CLOSE"   envDefault:"true"`
}

// Load parses the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// LoadFrom parses vars instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !slices.Contains(ValidStores, c.Store) {
		return fmt.Errorf("%w: %q", ErrInvalidStore, c.Store)
	}
	switch c.Store {
	case StoreFile:
		if c.DataDir == "" {
			return ErrMissingDataDir
		}
	case StoreSQLite:
		if c.DataDir == "" && c.SQLitePath == "" {
			return ErrMissingDataDir
		}
	}
	if _, err := record.CodecByName(c.Codec); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Write.RetryAttempts < 1 {
		return fmt.Errorf("%w: retry attempts must be at least 1", ErrInvalidWritePolicy)
	}
	if c.Write.BreakerFailures < 0 || c.Write.MaxConcurrent < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidWritePolicy)
	}
	obs := c.ObserveConfig()
	return obs.Validate()
}

// ObserveConfig derives telemetry settings. An exporter of "none" or ""
// disables the signal.
func (c Config) ObserveConfig() observe.Config {
	return observe.Config{
		ServiceName: c.ServiceName,
		Version:     c.Version,
		Tracing: observe.TracingConfig{
			Enabled:   enabled(c.TracingExporter),
			Exporter:  c.TracingExporter,
			SamplePct: c.TracingSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  enabled(c.MetricsExporter),
			Exporter: c.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.LogLevel,
		},
	}
}

func enabled(exporter string) bool {
	return exporter != "" && exporter != "none"
}

// Policy derives the cache persistence policy.
func (c Config) Policy() cache.Policy {
	return cache.Policy{
		Write: resilience.PolicyConfig{
			RetryAttempts:     c.Write.RetryAttempts,
			RetryBackoff:      resilience.BackoffExponential,
			RetryDelay:        c.Write.RetryDelay,
			RetryMaxDelay:     c.Write.RetryMaxDelay,
			BreakerFailures:   c.Write.BreakerFailures,
			BreakerReset:      c.Write.BreakerReset,
			MaxConcurrent:     c.Write.MaxConcurrent,
			MaxConcurrentWait: -1,
		},
		FlushOnClose: c.Write.FlushOnClose,
	}
}

// EntriesDir is where the file store keeps entries.
func (c Config) EntriesDir() string {
	return filepath.Join(c.DataDir, "entries")
}

// DatabasePath is where the sqlite store keeps its database.
func (c Config) DatabasePath() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.DataDir, "entries.db")
}
