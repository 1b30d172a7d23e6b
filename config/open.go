package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonwraymond/accountkit/cache"
	"github.com/jonwraymond/accountkit/health"
	"github.com/jonwraymond/accountkit/observe"
	"github.com/jonwraymond/accountkit/record"
	"github.com/jonwraymond/accountkit/secret"
	"github.com/jonwraymond/accountkit/vault"
)

// Runtime is a wired cache with its collaborators.
type Runtime struct {
	Config   Config
	Store    cache.Store
	Cache    *cache.Cache
	Observer observe.Observer
	Health   *health.Aggregator

	closers []func(context.Context) error
}

// Open validates cfg and wires a Runtime from it. The caller must Close it.
func Open(ctx context.Context, cfg Config) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rt := &Runtime{Config: cfg}

	obs, err := observe.NewObserver(ctx, cfg.ObserveConfig())
	if err != nil {
		return nil, fmt.Errorf("config: observer: %w", err)
	}
	rt.Observer = obs
	rt.closers = append(rt.closers, obs.Shutdown)

	store, err := openStore(cfg)
	if err != nil {
		return nil, rt.abort(ctx, err)
	}
	rt.Store = store
	if c, ok := store.(interface{ Close() error }); ok {
		rt.closers = append(rt.closers, func(context.Context) error { return c.Close() })
	}

	codec, err := record.CodecByName(cfg.Codec)
	if err != nil {
		return nil, rt.abort(ctx, err)
	}
	opts := []cache.Option{
		cache.WithPolicy(cfg.Policy()),
		cache.WithCodec(codec),
		cache.WithObserver(obs),
	}
	if cfg.SealKey != "" {
		sealer, err := openSealer(ctx, cfg)
		if err != nil {
			return nil, rt.abort(ctx, err)
		}
		opts = append(opts, cache.WithSealer(sealer))
	}

	c, err := cache.New(store, opts...)
	if err != nil {
		return nil, rt.abort(ctx, err)
	}
	rt.Cache = c
	rt.closers = append(rt.closers, c.Close)

	rt.Health = health.NewAggregator(health.AggregatorConfig{Timeout: cfg.HealthTimeout})
	rt.Health.Register("cache", c.HealthChecker())
	rt.Health.Register("store", health.NewPingChecker("store", store.Ping))
	if cfg.HeapLimit > 0 {
		rt.Health.Register("heap", health.NewHeapChecker(cfg.HeapLimit, 0, 0))
	}

	obs.Logger().Debug(ctx, "accountkit runtime opened",
		observe.F("store", store.Kind()), observe.F("codec", codec.Name()), observe.F("sealed", cfg.SealKey != ""))
	return rt, nil
}

func openStore(cfg Config) (cache.Store, error) {
	switch cfg.Store {
	case StoreMemory:
		return cache.NewMemoryStore(), nil
	case StoreFile:
		return cache.NewFileStore(cfg.EntriesDir())
	case StoreSQLite:
		path := cfg.DatabasePath()
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("config: create database dir: %w", err)
		}
		return cache.OpenSQLiteStore(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStore, cfg.Store)
	}
}

// openSealer resolves the seal key through the built-in secret providers.
func openSealer(ctx context.Context, cfg Config) (*vault.Sealer, error) {
	envProvider, err := secret.DefaultRegistry.Create("env", nil)
	if err != nil {
		return nil, err
	}
	resolver := secret.NewResolver(true, envProvider)
	defer resolver.Close()

	if cfg.SecretDir != "" {
		fileProvider, err := secret.DefaultRegistry.Create("file", map[string]any{"dir": cfg.SecretDir})
		if err != nil {
			return nil, fmt.Errorf("config: secret dir: %w", err)
		}
		resolver.Register(fileProvider)
	}
	return vault.NewSealerFromSecret(ctx, resolver, cfg.SealKey)
}

// abort releases what Open has built so far and returns err.
func (r *Runtime) abort(ctx context.Context, err error) error {
	return errors.Join(err, r.Close(ctx))
}

// Close closes the cache, the store and the observer, in that order.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
