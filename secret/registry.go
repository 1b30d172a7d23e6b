package secret

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ProviderFactory creates a Provider from configuration.
type ProviderFactory func(cfg map[string]any) (Provider, error)

// Registry maps provider names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

// Register adds factory under name. Names are registered once.
func (r *Registry) Register(name string, factory ProviderFactory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return fmt.Errorf("%w: provider name and factory are required", ErrInvalidRef)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.factories[name]; taken {
		return fmt.Errorf("%w: %q", ErrProviderExists, name)
	}
	r.factories[name] = factory
	return nil
}

// Create builds the provider registered under name.
func (r *Registry) Create(name string, cfg map[string]any) (Provider, error) {
	r.mu.RLock()
	factory, ok := r.factories[strings.TrimSpace(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotRegistered, name)
	}
	return factory(cfg)
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// RegisterBuiltins adds the env and file providers to r.
//
// The env factory reads an optional "prefix" string; the file factory
// requires a "dir" string.
func RegisterBuiltins(r *Registry) error {
	err := r.Register("env", func(cfg map[string]any) (Provider, error) {
		prefix, _ := cfg["prefix"].(string)
		return NewEnvProvider(prefix), nil
	})
	if err != nil {
		return err
	}
	return r.Register("file", func(cfg map[string]any) (Provider, error) {
		dir, _ := cfg["dir"].(string)
		return NewFileProvider(dir)
	})
}

// DefaultRegistry is the global registry for secret providers. It starts
// with the built-in providers.
var DefaultRegistry = func() *Registry {
	r := NewRegistry()
	if err := RegisterBuiltins(r); err != nil {
		panic(err)
	}
	return r
}()
