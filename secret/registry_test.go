package secret

import (
	"errors"
	"slices"
	"testing"
)

func stubFactory(name string) ProviderFactory {
	return func(map[string]any) (Provider, error) {
		return &stubProvider{name: name}, nil
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name    string
		reg     string
		factory ProviderFactory
		wantErr error
	}{
		{"first registration", "stub", stubFactory("stub"), nil},
		{"trimmed name", " other ", stubFactory("other"), nil},
		{"duplicate", "stub", stubFactory("stub"), ErrProviderExists},
		{"blank name", "  ", stubFactory("x"), ErrInvalidRef},
		{"nil factory", "nil", nil, ErrInvalidRef},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.reg, tt.factory)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register(%q) error = %v, want %v", tt.reg, err, tt.wantErr)
			}
		})
	}

	if got := reg.List(); !slices.Equal(got, []string{"other", "stub"}) {
		t.Errorf("List() = %v", got)
	}
	p, err := reg.Create("other", nil)
	if err != nil || p.Name() != "other" {
		t.Errorf("Create(other) = %v, %v", p, err)
	}
	if _, err := reg.Create("missing", nil); !errors.Is(err, ErrProviderNotRegistered) {
		t.Errorf("Create(missing) error = %v", err)
	}
}

func TestDefaultRegistry_Builtins(t *testing.T) {
	if got := DefaultRegistry.List(); !slices.Equal(got, []string{"env", "file"}) {
		t.Fatalf("List() = %v", got)
	}

	p, err := DefaultRegistry.Create("file", map[string]any{"dir": t.TempDir()})
	if err != nil || p.Name() != "file" {
		t.Fatalf("Create(file) = %v, %v", p, err)
	}
	if _, err := DefaultRegistry.Create("file", nil); err == nil {
		t.Fatal("Create(file) without dir succeeded")
	}
	if err := RegisterBuiltins(DefaultRegistry); !errors.Is(err, ErrProviderExists) {
		t.Errorf("RegisterBuiltins() twice error = %v", err)
	}
}
