package secret

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves a reference as the name of an environment variable.
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates an env provider. A non-empty prefix is prepended
// to every reference before lookup.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix}
}

// Name returns "env".
func (p *EnvProvider) Name() string { return "env" }

// Resolve returns the value of the variable named by ref.
func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	name := p.prefix + ref
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", fmt.Errorf("%w: env %s", ErrNotFound, name)
	}
	return v, nil
}

// Close is a no-op.
func (p *EnvProvider) Close() error { return nil }

// FileProvider resolves a reference as a file path below a base directory.
// Trailing newlines are trimmed from the content.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a file provider rooted at dir.
func NewFileProvider(dir string) (*FileProvider, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: file provider directory is required", ErrInvalidRef)
	}
	return &FileProvider{dir: dir}, nil
}

// Name returns "file".
func (p *FileProvider) Name() string { return "file" }

// Resolve reads the file ref names. References may not leave the base
// directory.
func (p *FileProvider) Resolve(_ context.Context, ref string) (string, error) {
	if !filepath.IsLocal(ref) {
		return "", fmt.Errorf("%w: %q escapes the secrets directory", ErrInvalidRef, ref)
	}
	data, err := os.ReadFile(filepath.Join(p.dir, ref))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: file %s", ErrNotFound, ref)
	}
	if err != nil {
		return "", fmt.Errorf("secret: read %s: %w", ref, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// Close is a no-op.
func (p *FileProvider) Close() error { return nil }

var (
	_ Provider = (*EnvProvider)(nil)
	_ Provider = (*FileProvider)(nil)
)
