package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const fileSuffix = ".entry"

// FileStore keeps one file per account in a directory. Writes go to a
// temporary file that is renamed over the old one, so a crash leaves either
// the previous or the new blob, never a torn one.
type FileStore struct {
	dir   string
	keyer Keyer
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithFileKeyer sets how account ids map to file names.
func WithFileKeyer(k Keyer) FileStoreOption {
	return func(s *FileStore) {
		if k != nil {
			s.keyer = k
		}
	}
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string, opts ...FileStoreOption) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache: file store directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cache: create data dir: %w", err)
	}
	s := &FileStore{dir: dir, keyer: NewDefaultKeyer()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, s.keyer.Key(id)+fileSuffix)
}

// Load reads the file for id.
func (s *FileStore) Load(_ context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: read entry: %w", err)
	}
	return data, nil
}

// Save atomically replaces the file for id.
func (s *FileStore) Save(_ context.Context, id string, data []byte) error {
	target := s.path(id)

	tmp, err := os.CreateTemp(s.dir, filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("cache: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("cache: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("cache: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("cache: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		cleanup()
		return fmt.Errorf("cache: rename entry: %w", err)
	}
	return nil
}

// Delete removes the file for id. Idempotent - no error on miss.
func (s *FileStore) Delete(_ context.Context, id string) error {
	err := os.Remove(s.path(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cache: remove entry: %w", err)
	}
	return nil
}

// Ping checks that the data directory still exists.
func (s *FileStore) Ping(context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("cache: stat data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cache: data dir %q is not a directory", s.dir)
	}
	return nil
}

// Kind returns "file".
func (s *FileStore) Kind() string { return "file" }

// Dir returns the data directory.
func (s *FileStore) Dir() string { return s.dir }

// Ensure FileStore implements Store
var _ Store = (*FileStore)(nil)
