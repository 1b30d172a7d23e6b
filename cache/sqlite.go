package cache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// SQLiteStore keeps entries in a single SQLite database file.
type SQLiteStore struct {
	db    *sql.DB
	keyer Keyer
}

// SQLiteStoreOption configures a SQLiteStore.
type SQLiteStoreOption func(*SQLiteStore)

// WithSQLiteKeyer sets how account ids map to row keys.
func WithSQLiteKeyer(k Keyer) SQLiteStoreOption {
	return func(s *SQLiteStore) {
		if k != nil {
			s.keyer = k
		}
	}
}

// OpenSQLiteStore opens (creating if needed) the database at path and
// applies the embedded migrations.
func OpenSQLiteStore(path string, opts ...SQLiteStoreOption) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("cache: sqlite path is required")
	}

	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cache: open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache: ping sqlite db: %w", err)
	}
	if err := applyMigrations(db, migrationFS, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache: run migrations: %w", err)
	}

	s := &SQLiteStore{db: db, keyer: NewDefaultKeyer()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load returns the payload stored for id.
func (s *SQLiteStore) Load(ctx context.Context, id string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM account_entries WHERE entry_key = ?`,
		s.keyer.Key(id),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache: load entry: %w", err)
	}
	return payload, nil
}

// Save upserts the payload for id.
func (s *SQLiteStore) Save(ctx context.Context, id string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO account_entries (entry_key, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(entry_key) DO UPDATE SET
    payload = excluded.payload,
    updated_at = excluded.updated_at`,
		s.keyer.Key(id), data, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("cache: save entry: %w", err)
	}
	return nil
}

// Delete removes the row for id. Idempotent - no error on miss.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM account_entries WHERE entry_key = ?`, s.keyer.Key(id)); err != nil {
		return fmt.Errorf("cache: delete entry: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Kind returns "sqlite".
func (s *SQLiteStore) Kind() string { return "sqlite" }

// Count returns the number of stored entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM account_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache: count entries: %w", err)
	}
	return n, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// applyMigrations runs each embedded .sql file under root at most once.
func applyMigrations(db *sql.DB, fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, name := range files {
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, name).Scan(&n); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if n > 0 {
			continue
		}

		content, err := fs.ReadFile(fsys, root+"/"+name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(upSection(string(content))); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`,
			name, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

// upSection returns the SQL between "-- +migrate Up" and "-- +migrate Down".
func upSection(content string) string {
	const up, down = "-- +migrate Up", "-- +migrate Down"
	if i := strings.Index(content, up); i >= 0 {
		content = content[i+len(up):]
	}
	if i := strings.Index(content, down); i >= 0 {
		content = content[:i]
	}
	return content
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)
