package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// SQLite persists values in a single-table database file.
type SQLite struct {
	db *sql.DB
}

// SQLiteOptions configures OpenSQLite.
type SQLiteOptions struct {
	Path string // database file, ":memory:" for a throwaway store
	// MaxPages bounds the database size (PRAGMA max_page_count). 0 = no bound.
	MaxPages int
}

// OpenSQLite opens (and creates if needed) the store.
func OpenSQLite(ctx context.Context, opts SQLiteOptions) (*SQLite, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open(DriverName, opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// PRAGMAs are per connection and ":memory:" databases are per
	// connection too: keep exactly one.
	db.SetMaxOpenConns(1)

	pragmas := []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=2000"}
	if opts.MaxPages > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA max_page_count=%d", opts.MaxPages))
	}
	stmts := append([]string{
		`CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}, pragmas...)

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize sqlite (%s): %w", firstWord(stmt), err)
		}
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return v, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return classifySQLiteError(key, err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return unavailableError(key, err)
	}
	return nil
}

func classifySQLiteError(key string, err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_FULL {
		return quotaError(key, err)
	}
	if strings.Contains(err.Error(), "database or disk is full") {
		return quotaError(key, err)
	}
	return unavailableError(key, err)
}

func (s *SQLite) Close() error { return s.db.Close() }

func firstWord(stmt string) string {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return ""
	}
	if len(fields) > 1 && fields[0] == "PRAGMA" {
		return fields[0] + " " + fields[1]
	}
	return fields[0]
}
