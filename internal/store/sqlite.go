package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS collections (
	key        TEXT PRIMARY KEY,
	records    TEXT NOT NULL,
	version    INTEGER NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLite stores collections in a single-file database.
type SQLite struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (and creates if needed) a SQLite store at path.
func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Version check and replace must not interleave across connections.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create collections table: %w", err)
	}
	return &SQLite{sqlDB: sqlDB}, nil
}

// Get reads one collection.
func (s *SQLite) Get(ctx context.Context, key string) (Collection, error) {
	var data string
	var version int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT records, version FROM collections WHERE key = ?`, key,
	).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return Collection{Key: key, Records: []json.RawMessage{}}, nil
	}
	if err != nil {
		return Collection{}, fmt.Errorf("failed to get collection %s: %w", key, err)
	}
	records, err := unmarshalRecords(key, []byte(data))
	if err != nil {
		return Collection{}, err
	}
	return Collection{Key: key, Records: records, Version: version}, nil
}

// Put replaces one collection inside a transaction guarded by the version check.
func (s *SQLite) Put(ctx context.Context, key string, records []json.RawMessage, expectedVersion int64) (int64, error) {
	data, err := marshalRecords(records)
	if err != nil {
		return 0, fmt.Errorf("failed to encode collection %s: %w", key, err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current int64
	err = tx.QueryRowContext(ctx, `SELECT version FROM collections WHERE key = ?`, key).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to read version of %s: %w", key, err)
	}
	if current != expectedVersion {
		return 0, &VersionConflict{Key: key, Expected: expectedVersion, Actual: current}
	}

	next := current + 1
	_, err = tx.ExecContext(ctx,
		`INSERT INTO collections (key, records, version, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET records = excluded.records, version = excluded.version, updated_at = excluded.updated_at`,
		key, string(data), next, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to put collection %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit collection %s: %w", key, err)
	}
	return next, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
