package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS collections (
	key        TEXT PRIMARY KEY,
	records    JSONB NOT NULL,
	version    BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Postgres stores collections in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a connection pool and ensures the collections table exists.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create collections table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Get reads one collection.
func (p *Postgres) Get(ctx context.Context, key string) (Collection, error) {
	var data []byte
	var version int64
	err := p.pool.QueryRow(ctx,
		`SELECT records, version FROM collections WHERE key = $1`, key,
	).Scan(&data, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return Collection{Key: key, Records: []json.RawMessage{}}, nil
	}
	if err != nil {
		return Collection{}, fmt.Errorf("failed to get collection %s: %w", key, err)
	}
	records, err := unmarshalRecords(key, data)
	if err != nil {
		return Collection{}, err
	}
	return Collection{Key: key, Records: records, Version: version}, nil
}

// Put replaces one collection. The version check and the write are a single
// statement, so concurrent writers cannot both succeed against one version.
func (p *Postgres) Put(ctx context.Context, key string, records []json.RawMessage, expectedVersion int64) (int64, error) {
	data, err := marshalRecords(records)
	if err != nil {
		return 0, fmt.Errorf("failed to encode collection %s: %w", key, err)
	}

	var next int64
	if expectedVersion == 0 {
		err = p.pool.QueryRow(ctx,
			`INSERT INTO collections (key, records, version)
			 VALUES ($1, $2, 1)
			 ON CONFLICT (key) DO NOTHING
			 RETURNING version`,
			key, data,
		).Scan(&next)
	} else {
		err = p.pool.QueryRow(ctx,
			`UPDATE collections SET records = $2, version = version + 1, updated_at = NOW()
			 WHERE key = $1 AND version = $3
			 RETURNING version`,
			key, data, expectedVersion,
		).Scan(&next)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		actual, verr := p.version(ctx, key)
		if verr != nil {
			return 0, verr
		}
		return 0, &VersionConflict{Key: key, Expected: expectedVersion, Actual: actual}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to put collection %s: %w", key, err)
	}
	return next, nil
}

func (p *Postgres) version(ctx context.Context, key string) (int64, error) {
	var v int64
	err := p.pool.QueryRow(ctx, `SELECT version FROM collections WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read version of %s: %w", key, err)
	}
	return v, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
