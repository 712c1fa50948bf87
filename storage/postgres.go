package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the table backing PostgresStorage
const Schema = `
CREATE TABLE IF NOT EXISTS kv_buckets (
    key        TEXT PRIMARY KEY,
    value      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PostgresStorage stores bucket documents as JSONB rows
type PostgresStorage struct {
	db     *pgxpool.Pool
	ownsDB bool
}

// NewPostgresStorage wraps an existing pool. The caller keeps ownership of db.
func NewPostgresStorage(db *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// NewPostgresStorageFromURL connects, pings, and makes sure the table exists
func NewPostgresStorageFromURL(ctx context.Context, connString string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, Schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create kv_buckets table: %w", err)
	}

	return &PostgresStorage{db: pool, ownsDB: true}, nil
}

// Get retrieves a bucket document by key
func (s *PostgresStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	query := `SELECT value::text FROM kv_buckets WHERE key = $1`

	err := s.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

// Put upserts a bucket document
func (s *PostgresStorage) Put(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv_buckets (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()`

	_, err := s.db.Exec(ctx, query, key, string(value))
	return err
}

// Delete removes a bucket document
func (s *PostgresStorage) Delete(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM kv_buckets WHERE key = $1`, key)
	return err
}

func (s *PostgresStorage) Close() error {
	if s.ownsDB {
		s.db.Close()
	}
	return nil
}
