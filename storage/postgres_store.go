package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of *pgxpool.Pool used by PostgresStore. pgxmock pools
// satisfy it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store on a PostgreSQL table.
type PostgresStore struct {
	db DB
}

// NewPostgresStore wraps an open pool. Call AutoMigrate before first use.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects with dsn, pings, and creates the snapshots table.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, &StorageError{Op: "open", Entity: "postgres", Err: fmt.Errorf("%w: empty dsn", ErrInvalidInput)}
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, &StorageError{Op: "open", Entity: "postgres", Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &StorageError{Op: "open", Entity: "postgres", Err: err}
	}

	s := NewPostgresStore(pool)
	if err := s.AutoMigrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// AutoMigrate creates the snapshots table if it does not exist.
func (s *PostgresStore) AutoMigrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS vidlists_snapshots (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	if err != nil {
		return &StorageError{Op: "migrate", Entity: "postgres", Err: err}
	}
	return nil
}

// Write implements Store with an upsert inside a transaction.
func (s *PostgresStore) Write(ctx context.Context, key string, value []byte) error {
	if err := validateKey("write", key); err != nil {
		return err
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return &StorageError{Op: "write", Entity: "snapshot", ID: key, Err: err}
	}
	_, err = tx.Exec(ctx, `
INSERT INTO vidlists_snapshots (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, value)
	if err != nil {
		tx.Rollback(ctx)
		return &StorageError{Op: "write", Entity: "snapshot", ID: key, Err: err}
	}
	// A failed Commit ends the transaction itself.
	if err := tx.Commit(ctx); err != nil {
		return &StorageError{Op: "write", Entity: "snapshot", ID: key, Err: err}
	}
	return nil
}

// Read implements Store.
func (s *PostgresStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey("read", key); err != nil {
		return nil, err
	}
	var value []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM vidlists_snapshots WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &StorageError{Op: "read", Entity: "snapshot", ID: key, Err: ErrNotFound}
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Entity: "snapshot", ID: key, Err: err}
	}
	return value, nil
}

// Exists implements Store.
func (s *PostgresStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey("exists", key); err != nil {
		return false, err
	}
	var ok bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vidlists_snapshots WHERE key = $1)`, key).Scan(&ok)
	if err != nil {
		return false, &StorageError{Op: "exists", Entity: "snapshot", ID: key, Err: err}
	}
	return ok, nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
