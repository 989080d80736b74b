package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TEXT NOT NULL
);
`

// SQLiteStore implements Store on a pooled SQLite database.
type SQLiteStore struct {
	pool *sqlitex.Pool
}

// NewSQLiteStore opens (creating if needed) the database at path and ensures
// the snapshots table exists. poolSize below 1 falls back to 4.
func NewSQLiteStore(ctx context.Context, path string, poolSize int) (*SQLiteStore, error) {
	if path == "" {
		return nil, &StorageError{Op: "open", Entity: "sqlite", Err: fmt.Errorf("%w: empty path", ErrInvalidInput)}
	}
	if poolSize < 1 {
		poolSize = 4
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &StorageError{Op: "open", Entity: "sqlite", ID: path, Err: err}
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize: poolSize,
		PrepareConn: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteTransient(conn, "PRAGMA busy_timeout = 5000;", nil)
		},
	})
	if err != nil {
		return nil, &StorageError{Op: "open", Entity: "sqlite", ID: path, Err: err}
	}

	s := &SQLiteStore{pool: pool}

	conn, err := s.conn(ctx)
	if err != nil {
		pool.Close()
		return nil, &StorageError{Op: "open", Entity: "sqlite", ID: path, Err: err}
	}
	err = sqlitex.ExecuteScript(conn, sqliteSchema, nil)
	pool.Put(conn)
	if err != nil {
		pool.Close()
		return nil, &StorageError{Op: "migrate", Entity: "sqlite", ID: path, Err: err}
	}

	return s, nil
}

// conn takes a pooled connection. Get reports a canceled context, a closed
// pool and a failed connection setup alike as nil.
func (s *SQLiteStore) conn(ctx context.Context) (*sqlite.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn := s.pool.Get(ctx)
	if conn == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrClosed
	}
	return conn, nil
}

// Write implements Store with an upsert inside an immediate transaction.
func (s *SQLiteStore) Write(ctx context.Context, key string, value []byte) (err error) {
	if err := validateKey("write", key); err != nil {
		return err
	}

	conn, err := s.conn(ctx)
	if err != nil {
		return &StorageError{Op: "write", Entity: "snapshot", ID: key, Err: err}
	}
	defer s.pool.Put(conn)

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return &StorageError{Op: "write", Entity: "snapshot", ID: key, Err: err}
	}
	defer endFn(&err)

	err = sqlitex.Execute(conn, `
		INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`,
		&sqlitex.ExecOptions{
			Args: []any{key, value, time.Now().UTC().Format(time.RFC3339Nano)},
		})
	if err != nil {
		return &StorageError{Op: "write", Entity: "snapshot", ID: key, Err: err}
	}
	return nil
}

// Read implements Store.
func (s *SQLiteStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey("read", key); err != nil {
		return nil, err
	}

	conn, err := s.conn(ctx)
	if err != nil {
		return nil, &StorageError{Op: "read", Entity: "snapshot", ID: key, Err: err}
	}
	defer s.pool.Put(conn)

	var (
		value []byte
		found bool
	)
	err = sqlitex.Execute(conn, `SELECT value FROM snapshots WHERE key = ?;`, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, value)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, &StorageError{Op: "read", Entity: "snapshot", ID: key, Err: err}
	}
	if !found {
		return nil, &StorageError{Op: "read", Entity: "snapshot", ID: key, Err: ErrNotFound}
	}
	return value, nil
}

// Exists implements Store.
func (s *SQLiteStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey("exists", key); err != nil {
		return false, err
	}

	conn, err := s.conn(ctx)
	if err != nil {
		return false, &StorageError{Op: "exists", Entity: "snapshot", ID: key, Err: err}
	}
	defer s.pool.Put(conn)

	var found bool
	err = sqlitex.Execute(conn, `SELECT 1 FROM snapshots WHERE key = ?;`, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(*sqlite.Stmt) error {
			found = true
			return nil
		},
	})
	if err != nil {
		return false, &StorageError{Op: "exists", Entity: "snapshot", ID: key, Err: err}
	}
	return found, nil
}

// Close closes every pooled connection.
func (s *SQLiteStore) Close() error {
	return s.pool.Close()
}
