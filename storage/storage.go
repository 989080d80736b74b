// Package storage persists user snapshots as opaque values under string keys.
//
// Four backends implement Store: a single JSON document on disk, SQLite,
// Redis and PostgreSQL. Open selects one from Options.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common storage conditions.
var (
	// ErrNotFound indicates the requested key was not found.
	ErrNotFound = errors.New("storage: not found")
	// ErrInvalidInput indicates invalid or malformed input was provided.
	ErrInvalidInput = errors.New("storage: invalid input")
	// ErrStorageCorrupt indicates data corruption was detected.
	ErrStorageCorrupt = errors.New("storage: data corruption detected")
	// ErrLockTimeout indicates a timeout acquiring a file lock.
	ErrLockTimeout = errors.New("storage: lock acquisition timeout")
	// ErrUnknownDriver indicates Options named a backend that does not exist.
	ErrUnknownDriver = errors.New("storage: unknown driver")
	// ErrClosed indicates the store was used after Close.
	ErrClosed = errors.New("storage: store closed")
)

// StorageError wraps storage errors with operation and entity context.
// Use errors.As() to extract this error type and get operation details:
//
//	var storErr *storage.StorageError
//	if errors.As(err, &storErr) {
//		fmt.Printf("Failed to %s %s %s: %v\n", storErr.Op, storErr.Entity, storErr.ID, storErr.Err)
//	}
type StorageError struct {
	// Op is the operation that failed ("read", "write", "exists", "open", "lock").
	Op string
	// Entity is the backend or object involved ("snapshot", "store", "file").
	Entity string
	// ID is the key if applicable.
	ID string
	// Err is the underlying error that occurred.
	Err error
}

// Error returns a string representation of the storage error.
func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("storage: %s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *StorageError) Unwrap() error { return e.Err }

// Store is a transactional key/value store. Each call is atomic on its own;
// a read-modify-write spanning two calls is not.
// Implementations must be safe for concurrent use.
type Store interface {
	// Write stores value under key, replacing any previous value.
	Write(ctx context.Context, key string, value []byte) error
	// Read returns the value stored under key. A missing key yields an error
	// wrapping ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)
	// Exists reports whether key holds a value.
	Exists(ctx context.Context, key string) (bool, error)
	// Close releases any resources held by the store.
	Close() error
}

// Driver names accepted by Open.
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	// Driver is one of DriverJSON, DriverSQLite, DriverRedis, DriverPostgres.
	Driver string
	// Path is the file used by the json and sqlite drivers.
	Path string
	// SQLitePoolSize is the number of pooled sqlite connections.
	SQLitePoolSize int
	// RedisURL is a redis:// URL for the redis driver.
	RedisURL string
	// RedisKeyPrefix is prepended to every key by the redis driver.
	RedisKeyPrefix string
	// PostgresDSN is the connection string for the postgres driver.
	PostgresDSN string
}

// Open creates the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case DriverJSON, "":
		return NewJSONStore(opts.Path)
	case DriverSQLite:
		return NewSQLiteStore(ctx, opts.Path, opts.SQLitePoolSize)
	case DriverRedis:
		return OpenRedis(ctx, opts.RedisURL, opts.RedisKeyPrefix)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.PostgresDSN)
	default:
		return nil, &StorageError{Op: "open", Entity: "store", ID: opts.Driver, Err: ErrUnknownDriver}
	}
}

func validateKey(op, key string) error {
	if key == "" {
		return &StorageError{Op: op, Entity: "snapshot", Err: fmt.Errorf("%w: empty key", ErrInvalidInput)}
	}
	return nil
}
