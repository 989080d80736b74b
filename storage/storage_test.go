package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	tests := []struct {
		name string
		opts Options
		want any
	}{
		{"default is json", Options{Path: filepath.Join(dir, "a.json")}, &JSONStore{}},
		{"json", Options{Driver: "json", Path: filepath.Join(dir, "b.json")}, &JSONStore{}},
		{"sqlite", Options{Driver: "SQLite", Path: filepath.Join(dir, "c.db"), SQLitePoolSize: 1}, &SQLiteStore{}},
		{"redis", Options{Driver: "redis", RedisURL: "redis://" + mr.Addr()}, &RedisStore{}},
		{"json in a new directory", Options{Driver: "json", Path: filepath.Join(dir, "data", "vidlists-data.json")}, &JSONStore{}},
		{"sqlite in a new directory", Options{Driver: "sqlite", Path: filepath.Join(dir, "db", "vidlists.db")}, &SQLiteStore{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, err := Open(ctx, tc.opts)
			require.NoError(t, err)
			defer store.Close()
			assert.IsType(t, tc.want, store)

			require.NoError(t, store.Write(ctx, "k", []byte(`{"ok":true}`)))
			ok, err := store.Exists(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "mongo"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestOpen_PostgresNeedsDSN(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "postgres"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStorageError(t *testing.T) {
	err := &StorageError{Op: "read", Entity: "snapshot", ID: "u1", Err: ErrNotFound}
	assert.Equal(t, "storage: read snapshot u1: storage: not found", err.Error())

	err = &StorageError{Op: "open", Entity: "store", Err: ErrUnknownDriver}
	assert.Equal(t, "storage: open store: storage: unknown driver", err.Error())
}
