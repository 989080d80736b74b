package playlist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"vidlists/catalog"
	"vidlists/storage"
)

// memStore is an in-memory storage.Store that counts writes and can be told to fail.
type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	writes  int
	failErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Write(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return &storage.StorageError{Op: "write", Entity: "snapshot", ID: key, Err: m.failErr}
	}
	m.writes++
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, &storage.StorageError{Op: "read", Entity: "snapshot", ID: key, Err: storage.ErrNotFound}
	}
	return append([]byte(nil), v...), nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// sequentialIDs returns ids "id-1", "id-2", ...
func sequentialIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// mapResolver resolves ids from a fixed map.
type mapResolver map[int64]*catalog.Video

func (r mapResolver) GetVideo(_ context.Context, id int64) (*catalog.Video, error) {
	v, ok := r[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", catalog.ErrNotFound, id)
	}
	return v, nil
}

// failingResolver always fails with err.
type failingResolver struct{ err error }

func (r failingResolver) GetVideo(context.Context, int64) (*catalog.Video, error) {
	return nil, r.err
}

var errBoom = errors.New("boom")
