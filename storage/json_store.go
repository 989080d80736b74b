package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	schemaVersion = "1.0"
	lockTimeout   = 5 * time.Second
)

// JSONStore implements Store using a single JSON file. The file lock is held
// for the lifetime of the store, so only one process writes the file at a time.
type JSONStore struct {
	path   string
	lock   *FileLock
	data   *storeData
	mu     sync.RWMutex
	closed bool
}

// storeData is the top-level JSON structure. Values must themselves be JSON
// so the file stays readable.
type storeData struct {
	Version   string                     `json:"version"`
	UpdatedAt time.Time                  `json:"updated_at"`
	Entries   map[string]json.RawMessage `json:"entries"`
}

// NewJSONStore creates a new JSON file store at the given path.
// If the file exists, it is loaded; otherwise an empty store is created.
func NewJSONStore(path string) (*JSONStore, error) {
	if path == "" {
		return nil, &StorageError{Op: "open", Entity: "store", Err: fmt.Errorf("%w: empty path", ErrInvalidInput)}
	}

	// The lock file sits next to the data file, so its directory must exist first.
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &StorageError{Op: "open", Entity: "store", ID: path, Err: err}
	}

	s := &JSONStore{
		path: path,
		lock: NewFileLock(path),
	}

	if err := s.lock.Lock(lockTimeout); err != nil {
		return nil, err
	}

	if err := s.load(); err != nil {
		s.lock.Unlock()
		return nil, err
	}

	return s, nil
}

// load reads the JSON file into memory. Creates empty data if file doesn't exist.
func (s *JSONStore) load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.data = newStoreData()
			// Save immediately to surface permission errors at open.
			return s.save(s.data)
		}
		return &StorageError{Op: "read", Entity: "store", Err: err}
	}

	data := &storeData{}
	if err := json.Unmarshal(raw, data); err != nil {
		return &StorageError{Op: "read", Entity: "store", ID: s.path, Err: ErrStorageCorrupt}
	}
	if data.Entries == nil {
		data.Entries = make(map[string]json.RawMessage)
	}
	s.data = data
	return nil
}

// save persists data to disk atomically. The file holds user data, so it is
// readable by the owner only.
func (s *JSONStore) save(data *storeData) error {
	data.UpdatedAt = time.Now().UTC()

	err := replaceFile(s.path, 0o600, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	})
	if err != nil {
		return &StorageError{Op: "write", Entity: "store", Err: err}
	}
	return nil
}

// Write implements Store. The entry only becomes visible once the file has
// been replaced on disk.
func (s *JSONStore) Write(ctx context.Context, key string, value []byte) error {
	if err := validateKey("write", key); err != nil {
		return err
	}
	if !json.Valid(value) {
		return &StorageError{Op: "write", Entity: "snapshot", ID: key, Err: fmt.Errorf("%w: value is not JSON", ErrInvalidInput)}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &StorageError{Op: "write", Entity: "snapshot", ID: key, Err: ErrClosed}
	}

	next := &storeData{
		Version: s.data.Version,
		Entries: make(map[string]json.RawMessage, len(s.data.Entries)+1),
	}
	for k, v := range s.data.Entries {
		next.Entries[k] = v
	}
	next.Entries[key] = append(json.RawMessage(nil), value...)

	if err := s.save(next); err != nil {
		var se *StorageError
		if errors.As(err, &se) {
			se.Entity, se.ID = "snapshot", key
		}
		return err
	}
	s.data = next
	return nil
}

// Read implements Store.
func (s *JSONStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey("read", key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, &StorageError{Op: "read", Entity: "snapshot", ID: key, Err: ErrClosed}
	}

	value, ok := s.data.Entries[key]
	if !ok {
		return nil, &StorageError{Op: "read", Entity: "snapshot", ID: key, Err: ErrNotFound}
	}
	return append([]byte(nil), value...), nil
}

// Exists implements Store.
func (s *JSONStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey("exists", key); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, &StorageError{Op: "exists", Entity: "snapshot", ID: key, Err: ErrClosed}
	}
	_, ok := s.data.Entries[key]
	return ok, nil
}

// Close releases the file lock. Further calls return ErrClosed.
func (s *JSONStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.lock.Unlock()
}

func newStoreData() *storeData {
	return &storeData{
		Version:   schemaVersion,
		UpdatedAt: time.Now().UTC(),
		Entries:   make(map[string]json.RawMessage),
	}
}
