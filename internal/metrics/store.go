package metrics

import (
	"context"

	"vidlists/storage"
)

// InstrumentStore wraps s so every call is counted. A nil store stays nil.
func (m *Metrics) InstrumentStore(s storage.Store) storage.Store {
	if s == nil {
		return nil
	}
	return &countingStore{next: s, ops: m}
}

type countingStore struct {
	next storage.Store
	ops  *Metrics
}

func (s *countingStore) observe(op string, err error) {
	s.ops.storeOps.WithLabelValues(op, result(err)).Inc()
}

func (s *countingStore) Write(ctx context.Context, key string, value []byte) error {
	err := s.next.Write(ctx, key, value)
	s.observe("write", err)
	return err
}

func (s *countingStore) Read(ctx context.Context, key string) ([]byte, error) {
	v, err := s.next.Read(ctx, key)
	s.observe("read", err)
	return v, err
}

func (s *countingStore) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := s.next.Exists(ctx, key)
	s.observe("exists", err)
	return ok, err
}

func (s *countingStore) Close() error { return s.next.Close() }
