package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces snapshot keys in a shared Redis.
const DefaultRedisKeyPrefix = "vidlists:user:"

// RedisStore implements Store on Redis. Every operation is a single command,
// which Redis executes atomically.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. An empty prefix uses DefaultRedisKeyPrefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedis parses a redis:// URL, connects and pings the server.
func OpenRedis(ctx context.Context, url, prefix string) (*RedisStore, error) {
	if url == "" {
		return nil, &StorageError{Op: "open", Entity: "redis", Err: fmt.Errorf("%w: empty url", ErrInvalidInput)}
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, &StorageError{Op: "open", Entity: "redis", Err: fmt.Errorf("%w: %w", ErrInvalidInput, err)}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, &StorageError{Op: "open", Entity: "redis", ID: opts.Addr, Err: err}
	}
	return NewRedisStore(client, prefix), nil
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

// Write implements Store.
func (s *RedisStore) Write(ctx context.Context, key string, value []byte) error {
	if err := validateKey("write", key); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return &StorageError{Op: "write", Entity: "snapshot", ID: key, Err: err}
	}
	return nil
}

// Read implements Store.
func (s *RedisStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey("read", key); err != nil {
		return nil, err
	}
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, &StorageError{Op: "read", Entity: "snapshot", ID: key, Err: ErrNotFound}
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Entity: "snapshot", ID: key, Err: err}
	}
	return value, nil
}

// Exists implements Store.
func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey("exists", key); err != nil {
		return false, err
	}
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, &StorageError{Op: "exists", Entity: "snapshot", ID: key, Err: err}
	}
	return n > 0, nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
