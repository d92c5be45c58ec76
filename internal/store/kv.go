package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound reports a missing key. Callers must treat it as a distinct
// outcome from an empty or zero value.
var ErrNotFound = errors.New("store: key not found")

// KV is the raw key-value port backing all persistence. It offers point
// lookups, whole-value overwrite, deletion and cursor-paginated key listing
// only; there are no transactions, no compare-and-swap and no queries.
// Read-modify-write sequences built on top of it assume a single writer per
// key (see AggregationEngine callers); a versioned-write capability would
// have to be added here before concurrent writers are safe.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// List returns one page of keys matching the prefix together with the
	// continuation cursor. A returned cursor of zero marks the end.
	List(ctx context.Context, prefix string, cursor uint64) ([]string, uint64, error)
}

const listPageHint = 100

type redisKV struct {
	client *redis.Client
}

// NewRedisKV wraps a Redis client in the KV port.
func NewRedisKV(client *redis.Client) KV {
	return &redisKV{client: client}
}

func (s *redisKV) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *redisKV) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisKV) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisKV) List(ctx context.Context, prefix string, cursor uint64) ([]string, uint64, error) {
	keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", listPageHint).Result()
	if err != nil {
		return nil, 0, err
	}
	return keys, next, nil
}
