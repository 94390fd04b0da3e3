package history

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatchSize = 100

// Store is the key-value capability the relay depends on: set with expiry,
// point get, prefix scan. Any conforming key-value service may back it.
//
// ScanKeysWithPrefix makes no snapshot guarantee: keys written or expired
// while the scan runs may or may not appear.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns (value, true) on a hit and ("", false) when the key is
	// absent or already expired.
	Get(ctx context.Context, key string) (string, bool, error)
	ScanKeysWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

type RedisStore struct {
	rdc *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdc *redis.Client) *RedisStore {
	return &RedisStore{rdc: rdc}
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdc.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdc.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) ScanKeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		page, next, err := s.rdc.Scan(ctx, cursor, prefix+"*", scanBatchSize).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, page...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}
