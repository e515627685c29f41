package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisSlot keeps snapshots as plain Redis string values
type RedisSlot struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis creates a Redis-backed slot and checks the connection
func NewRedis(addr, password string, db int, prefix string) (*RedisSlot, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisSlot{rdb: rdb, prefix: prefix}, nil
}

func (s *RedisSlot) key(key string) string {
	return s.prefix + key
}

// Get returns the payload stored under key
func (s *RedisSlot) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set overwrites the payload stored under key. Snapshots never expire.
func (s *RedisSlot) Set(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, s.key(key), value, 0).Err()
}

// Delete removes the payload stored under key
func (s *RedisSlot) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}

// Close closes the Redis connection
func (s *RedisSlot) Close() error {
	return s.rdb.Close()
}
