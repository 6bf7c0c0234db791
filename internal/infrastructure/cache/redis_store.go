package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erp/stockledger/internal/infrastructure/config"
)

const (
	defaultKeyPrefix = "stockledger:"
	processedSpace   = "processed:"
	responseSpace    = "response:"
	lockSpace        = "lock:"
)

// RedisIdempotencyStore shares idempotency state across instances through redis
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore connects to redis and pings it
func NewRedisIdempotencyStore(cfg config.RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisIdempotencyStoreWithClient(client, ""), nil
}

// NewRedisIdempotencyStoreWithClient wraps an existing client
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed records id with SETNX and reports whether it was new
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(processedSpace, id), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark %s as processed: %w", id, err)
	}
	return ok, nil
}

// IsProcessed reports whether id is recorded and unexpired
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(processedSpace, id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", id, err)
	}
	return n > 0, nil
}

// Lookup returns the response stored under key, or ErrNotCached
func (s *RedisIdempotencyStore) Lookup(ctx context.Context, key string) (*CachedResponse, error) {
	raw, err := s.client.Get(ctx, s.key(responseSpace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached response: %w", err)
	}

	var resp CachedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode cached response: %w", err)
	}
	return &resp, nil
}

// Lock claims key with SETNX
func (s *RedisIdempotencyStore) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(lockSpace, key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to lock %s: %w", key, err)
	}
	return ok, nil
}

// Store saves the response and drops the lock in one pipeline
func (s *RedisIdempotencyStore) Store(ctx context.Context, key string, resp *CachedResponse, ttl time.Duration) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key(responseSpace, key), raw, ttl)
		p.Del(ctx, s.key(lockSpace, key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}
	return nil
}

// Unlock releases a claim without storing anything
func (s *RedisIdempotencyStore) Unlock(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(lockSpace, key)).Err(); err != nil {
		return fmt.Errorf("failed to unlock %s: %w", key, err)
	}
	return nil
}

// Close closes the redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

// Client returns the underlying redis client
func (s *RedisIdempotencyStore) Client() *redis.Client {
	return s.client
}

func (s *RedisIdempotencyStore) key(space, id string) string {
	return s.keyPrefix + space + id
}

var _ IdempotencyStore = (*RedisIdempotencyStore)(nil)
