// Package cache holds the short-lived idempotency state shared by the HTTP layer and the event bus.
// Redis backs it when configured; otherwise an in-process map is used.
package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/infrastructure/config"
)

// ErrNotCached is returned by Lookup when no response is stored under the key
var ErrNotCached = errors.New("cache: response not cached")

// CachedResponse is a completed HTTP response kept for Idempotency-Key replays
type CachedResponse struct {
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
	// Fingerprint identifies the request that produced the response.
	// A replay with the same key but a different fingerprint is rejected.
	Fingerprint string `json:"fingerprint"`
}

// IdempotencyStore records processed event ids and caches responses to mutating requests
type IdempotencyStore interface {
	// MarkProcessed records id and reports whether it was new
	MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error)
	// IsProcessed reports whether id is recorded and unexpired
	IsProcessed(ctx context.Context, id string) (bool, error)

	// Lookup returns the response stored under key, or ErrNotCached
	Lookup(ctx context.Context, key string) (*CachedResponse, error)
	// Lock claims key for an in-flight request and reports whether the claim succeeded
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Store saves the response and releases the lock
	Store(ctx context.Context, key string, resp *CachedResponse, ttl time.Duration) error
	// Unlock releases a claim without storing anything
	Unlock(ctx context.Context, key string) error

	Close() error
}

// NewIdempotencyStore returns a redis store when redis is enabled and reachable.
// An unreachable redis falls back to memory unless the environment is production.
func NewIdempotencyStore(cfg *config.Config, logger *zap.Logger) (IdempotencyStore, error) {
	if !cfg.Redis.Enabled {
		logger.Info("redis disabled, using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(cfg.Redis)
	if err == nil {
		logger.Info("using redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
		return store, nil
	}
	if cfg.IsProduction() {
		return nil, err
	}

	logger.Warn("redis unavailable, falling back to in-memory idempotency store",
		zap.String("addr", cfg.Redis.Addr()),
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
