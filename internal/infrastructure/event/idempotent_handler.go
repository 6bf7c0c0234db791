package event

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/domain/shared"
)

// DefaultProcessedTTL is how long a delivered event id is remembered
const DefaultProcessedTTL = 24 * time.Hour

// ProcessedStore remembers which event ids were already handled.
// cache.RedisIdempotencyStore and cache.InMemoryIdempotencyStore implement it.
type ProcessedStore interface {
	// MarkProcessed records id and reports whether it was new
	MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

// IdempotentHandler delivers each event id to the wrapped handler at most once per TTL
type IdempotentHandler struct {
	handler shared.EventHandler
	store   ProcessedStore
	ttl     time.Duration
	logger  *zap.Logger
}

// NewIdempotentHandler wraps handler with duplicate suppression
func NewIdempotentHandler(handler shared.EventHandler, store ProcessedStore, ttl time.Duration, logger *zap.Logger) *IdempotentHandler {
	if ttl <= 0 {
		ttl = DefaultProcessedTTL
	}
	return &IdempotentHandler{handler: handler, store: store, ttl: ttl, logger: logger}
}

// EventTypes returns the wrapped handler's event types
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle skips events already seen. If the store is unreachable the event is handled anyway.
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	id := event.EventID().String()

	isNew, err := h.store.MarkProcessed(ctx, "event:"+id, h.ttl)
	if err != nil {
		h.logger.Warn("idempotency store unavailable, handling event anyway",
			zap.String("event_id", id),
			zap.Error(err),
		)
	} else if !isNew {
		h.logger.Debug("duplicate event skipped",
			zap.String("event_id", id),
			zap.String("event_type", event.EventType()),
		)
		return nil
	}

	return h.handler.Handle(ctx, event)
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
