package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/domain/inventory"
	"github.com/erp/stockledger/internal/domain/shared"
)

// Operation names used in logs and metrics
const (
	OpAdjust        = "adjust"
	OpReserve       = "reserve"
	OpRelease       = "release"
	OpReduce        = "reduce"
	OpReceive       = "receive"
	OpSetThresholds = "set_thresholds"
)

// LedgerConfig tunes conflict handling
type LedgerConfig struct {
	// MaxLockRetries is how many times a version conflict is retried before it surfaces
	MaxLockRetries int
	RetryBackoff   time.Duration
}

// StockLedger is the single writer of stock rows.
// Every mutation locks the row, applies the domain rule, saves under a version check
// and evaluates low stock alerts, all in one transaction.
type StockLedger struct {
	scope     TransactionScope
	stocks    inventory.StockRepository
	monitor   *AlertMonitor
	publisher shared.EventPublisher
	metrics   Metrics
	logger    *zap.Logger
	cfg       LedgerConfig
}

// NewStockLedger creates a new StockLedger.
// stocks serves the read operations outside any transaction.
func NewStockLedger(
	scope TransactionScope,
	stocks inventory.StockRepository,
	monitor *AlertMonitor,
	logger *zap.Logger,
	cfg LedgerConfig,
) *StockLedger {
	if cfg.MaxLockRetries < 0 {
		cfg.MaxLockRetries = 0
	}
	return &StockLedger{
		scope:   scope,
		stocks:  stocks,
		monitor: monitor,
		metrics: noopMetrics{},
		logger:  logger,
		cfg:     cfg,
	}
}

// SetEventPublisher sets the publisher that receives stock and alert events after commit
func (l *StockLedger) SetEventPublisher(publisher shared.EventPublisher) {
	l.publisher = publisher
}

// SetMetrics sets the metrics sink
func (l *StockLedger) SetMetrics(metrics Metrics) {
	if metrics != nil {
		l.metrics = metrics
	}
}

// Adjust applies raw deltas, creating the row if needed
func (l *StockLedger) Adjust(ctx context.Context, input AdjustStockInput) (*inventory.Stock, error) {
	return l.mutate(ctx, OpAdjust, input.ItemID, input.WarehouseID, true, func(s *inventory.Stock) error {
		return s.Adjust(input.DeltaQuantity, input.DeltaReserved, input.Reason)
	})
}

// Reserve commits available quantity to an order
func (l *StockLedger) Reserve(ctx context.Context, itemID, warehouseID uuid.UUID, qty decimal.Decimal) (*inventory.Stock, error) {
	return l.mutate(ctx, OpReserve, itemID, warehouseID, false, func(s *inventory.Stock) error {
		return s.Reserve(qty)
	})
}

// Release gives back reserved quantity, floored at zero
func (l *StockLedger) Release(ctx context.Context, itemID, warehouseID uuid.UUID, qty decimal.Decimal) (*inventory.Stock, error) {
	return l.mutate(ctx, OpRelease, itemID, warehouseID, false, func(s *inventory.Stock) error {
		_, err := s.Release(qty)
		return err
	})
}

// ReduceOnFulfillment removes shipped goods from the warehouse
func (l *StockLedger) ReduceOnFulfillment(ctx context.Context, itemID, warehouseID uuid.UUID, qty decimal.Decimal) (*inventory.Stock, error) {
	return l.mutate(ctx, OpReduce, itemID, warehouseID, false, func(s *inventory.Stock) error {
		return s.ReduceOnFulfillment(qty)
	})
}

// Receive books incoming goods at weighted average cost, creating the row if needed
func (l *StockLedger) Receive(ctx context.Context, input ReceiveStockInput) (*inventory.Stock, error) {
	return l.mutate(ctx, OpReceive, input.ItemID, input.WarehouseID, true, func(s *inventory.Stock) error {
		return s.Receive(input.Quantity, input.UnitCost)
	})
}

// SetThresholds changes the min and max quantity and re-evaluates alerts
func (l *StockLedger) SetThresholds(ctx context.Context, input SetThresholdsInput) (*inventory.Stock, error) {
	return l.mutate(ctx, OpSetThresholds, input.ItemID, input.WarehouseID, false, func(s *inventory.Stock) error {
		return s.SetThresholds(input.MinQuantity, input.MaxQuantity)
	})
}

// GetStock returns the row for an item in a warehouse
func (l *StockLedger) GetStock(ctx context.Context, itemID, warehouseID uuid.UUID) (*inventory.Stock, error) {
	return l.stocks.FindByItemAndWarehouse(ctx, itemID, warehouseID)
}

// ListByItem lists an item's stock across warehouses
func (l *StockLedger) ListByItem(ctx context.Context, itemID uuid.UUID) ([]inventory.Stock, error) {
	return l.stocks.FindByItem(ctx, itemID)
}

// ListByWarehouse lists every row in a warehouse
func (l *StockLedger) ListByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]inventory.Stock, error) {
	return l.stocks.FindByWarehouse(ctx, warehouseID)
}

// ListLowStock lists rows at or below their minimum
func (l *StockLedger) ListLowStock(ctx context.Context) ([]inventory.Stock, error) {
	return l.stocks.FindLowStock(ctx)
}

// TotalAvailable totals an item's available quantity across warehouses
func (l *StockLedger) TotalAvailable(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	return l.stocks.SumAvailableByItem(ctx, itemID)
}

func (l *StockLedger) mutate(
	ctx context.Context,
	op string,
	itemID, warehouseID uuid.UUID,
	createMissing bool,
	apply func(*inventory.Stock) error,
) (*inventory.Stock, error) {
	start := time.Now()

	var (
		result *inventory.Stock
		events []shared.DomainEvent
	)
	err := l.withRetry(ctx, op, func() error {
		return l.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			stock, err := l.lockStock(ctx, repos, itemID, warehouseID, createMissing)
			if err != nil {
				return err
			}
			if err := apply(stock); err != nil {
				return err
			}
			if err := repos.Stocks().SaveWithLock(ctx, stock); err != nil {
				return err
			}
			alertEvents, err := l.monitor.Evaluate(ctx, repos, stock)
			if err != nil {
				return err
			}
			result = stock
			events = append(stock.PullDomainEvents(), alertEvents...)
			return nil
		})
	})
	l.metrics.RecordMutation(ctx, op, time.Since(start), err)

	if err != nil {
		l.logger.Error("stock mutation failed",
			zap.String("op", op),
			zap.String("item_id", itemID.String()),
			zap.String("warehouse_id", warehouseID.String()),
			zap.String("code", shared.ErrorCode(err)),
			zap.Error(err),
		)
		return nil, err
	}

	l.logger.Debug("stock mutated",
		zap.String("op", op),
		zap.String("item_id", itemID.String()),
		zap.String("warehouse_id", warehouseID.String()),
		zap.String("quantity", result.Quantity.String()),
		zap.String("reserved", result.ReservedQuantity.String()),
	)
	l.publish(ctx, events)
	return result, nil
}

// lockStock loads the row under a row lock. Missing rows are created when allowed,
// after checking that the item and warehouse exist.
func (l *StockLedger) lockStock(
	ctx context.Context,
	repos TransactionalRepositories,
	itemID, warehouseID uuid.UUID,
	createMissing bool,
) (*inventory.Stock, error) {
	stock, err := repos.Stocks().FindByItemAndWarehouseForUpdate(ctx, itemID, warehouseID)
	if err == nil || !createMissing || !errors.Is(err, shared.ErrNotFound) {
		return stock, err
	}

	if _, err := repos.Items().FindByID(ctx, itemID); err != nil {
		return nil, err
	}
	if _, err := repos.Warehouses().FindByID(ctx, warehouseID); err != nil {
		return nil, err
	}

	stock, err = inventory.NewStock(itemID, warehouseID)
	if err != nil {
		return nil, err
	}
	if err := repos.Stocks().Create(ctx, stock); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// lost a creation race; the retry will find the winner's row
			return nil, shared.ErrConcurrencyConflict.WithCause(err)
		}
		return nil, err
	}
	return stock, nil
}

// withRetry reruns fn on version conflicts with linear backoff
func (l *StockLedger) withRetry(ctx context.Context, op string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, shared.ErrConcurrencyConflict) || attempt >= l.cfg.MaxLockRetries {
			return err
		}
		l.metrics.RecordLockRetry(ctx, op)
		l.logger.Warn("stock version conflict, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.cfg.RetryBackoff * time.Duration(attempt+1)):
		}
	}
}

func (l *StockLedger) publish(ctx context.Context, events []shared.DomainEvent) {
	if l.publisher == nil || len(events) == 0 {
		return
	}
	if err := l.publisher.Publish(ctx, events...); err != nil {
		l.logger.Warn("failed to publish stock events", zap.Error(err))
	}
}
