package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRepository defines persistence for stock rows
type StockRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Stock, error)
	FindByItemAndWarehouse(ctx context.Context, itemID, warehouseID uuid.UUID) (*Stock, error)

	// FindByItemAndWarehouseForUpdate loads the row under an exclusive row lock.
	// It must be called inside a transaction.
	FindByItemAndWarehouseForUpdate(ctx context.Context, itemID, warehouseID uuid.UUID) (*Stock, error)

	FindByItem(ctx context.Context, itemID uuid.UUID) ([]Stock, error)
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]Stock, error)
	FindLowStock(ctx context.Context) ([]Stock, error)

	// FindFirstForItem returns the oldest stock row for the item in any warehouse
	FindFirstForItem(ctx context.Context, itemID uuid.UUID) (*Stock, error)

	// SumAvailableByItem totals available quantity across all warehouses
	SumAvailableByItem(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error)

	Create(ctx context.Context, stock *Stock) error

	// SaveWithLock persists the row if its version is unchanged, then bumps the version
	SaveWithLock(ctx context.Context, stock *Stock) error
}

// StockAlertRepository defines persistence for stock alerts
type StockAlertRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockAlert, error)

	// FindPendingByStock returns the single PENDING alert for a stock row, or NotFound
	FindPendingByStock(ctx context.Context, stockID uuid.UUID) (*StockAlert, error)

	// FindByStatus lists alerts in any of the given statuses, newest first.
	// No statuses means all alerts.
	FindByStatus(ctx context.Context, statuses ...AlertStatus) ([]StockAlert, error)

	Save(ctx context.Context, alert *StockAlert) error
}
