package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderRepository defines persistence for purchase orders
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	// FindByIDForUpdate loads the order under a row lock held by the transaction in ctx
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseOrder, error)
	FindByStatus(ctx context.Context, status PurchaseOrderStatus) ([]PurchaseOrder, error)
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)

	// Create inserts a new order with its lines
	Create(ctx context.Context, order *PurchaseOrder) error

	// SaveWithLock updates the order and its lines if the version is unchanged
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error

	// SumTotalByStatus totals orders with order_date in [from, to)
	SumTotalByStatus(ctx context.Context, from, to time.Time, statuses ...PurchaseOrderStatus) (decimal.Decimal, error)
}

// SalesOrderRepository defines persistence for sales orders
type SalesOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)
	// FindByIDForUpdate loads the order under a row lock held by the transaction in ctx
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SalesOrder, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*SalesOrder, error)
	FindByStatus(ctx context.Context, status SalesOrderStatus) ([]SalesOrder, error)
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)

	// Create inserts a new order with its lines
	Create(ctx context.Context, order *SalesOrder) error

	// SaveWithLock updates the order and its lines if the version is unchanged
	SaveWithLock(ctx context.Context, order *SalesOrder) error

	// SumTotalByStatus totals orders with order_date in [from, to)
	SumTotalByStatus(ctx context.Context, from, to time.Time, statuses ...SalesOrderStatus) (decimal.Decimal, error)
}
