package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinv "github.com/erp/stockledger/internal/application/inventory"
	"github.com/erp/stockledger/internal/domain/inventory"
	"github.com/erp/stockledger/internal/domain/trade"
)

// TransactionScope runs one order transition atomically. fn receives a context
// carrying the transaction; stock and ledger calls made with it commit or roll back
// together with the order.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}

// StockLedger is the part of the inventory ledger the order services drive
type StockLedger interface {
	Reserve(ctx context.Context, itemID, warehouseID uuid.UUID, qty decimal.Decimal) (*inventory.Stock, error)
	Release(ctx context.Context, itemID, warehouseID uuid.UUID, qty decimal.Decimal) (*inventory.Stock, error)
	ReduceOnFulfillment(ctx context.Context, itemID, warehouseID uuid.UUID, qty decimal.Decimal) (*inventory.Stock, error)
	Receive(ctx context.Context, input appinv.ReceiveStockInput) (*inventory.Stock, error)
	GetStock(ctx context.Context, itemID, warehouseID uuid.UUID) (*inventory.Stock, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]inventory.Stock, error)
}

// LedgerRecorder books completed orders into the ledger
type LedgerRecorder interface {
	RecordSale(ctx context.Context, order *trade.SalesOrder) error
	RecordPurchase(ctx context.Context, order *trade.PurchaseOrder) error
}

var _ StockLedger = (*appinv.StockLedger)(nil)
