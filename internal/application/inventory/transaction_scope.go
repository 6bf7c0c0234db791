package inventory

import (
	"context"

	"github.com/erp/stockledger/internal/domain/catalog"
	"github.com/erp/stockledger/internal/domain/inventory"
	"github.com/erp/stockledger/internal/domain/partner"
)

// TransactionScope runs a unit of work against the stock repositories.
// Everything done through the repos passed to fn commits or rolls back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are the repositories a stock mutation may touch.
// All of them share one database transaction.
type TransactionalRepositories interface {
	Stocks() inventory.StockRepository
	Alerts() inventory.StockAlertRepository
	// Items and Warehouses are read to name the stock in alert messages
	Items() catalog.ItemRepository
	Warehouses() partner.WarehouseRepository
}
