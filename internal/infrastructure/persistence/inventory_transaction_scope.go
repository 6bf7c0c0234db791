package persistence

import (
	"context"

	"gorm.io/gorm"

	appfin "github.com/erp/stockledger/internal/application/finance"
	appinv "github.com/erp/stockledger/internal/application/inventory"
	apptrade "github.com/erp/stockledger/internal/application/trade"
	"github.com/erp/stockledger/internal/domain/catalog"
	"github.com/erp/stockledger/internal/domain/finance"
	"github.com/erp/stockledger/internal/domain/inventory"
	"github.com/erp/stockledger/internal/domain/partner"
)

// GormTransactionScope runs units of work inside a GORM transaction.
// It serves both the stock and the finance application layers.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn in a transaction; a returned error rolls everything back
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return conn(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// Finance adapts the scope to the finance layer's repository set
func (s *GormTransactionScope) Finance() *FinanceTransactionScope {
	return &FinanceTransactionScope{db: s.db}
}

// FinanceTransactionScope runs payment and ledger writes in one transaction
type FinanceTransactionScope struct {
	db *gorm.DB
}

// Execute runs fn in a transaction; a returned error rolls everything back
func (s *FinanceTransactionScope) Execute(ctx context.Context, fn func(repos appfin.TransactionalRepositories) error) error {
	return conn(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// Orders adapts the scope to the order services
func (s *GormTransactionScope) Orders() *OrderTransactionScope {
	return &OrderTransactionScope{db: s.db}
}

// OrderTransactionScope runs an order transition in one transaction.
// The context handed to fn carries it; repositories called with that context join it,
// and scopes opened with it nest as savepoints.
type OrderTransactionScope struct {
	db *gorm.DB
}

// Execute runs fn in a transaction; a returned error rolls everything back
func (s *OrderTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return conn(ctx, s.db).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Stocks() inventory.StockRepository {
	return NewGormStockRepository(r.tx)
}

func (r *gormTransactionalRepositories) Alerts() inventory.StockAlertRepository {
	return NewGormStockAlertRepository(r.tx)
}

func (r *gormTransactionalRepositories) Items() catalog.ItemRepository {
	return NewGormItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) Warehouses() partner.WarehouseRepository {
	return NewGormWarehouseRepository(r.tx)
}

func (r *gormTransactionalRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) LedgerEntries() finance.LedgerEntryRepository {
	return NewGormLedgerEntryRepository(r.tx)
}

var (
	_ appinv.TransactionScope          = (*GormTransactionScope)(nil)
	_ appfin.TransactionScope          = (*FinanceTransactionScope)(nil)
	_ apptrade.TransactionScope        = (*OrderTransactionScope)(nil)
	_ appinv.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ appfin.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
