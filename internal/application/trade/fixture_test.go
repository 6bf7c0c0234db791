package trade_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	appinv "github.com/erp/stockledger/internal/application/inventory"
	apptrade "github.com/erp/stockledger/internal/application/trade"
	"github.com/erp/stockledger/internal/domain/catalog"
	"github.com/erp/stockledger/internal/domain/inventory"
	"github.com/erp/stockledger/internal/domain/partner"
	"github.com/erp/stockledger/internal/domain/trade"
	"github.com/erp/stockledger/internal/infrastructure/persistence"
	"github.com/erp/stockledger/internal/infrastructure/persistence/sqlitetest"
)

// MockLedgerRecorder is a mock implementation of LedgerRecorder
type MockLedgerRecorder struct {
	mock.Mock
}

func (m *MockLedgerRecorder) RecordSale(ctx context.Context, order *trade.SalesOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockLedgerRecorder) RecordPurchase(ctx context.Context, order *trade.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockStockLedger is a mock implementation of StockLedger
type MockStockLedger struct {
	mock.Mock
}

func (m *MockStockLedger) Reserve(ctx context.Context, itemID, warehouseID uuid.UUID, qty decimal.Decimal) (*inventory.Stock, error) {
	args := m.Called(ctx, itemID, warehouseID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Stock), args.Error(1)
}

func (m *MockStockLedger) Release(ctx context.Context, itemID, warehouseID uuid.UUID, qty decimal.Decimal) (*inventory.Stock, error) {
	args := m.Called(ctx, itemID, warehouseID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Stock), args.Error(1)
}

func (m *MockStockLedger) ReduceOnFulfillment(ctx context.Context, itemID, warehouseID uuid.UUID, qty decimal.Decimal) (*inventory.Stock, error) {
	args := m.Called(ctx, itemID, warehouseID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Stock), args.Error(1)
}

func (m *MockStockLedger) Receive(ctx context.Context, input appinv.ReceiveStockInput) (*inventory.Stock, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Stock), args.Error(1)
}

func (m *MockStockLedger) GetStock(ctx context.Context, itemID, warehouseID uuid.UUID) (*inventory.Stock, error) {
	args := m.Called(ctx, itemID, warehouseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Stock), args.Error(1)
}

func (m *MockStockLedger) ListByItem(ctx context.Context, itemID uuid.UUID) ([]inventory.Stock, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.Stock), args.Error(1)
}

type tradeFixture struct {
	ctx       context.Context
	logger    *zap.Logger
	scope     *persistence.GormTransactionScope
	stock     *appinv.StockLedger
	ledger    *MockLedgerRecorder
	purchases *apptrade.PurchaseService
	sales     *apptrade.SalesService

	purchaseRepo *persistence.GormPurchaseOrderRepository
	salesRepo    *persistence.GormSalesOrderRepository
	items        *persistence.GormItemRepository
	warehouses   *persistence.GormWarehouseRepository
	vendors      *persistence.GormVendorRepository
	clients      *persistence.GormClientRepository

	item      *catalog.Item
	other     *catalog.Item
	warehouse *partner.Warehouse
	vendor    *partner.Vendor
	client    *partner.Client
}

func newTradeFixture(t *testing.T) *tradeFixture {
	t.Helper()
	db := sqlitetest.Open(t)
	logger := zaptest.NewLogger(t)

	f := &tradeFixture{
		ctx:          context.Background(),
		logger:       logger,
		ledger:       &MockLedgerRecorder{},
		purchaseRepo: persistence.NewGormPurchaseOrderRepository(db),
		salesRepo:    persistence.NewGormSalesOrderRepository(db),
		items:        persistence.NewGormItemRepository(db),
		warehouses:   persistence.NewGormWarehouseRepository(db),
		vendors:      persistence.NewGormVendorRepository(db),
		clients:      persistence.NewGormClientRepository(db),
	}

	f.scope = persistence.NewGormTransactionScope(db)
	monitor := appinv.NewAlertMonitor(f.scope, persistence.NewGormStockAlertRepository(db), logger)
	f.stock = appinv.NewStockLedger(f.scope, persistence.NewGormStockRepository(db), monitor, logger,
		appinv.LedgerConfig{MaxLockRetries: 3, RetryBackoff: time.Millisecond})

	f.item = f.seedItem(t, "SKU-1")
	f.other = f.seedItem(t, "SKU-2")

	var err error
	f.warehouse, err = partner.NewWarehouse("MAIN", "Main warehouse", "")
	require.NoError(t, err)
	require.NoError(t, f.warehouses.Save(f.ctx, f.warehouse))

	f.vendor, err = partner.NewVendor("V-1", "Acme Supply")
	require.NoError(t, err)
	require.NoError(t, f.vendors.Save(f.ctx, f.vendor))

	f.client, err = partner.NewClient("C-1", "Globex")
	require.NoError(t, err)
	require.NoError(t, f.clients.Save(f.ctx, f.client))

	policy := apptrade.NewWarehousePolicy(f.warehouses, apptrade.WarehouseModeFirstActive, "")
	f.purchases = apptrade.NewPurchaseService(f.scope.Orders(), f.purchaseRepo, f.vendors, f.items, f.stock, f.ledger, policy, logger)
	f.sales = apptrade.NewSalesService(f.scope.Orders(), f.salesRepo, f.clients, f.items, f.stock, f.ledger, logger)
	return f
}

func (f *tradeFixture) seedItem(t *testing.T, sku string) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(sku, "Item "+sku, "pcs", dec("5"), dec("12"))
	require.NoError(t, err)
	require.NoError(t, f.items.Save(f.ctx, item))
	return item
}

// stockUp books qty of item into the main warehouse at unit cost 5
func (f *tradeFixture) stockUp(t *testing.T, item *catalog.Item, qty string) {
	t.Helper()
	_, err := f.stock.Receive(f.ctx, appinv.ReceiveStockInput{
		ItemID:      item.ID,
		WarehouseID: f.warehouse.ID,
		Quantity:    dec(qty),
		UnitCost:    dec("5"),
	})
	require.NoError(t, err)
}

func (f *tradeFixture) stockOf(t *testing.T, item *catalog.Item) *inventory.Stock {
	t.Helper()
	stock, err := f.stock.GetStock(f.ctx, item.ID, f.warehouse.ID)
	require.NoError(t, err)
	return stock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}
