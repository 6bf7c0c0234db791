package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	appcat "github.com/erp/stockledger/internal/application/catalog"
	appfin "github.com/erp/stockledger/internal/application/finance"
	appinv "github.com/erp/stockledger/internal/application/inventory"
	apppartner "github.com/erp/stockledger/internal/application/partner"
	apptrade "github.com/erp/stockledger/internal/application/trade"
	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/erp/stockledger/internal/infrastructure/cache"
	"github.com/erp/stockledger/internal/infrastructure/persistence"
	"github.com/erp/stockledger/internal/infrastructure/persistence/sqlitetest"
	"github.com/erp/stockledger/internal/interfaces/http/dto"
	"github.com/erp/stockledger/internal/interfaces/http/handler"
	"github.com/erp/stockledger/internal/interfaces/http/middleware"
	"github.com/erp/stockledger/internal/interfaces/http/router"
)

type envelope[T any] struct {
	Success bool          `json:"success"`
	Data    T             `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
}

type apiServer struct {
	t      *testing.T
	engine *gin.Engine
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := sqlitetest.Open(t)
	logger := zaptest.NewLogger(t)

	items := persistence.NewGormItemRepository(db)
	categories := persistence.NewGormCategoryRepository(db)
	warehouses := persistence.NewGormWarehouseRepository(db)
	vendors := persistence.NewGormVendorRepository(db)
	clients := persistence.NewGormClientRepository(db)
	purchaseOrders := persistence.NewGormPurchaseOrderRepository(db)
	salesOrders := persistence.NewGormSalesOrderRepository(db)
	payments := persistence.NewGormPaymentRepository(db)

	scope := persistence.NewGormTransactionScope(db)
	monitor := appinv.NewAlertMonitor(scope, persistence.NewGormStockAlertRepository(db), logger)
	stock := appinv.NewStockLedger(scope, persistence.NewGormStockRepository(db), monitor, logger,
		appinv.LedgerConfig{MaxLockRetries: 3, RetryBackoff: time.Millisecond})

	ledger := appfin.NewLedgerService(persistence.NewGormLedgerEntryRepository(db), logger)
	policy := apptrade.NewWarehousePolicy(warehouses, apptrade.WarehouseModeFirstActive, "")

	handlers := router.Handlers{
		Catalog:   handler.NewCatalogHandler(appcat.NewItemService(items, categories, vendors, logger)),
		Partners:  handler.NewPartnerHandler(apppartner.NewPartnerService(warehouses, vendors, clients, logger)),
		Inventory: handler.NewInventoryHandler(stock, monitor),
		Purchases: handler.NewPurchaseOrderHandler(
			apptrade.NewPurchaseService(scope.Orders(), purchaseOrders, vendors, items, stock, ledger, policy, logger)),
		Sales: handler.NewSalesOrderHandler(
			apptrade.NewSalesService(scope.Orders(), salesOrders, clients, items, stock, ledger, logger)),
		Finance: handler.NewFinanceHandler(
			appfin.NewPaymentService(scope.Finance(), payments, logger),
			ledger,
			appfin.NewProfitLossService(salesOrders, purchaseOrders, payments,
				persistence.NewGormProfitLossRepository(db), logger),
		),
	}

	engine := router.NewEngine(router.EngineConfig{
		ServiceName:    "stockledger-test",
		CORSOrigins:    []string{"http://localhost:3000"},
		Idempotency:    cache.NewInMemoryIdempotencyStore(),
		IdempotencyTTL: time.Hour,
		Logger:         logger,
	}, handlers)
	return &apiServer{t: t, engine: engine}
}

func (s *apiServer) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// seeded holds the ids created by seed
type seeded struct {
	warehouse uuid.UUID
	vendor    uuid.UUID
	client    uuid.UUID
	item      uuid.UUID
}

func (s *apiServer) seed() seeded {
	t := s.t
	t.Helper()

	w := s.do(http.MethodPost, "/api/v1/warehouses", map[string]any{"code": "main", "name": "Main warehouse"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	warehouse := decode[apppartner.WarehouseResponse](t, w).Data
	assert.Equal(t, "MAIN", warehouse.Code)

	w = s.do(http.MethodPost, "/api/v1/vendors", map[string]any{"code": "V-1", "name": "Acme Supply"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	vendor := decode[apppartner.ContactResponse](t, w).Data

	w = s.do(http.MethodPost, "/api/v1/clients", map[string]any{"code": "C-1", "name": "Globex"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	client := decode[apppartner.ContactResponse](t, w).Data

	w = s.do(http.MethodPost, "/api/v1/items", map[string]any{
		"sku": "SKU-1", "name": "Widget", "unit": "pcs",
		"cost_price": "5", "selling_price": "12",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[appcat.ItemResponse](t, w).Data

	return seeded{warehouse: warehouse.ID, vendor: vendor.ID, client: client.ID, item: item.ID}
}

// receive books qty units of the item through a purchase order
func (s *apiServer) receive(ids seeded, number, qty string) apptrade.PurchaseOrderResponse {
	t := s.t
	t.Helper()
	w := s.do(http.MethodPost, "/api/v1/purchase-orders", map[string]any{
		"order_number": number,
		"vendor_id":    ids.vendor,
		"items":        []map[string]any{{"item_id": ids.item, "quantity": qty, "unit_cost": "5"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[apptrade.PurchaseOrderResponse](t, w).Data

	w = s.do(http.MethodPost, "/api/v1/purchase-orders/"+order.ID.String()+"/receive", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[apptrade.PurchaseOrderResponse](t, w).Data
}

func (s *apiServer) stock(ids seeded) appinv.StockResponse {
	s.t.Helper()
	w := s.do(http.MethodGet, "/api/v1/stock?item_id="+ids.item.String()+"&warehouse_id="+ids.warehouse.String(), nil)
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return decode[appinv.StockResponse](s.t, w).Data
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestAPI_PurchaseReceiptBooksStock(t *testing.T) {
	s := newAPIServer(t)
	ids := s.seed()

	order := s.receive(ids, "PO-1", "10")
	assert.Equal(t, "RECEIVED", order.Status)
	require.NotNil(t, order.WarehouseID)
	assert.Equal(t, ids.warehouse, *order.WarehouseID)

	stock := s.stock(ids)
	assertDecimal(t, "10", stock.Quantity)
	assertDecimal(t, "0", stock.ReservedQuantity)
	assertDecimal(t, "5", stock.AverageCost)

	w := s.do(http.MethodGet, "/api/v1/stock?item_id="+ids.item.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]appinv.StockResponse](t, w).Data, 1)
}

func TestAPI_SalesOrderLifecycle(t *testing.T) {
	s := newAPIServer(t)
	ids := s.seed()
	s.receive(ids, "PO-1", "10")

	w := s.do(http.MethodPost, "/api/v1/sales-orders", map[string]any{
		"order_number": "SO-1",
		"client_id":    ids.client,
		"items":        []map[string]any{{"item_id": ids.item, "quantity": "4", "unit_price": "12"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[apptrade.SalesOrderResponse](t, w).Data
	assert.Equal(t, "PENDING", order.Status)
	assertDecimal(t, "4", s.stock(ids).ReservedQuantity)

	for _, step := range []string{"confirm", "ship"} {
		w = s.do(http.MethodPost, "/api/v1/sales-orders/"+order.ID.String()+"/"+step, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	assert.Equal(t, "SHIPPED", decode[apptrade.SalesOrderResponse](t, w).Data.Status)

	stock := s.stock(ids)
	assertDecimal(t, "6", stock.Quantity)
	assertDecimal(t, "0", stock.ReservedQuantity)

	w = s.do(http.MethodPost, "/api/v1/sales-orders/"+order.ID.String()+"/cancel", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, shared.CodeInvalidTransition, decode[any](t, w).Error.Code)
}

func TestAPI_SalesOrderInsufficientStock(t *testing.T) {
	s := newAPIServer(t)
	ids := s.seed()
	s.receive(ids, "PO-1", "3")

	w := s.do(http.MethodPost, "/api/v1/sales-orders", map[string]any{
		"order_number": "SO-1",
		"client_id":    ids.client,
		"items":        []map[string]any{{"item_id": ids.item, "quantity": "5", "unit_price": "12"}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, shared.CodeInsufficientStock, decode[any](t, w).Error.Code)

	stock := s.stock(ids)
	assertDecimal(t, "3", stock.Quantity)
	assertDecimal(t, "0", stock.ReservedQuantity)
}

func TestAPI_RequestErrors(t *testing.T) {
	s := newAPIServer(t)

	t.Run("malformed path id", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/purchase-orders/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown purchase order", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/purchase-orders/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, shared.CodeNotFound, decode[any](t, w).Error.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/nowhere", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeRouteNotFound, decode[any](t, w).Error.Code)
	})

	t.Run("negative quantity is rejected before the service", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/stock/receive", map[string]any{
			"item_id": uuid.New(), "warehouse_id": uuid.New(), "quantity": "-1", "unit_cost": "1",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, shared.CodeValidation, decode[any](t, w).Error.Code)
	})

	t.Run("bad period", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/reports/profit-loss?start=2026-13-01&end=2026-01-31", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAPI_IdempotentCreate(t *testing.T) {
	s := newAPIServer(t)
	body := map[string]any{"code": "east", "name": "East"}

	first := s.do(http.MethodPost, "/api/v1/warehouses", body, middleware.IdempotencyKeyHeader, "wh-east")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	replay := s.do(http.MethodPost, "/api/v1/warehouses", body, middleware.IdempotencyKeyHeader, "wh-east")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(middleware.IdempotentReplayHeader))
	assert.Equal(t, first.Body.String(), replay.Body.String())

	w := s.do(http.MethodGet, "/api/v1/warehouses", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]apppartner.WarehouseResponse](t, w).Data, 1)

	// without the key the duplicate code reaches the service
	dup := s.do(http.MethodPost, "/api/v1/warehouses", body)
	assert.Equal(t, http.StatusConflict, dup.Code)
	assert.Equal(t, shared.CodeAlreadyExists, decode[any](t, dup).Error.Code)
}

func TestAPI_ProfitLoss(t *testing.T) {
	s := newAPIServer(t)
	ids := s.seed()
	s.receive(ids, "PO-1", "10")

	w := s.do(http.MethodPost, "/api/v1/sales-orders", map[string]any{
		"order_number": "SO-1",
		"client_id":    ids.client,
		"items":        []map[string]any{{"item_id": ids.item, "quantity": "4", "unit_price": "12"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[apptrade.SalesOrderResponse](t, w).Data
	for _, step := range []string{"confirm", "ship"} {
		w = s.do(http.MethodPost, "/api/v1/sales-orders/"+order.ID.String()+"/"+step, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = s.do(http.MethodPost, "/api/v1/payments", map[string]any{
		"vendor_id": ids.vendor, "amount": "3", "type": "DEBIT", "method": "CASH",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	today := time.Now().UTC().Format(time.DateOnly)
	period := "?start=" + today + "&end=" + today

	w = s.do(http.MethodGet, "/api/v1/reports/profit-loss"+period, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[appfin.ProfitLossResponse](t, w).Data
	assertDecimal(t, "48", report.Revenue)
	assertDecimal(t, "50", report.COGS)
	assertDecimal(t, "3", report.Expenses)
	assertDecimal(t, "-2", report.GrossProfit)
	assertDecimal(t, "-5", report.NetProfit)

	w = s.do(http.MethodGet, "/api/v1/ledger/balance"+period, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	balance := decode[handler.LedgerBalanceResponse](t, w).Data
	assertDecimal(t, "53", balance.TotalDebits)
	assertDecimal(t, "48", balance.TotalCredits)
}
