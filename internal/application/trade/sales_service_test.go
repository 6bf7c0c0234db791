package trade_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apptrade "github.com/erp/stockledger/internal/application/trade"
	"github.com/erp/stockledger/internal/domain/catalog"
	"github.com/erp/stockledger/internal/domain/inventory"
	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/erp/stockledger/internal/domain/trade"
)

func (f *tradeFixture) newSale(t *testing.T, number string, lines ...apptrade.SalesLineInput) *trade.SalesOrder {
	t.Helper()
	order, err := f.sales.CreateSalesOrder(f.ctx, apptrade.CreateSalesOrderInput{
		OrderNumber: number,
		ClientID:    f.client.ID,
		Items:       lines,
	})
	require.NoError(t, err)
	return order
}

func line(item *catalog.Item, qty string) apptrade.SalesLineInput {
	return apptrade.SalesLineInput{ItemID: item.ID, Quantity: dec(qty), UnitPrice: dec("12")}
}

func TestSalesService_CreateSalesOrder(t *testing.T) {
	f := newTradeFixture(t)
	f.stockUp(t, f.item, "100")

	order := f.newSale(t, "SO-1", line(f.item, "10"))

	require.Len(t, order.Items, 1)
	assertDec(t, "10", order.Items[0].ReservedQuantity)
	require.NotNil(t, order.Items[0].ReservedWarehouseID)
	assert.Equal(t, f.warehouse.ID, *order.Items[0].ReservedWarehouseID)
	assertDec(t, "120", order.TotalAmount)

	stock := f.stockOf(t, f.item)
	assertDec(t, "100", stock.Quantity)
	assertDec(t, "10", stock.ReservedQuantity)
	assertDec(t, "90", stock.AvailableQuantity)

	t.Run("insufficient stock on a later line leaves nothing reserved", func(t *testing.T) {
		f.stockUp(t, f.other, "3")

		_, err := f.sales.CreateSalesOrder(f.ctx, apptrade.CreateSalesOrderInput{
			OrderNumber: "SO-2",
			ClientID:    f.client.ID,
			Items:       []apptrade.SalesLineInput{line(f.item, "5"), line(f.other, "4")},
		})
		assert.Equal(t, shared.CodeInsufficientStock, shared.ErrorCode(err))

		assertDec(t, "10", f.stockOf(t, f.item).ReservedQuantity)
		assertDec(t, "0", f.stockOf(t, f.other).ReservedQuantity)

		exists, err := f.salesRepo.ExistsByOrderNumber(f.ctx, "SO-2")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("item without any stock row is insufficient", func(t *testing.T) {
		bare := f.seedItem(t, "SKU-BARE")

		_, err := f.sales.CreateSalesOrder(f.ctx, apptrade.CreateSalesOrderInput{
			OrderNumber: "SO-3",
			ClientID:    f.client.ID,
			Items:       []apptrade.SalesLineInput{line(bare, "1")},
		})
		assert.Equal(t, shared.CodeInsufficientStock, shared.ErrorCode(err))
	})
}

func TestSalesService_UpdateItemQuantity_MissingStockRow(t *testing.T) {
	f := newTradeFixture(t)
	stock := &MockStockLedger{}
	svc := apptrade.NewSalesService(f.scope.Orders(), f.salesRepo, f.clients, f.items, stock, f.ledger, zap.NewNop())

	stock.On("ListByItem", mock.Anything, f.item.ID).
		Return([]inventory.Stock{{ItemID: f.item.ID, WarehouseID: f.warehouse.ID}}, nil)
	stock.On("Reserve", mock.Anything, f.item.ID, f.warehouse.ID, mock.Anything).Return(&inventory.Stock{}, nil).Once()
	order, err := svc.CreateSalesOrder(f.ctx, apptrade.CreateSalesOrderInput{
		OrderNumber: "SO-1",
		ClientID:    f.client.ID,
		Items:       []apptrade.SalesLineInput{line(f.item, "5")},
	})
	require.NoError(t, err)

	stock.On("GetStock", mock.Anything, f.item.ID, f.warehouse.ID).
		Return(nil, shared.NewNotFoundError("stock for item", f.item.ID)).Once()

	_, err = svc.UpdateItemQuantity(f.ctx, order.ID, order.Items[0].ID, dec("8"))
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeInsufficientStock, domainErr.Code)

	stored, err := f.salesRepo.FindByID(f.ctx, order.ID)
	require.NoError(t, err)
	assertDec(t, "5", stored.Items[0].Quantity)
	assertDec(t, "5", stored.Items[0].ReservedQuantity)
	stock.AssertExpectations(t)
}

func TestSalesService_ShipAndDeliver(t *testing.T) {
	f := newTradeFixture(t)
	f.stockUp(t, f.item, "100")
	order := f.newSale(t, "SO-1", line(f.item, "10"))
	f.ledger.On("RecordSale", mock.Anything, mock.AnythingOfType("*trade.SalesOrder")).Return(nil)

	_, err := f.sales.ConfirmSalesOrder(f.ctx, order.ID)
	require.NoError(t, err)

	shipped, err := f.sales.ShipSalesOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.SalesOrderStatusShipped, shipped.Status)
	assertDec(t, "10", shipped.Items[0].ShippedQuantity)
	assertDec(t, "0", shipped.Items[0].ReservedQuantity)

	stock := f.stockOf(t, f.item)
	assertDec(t, "90", stock.Quantity)
	assertDec(t, "0", stock.ReservedQuantity)

	delivered, err := f.sales.DeliverSalesOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.SalesOrderStatusDelivered, delivered.Status)
	assertDec(t, "90", f.stockOf(t, f.item).Quantity, "delivery after shipping reduces nothing")
	f.ledger.AssertNumberOfCalls(t, "RecordSale", 2)

	_, err = f.sales.CancelSalesOrder(f.ctx, order.ID, "too late")
	assert.Equal(t, shared.CodeInvalidTransition, shared.ErrorCode(err))
}

func TestSalesService_DeliverFromPending(t *testing.T) {
	f := newTradeFixture(t)
	f.stockUp(t, f.item, "20")
	order := f.newSale(t, "SO-1", line(f.item, "8"))
	f.ledger.On("RecordSale", mock.Anything, mock.Anything).Return(nil).Once()

	delivered, err := f.sales.DeliverSalesOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.SalesOrderStatusDelivered, delivered.Status)
	assert.NotNil(t, delivered.ShippedAt)

	stock := f.stockOf(t, f.item)
	assertDec(t, "12", stock.Quantity)
	assertDec(t, "0", stock.ReservedQuantity)
	f.ledger.AssertExpectations(t)
}

func TestSalesService_CancelSalesOrder(t *testing.T) {
	f := newTradeFixture(t)
	f.stockUp(t, f.item, "50")
	order := f.newSale(t, "SO-1", line(f.item, "20"))

	cancelled, err := f.sales.CancelSalesOrder(f.ctx, order.ID, "client changed mind")
	require.NoError(t, err)
	assert.Equal(t, trade.SalesOrderStatusCancelled, cancelled.Status)
	assertDec(t, "0", cancelled.Items[0].ReservedQuantity)

	stock := f.stockOf(t, f.item)
	assertDec(t, "0", stock.ReservedQuantity)
	assertDec(t, "50", stock.AvailableQuantity)

	_, err = f.sales.CancelSalesOrder(f.ctx, order.ID, "again")
	assert.Equal(t, shared.CodeInvalidTransition, shared.ErrorCode(err))
	assertDec(t, "0", f.stockOf(t, f.item).ReservedQuantity)
	f.ledger.AssertNotCalled(t, "RecordSale", mock.Anything, mock.Anything)
}

func TestSalesService_UpdateItemQuantity(t *testing.T) {
	f := newTradeFixture(t)
	f.stockUp(t, f.item, "30")
	order := f.newSale(t, "SO-1", line(f.item, "10"))
	lineID := order.Items[0].ID

	t.Run("unchanged quantity is a no-op", func(t *testing.T) {
		same, err := f.sales.UpdateItemQuantity(f.ctx, order.ID, lineID, dec("10"))
		require.NoError(t, err)
		assert.Equal(t, order.Version, same.Version)
		assertDec(t, "10", f.stockOf(t, f.item).ReservedQuantity)
	})

	t.Run("increase reserves the difference", func(t *testing.T) {
		updated, err := f.sales.UpdateItemQuantity(f.ctx, order.ID, lineID, dec("25"))
		require.NoError(t, err)
		assertDec(t, "25", updated.Items[0].ReservedQuantity)
		assertDec(t, "300", updated.TotalAmount)
		assertDec(t, "25", f.stockOf(t, f.item).ReservedQuantity)
	})

	t.Run("increase beyond available plus own reservation fails", func(t *testing.T) {
		_, err := f.sales.UpdateItemQuantity(f.ctx, order.ID, lineID, dec("31"))
		assert.Equal(t, shared.CodeInsufficientStock, shared.ErrorCode(err))
		assertDec(t, "25", f.stockOf(t, f.item).ReservedQuantity)
	})

	t.Run("decrease releases the difference", func(t *testing.T) {
		updated, err := f.sales.UpdateItemQuantity(f.ctx, order.ID, lineID, dec("4"))
		require.NoError(t, err)
		assertDec(t, "4", updated.Items[0].ReservedQuantity)
		assertDec(t, "4", f.stockOf(t, f.item).ReservedQuantity)
	})

	t.Run("shipped lines are immutable", func(t *testing.T) {
		f.ledger.On("RecordSale", mock.Anything, mock.Anything).Return(nil)
		_, err := f.sales.ShipSalesOrder(f.ctx, order.ID)
		require.NoError(t, err)

		_, err = f.sales.UpdateItemQuantity(f.ctx, order.ID, lineID, dec("5"))
		assert.Equal(t, shared.CodeInvalidTransition, shared.ErrorCode(err))
	})
}

func TestSalesService_AddAndRemoveItem(t *testing.T) {
	f := newTradeFixture(t)
	f.stockUp(t, f.item, "10")
	f.stockUp(t, f.other, "10")
	order := f.newSale(t, "SO-1", line(f.item, "2"))

	updated, err := f.sales.AddItem(f.ctx, order.ID, line(f.other, "3"))
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	assertDec(t, "3", f.stockOf(t, f.other).ReservedQuantity)

	removed, err := f.sales.RemoveItem(f.ctx, order.ID, updated.Items[1].ID)
	require.NoError(t, err)
	require.Len(t, removed.Items, 1)
	assertDec(t, "0", f.stockOf(t, f.other).ReservedQuantity)
	assertDec(t, "24", removed.TotalAmount)

	discounted, err := f.sales.SetDiscount(f.ctx, order.ID, dec("4"))
	require.NoError(t, err)
	assertDec(t, "20", discounted.TotalAmount)
}

// runConcurrently calls fn from n goroutines at once and collects the errors
func runConcurrently(n int, fn func() error) []error {
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, n)
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			errs[i] = fn()
		}()
	}
	close(start)
	wg.Wait()
	return errs
}

// succeeded counts nil errors and requires every failure to carry code
func succeeded(t *testing.T, errs []error, code string) int {
	t.Helper()
	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, code, shared.ErrorCode(err), err.Error())
	}
	return ok
}

func TestSalesService_ConcurrentCancel(t *testing.T) {
	f := newTradeFixture(t)
	f.stockUp(t, f.item, "20")
	first := f.newSale(t, "SO-A", line(f.item, "5"))
	f.newSale(t, "SO-B", line(f.item, "5"))
	assertDec(t, "10", f.stockOf(t, f.item).ReservedQuantity)

	errs := runConcurrently(8, func() error {
		_, err := f.sales.CancelSalesOrder(f.ctx, first.ID, "duplicate submit")
		return err
	})

	assert.Equal(t, 1, succeeded(t, errs, shared.CodeInvalidTransition))
	stock := f.stockOf(t, f.item)
	assertDec(t, "5", stock.ReservedQuantity, "the other order keeps its reservation")
	assertDec(t, "15", stock.AvailableQuantity)
}

func TestSalesService_ConcurrentShip(t *testing.T) {
	f := newTradeFixture(t)
	f.stockUp(t, f.item, "20")
	first := f.newSale(t, "SO-A", line(f.item, "5"))
	f.newSale(t, "SO-B", line(f.item, "5"))
	f.ledger.On("RecordSale", mock.Anything, mock.Anything).Return(nil)

	errs := runConcurrently(8, func() error {
		_, err := f.sales.ShipSalesOrder(f.ctx, first.ID)
		return err
	})

	assert.Equal(t, 1, succeeded(t, errs, shared.CodeInvalidTransition))
	stock := f.stockOf(t, f.item)
	assertDec(t, "15", stock.Quantity)
	assertDec(t, "5", stock.ReservedQuantity)
	f.ledger.AssertNumberOfCalls(t, "RecordSale", 1)
}

func TestSalesService_ShipRollsBackOnFailure(t *testing.T) {
	f := newTradeFixture(t)
	f.stockUp(t, f.item, "20")
	f.stockUp(t, f.other, "20")
	order := f.newSale(t, "SO-1", line(f.item, "5"), line(f.other, "5"))
	f.ledger.On("RecordSale", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	_, err := f.sales.ShipSalesOrder(f.ctx, order.ID)
	require.ErrorIs(t, err, assert.AnError)

	stored, err := f.salesRepo.FindByID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.SalesOrderStatusPending, stored.Status)
	for _, item := range []*catalog.Item{f.item, f.other} {
		stock := f.stockOf(t, item)
		assertDec(t, "20", stock.Quantity, "no line is shipped when the transition fails")
		assertDec(t, "5", stock.ReservedQuantity)
	}
}
