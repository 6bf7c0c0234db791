package trade_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apptrade "github.com/erp/stockledger/internal/application/trade"
	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/erp/stockledger/internal/domain/trade"
)

func (f *tradeFixture) newPurchase(t *testing.T, number string, withWarehouse bool) *trade.PurchaseOrder {
	t.Helper()
	input := apptrade.CreatePurchaseOrderInput{
		OrderNumber: number,
		VendorID:    f.vendor.ID,
		Items: []apptrade.PurchaseLineInput{{
			ItemID:      f.item.ID,
			Quantity:    dec("10"),
			UnitCost:    dec("5.00"),
			FreightCost: dec("20"),
			CustomsDuty: dec("10"),
		}},
	}
	if withWarehouse {
		input.WarehouseID = &f.warehouse.ID
	}
	order, err := f.purchases.CreatePurchaseOrder(f.ctx, input)
	require.NoError(t, err)
	return order
}

func TestPurchaseService_CreatePurchaseOrder(t *testing.T) {
	f := newTradeFixture(t)

	order := f.newPurchase(t, "PO-1", true)

	require.Len(t, order.Items, 1)
	line := order.Items[0]
	assertDec(t, "8", line.LandedCostPerUnit)
	assertDec(t, "80", line.TotalLandedCost)
	assertDec(t, "50", line.LineTotal)
	assertDec(t, "50", order.TotalAmount, "total excludes additional costs")
	assert.Equal(t, trade.PurchaseOrderStatusPending, order.Status)

	t.Run("unknown vendor is rejected", func(t *testing.T) {
		_, err := f.purchases.CreatePurchaseOrder(f.ctx, apptrade.CreatePurchaseOrderInput{
			OrderNumber: "PO-X",
			VendorID:    uuid.New(),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate order number is rejected", func(t *testing.T) {
		_, err := f.purchases.CreatePurchaseOrder(f.ctx, apptrade.CreatePurchaseOrderInput{
			OrderNumber: "PO-1",
			VendorID:    f.vendor.ID,
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestPurchaseService_ReceivePurchaseOrder(t *testing.T) {
	f := newTradeFixture(t)
	order := f.newPurchase(t, "PO-1", true)
	f.ledger.On("RecordPurchase", mock.Anything, mock.AnythingOfType("*trade.PurchaseOrder")).Return(nil).Once()

	received, err := f.purchases.ReceivePurchaseOrder(f.ctx, order.ID)
	require.NoError(t, err)

	assert.Equal(t, trade.PurchaseOrderStatusReceived, received.Status)
	require.NotNil(t, received.ReceivedDate)
	assertDec(t, "10", received.Items[0].AppliedQuantity)

	stock := f.stockOf(t, f.item)
	assertDec(t, "10", stock.Quantity)
	assertDec(t, "8", stock.AverageCost, "stock is valued at landed cost")
	f.ledger.AssertExpectations(t)

	t.Run("receiving again books nothing more", func(t *testing.T) {
		f.ledger.On("RecordPurchase", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := f.purchases.ReceivePurchaseOrder(f.ctx, order.ID)
		require.NoError(t, err)
		assertDec(t, "10", f.stockOf(t, f.item).Quantity)
	})

	t.Run("received order cannot be cancelled", func(t *testing.T) {
		_, err := f.purchases.CancelPurchaseOrder(f.ctx, order.ID, "late")
		assert.Equal(t, shared.CodeInvalidTransition, shared.ErrorCode(err))
	})
}

func TestPurchaseService_RecordReceipt(t *testing.T) {
	f := newTradeFixture(t)
	order := f.newPurchase(t, "PO-1", true)
	lineID := order.Items[0].ID

	partial, err := f.purchases.RecordReceipt(f.ctx, order.ID, []apptrade.LineReceipt{
		{ItemLineID: lineID, ReceivedQuantity: dec("4")},
	})
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseOrderStatusPartial, partial.Status)
	assertDec(t, "4", f.stockOf(t, f.item).Quantity)

	_, err = f.purchases.RecordReceipt(f.ctx, order.ID, []apptrade.LineReceipt{
		{ItemLineID: lineID, ReceivedQuantity: dec("4")},
	})
	require.NoError(t, err)
	assertDec(t, "4", f.stockOf(t, f.item).Quantity, "the same absolute quantity books no delta")

	t.Run("lines cannot change once goods arrived", func(t *testing.T) {
		_, err := f.purchases.UpdateItem(f.ctx, order.ID, lineID, apptrade.PurchaseLineInput{
			Quantity: dec("20"), UnitCost: dec("5"),
		})
		assert.Equal(t, shared.CodeInvalidTransition, shared.ErrorCode(err))
	})

	t.Run("cannot exceed ordered quantity", func(t *testing.T) {
		_, err := f.purchases.RecordReceipt(f.ctx, order.ID, []apptrade.LineReceipt{
			{ItemLineID: lineID, ReceivedQuantity: dec("11")},
		})
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))
	})

	f.ledger.On("RecordPurchase", mock.Anything, mock.AnythingOfType("*trade.PurchaseOrder")).Return(nil).Once()
	done, err := f.purchases.RecordReceipt(f.ctx, order.ID, []apptrade.LineReceipt{
		{ItemLineID: lineID, ReceivedQuantity: dec("10")},
	})
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseOrderStatusReceived, done.Status)
	assertDec(t, "10", f.stockOf(t, f.item).Quantity)
	f.ledger.AssertExpectations(t)
}

func TestPurchaseService_WarehousePolicy(t *testing.T) {
	t.Run("first active warehouse is pinned on receipt", func(t *testing.T) {
		f := newTradeFixture(t)
		order := f.newPurchase(t, "PO-1", false)
		f.ledger.On("RecordPurchase", mock.Anything, mock.Anything).Return(nil)

		received, err := f.purchases.ReceivePurchaseOrder(f.ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, received.WarehouseID)
		assert.Equal(t, f.warehouse.ID, *received.WarehouseID)
		assertDec(t, "10", f.stockOf(t, f.item).Quantity)
	})

	t.Run("unknown default code fails without booking", func(t *testing.T) {
		f := newTradeFixture(t)
		policy := apptrade.NewWarehousePolicy(f.warehouses, apptrade.WarehouseModeDefaultCode, "NOPE")
		svc := apptrade.NewPurchaseService(f.scope.Orders(), f.purchaseRepo, f.vendors, f.items, f.stock, f.ledger, policy, f.logger)
		order := f.newPurchase(t, "PO-1", false)

		_, err := svc.ReceivePurchaseOrder(f.ctx, order.ID)
		assert.Equal(t, shared.CodeValidation, shared.ErrorCode(err))

		stored, err := f.purchaseRepo.FindByID(f.ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, trade.PurchaseOrderStatusPending, stored.Status)
		f.ledger.AssertNotCalled(t, "RecordPurchase", mock.Anything, mock.Anything)
	})
}

func TestPurchaseService_LineEdits(t *testing.T) {
	f := newTradeFixture(t)
	order := f.newPurchase(t, "PO-1", true)

	updated, err := f.purchases.AddItem(f.ctx, order.ID, apptrade.PurchaseLineInput{
		ItemID: f.other.ID, Quantity: dec("2"), UnitCost: dec("3"),
	})
	require.NoError(t, err)
	assertDec(t, "56", updated.TotalAmount)

	updated, err = f.purchases.RemoveItem(f.ctx, order.ID, updated.Items[1].ID)
	require.NoError(t, err)
	assertDec(t, "50", updated.TotalAmount)

	total, err := f.purchases.RecalculatePurchaseTotal(f.ctx, order.ID)
	require.NoError(t, err)
	assertDec(t, "50", total)

	cancelled, err := f.purchases.CancelPurchaseOrder(f.ctx, order.ID, "vendor out of stock")
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseOrderStatusCancelled, cancelled.Status)

	_, err = f.purchases.ReceivePurchaseOrder(f.ctx, order.ID)
	assert.Equal(t, shared.CodeInvalidTransition, shared.ErrorCode(err))
}

func TestPurchaseService_ConcurrentReceipts(t *testing.T) {
	f := newTradeFixture(t)
	order := f.newPurchase(t, "PO-1", true)
	f.ledger.On("RecordPurchase", mock.Anything, mock.Anything).Return(nil)

	errs := runConcurrently(8, func() error {
		_, err := f.purchases.ReceivePurchaseOrder(f.ctx, order.ID)
		return err
	})
	for _, err := range errs {
		require.NoError(t, err)
	}

	stock := f.stockOf(t, f.item)
	assertDec(t, "10", stock.Quantity, "every later receipt finds the delta already booked")
	assertDec(t, "8", stock.AverageCost)

	stored, err := f.purchaseRepo.FindByID(f.ctx, order.ID)
	require.NoError(t, err)
	assertDec(t, "10", stored.Items[0].AppliedQuantity)
}

func TestPurchaseService_ReceiptRollsBackOnFailure(t *testing.T) {
	f := newTradeFixture(t)
	order := f.newPurchase(t, "PO-1", true)
	f.ledger.On("RecordPurchase", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	_, err := f.purchases.ReceivePurchaseOrder(f.ctx, order.ID)
	require.ErrorIs(t, err, assert.AnError)

	stored, err := f.purchaseRepo.FindByID(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseOrderStatusPending, stored.Status)
	assertDec(t, "0", stored.Items[0].AppliedQuantity)
	_, err = f.stock.GetStock(f.ctx, f.item.ID, f.warehouse.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound, "the stock row created by the receipt is rolled back")

	f.ledger.On("RecordPurchase", mock.Anything, mock.Anything).Return(nil).Once()
	received, err := f.purchases.ReceivePurchaseOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseOrderStatusReceived, received.Status)
	assertDec(t, "10", f.stockOf(t, f.item).Quantity)
}
