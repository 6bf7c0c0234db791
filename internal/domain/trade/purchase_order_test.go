package trade

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noCosts() AdditionalCosts {
	return AdditionalCosts{Freight: decimal.Zero, CustomsDuty: decimal.Zero, Other: decimal.Zero}
}

func newTestPurchaseOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	order, err := NewPurchaseOrder("PO-001", uuid.New(), time.Now())
	require.NoError(t, err)
	return order
}

func TestPurchaseOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to PurchaseOrderStatus
		want     bool
	}{
		{PurchaseOrderStatusPending, PurchaseOrderStatusReceived, true},
		{PurchaseOrderStatusPending, PurchaseOrderStatusPartial, true},
		{PurchaseOrderStatusPending, PurchaseOrderStatusCancelled, true},
		{PurchaseOrderStatusPartial, PurchaseOrderStatusReceived, true},
		{PurchaseOrderStatusPartial, PurchaseOrderStatusPending, false},
		{PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled, false},
		{PurchaseOrderStatusCancelled, PurchaseOrderStatusReceived, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestNewPurchaseOrder(t *testing.T) {
	_, err := NewPurchaseOrder("", uuid.New(), time.Now())
	assert.Error(t, err)
	_, err = NewPurchaseOrder("PO-1", uuid.Nil, time.Now())
	assert.Error(t, err)

	order := newTestPurchaseOrder(t)
	assert.Equal(t, PurchaseOrderStatusPending, order.Status)
	assert.True(t, order.TotalAmount.IsZero())
	require.Len(t, order.GetDomainEvents(), 1)
	assert.Equal(t, EventTypePurchaseOrderCreated, order.GetDomainEvents()[0].EventType())
}

func TestPurchaseOrder_LinesAndTotal(t *testing.T) {
	order := newTestPurchaseOrder(t)

	line, err := order.AddItem(uuid.New(), dec("10"), dec("5.00"),
		AdditionalCosts{Freight: dec("20"), CustomsDuty: dec("10"), Other: decimal.Zero})
	require.NoError(t, err)
	assert.True(t, dec("8").Equal(line.LandedCostPerUnit))
	assert.True(t, dec("80").Equal(line.TotalLandedCost))

	_, err = order.AddItem(uuid.New(), dec("2"), dec("12.50"), noCosts())
	require.NoError(t, err)
	assert.True(t, dec("75").Equal(order.TotalAmount), "total is the sum of line totals, not landed costs")

	require.NoError(t, order.UpdateItem(line.ID, dec("4"), dec("5"), noCosts()))
	assert.True(t, dec("45").Equal(order.TotalAmount))
	assert.True(t, dec("5").Equal(order.GetItem(line.ID).LandedCostPerUnit))

	require.NoError(t, order.RemoveItem(line.ID))
	assert.True(t, dec("25").Equal(order.TotalAmount))
	assert.True(t, errors.Is(order.RemoveItem(line.ID), shared.ErrNotFound))

	_, err = order.AddItem(uuid.New(), decimal.Zero, dec("1"), noCosts())
	assert.True(t, errors.Is(err, shared.ErrValidation))
	_, err = order.AddItem(uuid.New(), dec("1"), dec("1"), AdditionalCosts{Freight: dec("-1"), CustomsDuty: decimal.Zero, Other: decimal.Zero})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestPurchaseOrder_RecordReceipt(t *testing.T) {
	order := newTestPurchaseOrder(t)
	a, err := order.AddItem(uuid.New(), dec("10"), dec("1"), noCosts())
	require.NoError(t, err)
	b, err := order.AddItem(uuid.New(), dec("5"), dec("1"), noCosts())
	require.NoError(t, err)
	order.ClearDomainEvents()

	require.NoError(t, order.RecordReceipt(a.ID, dec("4")))
	assert.Equal(t, PurchaseOrderStatusPartial, order.Status)
	assert.True(t, dec("6").Equal(order.GetItem(a.ID).PendingQuantity()))
	assert.True(t, dec("4").Equal(order.GetItem(a.ID).UnappliedQuantity()))

	_, err = order.AddItem(uuid.New(), dec("1"), dec("1"), noCosts())
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition), "lines are frozen once receiving starts")

	err = order.RecordReceipt(a.ID, dec("11"))
	assert.True(t, errors.Is(err, shared.ErrValidation))

	require.NoError(t, order.MarkApplied(a.ID, dec("4")))
	assert.True(t, order.GetItem(a.ID).UnappliedQuantity().IsZero())
	err = order.RecordReceipt(a.ID, dec("3"))
	assert.True(t, errors.Is(err, shared.ErrValidation), "booked stock cannot be un-received")

	require.NoError(t, order.RecordReceipt(a.ID, dec("10")))
	require.NoError(t, order.RecordReceipt(b.ID, dec("5")))
	assert.Equal(t, PurchaseOrderStatusReceived, order.Status)
	assert.NotNil(t, order.ReceivedDate)
	assert.True(t, dec("100").Equal(order.ReceiveProgress()))

	lines := order.LinesAwaitingStock()
	require.Len(t, lines, 2)
	assert.True(t, dec("6").Equal(order.GetItem(a.ID).UnappliedQuantity()))

	err = order.RecordReceipt(a.ID, dec("10"))
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
}

func TestPurchaseOrder_ReceiveAll(t *testing.T) {
	order := newTestPurchaseOrder(t)
	assert.Error(t, order.ReceiveAll(), "empty order cannot be received")

	line, err := order.AddItem(uuid.New(), dec("10"), dec("1"), noCosts())
	require.NoError(t, err)

	require.NoError(t, order.ReceiveAll())
	assert.Equal(t, PurchaseOrderStatusReceived, order.Status)
	assert.True(t, order.GetItem(line.ID).IsFullyReceived())
	assert.True(t, errors.Is(order.ReceiveAll(), shared.ErrInvalidTransition))
	assert.True(t, errors.Is(order.Cancel("late"), shared.ErrInvalidTransition))

	require.NoError(t, order.MarkApplied(line.ID, dec("10")))
	assert.Empty(t, order.LinesAwaitingStock())
	assert.Error(t, order.MarkApplied(line.ID, dec("1")))
}

func TestPurchaseOrder_Cancel(t *testing.T) {
	order := newTestPurchaseOrder(t)
	require.NoError(t, order.Cancel("vendor out of business"))
	assert.Equal(t, PurchaseOrderStatusCancelled, order.Status)
	assert.NotNil(t, order.CancelledAt)
	assert.True(t, errors.Is(order.Cancel("again"), shared.ErrInvalidTransition))
	assert.True(t, order.IsTerminal())
}

func TestPurchaseItem_CostBreakdown(t *testing.T) {
	line, err := NewPurchaseItem(uuid.New(), uuid.New(), dec("10"), dec("5"),
		AdditionalCosts{Freight: dec("20"), CustomsDuty: dec("10"), Other: dec("0")})
	require.NoError(t, err)

	cb := line.CostBreakdown()
	assert.True(t, dec("3").Equal(cb.AdditionalPerUnit))
	assert.True(t, dec("8").Equal(cb.LandedCostPerUnit))
	assert.True(t, dec("50").Equal(cb.LineTotal))
	assert.True(t, dec("80").Equal(cb.TotalLandedCost))
	assert.True(t, dec("20").Equal(cb.FreightCost))
}
