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

func newTestSalesOrder(t *testing.T) *SalesOrder {
	t.Helper()
	order, err := NewSalesOrder("SO-001", uuid.New(), time.Now())
	require.NoError(t, err)
	return order
}

func TestSalesItem_LineTotal(t *testing.T) {
	line, err := NewSalesItem(uuid.New(), uuid.New(), dec("4"), dec("25.00"), dec("10"))
	require.NoError(t, err)
	assert.True(t, dec("90.00").Equal(line.LineTotal))

	assert.True(t, dec("30").Equal(line.ProfitAmount(dec("15"))))
	assert.True(t, dec("33.33").Equal(line.ProfitMargin(dec("15"))))

	_, err = NewSalesItem(uuid.New(), uuid.New(), dec("1"), dec("1"), dec("101"))
	assert.True(t, errors.Is(err, shared.ErrValidation))
	_, err = NewSalesItem(uuid.New(), uuid.New(), dec("0"), dec("1"), dec("0"))
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestSalesOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to SalesOrderStatus
		want     bool
	}{
		{SalesOrderStatusPending, SalesOrderStatusConfirmed, true},
		{SalesOrderStatusPending, SalesOrderStatusCancelled, true},
		{SalesOrderStatusConfirmed, SalesOrderStatusShipped, true},
		{SalesOrderStatusShipped, SalesOrderStatusDelivered, true},
		{SalesOrderStatusShipped, SalesOrderStatusConfirmed, false},
		{SalesOrderStatusDelivered, SalesOrderStatusCancelled, false},
		{SalesOrderStatusCancelled, SalesOrderStatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestSalesOrder_Totals(t *testing.T) {
	order := newTestSalesOrder(t)
	_, err := order.AddItem(uuid.New(), dec("4"), dec("25"), dec("10"))
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), dec("1"), dec("10"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, dec("100").Equal(order.TotalAmount))

	require.NoError(t, order.SetDiscount(dec("30")))
	assert.True(t, dec("70").Equal(order.TotalAmount))

	require.NoError(t, order.SetDiscount(dec("500")))
	assert.True(t, order.TotalAmount.IsZero(), "total is floored at zero")
	assert.Error(t, order.SetDiscount(dec("-1")))
}

func TestSalesOrder_UpdateItemQuantity(t *testing.T) {
	order := newTestSalesOrder(t)
	line, err := order.AddItem(uuid.New(), dec("2"), dec("10"), decimal.Zero)
	require.NoError(t, err)

	changed, err := order.UpdateItemQuantity(line.ID, dec("2"))
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = order.UpdateItemQuantity(line.ID, dec("3"))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, dec("30").Equal(order.TotalAmount))

	require.NoError(t, order.MarkLineShipped(line.ID))
	require.NoError(t, order.Ship())

	changed, err = order.UpdateItemQuantity(line.ID, dec("3"))
	require.NoError(t, err, "unchanged quantity is accepted after shipping")
	assert.False(t, changed)

	_, err = order.UpdateItemQuantity(line.ID, dec("4"))
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
}

func TestSalesOrder_Fulfillment(t *testing.T) {
	order := newTestSalesOrder(t)
	line, err := order.AddItem(uuid.New(), dec("5"), dec("10"), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, order.RecordReservation(line.ID, uuid.New(), dec("5")))
	require.Len(t, order.ReservedLines(), 1)

	needs, err := order.NeedsStockReduction(SalesOrderStatusShipped)
	require.NoError(t, err)
	assert.True(t, needs)

	assert.Error(t, order.Ship(), "unshipped lines block the transition")

	require.NoError(t, order.MarkLineShipped(line.ID))
	assert.Empty(t, order.LinesAwaitingShipment())
	assert.Empty(t, order.ReservedLines())
	assert.True(t, dec("5").Equal(order.GetItem(line.ID).ShippedQuantity))
	require.NoError(t, order.Ship())

	needs, err = order.NeedsStockReduction(SalesOrderStatusDelivered)
	require.NoError(t, err)
	assert.False(t, needs, "shipped orders are not reduced again on delivery")

	require.NoError(t, order.Deliver())
	assert.Equal(t, SalesOrderStatusDelivered, order.Status)
	assert.NotNil(t, order.DeliveredAt)

	_, err = order.NeedsStockReduction(SalesOrderStatusCancelled)
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
	assert.True(t, errors.Is(order.Cancel("too late"), shared.ErrInvalidTransition))
}

func TestSalesOrder_ConfirmAndCancel(t *testing.T) {
	order := newTestSalesOrder(t)
	assert.Error(t, order.Confirm(), "empty order cannot be confirmed")

	line, err := order.AddItem(uuid.New(), dec("1"), dec("10"), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, order.Confirm())
	assert.True(t, errors.Is(order.Confirm(), shared.ErrInvalidTransition))

	removed, err := order.RemoveItem(line.ID)
	require.NoError(t, err)
	assert.Equal(t, line.ItemID, removed.ItemID)
	assert.True(t, order.TotalAmount.IsZero())

	require.NoError(t, order.Cancel("client changed mind"))
	assert.Equal(t, SalesOrderStatusCancelled, order.Status)
	assert.True(t, errors.Is(order.Cancel("again"), shared.ErrInvalidTransition))

	_, err = order.AddItem(uuid.New(), dec("1"), dec("1"), decimal.Zero)
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))
}
