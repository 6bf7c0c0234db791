package inventory

import (
	"errors"
	"testing"

	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newTestStock(t *testing.T, qty, reserved int64) *Stock {
	t.Helper()
	s, err := NewStock(uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, s.Adjust(d(qty), d(reserved), "seed"))
	s.ClearDomainEvents()
	return s
}

func assertAvailableInvariant(t *testing.T, s *Stock) {
	t.Helper()
	want := decimal.Max(decimal.Zero, s.Quantity.Sub(s.ReservedQuantity))
	assert.True(t, want.Equal(s.AvailableQuantity), "available=%s want=%s", s.AvailableQuantity, want)
	assert.False(t, s.Quantity.IsNegative())
	assert.False(t, s.ReservedQuantity.IsNegative())
}

func TestNewStock(t *testing.T) {
	_, err := NewStock(uuid.Nil, uuid.New())
	assert.Error(t, err)
	_, err = NewStock(uuid.New(), uuid.Nil)
	assert.Error(t, err)

	s, err := NewStock(uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.True(t, s.Quantity.IsZero())
	assertAvailableInvariant(t, s)
}

func TestStock_Adjust(t *testing.T) {
	s := newTestStock(t, 10, 2)
	assert.True(t, d(8).Equal(s.AvailableQuantity))

	require.NoError(t, s.Adjust(d(-4), d(3), "count"))
	assert.True(t, d(6).Equal(s.Quantity))
	assert.True(t, d(5).Equal(s.ReservedQuantity))
	assertAvailableInvariant(t, s)
	require.Len(t, s.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeStockAdjusted, s.GetDomainEvents()[0].EventType())

	err := s.Adjust(d(-7), decimal.Zero, "too much")
	assert.True(t, errors.Is(err, shared.ErrValidation))
	err = s.Adjust(decimal.Zero, d(-6), "too much")
	assert.True(t, errors.Is(err, shared.ErrValidation))
	assert.True(t, d(6).Equal(s.Quantity), "failed adjust must not mutate")
}

func TestStock_ReserveAndRelease(t *testing.T) {
	s := newTestStock(t, 10, 0)

	require.NoError(t, s.Reserve(d(4)))
	assert.True(t, d(4).Equal(s.ReservedQuantity))
	assert.True(t, d(6).Equal(s.AvailableQuantity))
	assertAvailableInvariant(t, s)

	released, err := s.Release(d(4))
	require.NoError(t, err)
	assert.True(t, d(4).Equal(released))
	assert.True(t, s.ReservedQuantity.IsZero(), "reserve then release restores prior value")
	assertAvailableInvariant(t, s)

	released, err = s.Release(d(4))
	require.NoError(t, err)
	assert.True(t, released.IsZero(), "second release is a no-op")
	assert.True(t, s.ReservedQuantity.IsZero())
}

func TestStock_ReserveInsufficient(t *testing.T) {
	s := newTestStock(t, 10, 7)

	err := s.Reserve(d(4))
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	assert.True(t, d(7).Equal(s.ReservedQuantity))

	assert.Error(t, s.Reserve(decimal.Zero))
}

func TestStock_ReduceOnFulfillment(t *testing.T) {
	tests := []struct {
		name         string
		qty          int64
		reserved     int64
		reduce       int64
		wantQty      int64
		wantReserved int64
	}{
		{"reserved covers", 20, 5, 5, 15, 0},
		{"reserved partially covers", 20, 2, 5, 15, 0},
		{"no reservation", 20, 0, 5, 15, 0},
		{"floors at zero", 3, 1, 5, 0, 0},
		{"leaves other reservations", 20, 8, 5, 15, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStock(t, tt.qty, tt.reserved)
			require.NoError(t, s.ReduceOnFulfillment(d(tt.reduce)))
			assert.True(t, d(tt.wantQty).Equal(s.Quantity), "quantity=%s", s.Quantity)
			assert.True(t, d(tt.wantReserved).Equal(s.ReservedQuantity), "reserved=%s", s.ReservedQuantity)
			assertAvailableInvariant(t, s)
		})
	}
}

func TestStock_Receive(t *testing.T) {
	t.Run("first receipt takes unit cost", func(t *testing.T) {
		s := newTestStock(t, 0, 0)
		require.NoError(t, s.Receive(d(10), decimal.RequireFromString("8.00")))
		assert.True(t, d(10).Equal(s.Quantity))
		assert.True(t, decimal.RequireFromString("8").Equal(s.AverageCost))
		assert.NotNil(t, s.LastRestocked)
	})

	t.Run("weighted average", func(t *testing.T) {
		s := newTestStock(t, 0, 0)
		require.NoError(t, s.Receive(d(10), d(10)))
		require.NoError(t, s.Receive(d(30), d(20)))
		// (10*10 + 30*20) / 40 = 17.5
		assert.True(t, decimal.RequireFromString("17.5").Equal(s.AverageCost))
		assert.True(t, d(40).Equal(s.Quantity))
		assertAvailableInvariant(t, s)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		s := newTestStock(t, 0, 0)
		assert.Error(t, s.Receive(decimal.Zero, d(1)))
		assert.Error(t, s.Receive(d(1), d(-1)))
	})
}

func TestStock_Thresholds(t *testing.T) {
	s := newTestStock(t, 5, 0)
	maxQty := d(50)
	require.NoError(t, s.SetThresholds(d(5), &maxQty))
	assert.True(t, s.IsLowStock())
	assert.False(t, s.IsAboveMaximum())
	assert.False(t, s.IsOutOfStock())
	assert.True(t, s.CanFulfill(d(5)))
	assert.False(t, s.CanFulfill(d(6)))

	low := d(1)
	assert.Error(t, s.SetThresholds(d(5), &low))
	assert.Error(t, s.SetThresholds(d(-1), nil))
}

func TestStockAlert_Lifecycle(t *testing.T) {
	s := newTestStock(t, 3, 0)
	require.NoError(t, s.SetThresholds(d(5), nil))

	alert, err := NewStockAlert(s, "Widget", "Main")
	require.NoError(t, err)
	assert.Equal(t, AlertStatusPending, alert.Status)
	assert.Equal(t, "Low stock alert for Widget in Main. Current quantity: 3, Minimum required: 5", alert.Message)
	require.Len(t, alert.GetDomainEvents(), 1)

	changed, err := alert.Refresh(s, "Widget", "Main")
	require.NoError(t, err)
	assert.False(t, changed, "same quantity leaves alert untouched")

	require.NoError(t, s.Adjust(d(-1), decimal.Zero, ""))
	changed, err = alert.Refresh(s, "Widget", "Main")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, d(2).Equal(alert.CurrentQuantity))
	assert.Contains(t, alert.Message, "Current quantity: 2")

	require.NoError(t, s.SetThresholds(d(4), nil))
	changed, err = alert.Refresh(s, "Widget", "Main")
	require.NoError(t, err)
	assert.True(t, changed, "a new minimum is carried into the alert")
	assert.True(t, d(4).Equal(alert.MinQuantity))
	assert.Contains(t, alert.Message, "Minimum required: 4")

	require.NoError(t, alert.Acknowledge())
	assert.NotNil(t, alert.AcknowledgedAt)
	_, err = alert.Refresh(s, "Widget", "Main")
	assert.True(t, errors.Is(err, shared.ErrInvalidTransition))

	require.NoError(t, alert.Resolve())
	assert.NotNil(t, alert.ResolvedAt)
	assert.True(t, errors.Is(alert.Resolve(), shared.ErrInvalidTransition))
	assert.True(t, errors.Is(alert.Acknowledge(), shared.ErrInvalidTransition))
}

func TestStockAlert_PendingResolvesDirectly(t *testing.T) {
	s := newTestStock(t, 0, 0)
	alert, err := NewStockAlert(s, "Widget", "Main")
	require.NoError(t, err)
	require.NoError(t, alert.Resolve())
	assert.Equal(t, AlertStatusResolved, alert.Status)
}

func TestStockAlert_IsStockRecovered(t *testing.T) {
	s := newTestStock(t, 2, 0)
	require.NoError(t, s.SetThresholds(d(5), nil))
	alert, err := NewStockAlert(s, "Widget", "Main")
	require.NoError(t, err)

	assert.False(t, alert.IsStockRecovered(s))
	require.NoError(t, s.Receive(d(10), d(1)))
	assert.True(t, alert.IsStockRecovered(s))
	assert.Equal(t, AlertStatusPending, alert.Status, "quantity check does not change status")
}

func TestNewStockAlert_RequiresLowStock(t *testing.T) {
	s := newTestStock(t, 10, 0)
	_, err := NewStockAlert(s, "Widget", "Main")
	assert.Error(t, err)
}
