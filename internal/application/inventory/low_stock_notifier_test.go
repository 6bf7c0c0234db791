package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appinv "github.com/erp/stockledger/internal/application/inventory"
	"github.com/erp/stockledger/internal/domain/inventory"
	"github.com/erp/stockledger/internal/domain/shared"
)

type MockAlertSender struct {
	mock.Mock
}

func (m *MockAlertSender) SendLowStockAlert(ctx context.Context, event *inventory.LowStockAlertRaisedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func raisedEvent() *inventory.LowStockAlertRaisedEvent {
	stock, _ := inventory.NewStock(uuid.New(), uuid.New())
	_ = stock.SetThresholds(dec("5"), nil)
	alert, _ := inventory.NewStockAlert(stock, "Widget", "Main")
	return inventory.NewLowStockAlertRaisedEvent(alert)
}

func TestLowStockNotifier_Handle(t *testing.T) {
	t.Run("logs raised alerts at warn", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		n := appinv.NewLowStockNotifier(zap.New(core))

		require.NoError(t, n.Handle(context.Background(), raisedEvent()))

		entries := logs.FilterMessage("LOW STOCK ALERT").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "5", entries[0].ContextMap()["min_quantity"])
	})

	t.Run("forwards to the sender and wraps its error", func(t *testing.T) {
		sender := &MockAlertSender{}
		event := raisedEvent()
		sender.On("SendLowStockAlert", mock.Anything, event).Return(errors.New("smtp down")).Once()
		n := appinv.NewLowStockNotifier(zap.NewNop()).WithSender(sender)

		err := n.Handle(context.Background(), event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "smtp down")
		sender.AssertExpectations(t)
	})

	t.Run("rejects unrelated events", func(t *testing.T) {
		n := appinv.NewLowStockNotifier(zap.NewNop())
		other := shared.NewBaseDomainEvent("Unrelated", "Test", uuid.New())

		assert.Error(t, n.Handle(context.Background(), &other))
	})

	t.Run("subscribes to raised and resolved", func(t *testing.T) {
		n := appinv.NewLowStockNotifier(zap.NewNop())
		assert.ElementsMatch(t, []string{
			inventory.EventTypeLowStockAlertRaised,
			inventory.EventTypeLowStockAlertResolved,
		}, n.EventTypes())
	})
}
