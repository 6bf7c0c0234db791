package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/domain/inventory"
	"github.com/erp/stockledger/internal/domain/shared"
)

// LowStockNotifier turns alert events into operator notifications.
// The default channel is the structured log; a Sender adds another.
type LowStockNotifier struct {
	logger *zap.Logger
	sender AlertSender
}

// AlertSender delivers a raised alert over an external channel (mail, chat, pager)
type AlertSender interface {
	SendLowStockAlert(ctx context.Context, event *inventory.LowStockAlertRaisedEvent) error
}

// NewLowStockNotifier creates a new LowStockNotifier
func NewLowStockNotifier(logger *zap.Logger) *LowStockNotifier {
	return &LowStockNotifier{logger: logger}
}

// WithSender sets an additional delivery channel
func (n *LowStockNotifier) WithSender(sender AlertSender) *LowStockNotifier {
	n.sender = sender
	return n
}

// EventTypes returns the event types this handler is interested in
func (n *LowStockNotifier) EventTypes() []string {
	return []string{
		inventory.EventTypeLowStockAlertRaised,
		inventory.EventTypeLowStockAlertResolved,
	}
}

// Handle processes an alert event
func (n *LowStockNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *inventory.LowStockAlertRaisedEvent:
		n.logger.Warn("LOW STOCK ALERT",
			zap.String("alert_id", e.AlertID.String()),
			zap.String("item_id", e.ItemID.String()),
			zap.String("warehouse_id", e.WarehouseID.String()),
			zap.String("current_quantity", e.CurrentQuantity.String()),
			zap.String("min_quantity", e.MinQuantity.String()),
			zap.String("message", e.Message),
		)
		if n.sender != nil {
			if err := n.sender.SendLowStockAlert(ctx, e); err != nil {
				return fmt.Errorf("failed to send low stock alert %s: %w", e.AlertID, err)
			}
		}
		return nil

	case *inventory.LowStockAlertResolvedEvent:
		n.logger.Info("low stock alert resolved",
			zap.String("alert_id", e.AlertID.String()),
			zap.String("item_id", e.ItemID.String()),
			zap.String("warehouse_id", e.WarehouseID.String()),
		)
		return nil

	default:
		return fmt.Errorf("unexpected event type %s", event.EventType())
	}
}

var _ shared.EventHandler = (*LowStockNotifier)(nil)
