package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/domain/inventory"
	"github.com/erp/stockledger/internal/domain/shared"
)

// AlertMonitor raises and maintains low stock alerts.
// Evaluate runs inside a stock unit of work; the remaining operations open their own.
type AlertMonitor struct {
	scope     TransactionScope
	alerts    inventory.StockAlertRepository
	publisher shared.EventPublisher
	metrics   Metrics
	logger    *zap.Logger
}

// NewAlertMonitor creates a new AlertMonitor
func NewAlertMonitor(scope TransactionScope, alerts inventory.StockAlertRepository, logger *zap.Logger) *AlertMonitor {
	return &AlertMonitor{
		scope:   scope,
		alerts:  alerts,
		metrics: noopMetrics{},
		logger:  logger,
	}
}

// SetEventPublisher sets the publisher for alert events
func (m *AlertMonitor) SetEventPublisher(publisher shared.EventPublisher) {
	m.publisher = publisher
}

// SetMetrics sets the metrics sink
func (m *AlertMonitor) SetMetrics(metrics Metrics) {
	if metrics != nil {
		m.metrics = metrics
	}
}

// Evaluate checks a freshly saved stock row against its minimum.
// An existing PENDING alert is refreshed when the quantity moved; otherwise a new one is opened.
// The returned events must be published only after the surrounding transaction commits.
func (m *AlertMonitor) Evaluate(ctx context.Context, repos TransactionalRepositories, stock *inventory.Stock) ([]shared.DomainEvent, error) {
	if !stock.IsLowStock() {
		return nil, nil
	}

	alert, err := repos.Alerts().FindPendingByStock(ctx, stock.ID)
	switch {
	case err == nil:
		itemName, warehouseName := m.stockNames(ctx, repos, stock)
		changed, err := alert.Refresh(stock, itemName, warehouseName)
		if err != nil {
			return nil, err
		}
		if !changed {
			return nil, nil
		}
		if err := repos.Alerts().Save(ctx, alert); err != nil {
			return nil, err
		}
		return nil, nil

	case errors.Is(err, shared.ErrNotFound):
		itemName, warehouseName := m.stockNames(ctx, repos, stock)
		alert, err := inventory.NewStockAlert(stock, itemName, warehouseName)
		if err != nil {
			return nil, err
		}
		if err := repos.Alerts().Save(ctx, alert); err != nil {
			return nil, err
		}
		m.metrics.RecordAlertRaised(ctx)
		return alert.PullDomainEvents(), nil

	default:
		return nil, err
	}
}

// stockNames looks up display names for the alert message, falling back to ids
func (m *AlertMonitor) stockNames(ctx context.Context, repos TransactionalRepositories, stock *inventory.Stock) (string, string) {
	itemName := stock.ItemID.String()
	if item, err := repos.Items().FindByID(ctx, stock.ItemID); err == nil {
		itemName = item.Name
	}
	warehouseName := stock.WarehouseID.String()
	if wh, err := repos.Warehouses().FindByID(ctx, stock.WarehouseID); err == nil {
		warehouseName = wh.Name
	}
	return itemName, warehouseName
}

// Acknowledge marks an alert as seen
func (m *AlertMonitor) Acknowledge(ctx context.Context, alertID uuid.UUID) (*inventory.StockAlert, error) {
	var result *inventory.StockAlert
	err := m.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		alert, err := repos.Alerts().FindByID(ctx, alertID)
		if err != nil {
			return err
		}
		if err := alert.Acknowledge(); err != nil {
			return err
		}
		if err := repos.Alerts().Save(ctx, alert); err != nil {
			return err
		}
		result = alert
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("stock alert acknowledged", zap.String("alert_id", alertID.String()))
	return result, nil
}

// Resolve closes an alert
func (m *AlertMonitor) Resolve(ctx context.Context, alertID uuid.UUID) (*inventory.StockAlert, error) {
	var result *inventory.StockAlert
	err := m.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		alert, err := repos.Alerts().FindByID(ctx, alertID)
		if err != nil {
			return err
		}
		if err := alert.Resolve(); err != nil {
			return err
		}
		if err := repos.Alerts().Save(ctx, alert); err != nil {
			return err
		}
		result = alert
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.metrics.RecordAlertResolved(ctx)
	m.publish(ctx, result.PullDomainEvents())
	m.logger.Info("stock alert resolved", zap.String("alert_id", alertID.String()))
	return result, nil
}

// IsStockRecovered reports whether the alert's stock is currently above its minimum
func (m *AlertMonitor) IsStockRecovered(ctx context.Context, alertID uuid.UUID) (bool, error) {
	var recovered bool
	err := m.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		alert, err := repos.Alerts().FindByID(ctx, alertID)
		if err != nil {
			return err
		}
		stock, err := repos.Stocks().FindByID(ctx, alert.StockID)
		if err != nil {
			return err
		}
		recovered = alert.IsStockRecovered(stock)
		return nil
	})
	return recovered, err
}

// Reconcile resolves every open alert whose stock has recovered.
// Each alert is handled in its own transaction; the first failure stops the sweep.
func (m *AlertMonitor) Reconcile(ctx context.Context) (int, error) {
	open, err := m.alerts.FindByStatus(ctx, inventory.AlertStatusPending, inventory.AlertStatusAcknowledged)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for i := range open {
		var events []shared.DomainEvent
		err := m.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			alert, err := repos.Alerts().FindByID(ctx, open[i].ID)
			if err != nil {
				return err
			}
			if !alert.Status.IsOpen() {
				return nil
			}
			stock, err := repos.Stocks().FindByID(ctx, alert.StockID)
			if err != nil {
				return err
			}
			if !alert.IsStockRecovered(stock) {
				return nil
			}
			if err := alert.Resolve(); err != nil {
				return err
			}
			if err := repos.Alerts().Save(ctx, alert); err != nil {
				return err
			}
			events = alert.PullDomainEvents()
			return nil
		})
		if err != nil {
			m.logger.Error("alert reconciliation failed",
				zap.String("alert_id", open[i].ID.String()),
				zap.Error(err),
			)
			return resolved, err
		}
		if len(events) > 0 {
			resolved++
			m.metrics.RecordAlertResolved(ctx)
			m.publish(ctx, events)
		}
	}

	if resolved > 0 {
		m.logger.Info("stock alerts reconciled", zap.Int("resolved", resolved), zap.Int("open", len(open)))
	}
	return resolved, nil
}

// ListAlerts lists alerts in the given statuses, newest first. No statuses lists all.
func (m *AlertMonitor) ListAlerts(ctx context.Context, statuses ...inventory.AlertStatus) ([]inventory.StockAlert, error) {
	for _, s := range statuses {
		if !s.IsValid() {
			return nil, shared.NewValidationError("Invalid alert status: " + string(s))
		}
	}
	return m.alerts.FindByStatus(ctx, statuses...)
}

func (m *AlertMonitor) publish(ctx context.Context, events []shared.DomainEvent) {
	if m.publisher == nil || len(events) == 0 {
		return
	}
	if err := m.publisher.Publish(ctx, events...); err != nil {
		m.logger.Warn("failed to publish alert events", zap.Error(err))
	}
}
