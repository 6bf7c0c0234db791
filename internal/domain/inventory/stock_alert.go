package inventory

import (
	"fmt"
	"time"

	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlertStatus is the lifecycle state of a low-stock alert
type AlertStatus string

const (
	AlertStatusPending      AlertStatus = "PENDING"
	AlertStatusAcknowledged AlertStatus = "ACKNOWLEDGED"
	AlertStatusResolved     AlertStatus = "RESOLVED"
)

// IsValid reports whether the status is known
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertStatusPending, AlertStatusAcknowledged, AlertStatusResolved:
		return true
	}
	return false
}

// String returns the string representation
func (s AlertStatus) String() string {
	return string(s)
}

// IsOpen reports whether the alert still needs attention
func (s AlertStatus) IsOpen() bool {
	return s == AlertStatusPending || s == AlertStatusAcknowledged
}

// CanTransitionTo reports whether moving to target is allowed
func (s AlertStatus) CanTransitionTo(target AlertStatus) bool {
	switch s {
	case AlertStatusPending:
		return target == AlertStatusAcknowledged || target == AlertStatusResolved
	case AlertStatusAcknowledged:
		return target == AlertStatusResolved
	default:
		return false
	}
}

// StockAlert records a stock row that fell to or below its minimum.
// Status is authoritative; quantity checks only feed reconciliation.
type StockAlert struct {
	shared.BaseAggregateRoot
	StockID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	WarehouseID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CurrentQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MinQuantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status          AlertStatus     `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Message         string          `gorm:"type:text;not null"`
	AcknowledgedAt  *time.Time
	ResolvedAt      *time.Time
}

// TableName returns the table name for GORM
func (StockAlert) TableName() string {
	return "stock_alerts"
}

// NewStockAlert opens a PENDING alert for a low stock row
func NewStockAlert(stock *Stock, itemName, warehouseName string) (*StockAlert, error) {
	if stock == nil {
		return nil, shared.NewValidationError("Stock cannot be nil")
	}
	if !stock.IsLowStock() {
		return nil, shared.NewValidationError("Stock is above its minimum quantity")
	}
	alert := &StockAlert{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StockID:           stock.ID,
		ItemID:            stock.ItemID,
		WarehouseID:       stock.WarehouseID,
		CurrentQuantity:   stock.Quantity,
		MinQuantity:       stock.MinQuantity,
		Status:            AlertStatusPending,
		Message:           AlertMessage(itemName, warehouseName, stock.Quantity, stock.MinQuantity),
	}
	alert.AddDomainEvent(NewLowStockAlertRaisedEvent(alert))
	return alert, nil
}

// AlertMessage formats the human readable alert text
func AlertMessage(itemName, warehouseName string, current, minimum decimal.Decimal) string {
	return fmt.Sprintf("Low stock alert for %s in %s. Current quantity: %s, Minimum required: %s",
		itemName, warehouseName, current.String(), minimum.String())
}

// Refresh updates a pending alert in place when the stock quantity or its minimum moved.
// It reports whether anything changed.
func (a *StockAlert) Refresh(stock *Stock, itemName, warehouseName string) (bool, error) {
	if a.Status != AlertStatusPending {
		return false, shared.NewInvalidTransitionError(a.Status, AlertStatusPending)
	}
	if a.CurrentQuantity.Equal(stock.Quantity) && a.MinQuantity.Equal(stock.MinQuantity) {
		return false, nil
	}
	a.CurrentQuantity = stock.Quantity
	a.MinQuantity = stock.MinQuantity
	a.Message = AlertMessage(itemName, warehouseName, stock.Quantity, stock.MinQuantity)
	a.Touch()
	return true, nil
}

// Acknowledge marks the alert as seen by an operator
func (a *StockAlert) Acknowledge() error {
	if !a.Status.CanTransitionTo(AlertStatusAcknowledged) {
		return shared.NewInvalidTransitionError(a.Status, AlertStatusAcknowledged)
	}
	now := time.Now()
	a.Status = AlertStatusAcknowledged
	a.AcknowledgedAt = &now
	a.Touch()
	return nil
}

// Resolve closes the alert
func (a *StockAlert) Resolve() error {
	if !a.Status.CanTransitionTo(AlertStatusResolved) {
		return shared.NewInvalidTransitionError(a.Status, AlertStatusResolved)
	}
	now := time.Now()
	a.Status = AlertStatusResolved
	a.ResolvedAt = &now
	a.Touch()
	a.AddDomainEvent(NewLowStockAlertResolvedEvent(a))
	return nil
}

// IsStockRecovered is a point-in-time check against live stock, independent of Status
func (a *StockAlert) IsStockRecovered(stock *Stock) bool {
	return stock.Quantity.GreaterThan(stock.MinQuantity)
}
