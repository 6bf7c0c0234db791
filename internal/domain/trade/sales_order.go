package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderStatus represents the status of a sales order
type SalesOrderStatus string

const (
	SalesOrderStatusPending   SalesOrderStatus = "PENDING"
	SalesOrderStatusConfirmed SalesOrderStatus = "CONFIRMED"
	SalesOrderStatusShipped   SalesOrderStatus = "SHIPPED"
	SalesOrderStatusDelivered SalesOrderStatus = "DELIVERED"
	SalesOrderStatusCancelled SalesOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid SalesOrderStatus
func (s SalesOrderStatus) IsValid() bool {
	switch s {
	case SalesOrderStatusPending, SalesOrderStatusConfirmed, SalesOrderStatusShipped,
		SalesOrderStatusDelivered, SalesOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SalesOrderStatus
func (s SalesOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s SalesOrderStatus) CanTransitionTo(target SalesOrderStatus) bool {
	switch s {
	case SalesOrderStatusPending:
		return target == SalesOrderStatusConfirmed ||
			target == SalesOrderStatusShipped ||
			target == SalesOrderStatusDelivered ||
			target == SalesOrderStatusCancelled
	case SalesOrderStatusConfirmed:
		return target == SalesOrderStatusShipped ||
			target == SalesOrderStatusDelivered ||
			target == SalesOrderStatusCancelled
	case SalesOrderStatusShipped:
		return target == SalesOrderStatusDelivered || target == SalesOrderStatusCancelled
	}
	return false // DELIVERED and CANCELLED are terminal
}

// IsFulfilled reports whether stock for the order has physically left
func (s SalesOrderStatus) IsFulfilled() bool {
	return s == SalesOrderStatusShipped || s == SalesOrderStatusDelivered
}

// CanModifyLines reports whether line quantities may still change
func (s SalesOrderStatus) CanModifyLines() bool {
	return s == SalesOrderStatusPending || s == SalesOrderStatusConfirmed
}

// SalesItem is one line of a sales order. ReservedWarehouseID and
// ReservedQuantity record what this line currently holds in the stock ledger.
type SalesItem struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountPercentage  decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	LineTotal           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ShippedQuantity     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedWarehouseID *uuid.UUID      `gorm:"type:uuid"`
	ReservedQuantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt           time.Time       `gorm:"not null"`
	UpdatedAt           time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesItem) TableName() string {
	return "sales_items"
}

var hundred = decimal.NewFromInt(100)

// NewSalesItem creates a sales line with its total computed
func NewSalesItem(orderID, itemID uuid.UUID, quantity, unitPrice, discountPct decimal.Decimal) (*SalesItem, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("Item ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("Unit price cannot be negative")
	}
	if discountPct.IsNegative() || discountPct.GreaterThan(hundred) {
		return nil, shared.NewValidationError("Discount percentage must be between 0 and 100")
	}

	now := time.Now()
	line := &SalesItem{
		ID:                 uuid.New(),
		OrderID:            orderID,
		ItemID:             itemID,
		Quantity:           quantity,
		UnitPrice:          unitPrice,
		DiscountPercentage: discountPct,
		ShippedQuantity:    decimal.Zero,
		ReservedQuantity:   decimal.Zero,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	line.Recalculate()
	return line, nil
}

// Recalculate sets LineTotal = quantity × unit price × (1 − discount/100)
func (i *SalesItem) Recalculate() {
	factor := decimal.NewFromInt(1).Sub(i.DiscountPercentage.Div(hundred))
	i.LineTotal = i.Quantity.Mul(i.UnitPrice).Mul(factor).Round(4)
}

// IsShipped reports whether the full line quantity has shipped
func (i *SalesItem) IsShipped() bool {
	return i.ShippedQuantity.GreaterThanOrEqual(i.Quantity)
}

// ProfitAmount is the line total less quantity at the given unit cost
func (i *SalesItem) ProfitAmount(unitCost decimal.Decimal) decimal.Decimal {
	return i.LineTotal.Sub(i.Quantity.Mul(unitCost)).Round(4)
}

// ProfitMargin is profit as a percentage of the line total, 0 for a zero total
func (i *SalesItem) ProfitMargin(unitCost decimal.Decimal) decimal.Decimal {
	if i.LineTotal.IsZero() {
		return decimal.Zero
	}
	return i.ProfitAmount(unitCost).Div(i.LineTotal).Mul(hundred).Round(2)
}

// SalesOrder is the aggregate root for selling to a client
type SalesOrder struct {
	shared.BaseAggregateRoot
	OrderNumber    string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	ClientID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	WarehouseID    *uuid.UUID       `gorm:"type:uuid;index"`
	OrderDate      time.Time        `gorm:"not null;index"`
	DeliveryDate   *time.Time
	Status         SalesOrderStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	DiscountAmount decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount    decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Notes          string           `gorm:"type:text"`
	ConfirmedAt    *time.Time
	ShippedAt      *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   string      `gorm:"type:varchar(500)"`
	Items          []SalesItem `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// NewSalesOrder creates a new PENDING sales order
func NewSalesOrder(orderNumber string, clientID uuid.UUID, orderDate time.Time) (*SalesOrder, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, shared.NewValidationError("Order number cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewValidationError("Client ID cannot be empty")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}
	order := &SalesOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		ClientID:          clientID,
		OrderDate:         orderDate,
		Status:            SalesOrderStatusPending,
		DiscountAmount:    decimal.Zero,
		TotalAmount:       decimal.Zero,
		Items:             make([]SalesItem, 0),
	}
	order.AddDomainEvent(NewSalesOrderCreatedEvent(order))
	return order, nil
}

// SetWarehouse sets the warehouse lines are served from
func (o *SalesOrder) SetWarehouse(warehouseID uuid.UUID) error {
	if o.Status != SalesOrderStatusPending || len(o.Items) > 0 {
		return shared.NewValidationError("Warehouse can only be set on a new order before lines are added")
	}
	o.WarehouseID = &warehouseID
	return nil
}

// AddItem appends a line while lines may still change
func (o *SalesOrder) AddItem(itemID uuid.UUID, quantity, unitPrice, discountPct decimal.Decimal) (*SalesItem, error) {
	if !o.Status.CanModifyLines() {
		return nil, o.lineChangeError()
	}
	line, err := NewSalesItem(o.ID, itemID, quantity, unitPrice, discountPct)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *line)
	o.RecalculateTotal()
	return &o.Items[len(o.Items)-1], nil
}

// UpdateItemQuantity changes a line quantity and reports whether it changed.
// An unchanged quantity is accepted in any status.
func (o *SalesOrder) UpdateItemQuantity(lineID uuid.UUID, quantity decimal.Decimal) (bool, error) {
	line := o.GetItem(lineID)
	if line == nil {
		return false, shared.NewNotFoundError("sales item", lineID)
	}
	if line.Quantity.Equal(quantity) {
		return false, nil
	}
	if !o.Status.CanModifyLines() {
		return false, o.lineChangeError()
	}
	if !quantity.IsPositive() {
		return false, shared.NewValidationError("Quantity must be positive")
	}
	line.Quantity = quantity
	line.UpdatedAt = time.Now()
	line.Recalculate()
	o.RecalculateTotal()
	return true, nil
}

// RemoveItem drops a line and returns it so its reservation can be released
func (o *SalesOrder) RemoveItem(lineID uuid.UUID) (*SalesItem, error) {
	if !o.Status.CanModifyLines() {
		return nil, o.lineChangeError()
	}
	for idx := range o.Items {
		if o.Items[idx].ID == lineID {
			removed := o.Items[idx]
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.RecalculateTotal()
			return &removed, nil
		}
	}
	return nil, shared.NewNotFoundError("sales item", lineID)
}

// SetDiscount sets the order level discount amount
func (o *SalesOrder) SetDiscount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewValidationError("Discount amount cannot be negative")
	}
	if o.Status == SalesOrderStatusCancelled || o.Status == SalesOrderStatusDelivered {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot change discount of order in %s status", o.Status))
	}
	o.DiscountAmount = amount
	o.RecalculateTotal()
	return nil
}

// RecalculateTotal sets TotalAmount = max(0, sum(line totals) − discount)
func (o *SalesOrder) RecalculateTotal() decimal.Decimal {
	sum := decimal.Zero
	for idx := range o.Items {
		o.Items[idx].Recalculate()
		sum = sum.Add(o.Items[idx].LineTotal)
	}
	o.TotalAmount = decimal.Max(decimal.Zero, sum.Sub(o.DiscountAmount))
	o.Touch()
	return o.TotalAmount
}

// RecordReservation stores what the line holds in the ledger
func (o *SalesOrder) RecordReservation(lineID, warehouseID uuid.UUID, qty decimal.Decimal) error {
	line := o.GetItem(lineID)
	if line == nil {
		return shared.NewNotFoundError("sales item", lineID)
	}
	line.ReservedWarehouseID = &warehouseID
	line.ReservedQuantity = qty
	line.UpdatedAt = time.Now()
	return nil
}

// ClearReservation marks the line as holding nothing
func (o *SalesOrder) ClearReservation(lineID uuid.UUID) error {
	line := o.GetItem(lineID)
	if line == nil {
		return shared.NewNotFoundError("sales item", lineID)
	}
	line.ReservedQuantity = decimal.Zero
	line.UpdatedAt = time.Now()
	return nil
}

// MarkLineShipped records a line as fully shipped and no longer reserved
func (o *SalesOrder) MarkLineShipped(lineID uuid.UUID) error {
	line := o.GetItem(lineID)
	if line == nil {
		return shared.NewNotFoundError("sales item", lineID)
	}
	line.ShippedQuantity = line.Quantity
	line.ReservedQuantity = decimal.Zero
	line.UpdatedAt = time.Now()
	return nil
}

// LinesAwaitingShipment returns lines not yet shipped
func (o *SalesOrder) LinesAwaitingShipment() []*SalesItem {
	lines := make([]*SalesItem, 0)
	for idx := range o.Items {
		if !o.Items[idx].IsShipped() {
			lines = append(lines, &o.Items[idx])
		}
	}
	return lines
}

// ReservedLines returns lines that currently hold a reservation
func (o *SalesOrder) ReservedLines() []*SalesItem {
	lines := make([]*SalesItem, 0)
	for idx := range o.Items {
		if o.Items[idx].ReservedQuantity.IsPositive() && o.Items[idx].ReservedWarehouseID != nil {
			lines = append(lines, &o.Items[idx])
		}
	}
	return lines
}

// NeedsStockReduction reports whether moving to target has to take stock out.
// It also validates the transition.
func (o *SalesOrder) NeedsStockReduction(target SalesOrderStatus) (bool, error) {
	if !o.Status.CanTransitionTo(target) {
		return false, shared.NewInvalidTransitionError(o.Status, target)
	}
	return target.IsFulfilled() && !o.Status.IsFulfilled(), nil
}

// Confirm moves a PENDING order to CONFIRMED
func (o *SalesOrder) Confirm() error {
	if o.Status != SalesOrderStatusPending {
		return shared.NewInvalidTransitionError(o.Status, SalesOrderStatusConfirmed)
	}
	if len(o.Items) == 0 {
		return shared.NewValidationError("Cannot confirm an order without items")
	}
	now := time.Now()
	o.Status = SalesOrderStatusConfirmed
	o.ConfirmedAt = &now
	o.Touch()
	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(o, SalesOrderStatusPending))
	return nil
}

// Ship moves the order to SHIPPED
func (o *SalesOrder) Ship() error {
	if err := o.requireAllShipped(SalesOrderStatusShipped); err != nil {
		return err
	}
	from := o.Status
	now := time.Now()
	o.Status = SalesOrderStatusShipped
	o.ShippedAt = &now
	o.Touch()
	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(o, from))
	return nil
}

// Deliver moves the order to DELIVERED
func (o *SalesOrder) Deliver() error {
	if err := o.requireAllShipped(SalesOrderStatusDelivered); err != nil {
		return err
	}
	from := o.Status
	now := time.Now()
	if o.ShippedAt == nil {
		o.ShippedAt = &now
	}
	o.Status = SalesOrderStatusDelivered
	o.DeliveredAt = &now
	o.DeliveryDate = &now
	o.Touch()
	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(o, from))
	return nil
}

// Cancel moves the order to CANCELLED. Callers release reservations first.
func (o *SalesOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(SalesOrderStatusCancelled) {
		return shared.NewInvalidTransitionError(o.Status, SalesOrderStatusCancelled)
	}
	from := o.Status
	now := time.Now()
	o.Status = SalesOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.Touch()
	o.AddDomainEvent(NewSalesOrderStatusChangedEvent(o, from))
	return nil
}

// GetItem returns the line with the given ID, or nil
func (o *SalesOrder) GetItem(lineID uuid.UUID) *SalesItem {
	for idx := range o.Items {
		if o.Items[idx].ID == lineID {
			return &o.Items[idx]
		}
	}
	return nil
}

// IsTerminal returns true if the order can no longer change
func (o *SalesOrder) IsTerminal() bool {
	return o.Status == SalesOrderStatusDelivered || o.Status == SalesOrderStatusCancelled
}

func (o *SalesOrder) requireAllShipped(target SalesOrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewInvalidTransitionError(o.Status, target)
	}
	if len(o.LinesAwaitingShipment()) > 0 {
		return shared.NewValidationError("All lines must be shipped first")
	}
	return nil
}

func (o *SalesOrder) lineChangeError() error {
	return shared.NewDomainError(shared.CodeInvalidTransition,
		fmt.Sprintf("Cannot modify lines of order in %s status", o.Status))
}
