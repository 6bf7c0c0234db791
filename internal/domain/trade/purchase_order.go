package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "PENDING"
	PurchaseOrderStatusPartial   PurchaseOrderStatus = "PARTIAL"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "RECEIVED"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusPartial,
		PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusPending:
		return target == PurchaseOrderStatusPartial ||
			target == PurchaseOrderStatusReceived ||
			target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusPartial:
		return target == PurchaseOrderStatusPartial ||
			target == PurchaseOrderStatusReceived ||
			target == PurchaseOrderStatusCancelled
	}
	return false // RECEIVED and CANCELLED are terminal
}

// CanReceive returns true if receiving goods is allowed in this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusPending || s == PurchaseOrderStatusPartial
}

// PurchaseItem is one line of a purchase order
type PurchaseItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	FreightCost       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CustomsDuty       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OtherCosts        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LineTotal         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LandedCostPerUnit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalLandedCost   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReceivedQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	// AppliedQuantity is how much of ReceivedQuantity has been booked into stock
	AppliedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// NewPurchaseItem creates a purchase line with its landed cost computed
func NewPurchaseItem(orderID, itemID uuid.UUID, quantity, unitCost decimal.Decimal, costs AdditionalCosts) (*PurchaseItem, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("Item ID cannot be empty")
	}
	if err := validatePurchaseLine(quantity, unitCost, costs); err != nil {
		return nil, err
	}

	now := time.Now()
	line := &PurchaseItem{
		ID:               uuid.New(),
		OrderID:          orderID,
		ItemID:           itemID,
		Quantity:         quantity,
		UnitCost:         unitCost,
		FreightCost:      costs.Freight,
		CustomsDuty:      costs.CustomsDuty,
		OtherCosts:       costs.Other,
		ReceivedQuantity: decimal.Zero,
		AppliedQuantity:  decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	line.Recalculate()
	return line, nil
}

func validatePurchaseLine(quantity, unitCost decimal.Decimal, costs AdditionalCosts) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewValidationError("Unit cost cannot be negative")
	}
	if costs.IsNegative() {
		return shared.NewValidationError("Additional costs cannot be negative")
	}
	return nil
}

// Costs returns the line's additional costs
func (i *PurchaseItem) Costs() AdditionalCosts {
	return AdditionalCosts{Freight: i.FreightCost, CustomsDuty: i.CustomsDuty, Other: i.OtherCosts}
}

// Recalculate refreshes the derived cost fields
func (i *PurchaseItem) Recalculate() {
	lc := CalculateLandedCost(i.Quantity, i.UnitCost, i.Costs())
	i.LineTotal = lc.LineTotal
	i.LandedCostPerUnit = lc.PerUnit
	i.TotalLandedCost = lc.Total
}

// PendingQuantity is the quantity still to be received
func (i *PurchaseItem) PendingQuantity() decimal.Decimal {
	return decimal.Max(decimal.Zero, i.Quantity.Sub(i.ReceivedQuantity))
}

// IsFullyReceived reports whether everything ordered has arrived
func (i *PurchaseItem) IsFullyReceived() bool {
	return i.ReceivedQuantity.GreaterThanOrEqual(i.Quantity)
}

// UnappliedQuantity is the received quantity not yet booked into stock
func (i *PurchaseItem) UnappliedQuantity() decimal.Decimal {
	return decimal.Max(decimal.Zero, i.ReceivedQuantity.Sub(i.AppliedQuantity))
}

// CostBreakdown itemises how the landed cost was built
type CostBreakdown struct {
	UnitCost          decimal.Decimal `json:"unit_cost"`
	FreightCost       decimal.Decimal `json:"freight_cost"`
	CustomsDuty       decimal.Decimal `json:"customs_duty"`
	OtherCosts        decimal.Decimal `json:"other_costs"`
	AdditionalPerUnit decimal.Decimal `json:"additional_cost_per_unit"`
	LandedCostPerUnit decimal.Decimal `json:"landed_cost_per_unit"`
	LineTotal         decimal.Decimal `json:"line_total"`
	TotalLandedCost   decimal.Decimal `json:"total_landed_cost"`
}

// CostBreakdown returns the full cost composition of the line
func (i *PurchaseItem) CostBreakdown() CostBreakdown {
	lc := CalculateLandedCost(i.Quantity, i.UnitCost, i.Costs())
	return CostBreakdown{
		UnitCost:          i.UnitCost,
		FreightCost:       i.FreightCost,
		CustomsDuty:       i.CustomsDuty,
		OtherCosts:        i.OtherCosts,
		AdditionalPerUnit: lc.AdditionalPerUnit,
		LandedCostPerUnit: lc.PerUnit,
		LineTotal:         lc.LineTotal,
		TotalLandedCost:   lc.Total,
	}
}

// PurchaseOrder is the aggregate root for buying from a vendor
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber  string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	VendorID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	WarehouseID  *uuid.UUID          `gorm:"type:uuid;index"`
	OrderDate    time.Time           `gorm:"not null;index"`
	ExpectedDate *time.Time
	ReceivedDate *time.Time
	Status       PurchaseOrderStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	TotalAmount  decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Notes        string              `gorm:"type:text"`
	CancelledAt  *time.Time
	CancelReason string         `gorm:"type:varchar(500)"`
	Items        []PurchaseItem `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new PENDING purchase order
func NewPurchaseOrder(orderNumber string, vendorID uuid.UUID, orderDate time.Time) (*PurchaseOrder, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, shared.NewValidationError("Order number cannot be empty")
	}
	if vendorID == uuid.Nil {
		return nil, shared.NewValidationError("Vendor ID cannot be empty")
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	order := &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		VendorID:          vendorID,
		OrderDate:         orderDate,
		Status:            PurchaseOrderStatusPending,
		TotalAmount:       decimal.Zero,
		Items:             make([]PurchaseItem, 0),
	}
	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))
	return order, nil
}

// SetWarehouse sets the receiving warehouse
func (o *PurchaseOrder) SetWarehouse(warehouseID uuid.UUID) error {
	if !o.Status.CanReceive() {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot change warehouse of order in %s status", o.Status))
	}
	if warehouseID == uuid.Nil {
		return shared.NewValidationError("Warehouse ID cannot be empty")
	}
	o.WarehouseID = &warehouseID
	o.Touch()
	return nil
}

// AddItem appends a line; only allowed while PENDING
func (o *PurchaseOrder) AddItem(itemID uuid.UUID, quantity, unitCost decimal.Decimal, costs AdditionalCosts) (*PurchaseItem, error) {
	if err := o.requireEditable(); err != nil {
		return nil, err
	}
	line, err := NewPurchaseItem(o.ID, itemID, quantity, unitCost, costs)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *line)
	o.RecalculateTotal()
	return &o.Items[len(o.Items)-1], nil
}

// UpdateItem changes quantity and costs of a line; only allowed while PENDING
func (o *PurchaseOrder) UpdateItem(lineID uuid.UUID, quantity, unitCost decimal.Decimal, costs AdditionalCosts) error {
	if err := o.requireEditable(); err != nil {
		return err
	}
	line := o.GetItem(lineID)
	if line == nil {
		return shared.NewNotFoundError("purchase item", lineID)
	}
	if err := validatePurchaseLine(quantity, unitCost, costs); err != nil {
		return err
	}
	line.Quantity = quantity
	line.UnitCost = unitCost
	line.FreightCost = costs.Freight
	line.CustomsDuty = costs.CustomsDuty
	line.OtherCosts = costs.Other
	line.UpdatedAt = time.Now()
	line.Recalculate()
	o.RecalculateTotal()
	return nil
}

// RemoveItem drops a line; only allowed while PENDING
func (o *PurchaseOrder) RemoveItem(lineID uuid.UUID) error {
	if err := o.requireEditable(); err != nil {
		return err
	}
	for idx := range o.Items {
		if o.Items[idx].ID == lineID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.RecalculateTotal()
			return nil
		}
	}
	return shared.NewNotFoundError("purchase item", lineID)
}

// RecalculateTotal sets TotalAmount to the sum of line totals (not landed costs)
func (o *PurchaseOrder) RecalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for idx := range o.Items {
		o.Items[idx].Recalculate()
		total = total.Add(o.Items[idx].LineTotal)
	}
	o.TotalAmount = total
	o.Touch()
	return total
}

// RecordReceipt sets the absolute received quantity of a line and moves the
// order to PARTIAL or RECEIVED accordingly. Quantities already booked into
// stock cannot be taken back.
func (o *PurchaseOrder) RecordReceipt(lineID uuid.UUID, received decimal.Decimal) error {
	if !o.Status.CanReceive() {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot receive goods for order in %s status", o.Status))
	}
	line := o.GetItem(lineID)
	if line == nil {
		return shared.NewNotFoundError("purchase item", lineID)
	}
	if received.IsNegative() {
		return shared.NewValidationError("Received quantity cannot be negative")
	}
	if received.GreaterThan(line.Quantity) {
		return shared.NewValidationError(fmt.Sprintf(
			"Received quantity %s exceeds ordered quantity %s", received, line.Quantity))
	}
	if received.LessThan(line.AppliedQuantity) {
		return shared.NewValidationError(fmt.Sprintf(
			"Received quantity %s is below the %s already booked into stock", received, line.AppliedQuantity))
	}

	line.ReceivedQuantity = received
	line.UpdatedAt = time.Now()
	return o.updateReceiptStatus()
}

// ReceiveAll marks every line fully received and completes the order
func (o *PurchaseOrder) ReceiveAll() error {
	if !o.Status.CanReceive() {
		return shared.NewInvalidTransitionError(o.Status, PurchaseOrderStatusReceived)
	}
	if len(o.Items) == 0 {
		return shared.NewValidationError("Cannot receive an order without items")
	}
	now := time.Now()
	for idx := range o.Items {
		o.Items[idx].ReceivedQuantity = o.Items[idx].Quantity
		o.Items[idx].UpdatedAt = now
	}
	return o.updateReceiptStatus()
}

func (o *PurchaseOrder) updateReceiptStatus() error {
	target := o.Status
	switch {
	case len(o.Items) > 0 && o.isAllItemsReceived():
		target = PurchaseOrderStatusReceived
	case o.hasReceivedAnyGoods():
		target = PurchaseOrderStatusPartial
	}
	if target == o.Status {
		o.Touch()
		return nil
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewInvalidTransitionError(o.Status, target)
	}

	o.Status = target
	o.Touch()
	if target == PurchaseOrderStatusReceived {
		now := time.Now()
		receivedDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		o.ReceivedDate = &receivedDate
		o.AddDomainEvent(NewPurchaseOrderReceivedEvent(o))
	} else {
		o.AddDomainEvent(NewPurchaseOrderPartiallyReceivedEvent(o))
	}
	return nil
}

// LinesAwaitingStock returns lines whose received quantity is not yet fully booked
func (o *PurchaseOrder) LinesAwaitingStock() []*PurchaseItem {
	lines := make([]*PurchaseItem, 0)
	for idx := range o.Items {
		if o.Items[idx].UnappliedQuantity().IsPositive() {
			lines = append(lines, &o.Items[idx])
		}
	}
	return lines
}

// MarkApplied records that qty more of a line has been booked into stock
func (o *PurchaseOrder) MarkApplied(lineID uuid.UUID, qty decimal.Decimal) error {
	line := o.GetItem(lineID)
	if line == nil {
		return shared.NewNotFoundError("purchase item", lineID)
	}
	applied := line.AppliedQuantity.Add(qty)
	if applied.GreaterThan(line.ReceivedQuantity) {
		return shared.NewValidationError("Cannot book more than was received")
	}
	line.AppliedQuantity = applied
	line.UpdatedAt = time.Now()
	return nil
}

// Cancel moves the order to CANCELLED. Stock already booked stays booked.
func (o *PurchaseOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewInvalidTransitionError(o.Status, PurchaseOrderStatusCancelled)
	}
	now := time.Now()
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.Touch()
	o.AddDomainEvent(NewPurchaseOrderCancelledEvent(o, reason))
	return nil
}

// GetItem returns the line with the given ID, or nil
func (o *PurchaseOrder) GetItem(lineID uuid.UUID) *PurchaseItem {
	for idx := range o.Items {
		if o.Items[idx].ID == lineID {
			return &o.Items[idx]
		}
	}
	return nil
}

// IsTerminal returns true if the order can no longer change
func (o *PurchaseOrder) IsTerminal() bool {
	return o.Status == PurchaseOrderStatusReceived || o.Status == PurchaseOrderStatusCancelled
}

// ReceiveProgress returns received / ordered as a percentage
func (o *PurchaseOrder) ReceiveProgress() decimal.Decimal {
	ordered, received := decimal.Zero, decimal.Zero
	for _, line := range o.Items {
		ordered = ordered.Add(line.Quantity)
		received = received.Add(line.ReceivedQuantity)
	}
	if ordered.IsZero() {
		return decimal.Zero
	}
	return received.Div(ordered).Mul(decimal.NewFromInt(100)).Round(2)
}

func (o *PurchaseOrder) requireEditable() error {
	if o.Status != PurchaseOrderStatusPending {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot modify lines of order in %s status", o.Status))
	}
	return nil
}

func (o *PurchaseOrder) isAllItemsReceived() bool {
	for _, line := range o.Items {
		if !line.IsFullyReceived() {
			return false
		}
	}
	return true
}

func (o *PurchaseOrder) hasReceivedAnyGoods() bool {
	for _, line := range o.Items {
		if line.ReceivedQuantity.IsPositive() {
			return true
		}
	}
	return false
}
