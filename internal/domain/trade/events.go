package trade

import (
	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypePurchaseOrder = "PurchaseOrder"
	AggregateTypeSalesOrder    = "SalesOrder"
)

// Event type constants
const (
	EventTypePurchaseOrderCreated           = "PurchaseOrderCreated"
	EventTypePurchaseOrderPartiallyReceived = "PurchaseOrderPartiallyReceived"
	EventTypePurchaseOrderReceived          = "PurchaseOrderReceived"
	EventTypePurchaseOrderCancelled         = "PurchaseOrderCancelled"
	EventTypeSalesOrderCreated              = "SalesOrderCreated"
	EventTypeSalesOrderStatusChanged        = "SalesOrderStatusChanged"
)

// PurchaseOrderCreatedEvent is raised when a purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	VendorID    uuid.UUID `json:"vendor_id"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(o *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		VendorID:        o.VendorID,
	}
}

// PurchaseOrderReceiptEvent carries the state of a purchase order receipt
type PurchaseOrderReceiptEvent struct {
	shared.BaseDomainEvent
	OrderNumber string              `json:"order_number"`
	VendorID    uuid.UUID           `json:"vendor_id"`
	Status      PurchaseOrderStatus `json:"status"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
}

// NewPurchaseOrderReceivedEvent is raised when every line has been received
func NewPurchaseOrderReceivedEvent(o *PurchaseOrder) *PurchaseOrderReceiptEvent {
	return newReceiptEvent(EventTypePurchaseOrderReceived, o)
}

// NewPurchaseOrderPartiallyReceivedEvent is raised when some lines are still pending
func NewPurchaseOrderPartiallyReceivedEvent(o *PurchaseOrder) *PurchaseOrderReceiptEvent {
	return newReceiptEvent(EventTypePurchaseOrderPartiallyReceived, o)
}

func newReceiptEvent(eventType string, o *PurchaseOrder) *PurchaseOrderReceiptEvent {
	return &PurchaseOrderReceiptEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypePurchaseOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		VendorID:        o.VendorID,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
	}
}

// PurchaseOrderCancelledEvent is raised when a purchase order is cancelled
type PurchaseOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"`
}

// NewPurchaseOrderCancelledEvent creates a new PurchaseOrderCancelledEvent
func NewPurchaseOrderCancelledEvent(o *PurchaseOrder, reason string) *PurchaseOrderCancelledEvent {
	return &PurchaseOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCancelled, AggregateTypePurchaseOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		Reason:          reason,
	}
}

// SalesOrderCreatedEvent is raised when a sales order is created
type SalesOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string    `json:"order_number"`
	ClientID    uuid.UUID `json:"client_id"`
}

// NewSalesOrderCreatedEvent creates a new SalesOrderCreatedEvent
func NewSalesOrderCreatedEvent(o *SalesOrder) *SalesOrderCreatedEvent {
	return &SalesOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCreated, AggregateTypeSalesOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		ClientID:        o.ClientID,
	}
}

// SalesOrderStatusChangedEvent is raised on every sales order transition
type SalesOrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderNumber string           `json:"order_number"`
	From        SalesOrderStatus `json:"from"`
	To          SalesOrderStatus `json:"to"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
}

// NewSalesOrderStatusChangedEvent creates a new SalesOrderStatusChangedEvent
func NewSalesOrderStatusChangedEvent(o *SalesOrder, from SalesOrderStatus) *SalesOrderStatusChangedEvent {
	return &SalesOrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderStatusChanged, AggregateTypeSalesOrder, o.ID),
		OrderNumber:     o.OrderNumber,
		From:            from,
		To:              o.Status,
		TotalAmount:     o.TotalAmount,
	}
}
