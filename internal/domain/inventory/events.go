package inventory

import (
	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeStock      = "Stock"
	AggregateTypeStockAlert = "StockAlert"
)

// Event type constants
const (
	EventTypeStockReceived         = "StockReceived"
	EventTypeStockReserved         = "StockReserved"
	EventTypeStockReleased         = "StockReleased"
	EventTypeStockReduced          = "StockReduced"
	EventTypeStockAdjusted         = "StockAdjusted"
	EventTypeLowStockAlertRaised   = "LowStockAlertRaised"
	EventTypeLowStockAlertResolved = "LowStockAlertResolved"
)

// StockSnapshot is the post-mutation state carried by stock events
type StockSnapshot struct {
	ItemID            uuid.UUID       `json:"item_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
}

func snapshot(s *Stock) StockSnapshot {
	return StockSnapshot{
		ItemID:            s.ItemID,
		WarehouseID:       s.WarehouseID,
		Quantity:          s.Quantity,
		ReservedQuantity:  s.ReservedQuantity,
		AvailableQuantity: s.AvailableQuantity,
	}
}

// StockReceivedEvent is raised when goods are booked into stock
type StockReceivedEvent struct {
	shared.BaseDomainEvent
	StockSnapshot
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	OldAverageCost   decimal.Decimal `json:"old_average_cost"`
	NewAverageCost   decimal.Decimal `json:"new_average_cost"`
}

// NewStockReceivedEvent creates a new StockReceivedEvent
func NewStockReceivedEvent(s *Stock, qty, unitCost, oldCost decimal.Decimal) *StockReceivedEvent {
	return &StockReceivedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockReceived, AggregateTypeStock, s.ID),
		StockSnapshot:    snapshot(s),
		ReceivedQuantity: qty,
		UnitCost:         unitCost,
		OldAverageCost:   oldCost,
		NewAverageCost:   s.AverageCost,
	}
}

// StockReservedEvent is raised when quantity is reserved for an order
type StockReservedEvent struct {
	shared.BaseDomainEvent
	StockSnapshot
	Reserved decimal.Decimal `json:"reserved"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(s *Stock, qty decimal.Decimal) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeStock, s.ID),
		StockSnapshot:   snapshot(s),
		Reserved:        qty,
	}
}

// StockReleasedEvent is raised when a reservation is given back
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	StockSnapshot
	Released decimal.Decimal `json:"released"`
}

// NewStockReleasedEvent creates a new StockReleasedEvent
func NewStockReleasedEvent(s *Stock, qty decimal.Decimal) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReleased, AggregateTypeStock, s.ID),
		StockSnapshot:   snapshot(s),
		Released:        qty,
	}
}

// StockReducedEvent is raised when stock physically leaves a warehouse
type StockReducedEvent struct {
	shared.BaseDomainEvent
	StockSnapshot
	Reduced decimal.Decimal `json:"reduced"`
}

// NewStockReducedEvent creates a new StockReducedEvent
func NewStockReducedEvent(s *Stock, qty decimal.Decimal) *StockReducedEvent {
	return &StockReducedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReduced, AggregateTypeStock, s.ID),
		StockSnapshot:   snapshot(s),
		Reduced:         qty,
	}
}

// StockAdjustedEvent is raised on a manual adjustment
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	StockSnapshot
	DeltaQuantity decimal.Decimal `json:"delta_quantity"`
	DeltaReserved decimal.Decimal `json:"delta_reserved"`
	Reason        string          `json:"reason"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(s *Stock, deltaQty, deltaReserved decimal.Decimal, reason string) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeStock, s.ID),
		StockSnapshot:   snapshot(s),
		DeltaQuantity:   deltaQty,
		DeltaReserved:   deltaReserved,
		Reason:          reason,
	}
}

// LowStockAlertRaisedEvent is raised when a new PENDING alert is opened
type LowStockAlertRaisedEvent struct {
	shared.BaseDomainEvent
	AlertID         uuid.UUID       `json:"alert_id"`
	StockID         uuid.UUID       `json:"stock_id"`
	ItemID          uuid.UUID       `json:"item_id"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	MinQuantity     decimal.Decimal `json:"min_quantity"`
	Message         string          `json:"message"`
}

// NewLowStockAlertRaisedEvent creates a new LowStockAlertRaisedEvent
func NewLowStockAlertRaisedEvent(a *StockAlert) *LowStockAlertRaisedEvent {
	return &LowStockAlertRaisedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStockAlertRaised, AggregateTypeStockAlert, a.ID),
		AlertID:         a.ID,
		StockID:         a.StockID,
		ItemID:          a.ItemID,
		WarehouseID:     a.WarehouseID,
		CurrentQuantity: a.CurrentQuantity,
		MinQuantity:     a.MinQuantity,
		Message:         a.Message,
	}
}

// LowStockAlertResolvedEvent is raised when an alert is closed
type LowStockAlertResolvedEvent struct {
	shared.BaseDomainEvent
	AlertID     uuid.UUID `json:"alert_id"`
	StockID     uuid.UUID `json:"stock_id"`
	ItemID      uuid.UUID `json:"item_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
}

// NewLowStockAlertResolvedEvent creates a new LowStockAlertResolvedEvent
func NewLowStockAlertResolvedEvent(a *StockAlert) *LowStockAlertResolvedEvent {
	return &LowStockAlertResolvedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLowStockAlertResolved, AggregateTypeStockAlert, a.ID),
		AlertID:         a.ID,
		StockID:         a.StockID,
		ItemID:          a.ItemID,
		WarehouseID:     a.WarehouseID,
	}
}
