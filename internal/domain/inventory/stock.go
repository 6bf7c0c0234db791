package inventory

import (
	"time"

	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock tracks on-hand and reserved quantity of one item in one warehouse.
// AvailableQuantity is derived; every mutator recomputes it and nothing else writes it.
type Stock struct {
	shared.BaseAggregateRoot
	ItemID            uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_warehouse,priority:1"`
	WarehouseID       uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_warehouse,priority:2;index"`
	Quantity          decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQuantity  decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	AvailableQuantity decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	MinQuantity       decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	MaxQuantity       *decimal.Decimal `gorm:"type:decimal(18,4)"`
	AverageCost       decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	LastRestocked     *time.Time
}

// TableName returns the table name for GORM
func (Stock) TableName() string {
	return "stocks"
}

// NewStock creates an empty stock row for an item in a warehouse
func NewStock(itemID, warehouseID uuid.UUID) (*Stock, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("Item ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewValidationError("Warehouse ID cannot be empty")
	}
	s := &Stock{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ItemID:            itemID,
		WarehouseID:       warehouseID,
		Quantity:          decimal.Zero,
		ReservedQuantity:  decimal.Zero,
		MinQuantity:       decimal.Zero,
		AverageCost:       decimal.Zero,
	}
	s.recalculate()
	return s, nil
}

func (s *Stock) recalculate() {
	s.AvailableQuantity = decimal.Max(decimal.Zero, s.Quantity.Sub(s.ReservedQuantity))
}

// Adjust applies raw deltas to quantity and reserved quantity.
// Neither may end up negative.
func (s *Stock) Adjust(deltaQuantity, deltaReserved decimal.Decimal, reason string) error {
	newQty := s.Quantity.Add(deltaQuantity)
	newReserved := s.ReservedQuantity.Add(deltaReserved)
	if newQty.IsNegative() {
		return shared.NewValidationError("Adjustment would make quantity negative")
	}
	if newReserved.IsNegative() {
		return shared.NewValidationError("Adjustment would make reserved quantity negative")
	}

	s.Quantity = newQty
	s.ReservedQuantity = newReserved
	s.recalculate()
	s.Touch()

	s.AddDomainEvent(NewStockAdjustedEvent(s, deltaQuantity, deltaReserved, reason))
	return nil
}

// Reserve commits qty of the available quantity to an order
func (s *Stock) Reserve(qty decimal.Decimal) error {
	if err := requirePositive(qty); err != nil {
		return err
	}
	if qty.GreaterThan(s.AvailableQuantity) {
		return shared.NewInsufficientStockError(s.AvailableQuantity, qty)
	}

	s.ReservedQuantity = s.ReservedQuantity.Add(qty)
	s.recalculate()
	s.Touch()

	s.AddDomainEvent(NewStockReservedEvent(s, qty))
	return nil
}

// Release gives back up to qty of reserved quantity; reserved is floored at zero.
// It returns the quantity actually released.
func (s *Stock) Release(qty decimal.Decimal) (decimal.Decimal, error) {
	if err := requirePositive(qty); err != nil {
		return decimal.Zero, err
	}
	released := decimal.Min(qty, s.ReservedQuantity)
	s.ReservedQuantity = s.ReservedQuantity.Sub(released)
	s.recalculate()
	s.Touch()

	if released.IsPositive() {
		s.AddDomainEvent(NewStockReleasedEvent(s, released))
	}
	return released, nil
}

// ReduceOnFulfillment removes qty physically: reserved first, then on-hand, each floored at zero
func (s *Stock) ReduceOnFulfillment(qty decimal.Decimal) error {
	if err := requirePositive(qty); err != nil {
		return err
	}

	s.ReservedQuantity = decimal.Max(decimal.Zero, s.ReservedQuantity.Sub(qty))
	s.Quantity = decimal.Max(decimal.Zero, s.Quantity.Sub(qty))
	s.recalculate()
	s.Touch()

	s.AddDomainEvent(NewStockReducedEvent(s, qty))
	return nil
}

// Receive books incoming goods at unitCost using weighted average costing
func (s *Stock) Receive(qty, unitCost decimal.Decimal) error {
	if err := requirePositive(qty); err != nil {
		return err
	}
	if unitCost.IsNegative() {
		return shared.NewValidationError("Unit cost cannot be negative")
	}

	oldCost := s.AverageCost
	if s.Quantity.IsPositive() {
		totalValue := s.Quantity.Mul(s.AverageCost).Add(qty.Mul(unitCost))
		s.AverageCost = totalValue.Div(s.Quantity.Add(qty)).Round(4)
	} else {
		s.AverageCost = unitCost.Round(4)
	}

	now := time.Now()
	s.Quantity = s.Quantity.Add(qty)
	s.LastRestocked = &now
	s.recalculate()
	s.Touch()

	s.AddDomainEvent(NewStockReceivedEvent(s, qty, unitCost, oldCost))
	return nil
}

// SetThresholds sets the minimum and optional maximum quantity
func (s *Stock) SetThresholds(minQty decimal.Decimal, maxQty *decimal.Decimal) error {
	if minQty.IsNegative() {
		return shared.NewValidationError("Minimum quantity cannot be negative")
	}
	if maxQty != nil {
		if maxQty.IsNegative() {
			return shared.NewValidationError("Maximum quantity cannot be negative")
		}
		if maxQty.LessThan(minQty) {
			return shared.NewValidationError("Maximum quantity cannot be less than minimum quantity")
		}
	}
	s.MinQuantity = minQty
	s.MaxQuantity = maxQty
	s.Touch()
	return nil
}

// IsLowStock reports whether quantity is at or below the minimum
func (s *Stock) IsLowStock() bool {
	return s.Quantity.LessThanOrEqual(s.MinQuantity)
}

// IsOutOfStock reports whether nothing is on hand
func (s *Stock) IsOutOfStock() bool {
	return s.Quantity.IsZero()
}

// IsAboveMaximum reports whether quantity exceeds the configured maximum
func (s *Stock) IsAboveMaximum() bool {
	return s.MaxQuantity != nil && s.Quantity.GreaterThan(*s.MaxQuantity)
}

// CanFulfill reports whether qty can be served from available quantity
func (s *Stock) CanFulfill(qty decimal.Decimal) bool {
	return s.AvailableQuantity.GreaterThanOrEqual(qty)
}

// TotalValue returns quantity valued at average cost
func (s *Stock) TotalValue() decimal.Decimal {
	return s.Quantity.Mul(s.AverageCost).Round(4)
}

func requirePositive(qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return shared.NewValidationError("Quantity must be positive")
	}
	return nil
}
