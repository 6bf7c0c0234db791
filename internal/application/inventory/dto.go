package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/stockledger/internal/domain/inventory"
)

// AdjustStockInput applies raw deltas to a stock row
type AdjustStockInput struct {
	ItemID        uuid.UUID
	WarehouseID   uuid.UUID
	DeltaQuantity decimal.Decimal
	DeltaReserved decimal.Decimal
	Reason        string
}

// ReceiveStockInput books incoming goods at a unit cost
type ReceiveStockInput struct {
	ItemID      uuid.UUID
	WarehouseID uuid.UUID
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
}

// SetThresholdsInput sets the alerting bounds of a stock row
type SetThresholdsInput struct {
	ItemID      uuid.UUID
	WarehouseID uuid.UUID
	MinQuantity decimal.Decimal
	MaxQuantity *decimal.Decimal
}

// StockResponse represents a stock row in API responses
type StockResponse struct {
	ID                uuid.UUID        `json:"id"`
	ItemID            uuid.UUID        `json:"item_id"`
	WarehouseID       uuid.UUID        `json:"warehouse_id"`
	Quantity          decimal.Decimal  `json:"quantity"`
	ReservedQuantity  decimal.Decimal  `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal  `json:"available_quantity"`
	MinQuantity       decimal.Decimal  `json:"min_quantity"`
	MaxQuantity       *decimal.Decimal `json:"max_quantity,omitempty"`
	AverageCost       decimal.Decimal  `json:"average_cost"`
	TotalValue        decimal.Decimal  `json:"total_value"`
	IsLowStock        bool             `json:"is_low_stock"`
	IsOutOfStock      bool             `json:"is_out_of_stock"`
	IsAboveMaximum    bool             `json:"is_above_maximum"`
	LastRestocked     *time.Time       `json:"last_restocked,omitempty"`
	UpdatedAt         time.Time        `json:"updated_at"`
	Version           int              `json:"version"`
}

// ToStockResponse converts a domain Stock to a response
func ToStockResponse(s *inventory.Stock) StockResponse {
	return StockResponse{
		ID:                s.ID,
		ItemID:            s.ItemID,
		WarehouseID:       s.WarehouseID,
		Quantity:          s.Quantity,
		ReservedQuantity:  s.ReservedQuantity,
		AvailableQuantity: s.AvailableQuantity,
		MinQuantity:       s.MinQuantity,
		MaxQuantity:       s.MaxQuantity,
		AverageCost:       s.AverageCost,
		TotalValue:        s.TotalValue(),
		IsLowStock:        s.IsLowStock(),
		IsOutOfStock:      s.IsOutOfStock(),
		IsAboveMaximum:    s.IsAboveMaximum(),
		LastRestocked:     s.LastRestocked,
		UpdatedAt:         s.UpdatedAt,
		Version:           s.Version,
	}
}

// ToStockResponses converts a slice of stock rows
func ToStockResponses(stocks []inventory.Stock) []StockResponse {
	out := make([]StockResponse, len(stocks))
	for i := range stocks {
		out[i] = ToStockResponse(&stocks[i])
	}
	return out
}

// StockAlertResponse represents a stock alert in API responses
type StockAlertResponse struct {
	ID              uuid.UUID       `json:"id"`
	StockID         uuid.UUID       `json:"stock_id"`
	ItemID          uuid.UUID       `json:"item_id"`
	WarehouseID     uuid.UUID       `json:"warehouse_id"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	MinQuantity     decimal.Decimal `json:"min_quantity"`
	Status          string          `json:"status"`
	Message         string          `json:"message"`
	CreatedAt       time.Time       `json:"created_at"`
	AcknowledgedAt  *time.Time      `json:"acknowledged_at,omitempty"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
}

// ToStockAlertResponse converts a domain StockAlert to a response
func ToStockAlertResponse(a *inventory.StockAlert) StockAlertResponse {
	return StockAlertResponse{
		ID:              a.ID,
		StockID:         a.StockID,
		ItemID:          a.ItemID,
		WarehouseID:     a.WarehouseID,
		CurrentQuantity: a.CurrentQuantity,
		MinQuantity:     a.MinQuantity,
		Status:          string(a.Status),
		Message:         a.Message,
		CreatedAt:       a.CreatedAt,
		AcknowledgedAt:  a.AcknowledgedAt,
		ResolvedAt:      a.ResolvedAt,
	}
}
