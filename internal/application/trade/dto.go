package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/stockledger/internal/domain/trade"
)

// PurchaseLineInput is one line of a purchase order
type PurchaseLineInput struct {
	ItemID      uuid.UUID
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	FreightCost decimal.Decimal
	CustomsDuty decimal.Decimal
	OtherCosts  decimal.Decimal
}

// Costs returns the line's additional costs
func (in PurchaseLineInput) Costs() trade.AdditionalCosts {
	return trade.AdditionalCosts{Freight: in.FreightCost, CustomsDuty: in.CustomsDuty, Other: in.OtherCosts}
}

// CreatePurchaseOrderInput creates a PENDING purchase order
type CreatePurchaseOrderInput struct {
	OrderNumber  string
	VendorID     uuid.UUID
	WarehouseID  *uuid.UUID
	OrderDate    time.Time
	ExpectedDate *time.Time
	Notes        string
	Items        []PurchaseLineInput
}

// LineReceipt sets the absolute received quantity of a purchase line
type LineReceipt struct {
	ItemLineID       uuid.UUID
	ReceivedQuantity decimal.Decimal
}

// SalesLineInput is one line of a sales order
type SalesLineInput struct {
	ItemID             uuid.UUID
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal
	DiscountPercentage decimal.Decimal
}

// CreateSalesOrderInput creates a PENDING sales order and reserves its lines
type CreateSalesOrderInput struct {
	OrderNumber    string
	ClientID       uuid.UUID
	WarehouseID    *uuid.UUID
	OrderDate      time.Time
	DiscountAmount decimal.Decimal
	Notes          string
	Items          []SalesLineInput
}

// PurchaseItemResponse represents a purchase line in API responses
type PurchaseItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	ItemID            uuid.UUID       `json:"item_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	FreightCost       decimal.Decimal `json:"freight_cost"`
	CustomsDuty       decimal.Decimal `json:"customs_duty"`
	OtherCosts        decimal.Decimal `json:"other_costs"`
	LineTotal         decimal.Decimal `json:"line_total"`
	LandedCostPerUnit decimal.Decimal `json:"landed_cost_per_unit"`
	TotalLandedCost   decimal.Decimal `json:"total_landed_cost"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	AppliedQuantity   decimal.Decimal `json:"applied_quantity"`
	PendingQuantity   decimal.Decimal `json:"pending_quantity"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID           uuid.UUID              `json:"id"`
	OrderNumber  string                 `json:"order_number"`
	VendorID     uuid.UUID              `json:"vendor_id"`
	WarehouseID  *uuid.UUID             `json:"warehouse_id,omitempty"`
	OrderDate    time.Time              `json:"order_date"`
	ExpectedDate *time.Time             `json:"expected_date,omitempty"`
	ReceivedDate *time.Time             `json:"received_date,omitempty"`
	Status       string                 `json:"status"`
	TotalAmount  decimal.Decimal        `json:"total_amount"`
	Notes        string                 `json:"notes,omitempty"`
	CancelReason string                 `json:"cancel_reason,omitempty"`
	Items        []PurchaseItemResponse `json:"items"`
	Version      int                    `json:"version"`
}

// ToPurchaseOrderResponse converts a domain PurchaseOrder to a response
func ToPurchaseOrderResponse(o *trade.PurchaseOrder) PurchaseOrderResponse {
	items := make([]PurchaseItemResponse, len(o.Items))
	for i := range o.Items {
		line := &o.Items[i]
		items[i] = PurchaseItemResponse{
			ID:                line.ID,
			ItemID:            line.ItemID,
			Quantity:          line.Quantity,
			UnitCost:          line.UnitCost,
			FreightCost:       line.FreightCost,
			CustomsDuty:       line.CustomsDuty,
			OtherCosts:        line.OtherCosts,
			LineTotal:         line.LineTotal,
			LandedCostPerUnit: line.LandedCostPerUnit,
			TotalLandedCost:   line.TotalLandedCost,
			ReceivedQuantity:  line.ReceivedQuantity,
			AppliedQuantity:   line.AppliedQuantity,
			PendingQuantity:   line.PendingQuantity(),
		}
	}
	return PurchaseOrderResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		VendorID:     o.VendorID,
		WarehouseID:  o.WarehouseID,
		OrderDate:    o.OrderDate,
		ExpectedDate: o.ExpectedDate,
		ReceivedDate: o.ReceivedDate,
		Status:       string(o.Status),
		TotalAmount:  o.TotalAmount,
		Notes:        o.Notes,
		CancelReason: o.CancelReason,
		Items:        items,
		Version:      o.Version,
	}
}

// SalesItemResponse represents a sales line in API responses
type SalesItemResponse struct {
	ID                  uuid.UUID       `json:"id"`
	ItemID              uuid.UUID       `json:"item_id"`
	Quantity            decimal.Decimal `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	DiscountPercentage  decimal.Decimal `json:"discount_percentage"`
	LineTotal           decimal.Decimal `json:"line_total"`
	ShippedQuantity     decimal.Decimal `json:"shipped_quantity"`
	ReservedWarehouseID *uuid.UUID      `json:"reserved_warehouse_id,omitempty"`
	ReservedQuantity    decimal.Decimal `json:"reserved_quantity"`
}

// SalesOrderResponse represents a sales order in API responses
type SalesOrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	OrderNumber    string              `json:"order_number"`
	ClientID       uuid.UUID           `json:"client_id"`
	WarehouseID    *uuid.UUID          `json:"warehouse_id,omitempty"`
	OrderDate      time.Time           `json:"order_date"`
	DeliveryDate   *time.Time          `json:"delivery_date,omitempty"`
	Status         string              `json:"status"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	Notes          string              `json:"notes,omitempty"`
	ConfirmedAt    *time.Time          `json:"confirmed_at,omitempty"`
	ShippedAt      *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt    *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt    *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason   string              `json:"cancel_reason,omitempty"`
	Items          []SalesItemResponse `json:"items"`
	Version        int                 `json:"version"`
}

// ToSalesOrderResponse converts a domain SalesOrder to a response
func ToSalesOrderResponse(o *trade.SalesOrder) SalesOrderResponse {
	items := make([]SalesItemResponse, len(o.Items))
	for i := range o.Items {
		line := &o.Items[i]
		items[i] = SalesItemResponse{
			ID:                  line.ID,
			ItemID:              line.ItemID,
			Quantity:            line.Quantity,
			UnitPrice:           line.UnitPrice,
			DiscountPercentage:  line.DiscountPercentage,
			LineTotal:           line.LineTotal,
			ShippedQuantity:     line.ShippedQuantity,
			ReservedWarehouseID: line.ReservedWarehouseID,
			ReservedQuantity:    line.ReservedQuantity,
		}
	}
	return SalesOrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		ClientID:       o.ClientID,
		WarehouseID:    o.WarehouseID,
		OrderDate:      o.OrderDate,
		DeliveryDate:   o.DeliveryDate,
		Status:         string(o.Status),
		DiscountAmount: o.DiscountAmount,
		TotalAmount:    o.TotalAmount,
		Notes:          o.Notes,
		ConfirmedAt:    o.ConfirmedAt,
		ShippedAt:      o.ShippedAt,
		DeliveredAt:    o.DeliveredAt,
		CancelledAt:    o.CancelledAt,
		CancelReason:   o.CancelReason,
		Items:          items,
		Version:        o.Version,
	}
}
