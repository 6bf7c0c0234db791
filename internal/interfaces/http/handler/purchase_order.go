package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apptrade "github.com/erp/stockledger/internal/application/trade"
)

// PurchaseLineRequest is one purchase order line
type PurchaseLineRequest struct {
	ItemID      uuid.UUID       `json:"item_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"gt=0"`
	UnitCost    decimal.Decimal `json:"unit_cost" binding:"gte=0"`
	FreightCost decimal.Decimal `json:"freight_cost" binding:"gte=0"`
	CustomsDuty decimal.Decimal `json:"customs_duty" binding:"gte=0"`
	OtherCosts  decimal.Decimal `json:"other_costs" binding:"gte=0"`
}

func (r PurchaseLineRequest) input() apptrade.PurchaseLineInput {
	return apptrade.PurchaseLineInput{
		ItemID:      r.ItemID,
		Quantity:    r.Quantity,
		UnitCost:    r.UnitCost,
		FreightCost: r.FreightCost,
		CustomsDuty: r.CustomsDuty,
		OtherCosts:  r.OtherCosts,
	}
}

// CreatePurchaseOrderRequest is the body of POST /purchase-orders
type CreatePurchaseOrderRequest struct {
	OrderNumber  string                `json:"order_number" binding:"required,max=50"`
	VendorID     uuid.UUID             `json:"vendor_id" binding:"required"`
	WarehouseID  *uuid.UUID            `json:"warehouse_id"`
	OrderDate    string                `json:"order_date"`
	ExpectedDate string                `json:"expected_date"`
	Notes        string                `json:"notes"`
	Items        []PurchaseLineRequest `json:"items" binding:"required,min=1,dive"`
}

// RecordReceiptRequest is the body of POST /purchase-orders/:id/receipts
type RecordReceiptRequest struct {
	Lines []struct {
		ItemLineID       uuid.UUID       `json:"item_line_id" binding:"required"`
		ReceivedQuantity decimal.Decimal `json:"received_quantity" binding:"gte=0"`
	} `json:"lines" binding:"required,min=1,dive"`
}

// CancelRequest is the optional body of the cancel endpoints
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// PurchaseOrderHandler serves purchase orders
type PurchaseOrderHandler struct {
	BaseHandler
	purchases *apptrade.PurchaseService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(purchases *apptrade.PurchaseService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{purchases: purchases}
}

// Create handles POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	orderDate, err := dateOrToday(req.OrderDate)
	if err != nil {
		h.BadRequest(c, "order_date must be a date in YYYY-MM-DD format")
		return
	}
	input := apptrade.CreatePurchaseOrderInput{
		OrderNumber: req.OrderNumber,
		VendorID:    req.VendorID,
		WarehouseID: req.WarehouseID,
		OrderDate:   orderDate,
		Notes:       req.Notes,
	}
	if req.ExpectedDate != "" {
		expected, err := dateOrToday(req.ExpectedDate)
		if err != nil {
			h.BadRequest(c, "expected_date must be a date in YYYY-MM-DD format")
			return
		}
		input.ExpectedDate = &expected
	}
	for _, line := range req.Items {
		input.Items = append(input.Items, line.input())
	}

	order, err := h.purchases.CreatePurchaseOrder(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, apptrade.ToPurchaseOrderResponse(order))
}

// Get handles GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.purchases.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptrade.ToPurchaseOrderResponse(order))
}

// AddItem handles POST /purchase-orders/:id/items
func (h *PurchaseOrderHandler) AddItem(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req PurchaseLineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.purchases.AddItem(c.Request.Context(), id, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptrade.ToPurchaseOrderResponse(order))
}

// Receive handles POST /purchase-orders/:id/receive
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.purchases.ReceivePurchaseOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptrade.ToPurchaseOrderResponse(order))
}

// RecordReceipt handles POST /purchase-orders/:id/receipts
func (h *PurchaseOrderHandler) RecordReceipt(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req RecordReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}
	receipts := make([]apptrade.LineReceipt, len(req.Lines))
	for i, line := range req.Lines {
		receipts[i] = apptrade.LineReceipt{ItemLineID: line.ItemLineID, ReceivedQuantity: line.ReceivedQuantity}
	}
	order, err := h.purchases.RecordReceipt(c.Request.Context(), id, receipts)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptrade.ToPurchaseOrderResponse(order))
}

// Cancel handles POST /purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req CancelRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}
	order, err := h.purchases.CancelPurchaseOrder(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptrade.ToPurchaseOrderResponse(order))
}

// Recalculate handles POST /purchase-orders/:id/recalculate
func (h *PurchaseOrderHandler) Recalculate(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	total, err := h.purchases.RecalculatePurchaseTotal(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"total_amount": total})
}

// UpdateItem handles PUT /purchase-orders/:id/items/:line_id
func (h *PurchaseOrderHandler) UpdateItem(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParamUUID(c, "line_id")
	if !ok {
		return
	}
	var req PurchaseLineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.purchases.UpdateItem(c.Request.Context(), id, lineID, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptrade.ToPurchaseOrderResponse(order))
}

// RemoveItem handles DELETE /purchase-orders/:id/items/:line_id
func (h *PurchaseOrderHandler) RemoveItem(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParamUUID(c, "line_id")
	if !ok {
		return
	}
	order, err := h.purchases.RemoveItem(c.Request.Context(), id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptrade.ToPurchaseOrderResponse(order))
}
