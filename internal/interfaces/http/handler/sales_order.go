package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apptrade "github.com/erp/stockledger/internal/application/trade"
	"github.com/erp/stockledger/internal/domain/trade"
)

// SalesLineRequest is one sales order line
type SalesLineRequest struct {
	ItemID             uuid.UUID       `json:"item_id" binding:"required"`
	Quantity           decimal.Decimal `json:"quantity" binding:"gt=0"`
	UnitPrice          decimal.Decimal `json:"unit_price" binding:"gte=0"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" binding:"gte=0,lte=100"`
}

func (r SalesLineRequest) input() apptrade.SalesLineInput {
	return apptrade.SalesLineInput{
		ItemID:             r.ItemID,
		Quantity:           r.Quantity,
		UnitPrice:          r.UnitPrice,
		DiscountPercentage: r.DiscountPercentage,
	}
}

// CreateSalesOrderRequest is the body of POST /sales-orders
type CreateSalesOrderRequest struct {
	OrderNumber    string             `json:"order_number" binding:"required,max=50"`
	ClientID       uuid.UUID          `json:"client_id" binding:"required"`
	WarehouseID    *uuid.UUID         `json:"warehouse_id"`
	OrderDate      string             `json:"order_date"`
	DiscountAmount decimal.Decimal    `json:"discount_amount" binding:"gte=0"`
	Notes          string             `json:"notes"`
	Items          []SalesLineRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateQuantityRequest is the body of PUT /sales-orders/:id/items/:line_id
type UpdateQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"gt=0"`
}

// SalesOrderHandler serves sales orders
type SalesOrderHandler struct {
	BaseHandler
	sales *apptrade.SalesService
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(sales *apptrade.SalesService) *SalesOrderHandler {
	return &SalesOrderHandler{sales: sales}
}

// Create handles POST /sales-orders
func (h *SalesOrderHandler) Create(c *gin.Context) {
	var req CreateSalesOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	orderDate, err := dateOrToday(req.OrderDate)
	if err != nil {
		h.BadRequest(c, "order_date must be a date in YYYY-MM-DD format")
		return
	}
	input := apptrade.CreateSalesOrderInput{
		OrderNumber:    req.OrderNumber,
		ClientID:       req.ClientID,
		WarehouseID:    req.WarehouseID,
		OrderDate:      orderDate,
		DiscountAmount: req.DiscountAmount,
		Notes:          req.Notes,
	}
	for _, line := range req.Items {
		input.Items = append(input.Items, line.input())
	}

	order, err := h.sales.CreateSalesOrder(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, apptrade.ToSalesOrderResponse(order))
}

// Get handles GET /sales-orders/:id
func (h *SalesOrderHandler) Get(c *gin.Context) {
	h.transition(c, h.sales.GetSalesOrder)
}

// Confirm handles POST /sales-orders/:id/confirm
func (h *SalesOrderHandler) Confirm(c *gin.Context) {
	h.transition(c, h.sales.ConfirmSalesOrder)
}

// Ship handles POST /sales-orders/:id/ship
func (h *SalesOrderHandler) Ship(c *gin.Context) {
	h.transition(c, h.sales.ShipSalesOrder)
}

// Deliver handles POST /sales-orders/:id/deliver
func (h *SalesOrderHandler) Deliver(c *gin.Context) {
	h.transition(c, h.sales.DeliverSalesOrder)
}

// Cancel handles POST /sales-orders/:id/cancel
func (h *SalesOrderHandler) Cancel(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req CancelRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}
	order, err := h.sales.CancelSalesOrder(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptrade.ToSalesOrderResponse(order))
}

// UpdateItemQuantity handles PUT /sales-orders/:id/items/:line_id
func (h *SalesOrderHandler) UpdateItemQuantity(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParamUUID(c, "line_id")
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.sales.UpdateItemQuantity(c.Request.Context(), id, lineID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptrade.ToSalesOrderResponse(order))
}

// RemoveItem handles DELETE /sales-orders/:id/items/:line_id
func (h *SalesOrderHandler) RemoveItem(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParamUUID(c, "line_id")
	if !ok {
		return
	}
	order, err := h.sales.RemoveItem(c.Request.Context(), id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptrade.ToSalesOrderResponse(order))
}

func (h *SalesOrderHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error)) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	order, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptrade.ToSalesOrderResponse(order))
}

// AddItem handles POST /sales-orders/:id/items
func (h *SalesOrderHandler) AddItem(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req SalesLineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.sales.AddItem(c.Request.Context(), id, req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptrade.ToSalesOrderResponse(order))
}

// SetDiscountRequest is the body of PUT /sales-orders/:id/discount
type SetDiscountRequest struct {
	DiscountAmount decimal.Decimal `json:"discount_amount" binding:"gte=0"`
}

// SetDiscount handles PUT /sales-orders/:id/discount
func (h *SalesOrderHandler) SetDiscount(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req SetDiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.sales.SetDiscount(c.Request.Context(), id, req.DiscountAmount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, apptrade.ToSalesOrderResponse(order))
}
