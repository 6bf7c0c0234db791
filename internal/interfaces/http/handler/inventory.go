package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appinv "github.com/erp/stockledger/internal/application/inventory"
	"github.com/erp/stockledger/internal/domain/inventory"
)

// AdjustStockRequest is the body of POST /stock/adjust
type AdjustStockRequest struct {
	ItemID        uuid.UUID       `json:"item_id" binding:"required"`
	WarehouseID   uuid.UUID       `json:"warehouse_id" binding:"required"`
	DeltaQuantity decimal.Decimal `json:"delta_quantity"`
	DeltaReserved decimal.Decimal `json:"delta_reserved"`
	Reason        string          `json:"reason" binding:"required,max=255"`
}

// ReceiveStockRequest is the body of POST /stock/receive
type ReceiveStockRequest struct {
	ItemID      uuid.UUID       `json:"item_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"gt=0"`
	UnitCost    decimal.Decimal `json:"unit_cost" binding:"gte=0"`
}

// SetThresholdsRequest is the body of PUT /stock/thresholds
type SetThresholdsRequest struct {
	ItemID      uuid.UUID        `json:"item_id" binding:"required"`
	WarehouseID uuid.UUID        `json:"warehouse_id" binding:"required"`
	MinQuantity decimal.Decimal  `json:"min_quantity" binding:"gte=0"`
	MaxQuantity *decimal.Decimal `json:"max_quantity"`
}

// InventoryHandler serves stock levels and low stock alerts
type InventoryHandler struct {
	BaseHandler
	ledger *appinv.StockLedger
	alerts *appinv.AlertMonitor
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledger *appinv.StockLedger, alerts *appinv.AlertMonitor) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, alerts: alerts}
}

// GetStock handles GET /stock?item_id&warehouse_id.
// Without warehouse_id it lists the item's stock in every warehouse.
func (h *InventoryHandler) GetStock(c *gin.Context) {
	itemID, ok := h.QueryUUID(c, "item_id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if c.Query("warehouse_id") == "" {
		stocks, err := h.ledger.ListByItem(ctx, itemID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.SuccessWithMeta(c, appinv.ToStockResponses(stocks), len(stocks))
		return
	}
	warehouseID, ok := h.QueryUUID(c, "warehouse_id")
	if !ok {
		return
	}
	stock, err := h.ledger.GetStock(ctx, itemID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appinv.ToStockResponse(stock))
}

// ListLowStock handles GET /stock/low
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	stocks, err := h.ledger.ListLowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, appinv.ToStockResponses(stocks), len(stocks))
}

// AdjustStock handles POST /stock/adjust
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	stock, err := h.ledger.Adjust(c.Request.Context(), appinv.AdjustStockInput{
		ItemID:        req.ItemID,
		WarehouseID:   req.WarehouseID,
		DeltaQuantity: req.DeltaQuantity,
		DeltaReserved: req.DeltaReserved,
		Reason:        req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appinv.ToStockResponse(stock))
}

// ReceiveStock handles POST /stock/receive
func (h *InventoryHandler) ReceiveStock(c *gin.Context) {
	var req ReceiveStockRequest
	if !h.BindJSON(c, &req) {
		return
	}
	stock, err := h.ledger.Receive(c.Request.Context(), appinv.ReceiveStockInput{
		ItemID:      req.ItemID,
		WarehouseID: req.WarehouseID,
		Quantity:    req.Quantity,
		UnitCost:    req.UnitCost,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appinv.ToStockResponse(stock))
}

// SetThresholds handles PUT /stock/thresholds
func (h *InventoryHandler) SetThresholds(c *gin.Context) {
	var req SetThresholdsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	stock, err := h.ledger.SetThresholds(c.Request.Context(), appinv.SetThresholdsInput{
		ItemID:      req.ItemID,
		WarehouseID: req.WarehouseID,
		MinQuantity: req.MinQuantity,
		MaxQuantity: req.MaxQuantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appinv.ToStockResponse(stock))
}

// ListAlerts handles GET /alerts?status
func (h *InventoryHandler) ListAlerts(c *gin.Context) {
	var statuses []inventory.AlertStatus
	for _, s := range c.QueryArray("status") {
		statuses = append(statuses, inventory.AlertStatus(s))
	}
	alerts, err := h.alerts.ListAlerts(c.Request.Context(), statuses...)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]appinv.StockAlertResponse, len(alerts))
	for i := range alerts {
		out[i] = appinv.ToStockAlertResponse(&alerts[i])
	}
	h.SuccessWithMeta(c, out, len(out))
}

// AcknowledgeAlert handles POST /alerts/:id/acknowledge
func (h *InventoryHandler) AcknowledgeAlert(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	alert, err := h.alerts.Acknowledge(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appinv.ToStockAlertResponse(alert))
}

// ResolveAlert handles POST /alerts/:id/resolve
func (h *InventoryHandler) ResolveAlert(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	alert, err := h.alerts.Resolve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appinv.ToStockAlertResponse(alert))
}

// ReconcileAlerts handles POST /alerts/reconcile
func (h *InventoryHandler) ReconcileAlerts(c *gin.Context) {
	resolved, err := h.alerts.Reconcile(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"resolved": resolved})
}
