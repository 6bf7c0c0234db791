package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appcat "github.com/erp/stockledger/internal/application/catalog"
)

// CreateItemRequest is the body of POST /items
type CreateItemRequest struct {
	SKU          string          `json:"sku" binding:"required,max=50"`
	Name         string          `json:"name" binding:"required,max=200"`
	Description  string          `json:"description"`
	Unit         string          `json:"unit" binding:"required,max=20"`
	CategoryID   *uuid.UUID      `json:"category_id"`
	VendorID     *uuid.UUID      `json:"vendor_id"`
	CostPrice    decimal.Decimal `json:"cost_price" binding:"gte=0"`
	SellingPrice decimal.Decimal `json:"selling_price" binding:"gte=0"`
	ReorderLevel decimal.Decimal `json:"reorder_level" binding:"gte=0"`
}

// CreateCategoryRequest is the body of POST /categories
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// CatalogHandler serves items and categories
type CatalogHandler struct {
	BaseHandler
	items *appcat.ItemService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(items *appcat.ItemService) *CatalogHandler {
	return &CatalogHandler{items: items}
}

// CreateItem handles POST /items
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.items.CreateItem(c.Request.Context(), appcat.CreateItemInput{
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		Unit:         req.Unit,
		CategoryID:   req.CategoryID,
		VendorID:     req.VendorID,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		ReorderLevel: req.ReorderLevel,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, appcat.ToItemResponse(item))
}

// GetItem handles GET /items/:id
func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	item, err := h.items.GetItem(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appcat.ToItemResponse(item))
}

// ListItems handles GET /items
func (h *CatalogHandler) ListItems(c *gin.Context) {
	items, err := h.items.ListItems(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]appcat.ItemResponse, len(items))
	for i := range items {
		out[i] = appcat.ToItemResponse(&items[i])
	}
	h.SuccessWithMeta(c, out, len(out))
}

// CreateCategory handles POST /categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	category, err := h.items.CreateCategory(c.Request.Context(), appcat.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, appcat.ToCategoryResponse(category))
}

// ListCategories handles GET /categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.items.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]appcat.CategoryResponse, len(categories))
	for i := range categories {
		out[i] = appcat.ToCategoryResponse(&categories[i])
	}
	h.SuccessWithMeta(c, out, len(out))
}
