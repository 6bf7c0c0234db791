package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/stockledger/internal/domain/catalog"
)

// CreateItemInput creates a catalog item
type CreateItemInput struct {
	SKU          string
	Name         string
	Description  string
	Unit         string
	CategoryID   *uuid.UUID
	VendorID     *uuid.UUID
	CostPrice    decimal.Decimal
	SellingPrice decimal.Decimal
	ReorderLevel decimal.Decimal
}

// CreateCategoryInput creates a category
type CreateCategoryInput struct {
	Name        string
	Description string
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Unit         string          `json:"unit"`
	CategoryID   *uuid.UUID      `json:"category_id,omitempty"`
	VendorID     *uuid.UUID      `json:"vendor_id,omitempty"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToItemResponse converts a domain Item to a response
func ToItemResponse(i *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:           i.ID,
		SKU:          i.SKU,
		Name:         i.Name,
		Description:  i.Description,
		Unit:         i.Unit,
		CategoryID:   i.CategoryID,
		VendorID:     i.VendorID,
		CostPrice:    i.CostPrice,
		SellingPrice: i.SellingPrice,
		ProfitMargin: i.ProfitMargin(),
		ReorderLevel: i.ReorderLevel,
		IsActive:     i.IsActive,
		CreatedAt:    i.CreatedAt,
	}
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// ToCategoryResponse converts a domain Category to a response
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}
