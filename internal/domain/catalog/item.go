package catalog

import (
	"strings"

	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a SKU-identified product. The SKU is fixed once the item exists.
type Item struct {
	shared.BaseAggregateRoot
	SKU          string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Description  string          `gorm:"type:text"`
	Unit         string          `gorm:"type:varchar(20);not null;default:'pcs'"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid;index"`
	VendorID     *uuid.UUID      `gorm:"type:uuid;index"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReorderLevel decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive     bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new active item
func NewItem(sku, name, unit string, costPrice, sellingPrice decimal.Decimal) (*Item, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("Item name cannot be empty")
	}
	if unit == "" {
		unit = "pcs"
	}
	if costPrice.IsNegative() || sellingPrice.IsNegative() {
		return nil, shared.NewValidationError("Prices cannot be negative")
	}

	return &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Unit:              unit,
		CostPrice:         costPrice,
		SellingPrice:      sellingPrice,
		ReorderLevel:      decimal.Zero,
		IsActive:          true,
	}, nil
}

// ChangeSKU always fails once the item has been created
func (i *Item) ChangeSKU(sku string) error {
	if strings.EqualFold(sku, i.SKU) {
		return nil
	}
	return shared.NewValidationError("SKU cannot be changed after the item is created")
}

// UpdatePricing sets cost and selling price
func (i *Item) UpdatePricing(costPrice, sellingPrice decimal.Decimal) error {
	if costPrice.IsNegative() || sellingPrice.IsNegative() {
		return shared.NewValidationError("Prices cannot be negative")
	}
	i.CostPrice = costPrice
	i.SellingPrice = sellingPrice
	i.Touch()
	i.IncrementVersion()
	return nil
}

// SetReorderLevel sets the quantity at which the item should be reordered
func (i *Item) SetReorderLevel(level decimal.Decimal) error {
	if level.IsNegative() {
		return shared.NewValidationError("Reorder level cannot be negative")
	}
	i.ReorderLevel = level
	i.Touch()
	i.IncrementVersion()
	return nil
}

// AssignCategory links the item to a category
func (i *Item) AssignCategory(categoryID uuid.UUID) {
	i.CategoryID = &categoryID
	i.Touch()
}

// AssignVendor links the item to its usual vendor
func (i *Item) AssignVendor(vendorID uuid.UUID) {
	i.VendorID = &vendorID
	i.Touch()
}

// Deactivate hides the item from new orders
func (i *Item) Deactivate() {
	i.IsActive = false
	i.Touch()
	i.IncrementVersion()
}

// ProfitMargin returns (selling - cost) / cost as a percentage, 0 when cost is 0
func (i *Item) ProfitMargin() decimal.Decimal {
	if i.CostPrice.IsZero() {
		return decimal.Zero
	}
	return i.SellingPrice.Sub(i.CostPrice).
		Div(i.CostPrice).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewValidationError("SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewValidationError("SKU cannot exceed 50 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewValidationError("SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}
