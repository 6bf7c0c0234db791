package catalog

import (
	"strings"

	"github.com/erp/stockledger/internal/domain/shared"
)

// Category groups items in the catalog
type Category struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new category
func NewCategory(name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Category name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewValidationError("Category name cannot exceed 100 characters")
	}
	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
	}, nil
}
