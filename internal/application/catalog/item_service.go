package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/domain/catalog"
	"github.com/erp/stockledger/internal/domain/partner"
	"github.com/erp/stockledger/internal/domain/shared"
)

// ItemService manages the item catalog
type ItemService struct {
	items      catalog.ItemRepository
	categories catalog.CategoryRepository
	vendors    partner.VendorRepository
	logger     *zap.Logger
}

// NewItemService creates a new ItemService
func NewItemService(
	items catalog.ItemRepository,
	categories catalog.CategoryRepository,
	vendors partner.VendorRepository,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{items: items, categories: categories, vendors: vendors, logger: logger}
}

// CreateItem validates references and stores a new item
func (s *ItemService) CreateItem(ctx context.Context, input CreateItemInput) (*catalog.Item, error) {
	exists, err := s.items.ExistsBySKU(ctx, input.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyExists.WithCause(fmt.Errorf("sku %s", input.SKU))
	}

	item, err := catalog.NewItem(input.SKU, input.Name, input.Unit, input.CostPrice, input.SellingPrice)
	if err != nil {
		return nil, err
	}
	item.Description = input.Description
	if !input.ReorderLevel.IsZero() {
		if err := item.SetReorderLevel(input.ReorderLevel); err != nil {
			return nil, err
		}
	}
	if input.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		item.AssignCategory(*input.CategoryID)
	}
	if input.VendorID != nil {
		if _, err := s.vendors.FindByID(ctx, *input.VendorID); err != nil {
			return nil, err
		}
		item.AssignVendor(*input.VendorID)
	}

	if err := s.items.Save(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("item created", zap.String("item_id", item.ID.String()), zap.String("sku", item.SKU))
	return item, nil
}

// GetItem returns an item by ID
func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	return s.items.FindByID(ctx, id)
}

// ListItems lists every item
func (s *ItemService) ListItems(ctx context.Context) ([]catalog.Item, error) {
	return s.items.FindAll(ctx)
}

// CreateCategory stores a new category
func (s *ItemService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*catalog.Category, error) {
	category, err := catalog.NewCategory(input.Name, input.Description)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories lists every category
func (s *ItemService) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return s.categories.FindAll(ctx)
}
