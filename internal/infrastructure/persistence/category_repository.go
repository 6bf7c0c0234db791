package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/stockledger/internal/domain/catalog"
)

// GormItemRepository implements catalog.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by its ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var item catalog.Item
	if err := conn(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, "item", id)
	}
	return &item, nil
}

// FindBySKU finds an item by its SKU
func (r *GormItemRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Item, error) {
	var item catalog.Item
	if err := conn(ctx, r.db).Where("sku = ?", sku).First(&item).Error; err != nil {
		return nil, translate(err, "item", sku)
	}
	return &item, nil
}

// FindAll lists items ordered by SKU
func (r *GormItemRepository) FindAll(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := conn(ctx, r.db).Order("sku ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ExistsBySKU checks whether the SKU is taken
func (r *GormItemRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&catalog.Item{}).Where("sku = ?", sku).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an item
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return translate(conn(ctx, r.db).Save(item).Error, "item", item.ID)
}

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	if err := conn(ctx, r.db).First(&category, "id = ?", id).Error; err != nil {
		return nil, translate(err, "category", id)
	}
	return &category, nil
}

// FindAll lists categories ordered by name
func (r *GormCategoryRepository) FindAll(ctx context.Context) ([]catalog.Category, error) {
	var categories []catalog.Category
	if err := conn(ctx, r.db).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return translate(conn(ctx, r.db).Save(category).Error, "category", category.ID)
}

var (
	_ catalog.ItemRepository     = (*GormItemRepository)(nil)
	_ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
)
