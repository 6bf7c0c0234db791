package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/stockledger/internal/domain/inventory"
)

// GormStockRepository implements inventory.StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByID finds a stock row by its ID
func (r *GormStockRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Stock, error) {
	var stock inventory.Stock
	if err := conn(ctx, r.db).First(&stock, "id = ?", id).Error; err != nil {
		return nil, translate(err, "stock", id)
	}
	return &stock, nil
}

// FindByItemAndWarehouse finds the stock row of an item in a warehouse
func (r *GormStockRepository) FindByItemAndWarehouse(ctx context.Context, itemID, warehouseID uuid.UUID) (*inventory.Stock, error) {
	var stock inventory.Stock
	if err := conn(ctx, r.db).
		Where("item_id = ? AND warehouse_id = ?", itemID, warehouseID).
		First(&stock).Error; err != nil {
		return nil, translate(err, "stock for item", itemID)
	}
	return &stock, nil
}

// FindByItemAndWarehouseForUpdate is FindByItemAndWarehouse under SELECT ... FOR UPDATE.
// SQLite has no row locks; its single connection serialises writers instead.
func (r *GormStockRepository) FindByItemAndWarehouseForUpdate(ctx context.Context, itemID, warehouseID uuid.UUID) (*inventory.Stock, error) {
	var stock inventory.Stock
	if err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND warehouse_id = ?", itemID, warehouseID).
		First(&stock).Error; err != nil {
		return nil, translate(err, "stock for item", itemID)
	}
	return &stock, nil
}

// FindByItem lists an item's stock across warehouses
func (r *GormStockRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]inventory.Stock, error) {
	var stocks []inventory.Stock
	if err := conn(ctx, r.db).
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// FindByWarehouse lists every stock row held in a warehouse
func (r *GormStockRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]inventory.Stock, error) {
	var stocks []inventory.Stock
	if err := conn(ctx, r.db).
		Where("warehouse_id = ?", warehouseID).
		Order("created_at ASC").
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// FindLowStock lists rows whose on-hand quantity is at or below the minimum
func (r *GormStockRepository) FindLowStock(ctx context.Context) ([]inventory.Stock, error) {
	var stocks []inventory.Stock
	if err := conn(ctx, r.db).
		Where("quantity <= min_quantity").
		Order("quantity ASC").
		Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// FindFirstForItem returns the oldest stock row for the item
func (r *GormStockRepository) FindFirstForItem(ctx context.Context, itemID uuid.UUID) (*inventory.Stock, error) {
	var stock inventory.Stock
	if err := conn(ctx, r.db).
		Where("item_id = ?", itemID).
		Order("created_at ASC").
		First(&stock).Error; err != nil {
		return nil, translate(err, "stock for item", itemID)
	}
	return &stock, nil
}

// SumAvailableByItem totals available quantity across warehouses
func (r *GormStockRepository) SumAvailableByItem(ctx context.Context, itemID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := conn(ctx, r.db).
		Model(&inventory.Stock{}).
		Select("COALESCE(SUM(available_quantity), 0) AS total").
		Where("item_id = ?", itemID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Create inserts a new stock row. A concurrent insert of the same pair yields AlreadyExists.
func (r *GormStockRepository) Create(ctx context.Context, stock *inventory.Stock) error {
	return translate(conn(ctx, r.db).Create(stock).Error, "stock", stock.ID)
}

// SaveWithLock writes the row only if nobody bumped its version since it was read
func (r *GormStockRepository) SaveWithLock(ctx context.Context, stock *inventory.Stock) error {
	now := time.Now()
	result := conn(ctx, r.db).
		Model(&inventory.Stock{}).
		Where("id = ? AND version = ?", stock.ID, stock.Version).
		Updates(map[string]any{
			"quantity":           stock.Quantity,
			"reserved_quantity":  stock.ReservedQuantity,
			"available_quantity": stock.AvailableQuantity,
			"min_quantity":       stock.MinQuantity,
			"max_quantity":       stock.MaxQuantity,
			"average_cost":       stock.AverageCost,
			"last_restocked":     stock.LastRestocked,
			"version":            stock.Version + 1,
			"updated_at":         now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return versionConflict("stock")
	}
	stock.Version++
	stock.UpdatedAt = now
	return nil
}

// GormStockAlertRepository implements inventory.StockAlertRepository using GORM
type GormStockAlertRepository struct {
	db *gorm.DB
}

// NewGormStockAlertRepository creates a new GormStockAlertRepository
func NewGormStockAlertRepository(db *gorm.DB) *GormStockAlertRepository {
	return &GormStockAlertRepository{db: db}
}

// FindByID finds an alert by its ID
func (r *GormStockAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockAlert, error) {
	var alert inventory.StockAlert
	if err := conn(ctx, r.db).First(&alert, "id = ?", id).Error; err != nil {
		return nil, translate(err, "stock alert", id)
	}
	return &alert, nil
}

// FindPendingByStock returns the open alert of a stock row
func (r *GormStockAlertRepository) FindPendingByStock(ctx context.Context, stockID uuid.UUID) (*inventory.StockAlert, error) {
	var alert inventory.StockAlert
	if err := conn(ctx, r.db).
		Where("stock_id = ? AND status = ?", stockID, inventory.AlertStatusPending).
		Order("created_at DESC").
		First(&alert).Error; err != nil {
		return nil, translate(err, "pending alert for stock", stockID)
	}
	return &alert, nil
}

// FindByStatus lists alerts newest first
func (r *GormStockAlertRepository) FindByStatus(ctx context.Context, statuses ...inventory.AlertStatus) ([]inventory.StockAlert, error) {
	query := conn(ctx, r.db).Model(&inventory.StockAlert{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var alerts []inventory.StockAlert
	if err := query.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// Save creates or updates an alert
func (r *GormStockAlertRepository) Save(ctx context.Context, alert *inventory.StockAlert) error {
	return conn(ctx, r.db).Save(alert).Error
}

var (
	_ inventory.StockRepository      = (*GormStockRepository)(nil)
	_ inventory.StockAlertRepository = (*GormStockAlertRepository)(nil)
)
