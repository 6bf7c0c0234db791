package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/stockledger/internal/domain/trade"
)

// GormPurchaseOrderRepository implements trade.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func preloadPurchaseLines(db *gorm.DB) *gorm.DB {
	return db.Order("purchase_items.created_at ASC, purchase_items.id ASC")
}

// FindByID finds an order with its lines
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var order trade.PurchaseOrder
	if err := conn(ctx, r.db).
		Preload("Items", preloadPurchaseLines).
		First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err, "purchase order", id)
	}
	return &order, nil
}

// FindByIDForUpdate loads the order after taking its row lock.
// The lock lasts until the transaction carried by ctx ends.
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var locked trade.PurchaseOrder
	if err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&locked, "id = ?", id).Error; err != nil {
		return nil, translate(err, "purchase order", id)
	}
	return r.FindByID(ctx, id)
}

// FindByOrderNumber finds an order by its number
func (r *GormPurchaseOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.PurchaseOrder, error) {
	var order trade.PurchaseOrder
	if err := conn(ctx, r.db).
		Preload("Items", preloadPurchaseLines).
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		return nil, translate(err, "purchase order", orderNumber)
	}
	return &order, nil
}

// FindByStatus lists orders in a status, oldest first
func (r *GormPurchaseOrderRepository) FindByStatus(ctx context.Context, status trade.PurchaseOrderStatus) ([]trade.PurchaseOrder, error) {
	var orders []trade.PurchaseOrder
	if err := conn(ctx, r.db).
		Preload("Items", preloadPurchaseLines).
		Where("status = ?", status).
		Order("order_date ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ExistsByOrderNumber checks whether the order number is taken
func (r *GormPurchaseOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&trade.PurchaseOrder{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the order and its lines
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, order *trade.PurchaseOrder) error {
	return translate(conn(ctx, r.db).Create(order).Error, "purchase order", order.OrderNumber)
}

// SaveWithLock updates the header under a version check and syncs the line set
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *trade.PurchaseOrder) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var current struct{ Version int }
		res := tx.Model(&trade.PurchaseOrder{}).Select("version").Where("id = ?", order.ID).Scan(&current)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "purchase order", order.ID)
		}
		if current.Version != order.Version {
			return versionConflict("purchase order")
		}

		now := time.Now()
		result := tx.Model(&trade.PurchaseOrder{}).
			Where("id = ? AND version = ?", order.ID, current.Version).
			Updates(map[string]any{
				"vendor_id":     order.VendorID,
				"warehouse_id":  order.WarehouseID,
				"order_date":    order.OrderDate,
				"expected_date": order.ExpectedDate,
				"received_date": order.ReceivedDate,
				"status":        order.Status,
				"total_amount":  order.TotalAmount,
				"notes":         order.Notes,
				"cancelled_at":  order.CancelledAt,
				"cancel_reason": order.CancelReason,
				"version":       current.Version + 1,
				"updated_at":    now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return versionConflict("purchase order")
		}

		lineIDs := make([]uuid.UUID, len(order.Items))
		for i := range order.Items {
			lineIDs[i] = order.Items[i].ID
		}
		stale := tx.Where("order_id = ?", order.ID)
		if len(lineIDs) > 0 {
			stale = stale.Where("id NOT IN ?", lineIDs)
		}
		if err := stale.Delete(&trade.PurchaseItem{}).Error; err != nil {
			return err
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
			if err := tx.Save(&order.Items[i]).Error; err != nil {
				return err
			}
		}

		order.Version = current.Version + 1
		order.UpdatedAt = now
		return nil
	})
}

// SumTotalByStatus totals order amounts dated in [from, to)
func (r *GormPurchaseOrderRepository) SumTotalByStatus(ctx context.Context, from, to time.Time, statuses ...trade.PurchaseOrderStatus) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := conn(ctx, r.db).
		Model(&trade.PurchaseOrder{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("order_date >= ? AND order_date < ?", from, to)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
