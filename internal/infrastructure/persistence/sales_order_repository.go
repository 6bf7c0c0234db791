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

// GormSalesOrderRepository implements trade.SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

func preloadSalesLines(db *gorm.DB) *gorm.DB {
	return db.Order("sales_items.created_at ASC, sales_items.id ASC")
}

// FindByID finds an order with its lines
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var order trade.SalesOrder
	if err := conn(ctx, r.db).
		Preload("Items", preloadSalesLines).
		First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err, "sales order", id)
	}
	return &order, nil
}

// FindByIDForUpdate loads the order after taking its row lock.
// The lock lasts until the transaction carried by ctx ends.
func (r *GormSalesOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var locked trade.SalesOrder
	if err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&locked, "id = ?", id).Error; err != nil {
		return nil, translate(err, "sales order", id)
	}
	return r.FindByID(ctx, id)
}

// FindByOrderNumber finds an order by its number
func (r *GormSalesOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.SalesOrder, error) {
	var order trade.SalesOrder
	if err := conn(ctx, r.db).
		Preload("Items", preloadSalesLines).
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		return nil, translate(err, "sales order", orderNumber)
	}
	return &order, nil
}

// FindByStatus lists orders in a status, oldest first
func (r *GormSalesOrderRepository) FindByStatus(ctx context.Context, status trade.SalesOrderStatus) ([]trade.SalesOrder, error) {
	var orders []trade.SalesOrder
	if err := conn(ctx, r.db).
		Preload("Items", preloadSalesLines).
		Where("status = ?", status).
		Order("order_date ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ExistsByOrderNumber checks whether the order number is taken
func (r *GormSalesOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&trade.SalesOrder{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the order and its lines
func (r *GormSalesOrderRepository) Create(ctx context.Context, order *trade.SalesOrder) error {
	return translate(conn(ctx, r.db).Create(order).Error, "sales order", order.OrderNumber)
}

// SaveWithLock updates the header under a version check and syncs the line set
func (r *GormSalesOrderRepository) SaveWithLock(ctx context.Context, order *trade.SalesOrder) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var current struct{ Version int }
		res := tx.Model(&trade.SalesOrder{}).Select("version").Where("id = ?", order.ID).Scan(&current)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "sales order", order.ID)
		}
		if current.Version != order.Version {
			return versionConflict("sales order")
		}

		now := time.Now()
		result := tx.Model(&trade.SalesOrder{}).
			Where("id = ? AND version = ?", order.ID, current.Version).
			Updates(map[string]any{
				"client_id":       order.ClientID,
				"warehouse_id":    order.WarehouseID,
				"order_date":      order.OrderDate,
				"delivery_date":   order.DeliveryDate,
				"status":          order.Status,
				"discount_amount": order.DiscountAmount,
				"total_amount":    order.TotalAmount,
				"notes":           order.Notes,
				"confirmed_at":    order.ConfirmedAt,
				"shipped_at":      order.ShippedAt,
				"delivered_at":    order.DeliveredAt,
				"cancelled_at":    order.CancelledAt,
				"cancel_reason":   order.CancelReason,
				"version":         current.Version + 1,
				"updated_at":      now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return versionConflict("sales order")
		}

		lineIDs := make([]uuid.UUID, len(order.Items))
		for i := range order.Items {
			lineIDs[i] = order.Items[i].ID
		}
		stale := tx.Where("order_id = ?", order.ID)
		if len(lineIDs) > 0 {
			stale = stale.Where("id NOT IN ?", lineIDs)
		}
		if err := stale.Delete(&trade.SalesItem{}).Error; err != nil {
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
func (r *GormSalesOrderRepository) SumTotalByStatus(ctx context.Context, from, to time.Time, statuses ...trade.SalesOrderStatus) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := conn(ctx, r.db).
		Model(&trade.SalesOrder{}).
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

var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
