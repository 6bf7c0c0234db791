package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/stockledger/internal/domain/partner"
)

// GormWarehouseRepository implements partner.WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by its ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Warehouse, error) {
	var wh partner.Warehouse
	if err := conn(ctx, r.db).First(&wh, "id = ?", id).Error; err != nil {
		return nil, translate(err, "warehouse", id)
	}
	return &wh, nil
}

// FindByCode finds a warehouse by its code
func (r *GormWarehouseRepository) FindByCode(ctx context.Context, code string) (*partner.Warehouse, error) {
	var wh partner.Warehouse
	if err := conn(ctx, r.db).Where("code = ?", code).First(&wh).Error; err != nil {
		return nil, translate(err, "warehouse", code)
	}
	return &wh, nil
}

// FindFirstActive returns the oldest active warehouse
func (r *GormWarehouseRepository) FindFirstActive(ctx context.Context) (*partner.Warehouse, error) {
	var wh partner.Warehouse
	if err := conn(ctx, r.db).
		Where("is_active = ?", true).
		Order("created_at ASC").
		First(&wh).Error; err != nil {
		return nil, translate(err, "warehouse", "active")
	}
	return &wh, nil
}

// FindDefault returns the warehouse flagged as default
func (r *GormWarehouseRepository) FindDefault(ctx context.Context) (*partner.Warehouse, error) {
	var wh partner.Warehouse
	if err := conn(ctx, r.db).
		Where("is_default = ? AND is_active = ?", true, true).
		First(&wh).Error; err != nil {
		return nil, translate(err, "warehouse", "default")
	}
	return &wh, nil
}

// FindAll lists warehouses ordered by code
func (r *GormWarehouseRepository) FindAll(ctx context.Context) ([]partner.Warehouse, error) {
	var warehouses []partner.Warehouse
	if err := conn(ctx, r.db).Order("code ASC").Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}

// Save creates or updates a warehouse. Flagging one as default clears the flag elsewhere.
func (r *GormWarehouseRepository) Save(ctx context.Context, wh *partner.Warehouse) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if wh.IsDefault {
			if err := tx.Model(&partner.Warehouse{}).
				Where("id <> ? AND is_default = ?", wh.ID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return translate(tx.Save(wh).Error, "warehouse", wh.ID)
	})
}

// GormVendorRepository implements partner.VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByID finds a vendor by its ID
func (r *GormVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Vendor, error) {
	var v partner.Vendor
	if err := conn(ctx, r.db).First(&v, "id = ?", id).Error; err != nil {
		return nil, translate(err, "vendor", id)
	}
	return &v, nil
}

// FindAll lists vendors ordered by code
func (r *GormVendorRepository) FindAll(ctx context.Context) ([]partner.Vendor, error) {
	var vendors []partner.Vendor
	if err := conn(ctx, r.db).Order("code ASC").Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

// Save creates or updates a vendor
func (r *GormVendorRepository) Save(ctx context.Context, v *partner.Vendor) error {
	return translate(conn(ctx, r.db).Save(v).Error, "vendor", v.ID)
}

// GormClientRepository implements partner.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	var c partner.Client
	if err := conn(ctx, r.db).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "client", id)
	}
	return &c, nil
}

// FindAll lists clients ordered by code
func (r *GormClientRepository) FindAll(ctx context.Context) ([]partner.Client, error) {
	var clients []partner.Client
	if err := conn(ctx, r.db).Order("code ASC").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, c *partner.Client) error {
	return translate(conn(ctx, r.db).Save(c).Error, "client", c.ID)
}

var (
	_ partner.WarehouseRepository = (*GormWarehouseRepository)(nil)
	_ partner.VendorRepository    = (*GormVendorRepository)(nil)
	_ partner.ClientRepository    = (*GormClientRepository)(nil)
)
