package partner

import (
	"context"

	"github.com/google/uuid"
)

// WarehouseRepository defines persistence for warehouses
type WarehouseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	FindByCode(ctx context.Context, code string) (*Warehouse, error)
	// FindFirstActive returns the oldest active warehouse
	FindFirstActive(ctx context.Context) (*Warehouse, error)
	FindDefault(ctx context.Context) (*Warehouse, error)
	FindAll(ctx context.Context) ([]Warehouse, error)
	Save(ctx context.Context, warehouse *Warehouse) error
}

// VendorRepository defines persistence for vendors
type VendorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	FindAll(ctx context.Context) ([]Vendor, error)
	Save(ctx context.Context, vendor *Vendor) error
}

// ClientRepository defines persistence for clients
type ClientRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindAll(ctx context.Context) ([]Client, error)
	Save(ctx context.Context, client *Client) error
}
