package partner

import (
	"context"

	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/domain/partner"
)

// PartnerService manages warehouses, vendors and clients
type PartnerService struct {
	warehouses partner.WarehouseRepository
	vendors    partner.VendorRepository
	clients    partner.ClientRepository
	logger     *zap.Logger
}

// NewPartnerService creates a new PartnerService
func NewPartnerService(
	warehouses partner.WarehouseRepository,
	vendors partner.VendorRepository,
	clients partner.ClientRepository,
	logger *zap.Logger,
) *PartnerService {
	return &PartnerService{warehouses: warehouses, vendors: vendors, clients: clients, logger: logger}
}

// CreateWarehouse stores a new active warehouse, optionally as the default
func (s *PartnerService) CreateWarehouse(ctx context.Context, input CreateWarehouseInput) (*partner.Warehouse, error) {
	wh, err := partner.NewWarehouse(input.Code, input.Name, input.Address)
	if err != nil {
		return nil, err
	}
	if input.IsDefault {
		if err := wh.SetDefault(true); err != nil {
			return nil, err
		}
	}
	if err := s.warehouses.Save(ctx, wh); err != nil {
		return nil, err
	}
	s.logger.Info("warehouse created", zap.String("warehouse_id", wh.ID.String()), zap.String("code", wh.Code))
	return wh, nil
}

// ListWarehouses lists warehouses ordered by code
func (s *PartnerService) ListWarehouses(ctx context.Context) ([]partner.Warehouse, error) {
	return s.warehouses.FindAll(ctx)
}

// CreateVendor stores a new vendor
func (s *PartnerService) CreateVendor(ctx context.Context, input CreateContactInput) (*partner.Vendor, error) {
	vendor, err := partner.NewVendor(input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	if err := applyContact(&vendor.Contact, input); err != nil {
		return nil, err
	}
	if err := s.vendors.Save(ctx, vendor); err != nil {
		return nil, err
	}
	s.logger.Info("vendor created", zap.String("vendor_id", vendor.ID.String()), zap.String("code", vendor.Code))
	return vendor, nil
}

// CreateClient stores a new client
func (s *PartnerService) CreateClient(ctx context.Context, input CreateContactInput) (*partner.Client, error) {
	client, err := partner.NewClient(input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	if err := applyContact(&client.Contact, input); err != nil {
		return nil, err
	}
	if err := s.clients.Save(ctx, client); err != nil {
		return nil, err
	}
	s.logger.Info("client created", zap.String("client_id", client.ID.String()), zap.String("code", client.Code))
	return client, nil
}

func applyContact(c *partner.Contact, input CreateContactInput) error {
	c.Email = input.Email
	c.Phone = input.Phone
	c.Address = input.Address
	return c.SetCreditLimit(input.CreditLimit)
}
