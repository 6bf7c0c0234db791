package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/erp/stockledger/internal/domain/partner"
	"github.com/erp/stockledger/internal/domain/shared"
)

// Warehouse selection modes for orders that name no warehouse
const (
	WarehouseModeDefaultCode = "default_code"
	WarehouseModeFirstActive = "first_active"
)

// WarehousePolicy picks the warehouse for a purchase order that names none.
// It never creates a warehouse.
type WarehousePolicy struct {
	Mode        string
	DefaultCode string
	warehouses  partner.WarehouseRepository
}

// NewWarehousePolicy creates a new WarehousePolicy
func NewWarehousePolicy(warehouses partner.WarehouseRepository, mode, defaultCode string) *WarehousePolicy {
	if mode == "" {
		mode = WarehouseModeFirstActive
	}
	return &WarehousePolicy{Mode: mode, DefaultCode: defaultCode, warehouses: warehouses}
}

// Resolve returns explicit when set, otherwise the warehouse the policy selects
func (p *WarehousePolicy) Resolve(ctx context.Context, explicit *uuid.UUID) (uuid.UUID, error) {
	if explicit != nil && *explicit != uuid.Nil {
		return *explicit, nil
	}

	var (
		wh  *partner.Warehouse
		err error
	)
	switch p.Mode {
	case WarehouseModeDefaultCode:
		wh, err = p.warehouses.FindByCode(ctx, p.DefaultCode)
	case WarehouseModeFirstActive:
		wh, err = p.warehouses.FindFirstActive(ctx)
	default:
		return uuid.Nil, fmt.Errorf("unknown warehouse policy %q", p.Mode)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return uuid.Nil, shared.NewValidationError(
				fmt.Sprintf("No warehouse specified and none resolved by policy %s", p.Mode))
		}
		return uuid.Nil, err
	}
	if !wh.IsActive {
		return uuid.Nil, shared.NewValidationError(fmt.Sprintf("Warehouse %s is not active", wh.Code))
	}
	return wh.ID, nil
}
