package partner

import (
	"strings"

	"github.com/erp/stockledger/internal/domain/shared"
)

// Warehouse is a physical stock location
type Warehouse struct {
	shared.BaseAggregateRoot
	Code      string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string `gorm:"type:varchar(200);not null"`
	Address   string `gorm:"type:text"`
	IsActive  bool   `gorm:"not null;default:true"`
	IsDefault bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new active warehouse
func NewWarehouse(code, name, address string) (*Warehouse, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("Warehouse name cannot be empty")
	}
	return &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Address:           address,
		IsActive:          true,
	}, nil
}

// SetDefault marks or unmarks the warehouse as the default one
func (w *Warehouse) SetDefault(isDefault bool) error {
	if isDefault && !w.IsActive {
		return shared.NewValidationError("Cannot set an inactive warehouse as default")
	}
	w.IsDefault = isDefault
	w.Touch()
	w.IncrementVersion()
	return nil
}

// Activate marks the warehouse as usable
func (w *Warehouse) Activate() {
	w.IsActive = true
	w.Touch()
	w.IncrementVersion()
}

// Deactivate takes the warehouse out of rotation
func (w *Warehouse) Deactivate() error {
	if w.IsDefault {
		return shared.NewValidationError("Cannot deactivate the default warehouse")
	}
	w.IsActive = false
	w.Touch()
	w.IncrementVersion()
	return nil
}

func normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", shared.NewValidationError("Code cannot be empty")
	}
	if len(code) > 50 {
		return "", shared.NewValidationError("Code cannot exceed 50 characters")
	}
	return code, nil
}
