package partner

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/stockledger/internal/domain/partner"
)

// CreateWarehouseInput creates a warehouse
type CreateWarehouseInput struct {
	Code      string
	Name      string
	Address   string
	IsDefault bool
}

// CreateContactInput creates a vendor or client
type CreateContactInput struct {
	Code        string
	Name        string
	Email       string
	Phone       string
	Address     string
	CreditLimit decimal.Decimal
}

// WarehouseResponse represents a warehouse in API responses
type WarehouseResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	IsDefault bool      `json:"is_default"`
}

// ToWarehouseResponse converts a domain Warehouse to a response
func ToWarehouseResponse(w *partner.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		IsActive:  w.IsActive,
		IsDefault: w.IsDefault,
	}
}

// ToWarehouseResponses converts a slice of warehouses
func ToWarehouseResponses(ws []partner.Warehouse) []WarehouseResponse {
	out := make([]WarehouseResponse, len(ws))
	for i := range ws {
		out[i] = ToWarehouseResponse(&ws[i])
	}
	return out
}

// ContactResponse represents a vendor or client in API responses
type ContactResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Email       string          `json:"email,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Address     string          `json:"address,omitempty"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	IsActive    bool            `json:"is_active"`
}

// ToContactResponse converts a vendor or client contact block to a response
func ToContactResponse(id uuid.UUID, c partner.Contact) ContactResponse {
	return ContactResponse{
		ID:          id,
		Code:        c.Code,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		CreditLimit: c.CreditLimit,
		IsActive:    c.IsActive,
	}
}
