package partner

import (
	"strings"

	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Contact holds the fields vendors and clients have in common
type Contact struct {
	Code        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Email       string          `gorm:"type:varchar(200)"`
	Phone       string          `gorm:"type:varchar(50)"`
	Address     string          `gorm:"type:text"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive    bool            `gorm:"not null;default:true"`
}

func newContact(code, name string) (Contact, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return Contact{}, err
	}
	if strings.TrimSpace(name) == "" {
		return Contact{}, shared.NewValidationError("Name cannot be empty")
	}
	return Contact{Code: code, Name: name, CreditLimit: decimal.Zero, IsActive: true}, nil
}

// SetCreditLimit updates the credit limit
func (c *Contact) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewValidationError("Credit limit cannot be negative")
	}
	c.CreditLimit = limit
	return nil
}

// Vendor supplies items through purchase orders
type Vendor struct {
	shared.BaseAggregateRoot
	Contact
}

// TableName returns the table name for GORM
func (Vendor) TableName() string {
	return "vendors"
}

// NewVendor creates a new active vendor
func NewVendor(code, name string) (*Vendor, error) {
	c, err := newContact(code, name)
	if err != nil {
		return nil, err
	}
	return &Vendor{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Contact: c}, nil
}

// Client buys items through sales orders
type Client struct {
	shared.BaseAggregateRoot
	Contact
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a new active client
func NewClient(code, name string) (*Client, error) {
	c, err := newContact(code, name)
	if err != nil {
		return nil, err
	}
	return &Client{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Contact: c}, nil
}
