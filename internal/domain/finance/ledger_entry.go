package finance

import (
	"fmt"
	"time"

	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType classifies ledger entries
type EntryType string

const (
	EntryTypePayment    EntryType = "PAYMENT"
	EntryTypeSales      EntryType = "SALES"
	EntryTypePurchase   EntryType = "PURCHASE"
	EntryTypeAdjustment EntryType = "ADJUSTMENT"
	EntryTypeOther      EntryType = "OTHER"
)

// IsValid checks if the entry type is known
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypePayment, EntryTypeSales, EntryTypePurchase, EntryTypeAdjustment, EntryTypeOther:
		return true
	}
	return false
}

// ReferenceType names the document a ledger entry came from
type ReferenceType string

const (
	ReferenceTypeNone          ReferenceType = ""
	ReferenceTypePayment       ReferenceType = "PAYMENT"
	ReferenceTypeSalesOrder    ReferenceType = "SALES_ORDER"
	ReferenceTypePurchaseOrder ReferenceType = "PURCHASE_ORDER"
)

// LedgerEntry is an immutable debit or credit. Entries are only ever appended.
type LedgerEntry struct {
	shared.BaseEntity
	EntryDate     time.Time       `gorm:"not null;index"`
	EntryType     EntryType       `gorm:"type:varchar(20);not null;uniqueIndex:idx_ledger_reference,priority:3"`
	DebitAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreditAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Description   string          `gorm:"type:text"`
	ReferenceType ReferenceType   `gorm:"type:varchar(20);uniqueIndex:idx_ledger_reference,priority:1"`
	ReferenceID   *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_ledger_reference,priority:2"`
	VendorID      *uuid.UUID      `gorm:"type:uuid;index"`
	ClientID      *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

func newLedgerEntry(date time.Time, entryType EntryType, debit, credit decimal.Decimal, description string) *LedgerEntry {
	return &LedgerEntry{
		BaseEntity:   shared.NewBaseEntity(),
		EntryDate:    date,
		EntryType:    entryType,
		DebitAmount:  debit,
		CreditAmount: credit,
		Description:  description,
	}
}

// NewManualEntry creates an ADJUSTMENT or OTHER entry with no document reference
func NewManualEntry(date time.Time, entryType EntryType, debit, credit decimal.Decimal, description string) (*LedgerEntry, error) {
	if entryType != EntryTypeAdjustment && entryType != EntryTypeOther {
		return nil, shared.NewValidationError("Manual entries must be ADJUSTMENT or OTHER")
	}
	if debit.IsNegative() || credit.IsNegative() {
		return nil, shared.NewValidationError("Amounts cannot be negative")
	}
	if debit.IsZero() && credit.IsZero() {
		return nil, shared.NewValidationError("Either debit or credit must be non-zero")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return newLedgerEntry(date, entryType, debit, credit, description), nil
}

// NewSalesEntry credits the total of a fulfilled sales order
func NewSalesEntry(orderID, clientID uuid.UUID, orderNumber string, total decimal.Decimal, date time.Time) *LedgerEntry {
	entry := newLedgerEntry(date, EntryTypeSales, decimal.Zero, total,
		fmt.Sprintf("Sales order %s", orderNumber))
	entry.ReferenceType = ReferenceTypeSalesOrder
	entry.ReferenceID = &orderID
	entry.ClientID = &clientID
	return entry
}

// NewPurchaseEntry debits the total of a received purchase order
func NewPurchaseEntry(orderID, vendorID uuid.UUID, orderNumber string, total decimal.Decimal, date time.Time) *LedgerEntry {
	entry := newLedgerEntry(date, EntryTypePurchase, total, decimal.Zero,
		fmt.Sprintf("Purchase order %s", orderNumber))
	entry.ReferenceType = ReferenceTypePurchaseOrder
	entry.ReferenceID = &orderID
	entry.VendorID = &vendorID
	return entry
}

// Amount returns whichever side of the entry is set
func (e *LedgerEntry) Amount() decimal.Decimal {
	if e.DebitAmount.IsPositive() {
		return e.DebitAmount
	}
	return e.CreditAmount
}

// LedgerSummary totals the ledger over a period
type LedgerSummary struct {
	TotalDebits  decimal.Decimal `json:"total_debits"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	Balance      decimal.Decimal `json:"balance"`
}

// NewLedgerSummary computes balance as credits minus debits
func NewLedgerSummary(debits, credits decimal.Decimal) LedgerSummary {
	return LedgerSummary{
		TotalDebits:  debits,
		TotalCredits: credits,
		Balance:      credits.Sub(debits),
	}
}
