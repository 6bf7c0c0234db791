package finance

import (
	"fmt"
	"time"

	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType says whether money went out (DEBIT) or came in (CREDIT)
type PaymentType string

const (
	PaymentTypeDebit  PaymentType = "DEBIT"
	PaymentTypeCredit PaymentType = "CREDIT"
)

// IsValid checks if the type is known
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeDebit || t == PaymentTypeCredit
}

// PaymentMethod is how the payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentMethodOnline       PaymentMethod = "ONLINE"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheque,
		PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodOnline, PaymentMethodOther:
		return true
	}
	return false
}

// MinPaymentAmount is the smallest accepted payment
var MinPaymentAmount = decimal.RequireFromString("0.01")

// Payment is money exchanged with exactly one vendor or one client
type Payment struct {
	shared.BaseAggregateRoot
	VendorID        *uuid.UUID      `gorm:"type:uuid;index"`
	ClientID        *uuid.UUID      `gorm:"type:uuid;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Type            PaymentType     `gorm:"type:varchar(10);not null;index"`
	Method          PaymentMethod   `gorm:"type:varchar(20);not null"`
	PaymentDate     time.Time       `gorm:"not null;index"`
	ReferenceNumber string          `gorm:"type:varchar(100)"`
	Description     string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// PaymentParams holds the inputs of NewPayment
type PaymentParams struct {
	VendorID        *uuid.UUID
	ClientID        *uuid.UUID
	Amount          decimal.Decimal
	Type            PaymentType
	Method          PaymentMethod
	PaymentDate     time.Time
	ReferenceNumber string
	Description     string
}

// NewPayment validates and creates a payment
func NewPayment(p PaymentParams) (*Payment, error) {
	hasVendor := p.VendorID != nil && *p.VendorID != uuid.Nil
	hasClient := p.ClientID != nil && *p.ClientID != uuid.Nil
	if hasVendor == hasClient {
		return nil, shared.NewValidationError("Exactly one of vendor or client must be set")
	}
	if p.Amount.LessThan(MinPaymentAmount) {
		return nil, shared.NewValidationError(fmt.Sprintf("Amount must be at least %s", MinPaymentAmount))
	}
	if !p.Type.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown payment type %q", p.Type))
	}
	if p.Method == "" {
		p.Method = PaymentMethodCash
	}
	if !p.Method.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Unknown payment method %q", p.Method))
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = time.Now()
	}

	payment := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Amount:            p.Amount,
		Type:              p.Type,
		Method:            p.Method,
		PaymentDate:       p.PaymentDate,
		ReferenceNumber:   p.ReferenceNumber,
		Description:       p.Description,
	}
	if hasVendor {
		payment.VendorID = p.VendorID
	} else {
		payment.ClientID = p.ClientID
	}
	return payment, nil
}

// LedgerEntry builds the single ledger entry this payment produces
func (p *Payment) LedgerEntry() *LedgerEntry {
	debit, credit := decimal.Zero, decimal.Zero
	if p.Type == PaymentTypeDebit {
		debit = p.Amount
	} else {
		credit = p.Amount
	}
	description := p.Description
	if description == "" {
		description = fmt.Sprintf("Payment %s via %s", p.Type, p.Method)
	}
	entry := newLedgerEntry(p.PaymentDate, EntryTypePayment, debit, credit, description)
	entry.ReferenceType = ReferenceTypePayment
	entry.ReferenceID = &p.ID
	entry.VendorID = p.VendorID
	entry.ClientID = p.ClientID
	return entry
}
