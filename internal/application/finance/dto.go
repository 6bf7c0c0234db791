package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/stockledger/internal/domain/finance"
)

// CreatePaymentInput carries a payment to or from exactly one party
type CreatePaymentInput struct {
	VendorID        *uuid.UUID
	ClientID        *uuid.UUID
	Amount          decimal.Decimal
	Type            finance.PaymentType
	Method          finance.PaymentMethod
	PaymentDate     time.Time
	ReferenceNumber string
	Description     string
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	VendorID        *uuid.UUID      `json:"vendor_id,omitempty"`
	ClientID        *uuid.UUID      `json:"client_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type"`
	Method          string          `json:"method"`
	PaymentDate     time.Time       `json:"payment_date"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Description     string          `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a domain Payment to a response
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		VendorID:        p.VendorID,
		ClientID:        p.ClientID,
		Amount:          p.Amount,
		Type:            string(p.Type),
		Method:          string(p.Method),
		PaymentDate:     p.PaymentDate,
		ReferenceNumber: p.ReferenceNumber,
		Description:     p.Description,
		CreatedAt:       p.CreatedAt,
	}
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	EntryDate     time.Time       `json:"entry_date"`
	EntryType     string          `json:"entry_type"`
	DebitAmount   decimal.Decimal `json:"debit_amount"`
	CreditAmount  decimal.Decimal `json:"credit_amount"`
	Description   string          `json:"description,omitempty"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
}

// ToLedgerEntryResponses converts ledger entries to responses
func ToLedgerEntryResponses(entries []finance.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = LedgerEntryResponse{
			ID:            e.ID,
			EntryDate:     e.EntryDate,
			EntryType:     string(e.EntryType),
			DebitAmount:   e.DebitAmount,
			CreditAmount:  e.CreditAmount,
			Description:   e.Description,
			ReferenceType: string(e.ReferenceType),
			ReferenceID:   e.ReferenceID,
		}
	}
	return out
}

// ProfitLossResponse represents a P&L snapshot in API responses
type ProfitLossResponse struct {
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	Revenue     decimal.Decimal `json:"revenue"`
	COGS        decimal.Decimal `json:"cogs"`
	Expenses    decimal.Decimal `json:"expenses"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	NetProfit   decimal.Decimal `json:"net_profit"`
}

// ToProfitLossResponse converts a domain ProfitLoss to a response
func ToProfitLossResponse(p *finance.ProfitLoss) ProfitLossResponse {
	return ProfitLossResponse{
		PeriodStart: p.PeriodStart.Format(time.DateOnly),
		PeriodEnd:   p.PeriodEnd.Format(time.DateOnly),
		Revenue:     p.Revenue,
		COGS:        p.COGS,
		Expenses:    p.Expenses,
		GrossProfit: p.GrossProfit,
		NetProfit:   p.NetProfit,
	}
}
