package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRepository defines persistence for payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	Create(ctx context.Context, payment *Payment) error
	// SumByType totals payments of a type with payment_date in [from, to)
	SumByType(ctx context.Context, paymentType PaymentType, from, to time.Time) (decimal.Decimal, error)
}

// LedgerEntryRepository is append-only: there is no update or delete
type LedgerEntryRepository interface {
	Create(ctx context.Context, entry *LedgerEntry) error
	ExistsByReference(ctx context.Context, refType ReferenceType, refID uuid.UUID, entryType EntryType) (bool, error)
	FindByPeriod(ctx context.Context, from, to time.Time) ([]LedgerEntry, error)
	// SumAmounts returns total debits and credits with entry_date in [from, to)
	SumAmounts(ctx context.Context, from, to time.Time) (debits, credits decimal.Decimal, err error)
}

// ProfitLossRepository defines persistence for P&L snapshots
type ProfitLossRepository interface {
	FindByPeriod(ctx context.Context, start, end time.Time) (*ProfitLoss, error)
	// Upsert inserts or replaces the snapshot keyed by its period
	Upsert(ctx context.Context, report *ProfitLoss) error
}
