package finance

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/domain/finance"
	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/erp/stockledger/internal/domain/trade"
)

// LedgerService appends order entries to the ledger and reports totals
type LedgerService struct {
	entries finance.LedgerEntryRepository
	logger  *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(entries finance.LedgerEntryRepository, logger *zap.Logger) *LedgerService {
	return &LedgerService{entries: entries, logger: logger}
}

// RecordSale credits a fulfilled sales order once
func (s *LedgerService) RecordSale(ctx context.Context, order *trade.SalesOrder) error {
	date := order.OrderDate
	if order.ShippedAt != nil {
		date = *order.ShippedAt
	}
	return s.recordOnce(ctx, finance.NewSalesEntry(order.ID, order.ClientID, order.OrderNumber, order.TotalAmount, date))
}

// RecordPurchase debits a received purchase order once
func (s *LedgerService) RecordPurchase(ctx context.Context, order *trade.PurchaseOrder) error {
	date := order.OrderDate
	if order.ReceivedDate != nil {
		date = *order.ReceivedDate
	}
	return s.recordOnce(ctx, finance.NewPurchaseEntry(order.ID, order.VendorID, order.OrderNumber, order.TotalAmount, date))
}

func (s *LedgerService) recordOnce(ctx context.Context, entry *finance.LedgerEntry) error {
	exists, err := s.entries.ExistsByReference(ctx, entry.ReferenceType, *entry.ReferenceID, entry.EntryType)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Debug("ledger entry already recorded",
			zap.String("reference_type", string(entry.ReferenceType)),
			zap.String("reference_id", entry.ReferenceID.String()),
		)
		return nil
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		// a concurrent writer recorded the same reference first
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil
		}
		return err
	}
	s.logger.Info("ledger entry recorded",
		zap.String("entry_type", string(entry.EntryType)),
		zap.String("reference_id", entry.ReferenceID.String()),
		zap.String("amount", entry.Amount().String()),
	)
	return nil
}

// TotalDebits sums debits over an inclusive date range
func (s *LedgerService) TotalDebits(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	summary, err := s.Summary(ctx, start, end)
	return summary.TotalDebits, err
}

// TotalCredits sums credits over an inclusive date range
func (s *LedgerService) TotalCredits(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	summary, err := s.Summary(ctx, start, end)
	return summary.TotalCredits, err
}

// Balance returns credits minus debits over an inclusive date range
func (s *LedgerService) Balance(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	summary, err := s.Summary(ctx, start, end)
	return summary.Balance, err
}

// Summary totals both sides of the ledger over an inclusive date range
func (s *LedgerService) Summary(ctx context.Context, start, end time.Time) (finance.LedgerSummary, error) {
	period, err := finance.NewPeriod(start, end)
	if err != nil {
		return finance.LedgerSummary{}, err
	}
	debits, credits, err := s.entries.SumAmounts(ctx, period.From(), period.Until())
	if err != nil {
		return finance.LedgerSummary{}, err
	}
	return finance.NewLedgerSummary(debits, credits), nil
}

// ListEntries returns the entries dated within an inclusive date range
func (s *LedgerService) ListEntries(ctx context.Context, start, end time.Time) ([]finance.LedgerEntry, error) {
	period, err := finance.NewPeriod(start, end)
	if err != nil {
		return nil, err
	}
	return s.entries.FindByPeriod(ctx, period.From(), period.Until())
}
