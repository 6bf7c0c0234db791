package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/erp/stockledger/internal/domain/finance"
)

// GormPaymentRepository implements finance.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	var p finance.Payment
	if err := conn(ctx, r.db).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "payment", id)
	}
	return &p, nil
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, p *finance.Payment) error {
	return translate(conn(ctx, r.db).Create(p).Error, "payment", p.ID)
}

// SumByType totals payments of one type dated in [from, to)
func (r *GormPaymentRepository) SumByType(ctx context.Context, paymentType finance.PaymentType, from, to time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := conn(ctx, r.db).
		Model(&finance.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("type = ? AND payment_date >= ? AND payment_date < ?", paymentType, from, to).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// GormLedgerEntryRepository implements finance.LedgerEntryRepository using GORM
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Create appends an entry. A second entry for the same reference yields AlreadyExists.
func (r *GormLedgerEntryRepository) Create(ctx context.Context, entry *finance.LedgerEntry) error {
	// a savepoint when ctx carries a transaction; a duplicate rolls back only this insert
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		return tx.Create(entry).Error
	})
	return translate(err, "ledger entry", entry.ID)
}

// ExistsByReference checks whether a document has already been booked
func (r *GormLedgerEntryRepository) ExistsByReference(ctx context.Context, refType finance.ReferenceType, refID uuid.UUID, entryType finance.EntryType) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&finance.LedgerEntry{}).
		Where("reference_type = ? AND reference_id = ? AND entry_type = ?", refType, refID, entryType).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByPeriod lists entries dated in [from, to) in booking order
func (r *GormLedgerEntryRepository) FindByPeriod(ctx context.Context, from, to time.Time) ([]finance.LedgerEntry, error) {
	var entries []finance.LedgerEntry
	if err := conn(ctx, r.db).
		Where("entry_date >= ? AND entry_date < ?", from, to).
		Order("entry_date ASC, created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// SumAmounts totals debits and credits dated in [from, to)
func (r *GormLedgerEntryRepository) SumAmounts(ctx context.Context, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var result struct {
		Debits  decimal.Decimal
		Credits decimal.Decimal
	}
	if err := conn(ctx, r.db).
		Model(&finance.LedgerEntry{}).
		Select("COALESCE(SUM(debit_amount), 0) AS debits, COALESCE(SUM(credit_amount), 0) AS credits").
		Where("entry_date >= ? AND entry_date < ?", from, to).
		Scan(&result).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return result.Debits, result.Credits, nil
}

// GormProfitLossRepository implements finance.ProfitLossRepository using GORM
type GormProfitLossRepository struct {
	db *gorm.DB
}

// NewGormProfitLossRepository creates a new GormProfitLossRepository
func NewGormProfitLossRepository(db *gorm.DB) *GormProfitLossRepository {
	return &GormProfitLossRepository{db: db}
}

// FindByPeriod finds the snapshot for exactly [start, end]
func (r *GormProfitLossRepository) FindByPeriod(ctx context.Context, start, end time.Time) (*finance.ProfitLoss, error) {
	var report finance.ProfitLoss
	if err := conn(ctx, r.db).
		Where("period_start = ? AND period_end = ?", start, end).
		First(&report).Error; err != nil {
		return nil, translate(err, "profit and loss report", start.Format(time.DateOnly)+".."+end.Format(time.DateOnly))
	}
	return &report, nil
}

// Upsert replaces the figures of an existing snapshot for the same period
func (r *GormProfitLossRepository) Upsert(ctx context.Context, report *finance.ProfitLoss) error {
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "period_start"}, {Name: "period_end"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"revenue", "cogs", "expenses", "gross_profit", "net_profit", "updated_at",
			}),
		}).
		Create(report).Error
}

var (
	_ finance.PaymentRepository     = (*GormPaymentRepository)(nil)
	_ finance.LedgerEntryRepository = (*GormLedgerEntryRepository)(nil)
	_ finance.ProfitLossRepository  = (*GormProfitLossRepository)(nil)
)
