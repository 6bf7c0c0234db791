package finance

import (
	"time"

	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProfitLoss is a period-keyed snapshot, unique by (PeriodStart, PeriodEnd)
type ProfitLoss struct {
	shared.BaseEntity
	PeriodStart time.Time       `gorm:"type:date;not null;uniqueIndex:idx_profit_loss_period,priority:1"`
	PeriodEnd   time.Time       `gorm:"type:date;not null;uniqueIndex:idx_profit_loss_period,priority:2"`
	Revenue     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	COGS        decimal.Decimal `gorm:"column:cogs;type:decimal(18,4);not null;default:0"`
	Expenses    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrossProfit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	NetProfit   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProfitLoss) TableName() string {
	return "profit_loss_reports"
}

// Period is an inclusive date range
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod truncates both ends to whole days; End must not precede Start
func NewPeriod(start, end time.Time) (Period, error) {
	if start.IsZero() || end.IsZero() {
		return Period{}, shared.NewValidationError("Period start and end are required")
	}
	p := Period{Start: truncateDay(start), End: truncateDay(end)}
	if p.End.Before(p.Start) {
		return Period{}, shared.NewValidationError("Period end cannot be before period start")
	}
	return p, nil
}

// From is the inclusive lower bound for timestamp queries
func (p Period) From() time.Time {
	return p.Start
}

// Until is the exclusive upper bound for timestamp queries
func (p Period) Until() time.Time {
	return p.End.AddDate(0, 0, 1)
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewProfitLoss derives gross and net profit from the period totals
func NewProfitLoss(period Period, revenue, cogs, expenses decimal.Decimal) *ProfitLoss {
	gross := revenue.Sub(cogs)
	return &ProfitLoss{
		BaseEntity:  shared.NewBaseEntity(),
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		Revenue:     revenue,
		COGS:        cogs,
		Expenses:    expenses,
		GrossProfit: gross,
		NetProfit:   gross.Sub(expenses),
	}
}
