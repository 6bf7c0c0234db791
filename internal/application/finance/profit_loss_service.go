package finance

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/domain/finance"
	"github.com/erp/stockledger/internal/domain/trade"
)

// ProfitLossService aggregates revenue, cost of goods and expenses per period
type ProfitLossService struct {
	sales     trade.SalesOrderRepository
	purchases trade.PurchaseOrderRepository
	payments  finance.PaymentRepository
	reports   finance.ProfitLossRepository
	logger    *zap.Logger
}

// NewProfitLossService creates a new ProfitLossService
func NewProfitLossService(
	sales trade.SalesOrderRepository,
	purchases trade.PurchaseOrderRepository,
	payments finance.PaymentRepository,
	reports finance.ProfitLossRepository,
	logger *zap.Logger,
) *ProfitLossService {
	return &ProfitLossService{
		sales:     sales,
		purchases: purchases,
		payments:  payments,
		reports:   reports,
		logger:    logger,
	}
}

// ComputeProfitLoss totals the period and upserts the snapshot.
// Revenue counts shipped and delivered sales, cost of goods counts received purchases
// and expenses count DEBIT payments.
func (s *ProfitLossService) ComputeProfitLoss(ctx context.Context, start, end time.Time) (*finance.ProfitLoss, error) {
	period, err := finance.NewPeriod(start, end)
	if err != nil {
		return nil, err
	}
	from, until := period.From(), period.Until()

	revenue, err := s.sales.SumTotalByStatus(ctx, from, until,
		trade.SalesOrderStatusShipped, trade.SalesOrderStatusDelivered)
	if err != nil {
		return nil, err
	}
	cogs, err := s.purchases.SumTotalByStatus(ctx, from, until, trade.PurchaseOrderStatusReceived)
	if err != nil {
		return nil, err
	}
	expenses, err := s.payments.SumByType(ctx, finance.PaymentTypeDebit, from, until)
	if err != nil {
		return nil, err
	}

	report := finance.NewProfitLoss(period, revenue, cogs, expenses)
	if err := s.reports.Upsert(ctx, report); err != nil {
		return nil, err
	}

	s.logger.Info("profit and loss computed",
		zap.Time("period_start", period.Start),
		zap.Time("period_end", period.End),
		zap.String("net_profit", report.NetProfit.String()),
	)
	return report, nil
}

// GetProfitLoss returns a stored snapshot
func (s *ProfitLossService) GetProfitLoss(ctx context.Context, start, end time.Time) (*finance.ProfitLoss, error) {
	period, err := finance.NewPeriod(start, end)
	if err != nil {
		return nil, err
	}
	return s.reports.FindByPeriod(ctx, period.Start, period.End)
}
