package finance

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/domain/finance"
)

// PaymentService records payments together with their ledger entry
type PaymentService struct {
	scope    TransactionScope
	payments finance.PaymentRepository
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(scope TransactionScope, payments finance.PaymentRepository, logger *zap.Logger) *PaymentService {
	return &PaymentService{scope: scope, payments: payments, logger: logger}
}

// CreatePayment validates the payment and stores it with exactly one PAYMENT entry in one transaction
func (s *PaymentService) CreatePayment(ctx context.Context, input CreatePaymentInput) (*finance.Payment, error) {
	payment, err := finance.NewPayment(finance.PaymentParams{
		VendorID:        input.VendorID,
		ClientID:        input.ClientID,
		Amount:          input.Amount,
		Type:            input.Type,
		Method:          input.Method,
		PaymentDate:     input.PaymentDate,
		ReferenceNumber: input.ReferenceNumber,
		Description:     input.Description,
	})
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Payments().Create(ctx, payment); err != nil {
			return err
		}
		return repos.LedgerEntries().Create(ctx, payment.LedgerEntry())
	})
	if err != nil {
		s.logger.Error("failed to record payment", zap.Error(err))
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("type", string(payment.Type)),
		zap.String("amount", payment.Amount.String()),
	)
	return payment, nil
}

// GetPayment returns a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	return s.payments.FindByID(ctx, id)
}
