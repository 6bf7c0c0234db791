package finance

import (
	"context"

	"github.com/erp/stockledger/internal/domain/finance"
)

// TransactionScope runs a unit of work against the finance repositories
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories share one database transaction
type TransactionalRepositories interface {
	Payments() finance.PaymentRepository
	LedgerEntries() finance.LedgerEntryRepository
}
