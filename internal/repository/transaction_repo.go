// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"communityledger/internal/domain"

	"github.com/shopspring/decimal"
)

// WalletTotals aggregates the signed entry amounts of one wallet.
type WalletTotals struct {
	TotalIn          decimal.Decimal `db:"total_in"`
	TotalOut         decimal.Decimal `db:"total_out"`
	TransactionCount int64           `db:"transaction_count"`
}

// TransactionRepository defines the interface for ledger entry data operations.
type TransactionRepository interface {
	// CreateTransaction appends a new immutable ledger entry. A payment_ref
	// collision returns util.ErrDuplicateEntry.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.WalletTransaction) error
	// GetTransactionsByWalletID retrieves entries for a wallet, newest first,
	// along with the total count for pagination.
	GetTransactionsByWalletID(ctx context.Context, q DBExecutor, walletID int64, limit, offset int) ([]domain.WalletTransaction, int64, error)
	// GetTransactionByPaymentRef retrieves the entry carrying the given
	// external payment reference, if any.
	GetTransactionByPaymentRef(ctx context.Context, q DBExecutor, paymentRef string) (*domain.WalletTransaction, error)
	// GetWalletTotals aggregates credits, debits and entry count for a wallet.
	GetWalletTotals(ctx context.Context, q DBExecutor, walletID int64) (*WalletTotals, error)
}
