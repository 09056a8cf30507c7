// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"communityledger/internal/domain"
	"communityledger/internal/repository"
	"communityledger/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

const transactionColumns = `id, wallet_id, amount, balance_before, balance_after, kind,
		sponsorship_id, content_id, module_sale_id, payment_ref, description, created_at`

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// CreateTransaction appends a new ledger entry using the provided DBExecutor.
// A duplicate payment_ref surfaces as util.ErrDuplicateEntry; that is the
// loser of a concurrent webhook delivery race.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.WalletTransaction) error {
	query := `INSERT INTO wallet_transactions
              (wallet_id, amount, balance_before, balance_after, kind,
               sponsorship_id, content_id, module_sale_id, payment_ref, description, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.WalletID,
		transaction.Amount,
		transaction.BalanceBefore,
		transaction.BalanceAfter,
		transaction.Kind,
		transaction.SponsorshipID,
		transaction.ContentID,
		transaction.ModuleSaleID,
		transaction.PaymentRef,
		transaction.Description,
		transaction.CreatedAt,
	).Scan(&transaction.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: payment reference already recorded", util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create wallet transaction: %w", err)
	}
	return nil
}

// GetTransactionsByWalletID retrieves a paginated list of ledger entries for
// a wallet, newest first, plus the total count.
func (r *TransactionRepository) GetTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	transactions := []domain.WalletTransaction{}

	query := `SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	err := q.SelectContext(ctx, &transactions, query, walletID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for wallet %d: %w", walletID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM wallet_transactions WHERE wallet_id = $1`
	err = q.GetContext(ctx, &totalCount, countQuery, walletID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count for wallet %d: %w", walletID, err)
	}

	return transactions, totalCount, nil
}

// GetTransactionByPaymentRef retrieves the ledger entry carrying the given
// external payment reference using the provided DBExecutor.
func (r *TransactionRepository) GetTransactionByPaymentRef(ctx context.Context, q repository.DBExecutor, paymentRef string) (*domain.WalletTransaction, error) {
	var transaction domain.WalletTransaction
	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE payment_ref = $1`
	err := q.GetContext(ctx, &transaction, query, paymentRef)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by payment ref: %w", err)
	}
	return &transaction, nil
}

// GetWalletTotals aggregates credits, debits and entry count for a wallet.
func (r *TransactionRepository) GetWalletTotals(ctx context.Context, q repository.DBExecutor, walletID int64) (*repository.WalletTotals, error) {
	var totals repository.WalletTotals
	query := `SELECT
			COALESCE(SUM(amount) FILTER (WHERE amount > 0), 0) AS total_in,
			COALESCE(-SUM(amount) FILTER (WHERE amount < 0), 0) AS total_out,
			COUNT(*) AS transaction_count
		FROM wallet_transactions
		WHERE wallet_id = $1`
	err := q.GetContext(ctx, &totals, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate totals for wallet %d: %w", walletID, err)
	}
	return &totals, nil
}
