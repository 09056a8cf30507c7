// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"communityledger/internal/domain"
	"communityledger/internal/repository"
	"communityledger/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct{}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *sqlx.DB) repository.WalletRepository {
	return &WalletRepository{}
}

const walletColumns = `id, owner_type, owner_id, balance, currency, status, created_at, updated_at`

// CreateWallet inserts a new wallet using the provided DBExecutor.
// The insert races with concurrent first access on the same owner key; the
// loser gets no row back and returns util.ErrDuplicateEntry so the caller
// can re-read the winner's row.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (owner_type, owner_id, balance, currency, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              ON CONFLICT (owner_type, (COALESCE(owner_id, 0))) DO NOTHING
              RETURNING id`
	err := q.QueryRowContext(ctx, query,
		wallet.OwnerType, wallet.OwnerID, wallet.Balance, wallet.Currency, wallet.Status,
		wallet.CreatedAt, wallet.UpdatedAt,
	).Scan(&wallet.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return util.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetWalletByID retrieves a wallet by its ID using the provided DBExecutor.
func (r *WalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	err := q.GetContext(ctx, &wallet, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by ID %d: %w", id, err)
	}
	return &wallet, nil
}

// GetWalletByOwner retrieves a wallet by its owner key using the provided DBExecutor.
func (r *WalletRepository) GetWalletByOwner(ctx context.Context, q repository.DBExecutor, ownerType domain.OwnerType, ownerID *int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets
              WHERE owner_type = $1 AND COALESCE(owner_id, 0) = COALESCE($2::bigint, 0)`
	err := q.GetContext(ctx, &wallet, query, ownerType, ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet for owner %s: %w", ownerType, err)
	}
	return &wallet, nil
}

// GetWalletByIDForUpdate retrieves a wallet by ID and row-locks it until the
// surrounding transaction ends. This lock is the balance-update critical
// section; every mutator call takes it before reading the balance.
func (r *WalletRepository) GetWalletByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &wallet, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet %d: %w", id, err)
	}
	return &wallet, nil
}

// SetWalletBalance writes the new balance using the provided DBExecutor.
func (r *WalletRepository) SetWalletBalance(ctx context.Context, q repository.DBExecutor, walletID int64, balance decimal.Decimal) error {
	query := `UPDATE wallets SET balance = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, balance, time.Now().UTC(), walletID)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance for ID %d: %w", walletID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating wallet %d: %w", walletID, err)
	}
	if rowsAffected == 0 {
		return util.ErrWalletNotFound
	}
	return nil
}

// SetWalletStatus freezes or unfreezes a wallet using the provided DBExecutor.
func (r *WalletRepository) SetWalletStatus(ctx context.Context, q repository.DBExecutor, walletID int64, status domain.WalletStatus) error {
	query := `UPDATE wallets SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, status, time.Now().UTC(), walletID)
	if err != nil {
		return fmt.Errorf("failed to update wallet status for ID %d: %w", walletID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating wallet %d: %w", walletID, err)
	}
	if rowsAffected == 0 {
		return util.ErrWalletNotFound
	}
	return nil
}
