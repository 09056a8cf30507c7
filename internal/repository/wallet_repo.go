// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"communityledger/internal/domain"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// CreateWallet inserts a new wallet. When another caller created the
	// wallet for the same owner key first, it returns util.ErrDuplicateEntry
	// and writes nothing.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByID retrieves a wallet by its ID.
	GetWalletByID(ctx context.Context, q DBExecutor, id int64) (*domain.Wallet, error)
	// GetWalletByOwner retrieves a wallet by its (owner_type, owner_id) key.
	GetWalletByOwner(ctx context.Context, q DBExecutor, ownerType domain.OwnerType, ownerID *int64) (*domain.Wallet, error)
	// GetWalletByIDForUpdate retrieves a wallet by ID and row-locks it for
	// the duration of the surrounding transaction.
	GetWalletByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Wallet, error)
	// SetWalletBalance writes the new balance computed by the ledger service.
	SetWalletBalance(ctx context.Context, q DBExecutor, walletID int64, balance decimal.Decimal) error
	// SetWalletStatus freezes or unfreezes a wallet.
	SetWalletStatus(ctx context.Context, q DBExecutor, walletID int64, status domain.WalletStatus) error
}
