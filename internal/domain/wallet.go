// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// OwnerType identifies what kind of entity a wallet belongs to.
type OwnerType string

const (
	OwnerTypePlatform  OwnerType = "platform"
	OwnerTypeCommunity OwnerType = "community"
	OwnerTypeUser      OwnerType = "user"
)

// WalletStatus defines the lifecycle state of a wallet.
type WalletStatus string

const (
	WalletStatusActive WalletStatus = "active"
	WalletStatusFrozen WalletStatus = "frozen"
)

// Wallet is a balance-holding account scoped to the platform, a community,
// or a user. Exactly one wallet exists per (owner_type, owner_id) pair; the
// singleton platform wallet carries a NULL owner id. The balance is only
// ever changed through the ledger service, together with an immutable
// transaction record.
type Wallet struct {
	ID        int64           `db:"id" json:"id"`
	OwnerType OwnerType       `db:"owner_type" json:"owner_type"`
	OwnerID   *int64          `db:"owner_id" json:"owner_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"` // NUMERIC(20, 4), never negative
	Currency  string          `db:"currency" json:"currency"`
	Status    WalletStatus    `db:"status" json:"status"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet creates a new Wallet instance with a zero balance.
func NewWallet(ownerType OwnerType, ownerID *int64, currency string) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Balance:   decimal.Zero,
		Currency:  currency,
		Status:    WalletStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
