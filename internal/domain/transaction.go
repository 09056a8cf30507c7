// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionKind defines the kind of a ledger entry.
type TransactionKind string

const (
	TransactionKindDonation          TransactionKind = "donation"
	TransactionKindTreasurySpend     TransactionKind = "treasury_spend"
	TransactionKindModuleSaleShare   TransactionKind = "module_sale_share"
	TransactionKindSponsorshipPayout TransactionKind = "sponsorship_payout"
	TransactionKindPlatformFee       TransactionKind = "platform_fee"
)

// EntryLinks carries the optional references a ledger entry may point at.
// PaymentRef is the provider-side payment identifier used for idempotent
// webhook settlement; a partial unique index on it guarantees the same
// external payment is never credited twice.
type EntryLinks struct {
	SponsorshipID *int64
	ContentID     *int64
	ModuleSaleID  *int64
	PaymentRef    *string
}

// WalletTransaction is an immutable record of one balance change. Rows are
// append-only; balance_after always equals balance_before + amount and is
// never negative.
type WalletTransaction struct {
	ID            int64           `db:"id" json:"id"`
	WalletID      int64           `db:"wallet_id" json:"wallet_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"` // Signed; positive credits, negative debits
	BalanceBefore decimal.Decimal `db:"balance_before" json:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after" json:"balance_after"`
	Kind          TransactionKind `db:"kind" json:"kind"`
	SponsorshipID *int64          `db:"sponsorship_id" json:"sponsorship_id"`
	ContentID     *int64          `db:"content_id" json:"content_id"`
	ModuleSaleID  *int64          `db:"module_sale_id" json:"module_sale_id"`
	PaymentRef    *string         `db:"payment_ref" json:"payment_ref"`
	Description   *string         `db:"description" json:"description"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// NewWalletTransaction creates a new WalletTransaction instance.
func NewWalletTransaction(
	walletID int64,
	amount, balanceBefore, balanceAfter decimal.Decimal,
	kind TransactionKind,
	links EntryLinks,
	description *string,
) *WalletTransaction {
	return &WalletTransaction{
		WalletID:      walletID,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Kind:          kind,
		SponsorshipID: links.SponsorshipID,
		ContentID:     links.ContentID,
		ModuleSaleID:  links.ModuleSaleID,
		PaymentRef:    links.PaymentRef,
		Description:   description,
		CreatedAt:     time.Now().UTC(),
	}
}
