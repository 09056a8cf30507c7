// internal/repository/sponsorship_repo.go
package repository

import (
	"context"
	"time"

	"communityledger/internal/domain"

	"github.com/shopspring/decimal"
)

// SponsorshipRepository defines the interface for sponsorship data operations.
//
// The conditional methods return (false, nil) when the row was not in the
// expected status; callers rely on that as the race-free once-only gate for
// checkout claims and webhook settlement.
type SponsorshipRepository interface {
	// GetSponsorshipByID retrieves a sponsorship by its ID.
	GetSponsorshipByID(ctx context.Context, q DBExecutor, id int64) (*domain.Sponsorship, error)
	// TransitionStatus moves a sponsorship from one status to another.
	// It reports whether the row was actually transitioned.
	TransitionStatus(ctx context.Context, q DBExecutor, id int64, from, to domain.SponsorshipStatus) (bool, error)
	// SetCheckoutSession stores the provider session id and the computed fee
	// split on a sponsorship awaiting payment.
	SetCheckoutSession(ctx context.Context, q DBExecutor, id int64, sessionID string, platformFee, founderAmount decimal.Decimal) error
	// MarkPaid settles a sponsorship: provider identifiers, fee split, paid
	// status and timestamp in one conditional write. Reports false when the
	// sponsorship was already paid.
	MarkPaid(ctx context.Context, q DBExecutor, id int64, sessionID, paymentIntentID string, platformFee, founderAmount decimal.Decimal, paidAt time.Time) (bool, error)
	// MarkPaidByTreasury settles a sponsorship out of the community treasury.
	// Reports false when the sponsorship was already paid.
	MarkPaidByTreasury(ctx context.Context, q DBExecutor, id int64, paidAt time.Time) (bool, error)
	// SetTransferID stores the resolved connected-account transfer id.
	SetTransferID(ctx context.Context, q DBExecutor, id int64, transferID string) error
}
