// internal/domain/sponsorship.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SponsorshipStatus defines the lifecycle state of a sponsorship pledge.
// Transitions: pending -> approved -> payment_pending -> paid, or
// pending/approved -> rejected. Paid and rejected are terminal.
type SponsorshipStatus string

const (
	SponsorshipStatusPending        SponsorshipStatus = "pending"
	SponsorshipStatusApproved       SponsorshipStatus = "approved"
	SponsorshipStatusPaymentPending SponsorshipStatus = "payment_pending"
	SponsorshipStatusPaid           SponsorshipStatus = "paid"
	SponsorshipStatusRejected       SponsorshipStatus = "rejected"
)

// Sponsorship is a pledge to fund a piece of community content. The fee
// split and provider identifiers are filled in during checkout creation
// and webhook settlement; FundedByTreasury marks pledges paid out of the
// community treasury instead of an external payment.
type Sponsorship struct {
	ID                  int64             `db:"id" json:"id"`
	CommunityID         int64             `db:"community_id" json:"community_id"`
	ContentID           int64             `db:"content_id" json:"content_id"`
	SponsorID           int64             `db:"sponsor_id" json:"sponsor_id"`
	BrandName           *string           `db:"brand_name" json:"brand_name"`
	BrandURL            *string           `db:"brand_url" json:"brand_url"`
	Amount              decimal.Decimal   `db:"amount" json:"amount"`
	Status              SponsorshipStatus `db:"status" json:"status"`
	CoversFee           bool              `db:"covers_fee" json:"covers_fee"`
	PlatformFeeAmount   decimal.Decimal   `db:"platform_fee_amount" json:"platform_fee_amount"`
	FounderAmount       decimal.Decimal   `db:"founder_amount" json:"founder_amount"`
	StripeSessionID     *string           `db:"stripe_session_id" json:"stripe_session_id"`
	StripePaymentIntent *string           `db:"stripe_payment_intent" json:"stripe_payment_intent"`
	StripeTransferID    *string           `db:"stripe_transfer_id" json:"stripe_transfer_id"`
	FundedByTreasury    bool              `db:"funded_by_treasury" json:"funded_by_treasury"`
	PaidAt              *time.Time        `db:"paid_at" json:"paid_at"`
	CreatedAt           time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time         `db:"updated_at" json:"updated_at"`
}
