// internal/payments/provider.go
package payments

import (
	"context"
	"fmt"
	"strconv"

	"communityledger/internal/util"

	"github.com/shopspring/decimal"
)

// CheckoutKind tags what a checkout session pays for. It is decided once at
// checkout-creation time, carried verbatim through provider metadata, and
// switched on during settlement.
type CheckoutKind string

const (
	CheckoutKindSponsorship      CheckoutKind = "sponsorship"
	CheckoutKindTreasuryDonation CheckoutKind = "treasury_donation"
)

// CheckoutMetadata is the typed form of the provider-visible metadata that
// correlates a webhook event back to the record it settles.
type CheckoutMetadata struct {
	Kind          CheckoutKind
	SponsorshipID int64  // set for sponsorship checkouts
	CommunityID   int64  // set for treasury donation checkouts
	DonationRef   string // correlation id for treasury donations
	DonorName     string
	DonorEmail    string
}

const (
	metaKeyKind          = "checkout_kind"
	metaKeySponsorshipID = "sponsorship_id"
	metaKeyCommunityID   = "community_id"
	metaKeyDonationRef   = "donation_ref"
	metaKeyDonorName     = "donor_name"
	metaKeyDonorEmail    = "donor_email"
)

// ToMap encodes the metadata for the provider session.
func (m CheckoutMetadata) ToMap() map[string]string {
	out := map[string]string{metaKeyKind: string(m.Kind)}
	switch m.Kind {
	case CheckoutKindSponsorship:
		out[metaKeySponsorshipID] = strconv.FormatInt(m.SponsorshipID, 10)
	case CheckoutKindTreasuryDonation:
		out[metaKeyCommunityID] = strconv.FormatInt(m.CommunityID, 10)
		out[metaKeyDonationRef] = m.DonationRef
		if m.DonorName != "" {
			out[metaKeyDonorName] = m.DonorName
		}
		if m.DonorEmail != "" {
			out[metaKeyDonorEmail] = m.DonorEmail
		}
	}
	return out
}

// ParseCheckoutMetadata decodes and validates provider metadata. Anything
// malformed is a permanent rejection; retries cannot fix a payload that was
// written wrong at checkout-creation time.
func ParseCheckoutMetadata(raw map[string]string) (CheckoutMetadata, error) {
	meta := CheckoutMetadata{
		Kind:        CheckoutKind(raw[metaKeyKind]),
		DonationRef: raw[metaKeyDonationRef],
		DonorName:   raw[metaKeyDonorName],
		DonorEmail:  raw[metaKeyDonorEmail],
	}

	switch meta.Kind {
	case CheckoutKindSponsorship:
		id, err := strconv.ParseInt(raw[metaKeySponsorshipID], 10, 64)
		if err != nil || id <= 0 {
			return CheckoutMetadata{}, fmt.Errorf("%w: bad sponsorship id in checkout metadata", util.ErrInvalidInput)
		}
		meta.SponsorshipID = id
	case CheckoutKindTreasuryDonation:
		id, err := strconv.ParseInt(raw[metaKeyCommunityID], 10, 64)
		if err != nil || id <= 0 {
			return CheckoutMetadata{}, fmt.Errorf("%w: bad community id in checkout metadata", util.ErrInvalidInput)
		}
		if raw[metaKeyDonationRef] == "" {
			return CheckoutMetadata{}, fmt.Errorf("%w: missing donation ref in checkout metadata", util.ErrInvalidInput)
		}
		meta.CommunityID = id
	default:
		return CheckoutMetadata{}, fmt.Errorf("%w: unknown checkout kind %q", util.ErrInvalidInput, raw[metaKeyKind])
	}
	return meta, nil
}

// CheckoutSpec describes the session to create with the provider.
type CheckoutSpec struct {
	Title       string
	AmountTotal decimal.Decimal // total the payer is charged
	Currency    string
	PayerEmail  string
	// ApplicationFee and TransferDestination are only set when the payout
	// recipient has a connected account.
	ApplicationFee      decimal.Decimal
	TransferDestination string
	Metadata            CheckoutMetadata
}

// CheckoutHandle is the redirect handle returned to the caller.
type CheckoutHandle struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// SettledPayment is a verified, completed checkout extracted from a webhook
// payload.
type SettledPayment struct {
	SessionID       string
	PaymentIntentID string
	AmountTotal     decimal.Decimal
	Currency        string
	Metadata        CheckoutMetadata
}

// PaymentRef returns the identifier used for idempotent settlement: the
// payment intent when present, otherwise the session id.
func (p *SettledPayment) PaymentRef() string {
	if p.PaymentIntentID != "" {
		return p.PaymentIntentID
	}
	return p.SessionID
}

// Provider is the payment-provider contract the ledger core depends on.
// Implementations must be safe for concurrent use; they are injected, never
// reached through package-level state.
type Provider interface {
	// CreateCheckoutSession creates a hosted checkout session and returns
	// the redirect handle.
	CreateCheckoutSession(ctx context.Context, spec CheckoutSpec) (*CheckoutHandle, error)
	// ParseWebhook verifies the payload signature and extracts the settled
	// payment. It returns (nil, nil) for verified events the ledger does not
	// settle, and util.ErrSignatureInvalid when verification fails.
	ParseWebhook(payload []byte, signature string) (*SettledPayment, error)
	// ResolveTransferDestination looks up the connected-account transfer
	// created for a payment, returning "" when none exists. Informational;
	// callers must tolerate failure.
	ResolveTransferDestination(ctx context.Context, paymentIntentID string) (string, error)
}
