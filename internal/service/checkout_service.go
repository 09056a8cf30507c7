// internal/service/checkout_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"communityledger/internal/domain"
	"communityledger/internal/payments"
	"communityledger/internal/repository"
	"communityledger/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// amountTolerance is the largest difference allowed between the requested
// checkout amount and the approved pledge amount.
var amountTolerance = decimal.NewFromFloat(0.01)

// CheckoutService builds provider checkout sessions. Nothing here touches a
// wallet; ledger effects happen only on webhook settlement.
type CheckoutService interface {
	// CreateSponsorshipCheckout creates a provider session for an approved
	// sponsorship and claims it as payment_pending. Re-invocation while a
	// checkout is in flight fails with ErrCheckoutInFlight.
	CreateSponsorshipCheckout(ctx context.Context, sponsorshipID int64, amount decimal.Decimal, payerEmail string) (*payments.CheckoutHandle, error)
	// CreateTreasuryDonationCheckout creates a provider session for a
	// treasury donation. Stateless relative to the ledger; the metadata
	// carries everything settlement needs.
	CreateTreasuryDonationCheckout(ctx context.Context, communityID int64, amount decimal.Decimal, donor DonorInfo) (*payments.CheckoutHandle, error)
}

// checkoutService implements the CheckoutService interface.
type checkoutService struct {
	dbExecutor      repository.DBExecutor
	sponsorshipRepo repository.SponsorshipRepository
	communityRepo   repository.CommunityRepository
	provider        payments.Provider
	feePercent      decimal.Decimal
	currency        string
	logger          *slog.Logger
}

// NewCheckoutService creates a new instance of CheckoutService.
func NewCheckoutService(
	dbExecutor repository.DBExecutor,
	sponsorshipRepo repository.SponsorshipRepository,
	communityRepo repository.CommunityRepository,
	provider payments.Provider,
	feePercent decimal.Decimal,
	currency string,
	logger *slog.Logger,
) CheckoutService {
	return &checkoutService{
		dbExecutor:      dbExecutor,
		sponsorshipRepo: sponsorshipRepo,
		communityRepo:   communityRepo,
		provider:        provider,
		feePercent:      feePercent,
		currency:        currency,
		logger:          logger,
	}
}

// splitFee computes the platform fee and founder payout for a pledge amount.
func splitFee(amount, feePercent decimal.Decimal) (fee, founder decimal.Decimal) {
	fee = amount.Mul(feePercent).Div(decimal.NewFromInt(100)).Round(currencyScale)
	founder = amount.Sub(fee)
	return fee, founder
}

// CreateSponsorshipCheckout creates a checkout session for an approved
// sponsorship.
func (s *checkoutService) CreateSponsorshipCheckout(ctx context.Context, sponsorshipID int64, amount decimal.Decimal, payerEmail string) (*payments.CheckoutHandle, error) {
	sponsorship, err := s.sponsorshipRepo.GetSponsorshipByID(ctx, s.dbExecutor, sponsorshipID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("%w: sponsorship %d", util.ErrNotFound, sponsorshipID)
		}
		return nil, fmt.Errorf("sponsorship checkout: %w", err)
	}

	switch sponsorship.Status {
	case domain.SponsorshipStatusApproved:
		// proceed
	case domain.SponsorshipStatusPaymentPending:
		return nil, util.ErrCheckoutInFlight
	default:
		return nil, fmt.Errorf("%w: sponsorship %d is %s, want approved", util.ErrInvalidStatus, sponsorshipID, sponsorship.Status)
	}

	if amount.Sub(sponsorship.Amount).Abs().GreaterThan(amountTolerance) {
		return nil, fmt.Errorf("%w: requested %s does not match approved %s", util.ErrInvalidAmount, amount, sponsorship.Amount)
	}

	community, err := s.communityRepo.GetCommunityByID(ctx, s.dbExecutor, sponsorship.CommunityID)
	if err != nil {
		return nil, fmt.Errorf("sponsorship checkout: failed to get community %d: %w", sponsorship.CommunityID, err)
	}

	fee, founder := splitFee(sponsorship.Amount, s.feePercent)
	chargeTotal := sponsorship.Amount
	spec := payments.CheckoutSpec{
		Title:      fmt.Sprintf("Sponsorship of %s content", community.Name),
		Currency:   s.currency,
		PayerEmail: payerEmail,
		Metadata: payments.CheckoutMetadata{
			Kind:          payments.CheckoutKindSponsorship,
			SponsorshipID: sponsorship.ID,
		},
	}
	if community.StripeAccountID != nil && *community.StripeAccountID != "" {
		spec.TransferDestination = *community.StripeAccountID
		spec.ApplicationFee = fee
		if sponsorship.CoversFee {
			// The sponsor absorbs the fee so the founder nets the full pledge.
			chargeTotal = sponsorship.Amount.Add(fee)
			founder = sponsorship.Amount
		}
	}
	spec.AmountTotal = chargeTotal

	// Claim the pledge before talking to the provider so a concurrent call
	// cannot open a second session for it.
	claimed, err := s.sponsorshipRepo.TransitionStatus(ctx, s.dbExecutor, sponsorshipID,
		domain.SponsorshipStatusApproved, domain.SponsorshipStatusPaymentPending)
	if err != nil {
		return nil, fmt.Errorf("sponsorship checkout: %w", err)
	}
	if !claimed {
		return nil, util.ErrCheckoutInFlight
	}

	handle, err := s.provider.CreateCheckoutSession(ctx, spec)
	if err != nil {
		// Release the claim so the sponsor can retry once the provider recovers.
		if _, rerr := s.sponsorshipRepo.TransitionStatus(ctx, s.dbExecutor, sponsorshipID,
			domain.SponsorshipStatusPaymentPending, domain.SponsorshipStatusApproved); rerr != nil {
			s.logger.Error("Failed to release sponsorship checkout claim",
				"sponsorship_id", sponsorshipID, "error", rerr)
		}
		return nil, fmt.Errorf("sponsorship checkout: %w", err)
	}

	if err := s.sponsorshipRepo.SetCheckoutSession(ctx, s.dbExecutor, sponsorshipID, handle.SessionID, fee, founder); err != nil {
		return nil, fmt.Errorf("sponsorship checkout: failed to store session: %w", err)
	}

	s.logger.Info("Sponsorship checkout created",
		"sponsorship_id", sponsorshipID, "session_id", handle.SessionID,
		"charge_total", chargeTotal, "platform_fee", fee, "founder_amount", founder)
	return handle, nil
}

// CreateTreasuryDonationCheckout creates a checkout session for a treasury
// donation.
func (s *checkoutService) CreateTreasuryDonationCheckout(ctx context.Context, communityID int64, amount decimal.Decimal, donor DonorInfo) (*payments.CheckoutHandle, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: donation amount must be positive", util.ErrInvalidAmount)
	}
	if !amount.Equal(amount.Round(currencyScale)) {
		return nil, fmt.Errorf("%w: donation amount %s exceeds currency precision", util.ErrInvalidAmount, amount)
	}

	community, err := s.communityRepo.GetCommunityByID(ctx, s.dbExecutor, communityID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("%w: community %d", util.ErrNotFound, communityID)
		}
		return nil, fmt.Errorf("donation checkout: %w", err)
	}

	spec := payments.CheckoutSpec{
		Title:       fmt.Sprintf("Donation to the %s treasury", community.Name),
		AmountTotal: amount,
		Currency:    s.currency,
		PayerEmail:  donor.Email,
		Metadata: payments.CheckoutMetadata{
			Kind:        payments.CheckoutKindTreasuryDonation,
			CommunityID: communityID,
			DonationRef: uuid.NewString(),
			DonorName:   donor.Name,
			DonorEmail:  donor.Email,
		},
	}

	handle, err := s.provider.CreateCheckoutSession(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("donation checkout: %w", err)
	}

	s.logger.Info("Treasury donation checkout created",
		"community_id", communityID, "session_id", handle.SessionID, "amount", amount)
	return handle, nil
}
