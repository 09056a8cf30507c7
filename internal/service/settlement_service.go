// internal/service/settlement_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"communityledger/internal/domain"
	"communityledger/internal/payments"
	"communityledger/internal/repository"
	"communityledger/internal/util"
	"communityledger/pkg/db"
)

// SettlementService applies verified payment-provider webhooks as durable
// ledger effects, exactly once per logical event regardless of how many
// times the provider delivers it.
type SettlementService interface {
	// HandleWebhook verifies and settles one inbound provider event.
	// Duplicate deliveries resolve as successful no-ops. Signature failures
	// and malformed payloads are permanent errors; storage failures are
	// transient and must make the caller signal the provider to retry.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// settlementService implements the SettlementService interface.
type settlementService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	provider        payments.Provider
	treasury        TreasuryService
	sponsorshipRepo repository.SponsorshipRepository
	contentRepo     repository.ContentRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
	logger          *slog.Logger
}

// NewSettlementService creates a new instance of SettlementService.
func NewSettlementService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	provider payments.Provider,
	treasury TreasuryService,
	sponsorshipRepo repository.SponsorshipRepository,
	contentRepo repository.ContentRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	logger *slog.Logger,
) SettlementService {
	return &settlementService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		provider:        provider,
		treasury:        treasury,
		sponsorshipRepo: sponsorshipRepo,
		contentRepo:     contentRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
		logger:          logger,
	}
}

// HandleWebhook verifies and settles one inbound provider event.
func (s *settlementService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	settled, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if settled == nil {
		// Verified event the ledger does not settle; acknowledge it.
		return nil
	}

	switch settled.Metadata.Kind {
	case payments.CheckoutKindSponsorship:
		return s.settleSponsorship(ctx, settled)
	case payments.CheckoutKindTreasuryDonation:
		return s.settleTreasuryDonation(ctx, settled)
	default:
		return fmt.Errorf("%w: no settlement branch for checkout kind %q", util.ErrInvalidInput, settled.Metadata.Kind)
	}
}

// settleSponsorship records a completed sponsorship payment. The provider
// already moved the money, so the ledger effect here is bookkeeping on the
// sponsorship record plus the content funding increment; the conditional
// MarkPaid write is the once-only gate.
func (s *settlementService) settleSponsorship(ctx context.Context, settled *payments.SettledPayment) error {
	sponsorshipID := settled.Metadata.SponsorshipID

	sponsorship, err := s.sponsorshipRepo.GetSponsorshipByID(ctx, s.dbExecutor, sponsorshipID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return fmt.Errorf("%w: sponsorship %d referenced by webhook", util.ErrNotFound, sponsorshipID)
		}
		return fmt.Errorf("settle sponsorship: %w", err)
	}
	if sponsorship.Status == domain.SponsorshipStatusPaid {
		s.logger.Info("Duplicate sponsorship settlement ignored", "sponsorship_id", sponsorshipID)
		return nil
	}

	// Prefer the amounts computed at checkout time; fall back to stored
	// pledge split when the checkout update never landed.
	fee := sponsorship.PlatformFeeAmount
	founder := sponsorship.FounderAmount
	if fee.IsZero() && founder.IsZero() {
		founder = sponsorship.Amount
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return fmt.Errorf("settle sponsorship: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return fmt.Errorf("settle sponsorship: transaction controller does not implement DBExecutor")
	}

	marked, err := s.sponsorshipRepo.MarkPaid(ctx, txExecutor, sponsorshipID,
		settled.SessionID, settled.PaymentIntentID, fee, founder, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("settle sponsorship: %w", err)
	}
	if !marked {
		// A concurrent delivery settled it between our read and this write.
		s.logger.Info("Duplicate sponsorship settlement ignored", "sponsorship_id", sponsorshipID)
		return nil
	}

	if err := s.contentRepo.AddFunding(ctx, txExecutor, sponsorship.ContentID, sponsorship.Amount); err != nil {
		return fmt.Errorf("settle sponsorship: failed to add content funding: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return fmt.Errorf("settle sponsorship: failed to commit transaction: %w", err)
	}

	s.logger.Info("Sponsorship settled",
		"sponsorship_id", sponsorshipID, "payment_intent", settled.PaymentIntentID,
		"platform_fee", fee, "founder_amount", founder)

	s.resolveTransfer(ctx, sponsorshipID, settled.PaymentIntentID)
	return nil
}

// resolveTransfer stores the connected-account transfer id when one exists.
// The lookup is informational; the provider already executed the money
// movement, so a failure here never fails the settlement.
func (s *settlementService) resolveTransfer(ctx context.Context, sponsorshipID int64, paymentIntentID string) {
	if paymentIntentID == "" {
		return
	}
	transferID, err := s.provider.ResolveTransferDestination(ctx, paymentIntentID)
	if err != nil {
		s.logger.Warn("Failed to resolve transfer destination",
			"sponsorship_id", sponsorshipID, "payment_intent", paymentIntentID, "error", err)
		return
	}
	if transferID == "" {
		return
	}
	if err := s.sponsorshipRepo.SetTransferID(ctx, s.dbExecutor, sponsorshipID, transferID); err != nil {
		s.logger.Warn("Failed to store transfer id",
			"sponsorship_id", sponsorshipID, "transfer_id", transferID, "error", err)
	}
}

// settleTreasuryDonation credits the community treasury for a completed
// donation checkout. The wallet mutation is authoritative here, so the
// idempotency guarantees live in TreasuryService.Donate.
func (s *settlementService) settleTreasuryDonation(ctx context.Context, settled *payments.SettledPayment) error {
	meta := settled.Metadata
	donor := DonorInfo{Name: meta.DonorName, Email: meta.DonorEmail}

	entry, err := s.treasury.Donate(ctx, meta.CommunityID, settled.AmountTotal, donor, settled.PaymentRef())
	if err != nil {
		return fmt.Errorf("settle treasury donation: %w", err)
	}

	s.logger.Info("Treasury donation settled",
		"community_id", meta.CommunityID, "payment_ref", settled.PaymentRef(),
		"amount", settled.AmountTotal, "transaction_id", entry.ID)
	return nil
}
