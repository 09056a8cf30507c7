// internal/service/treasury_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"communityledger/internal/domain"
	"communityledger/internal/repository"
	"communityledger/internal/util"
	"communityledger/pkg/db"

	"github.com/shopspring/decimal"
)

// DonorInfo identifies an external donor for ledger descriptions.
type DonorInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TreasurySummary aggregates a community treasury for member dashboards.
type TreasurySummary struct {
	WalletID         int64           `json:"wallet_id"`
	Balance          decimal.Decimal `json:"balance"`
	Currency         string          `json:"currency"`
	TotalIn          decimal.Decimal `json:"total_in"`
	TotalOut         decimal.Decimal `json:"total_out"`
	TransactionCount int64           `json:"transaction_count"`
}

// TreasuryService implements donate-to-community and spend-from-community on
// top of the ledger service.
type TreasuryService interface {
	// Donate credits the community treasury. Idempotent per paymentRef: a
	// repeated call with the same reference returns the original entry and
	// credits nothing.
	Donate(ctx context.Context, communityID int64, amount decimal.Decimal, donor DonorInfo, paymentRef string) (*domain.WalletTransaction, error)
	// Spend debits the community treasury to fund a piece of content. The
	// actor must hold an admin or moderator role. On success the linked
	// sponsorship (if any) is marked paid and funded by treasury, and the
	// content's accumulated funding grows by amount, all atomically with the
	// ledger entry.
	Spend(ctx context.Context, communityID, contentID int64, amount decimal.Decimal, sponsorshipID *int64, actorID int64, description string) (*domain.WalletTransaction, error)
	// GetStats returns the treasury summary. The requester must be a member
	// of the community.
	GetStats(ctx context.Context, communityID, requesterID int64) (*TreasurySummary, error)
}

// treasuryService implements the TreasuryService interface.
type treasuryService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	ledger          LedgerService
	transactionRepo repository.TransactionRepository
	sponsorshipRepo repository.SponsorshipRepository
	contentRepo     repository.ContentRepository
	communityRepo   repository.CommunityRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewTreasuryService creates a new instance of TreasuryService.
func NewTreasuryService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	ledger LedgerService,
	transactionRepo repository.TransactionRepository,
	sponsorshipRepo repository.SponsorshipRepository,
	contentRepo repository.ContentRepository,
	communityRepo repository.CommunityRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) TreasuryService {
	return &treasuryService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		ledger:          ledger,
		transactionRepo: transactionRepo,
		sponsorshipRepo: sponsorshipRepo,
		contentRepo:     contentRepo,
		communityRepo:   communityRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// Donate credits the community treasury with an external payment.
//
// Idempotency works in two layers: the cheap pre-check catches ordinary
// redeliveries, and the unique index on payment_ref catches the race where
// two deliveries pass the pre-check concurrently; the losing insert comes
// back as ErrDuplicateEntry and is resolved as a no-op.
func (s *treasuryService) Donate(ctx context.Context, communityID int64, amount decimal.Decimal, donor DonorInfo, paymentRef string) (*domain.WalletTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: donation amount must be positive", util.ErrInvalidAmount)
	}
	if paymentRef == "" {
		return nil, fmt.Errorf("%w: donation requires an external payment reference", util.ErrInvalidInput)
	}

	existing, err := s.transactionRepo.GetTransactionByPaymentRef(ctx, s.dbExecutor, paymentRef)
	if err == nil {
		return existing, nil
	}
	if !util.IsError(err, util.ErrNotFound) {
		return nil, fmt.Errorf("donate: failed to check payment reference: %w", err)
	}

	wallet, err := s.ledger.GetOrCreateWallet(ctx, domain.OwnerTypeCommunity, &communityID)
	if err != nil {
		return nil, fmt.Errorf("donate: %w", err)
	}

	description := "Treasury donation"
	if donor.Name != "" {
		description = fmt.Sprintf("Treasury donation from %s", donor.Name)
	}

	entry, err := s.ledger.ApplyLedgerEntry(ctx, wallet.ID, amount, domain.TransactionKindDonation,
		domain.EntryLinks{PaymentRef: &paymentRef}, description)
	if err != nil {
		if util.IsError(err, util.ErrDuplicateEntry) {
			// Concurrent delivery of the same payment won the insert race.
			existing, rerr := s.transactionRepo.GetTransactionByPaymentRef(ctx, s.dbExecutor, paymentRef)
			if rerr != nil {
				return nil, fmt.Errorf("donate: failed to read already-applied donation: %w", rerr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("donate: %w", err)
	}
	return entry, nil
}

// Spend debits the community treasury to fund content.
func (s *treasuryService) Spend(ctx context.Context, communityID, contentID int64, amount decimal.Decimal, sponsorshipID *int64, actorID int64, description string) (*domain.WalletTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: spend amount must be positive", util.ErrInvalidAmount)
	}

	role, err := s.communityRepo.GetMemberRole(ctx, s.dbExecutor, communityID, actorID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrForbidden
		}
		return nil, fmt.Errorf("spend: failed to check member role: %w", err)
	}
	if !role.CanManageTreasury() {
		return nil, util.ErrForbidden
	}

	content, err := s.contentRepo.GetContentByID(ctx, s.dbExecutor, contentID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("%w: content %d", util.ErrNotFound, contentID)
		}
		return nil, fmt.Errorf("spend: failed to get content %d: %w", contentID, err)
	}
	if content.CommunityID != communityID {
		return nil, fmt.Errorf("%w: content %d does not belong to community %d", util.ErrInvalidInput, contentID, communityID)
	}

	wallet, err := s.ledger.GetOrCreateWallet(ctx, domain.OwnerTypeCommunity, &communityID)
	if err != nil {
		return nil, fmt.Errorf("spend: %w", err)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("spend: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("spend: transaction controller does not implement DBExecutor")
	}

	entry, err := s.ledger.ApplyEntry(ctx, txExecutor, wallet.ID, amount.Neg(), domain.TransactionKindTreasurySpend,
		domain.EntryLinks{SponsorshipID: sponsorshipID, ContentID: &contentID}, description)
	if err != nil {
		// InsufficientFunds surfaces verbatim; the rollback guarantees the
		// sponsorship and content were not touched either.
		return nil, err
	}

	if sponsorshipID != nil {
		settled, err := s.sponsorshipRepo.MarkPaidByTreasury(ctx, txExecutor, *sponsorshipID, time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("spend: failed to settle sponsorship %d: %w", *sponsorshipID, err)
		}
		if !settled {
			return nil, fmt.Errorf("%w: sponsorship %d is already paid", util.ErrInvalidStatus, *sponsorshipID)
		}
	}

	if err := s.contentRepo.AddFunding(ctx, txExecutor, contentID, amount); err != nil {
		return nil, fmt.Errorf("spend: failed to add funding to content %d: %w", contentID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("spend: failed to commit transaction: %w", err)
	}
	return entry, nil
}

// GetStats returns the treasury summary for community members.
func (s *treasuryService) GetStats(ctx context.Context, communityID, requesterID int64) (*TreasurySummary, error) {
	if _, err := s.communityRepo.GetMemberRole(ctx, s.dbExecutor, communityID, requesterID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrForbidden
		}
		return nil, fmt.Errorf("treasury stats: failed to check membership: %w", err)
	}

	wallet, err := s.ledger.GetOrCreateWallet(ctx, domain.OwnerTypeCommunity, &communityID)
	if err != nil {
		return nil, fmt.Errorf("treasury stats: %w", err)
	}

	totals, err := s.transactionRepo.GetWalletTotals(ctx, s.dbExecutor, wallet.ID)
	if err != nil {
		return nil, fmt.Errorf("treasury stats: %w", err)
	}

	return &TreasurySummary{
		WalletID:         wallet.ID,
		Balance:          wallet.Balance,
		Currency:         wallet.Currency,
		TotalIn:          totals.TotalIn,
		TotalOut:         totals.TotalOut,
		TransactionCount: totals.TransactionCount,
	}, nil
}
