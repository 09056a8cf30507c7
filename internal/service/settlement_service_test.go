// internal/service/settlement_service_test.go
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"communityledger/internal/domain"
	"communityledger/internal/payments"
	"communityledger/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type settlementMocks struct {
	provider        *MockProvider
	treasury        *MockTreasuryService
	sponsorshipRepo *MockSponsorshipRepository
	contentRepo     *MockContentRepository
	tx              *MockTxController
}

func newTestSettlementService() (SettlementService, *settlementMocks) {
	m := &settlementMocks{
		provider:        new(MockProvider),
		treasury:        new(MockTreasuryService),
		sponsorshipRepo: new(MockSponsorshipRepository),
		contentRepo:     new(MockContentRepository),
		tx:              new(MockTxController),
	}
	beginTx, commitTx, rollbackTx := testTxFuncs(m.tx)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewSettlementService(nil, new(MockDBExecutor), m.provider, m.treasury,
		m.sponsorshipRepo, m.contentRepo, beginTx, commitTx, rollbackTx, logger)
	return svc, m
}

func settledSponsorshipPayment(sponsorshipID int64) *payments.SettledPayment {
	return &payments.SettledPayment{
		SessionID:       "cs_1",
		PaymentIntentID: "pi_1",
		AmountTotal:     decimal.NewFromInt(100),
		Currency:        "USD",
		Metadata: payments.CheckoutMetadata{
			Kind:          payments.CheckoutKindSponsorship,
			SponsorshipID: sponsorshipID,
		},
	}
}

func pendingSponsorship(id int64) *domain.Sponsorship {
	return &domain.Sponsorship{
		ID:                id,
		CommunityID:       42,
		ContentID:         8,
		SponsorID:         3,
		Amount:            decimal.NewFromInt(100),
		Status:            domain.SponsorshipStatusPaymentPending,
		PlatformFeeAmount: decimal.NewFromInt(10),
		FounderAmount:     decimal.NewFromInt(90),
	}
}

func TestSettlementService_HandleWebhook_IgnoredEvent(t *testing.T) {
	svc, m := newTestSettlementService()

	m.provider.On("ParseWebhook", []byte("{}"), "sig").Return(nil, nil)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	m.sponsorshipRepo.AssertNotCalled(t, "GetSponsorshipByID", mock.Anything, mock.Anything, mock.Anything)
	m.treasury.AssertNotCalled(t, "Donate",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettlementService_HandleWebhook_BadSignature(t *testing.T) {
	svc, m := newTestSettlementService()

	m.provider.On("ParseWebhook", mock.Anything, "bad").Return(nil, util.ErrSignatureInvalid)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "bad")

	assert.ErrorIs(t, err, util.ErrSignatureInvalid)
}

func TestSettlementService_HandleWebhook_SettlesSponsorship(t *testing.T) {
	svc, m := newTestSettlementService()

	settled := settledSponsorshipPayment(17)
	m.provider.On("ParseWebhook", mock.Anything, "sig").Return(settled, nil)
	m.sponsorshipRepo.On("GetSponsorshipByID", mock.Anything, mock.Anything, int64(17)).Return(pendingSponsorship(17), nil)
	m.sponsorshipRepo.On("MarkPaid", mock.Anything, m.tx, int64(17), "cs_1", "pi_1",
		decimalEq(decimal.NewFromInt(10)), decimalEq(decimal.NewFromInt(90)), mock.AnythingOfType("time.Time")).
		Return(true, nil)
	m.contentRepo.On("AddFunding", mock.Anything, m.tx, int64(8), decimalEq(decimal.NewFromInt(100))).Return(nil)
	m.tx.On("Commit").Return(nil)
	m.tx.On("Rollback").Return(nil)
	m.provider.On("ResolveTransferDestination", mock.Anything, "pi_1").Return("tr_1", nil)
	m.sponsorshipRepo.On("SetTransferID", mock.Anything, mock.Anything, int64(17), "tr_1").Return(nil)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	m.sponsorshipRepo.AssertExpectations(t)
	m.contentRepo.AssertExpectations(t)
	m.tx.AssertCalled(t, "Commit")
}

func TestSettlementService_HandleWebhook_SponsorshipAlreadyPaid(t *testing.T) {
	svc, m := newTestSettlementService()

	paid := pendingSponsorship(17)
	paid.Status = domain.SponsorshipStatusPaid
	m.provider.On("ParseWebhook", mock.Anything, "sig").Return(settledSponsorshipPayment(17), nil)
	m.sponsorshipRepo.On("GetSponsorshipByID", mock.Anything, mock.Anything, int64(17)).Return(paid, nil)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	m.sponsorshipRepo.AssertNotCalled(t, "MarkPaid",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.contentRepo.AssertNotCalled(t, "AddFunding", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettlementService_HandleWebhook_ConcurrentSettlementLosesMarkRace(t *testing.T) {
	svc, m := newTestSettlementService()

	m.provider.On("ParseWebhook", mock.Anything, "sig").Return(settledSponsorshipPayment(17), nil)
	m.sponsorshipRepo.On("GetSponsorshipByID", mock.Anything, mock.Anything, int64(17)).Return(pendingSponsorship(17), nil)
	m.sponsorshipRepo.On("MarkPaid", mock.Anything, m.tx, int64(17), "cs_1", "pi_1",
		mock.Anything, mock.Anything, mock.AnythingOfType("time.Time")).Return(false, nil)
	m.tx.On("Rollback").Return(nil)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	m.contentRepo.AssertNotCalled(t, "AddFunding", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.tx.AssertNotCalled(t, "Commit")
}

func TestSettlementService_HandleWebhook_FallsBackToPledgeSplit(t *testing.T) {
	svc, m := newTestSettlementService()

	// Checkout never stored a split; the founder is owed the whole pledge.
	sponsorship := pendingSponsorship(17)
	sponsorship.PlatformFeeAmount = decimal.Zero
	sponsorship.FounderAmount = decimal.Zero

	m.provider.On("ParseWebhook", mock.Anything, "sig").Return(settledSponsorshipPayment(17), nil)
	m.sponsorshipRepo.On("GetSponsorshipByID", mock.Anything, mock.Anything, int64(17)).Return(sponsorship, nil)
	m.sponsorshipRepo.On("MarkPaid", mock.Anything, m.tx, int64(17), "cs_1", "pi_1",
		decimalEq(decimal.Zero), decimalEq(decimal.NewFromInt(100)), mock.AnythingOfType("time.Time")).
		Return(true, nil)
	m.contentRepo.On("AddFunding", mock.Anything, m.tx, int64(8), mock.Anything).Return(nil)
	m.tx.On("Commit").Return(nil)
	m.tx.On("Rollback").Return(nil)
	m.provider.On("ResolveTransferDestination", mock.Anything, "pi_1").Return("", nil)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	m.sponsorshipRepo.AssertExpectations(t)
	m.sponsorshipRepo.AssertNotCalled(t, "SetTransferID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettlementService_HandleWebhook_TransferLookupFailureTolerated(t *testing.T) {
	svc, m := newTestSettlementService()

	m.provider.On("ParseWebhook", mock.Anything, "sig").Return(settledSponsorshipPayment(17), nil)
	m.sponsorshipRepo.On("GetSponsorshipByID", mock.Anything, mock.Anything, int64(17)).Return(pendingSponsorship(17), nil)
	m.sponsorshipRepo.On("MarkPaid", mock.Anything, m.tx, int64(17), "cs_1", "pi_1",
		mock.Anything, mock.Anything, mock.AnythingOfType("time.Time")).Return(true, nil)
	m.contentRepo.On("AddFunding", mock.Anything, m.tx, int64(8), mock.Anything).Return(nil)
	m.tx.On("Commit").Return(nil)
	m.tx.On("Rollback").Return(nil)
	m.provider.On("ResolveTransferDestination", mock.Anything, "pi_1").Return("", errors.New("stripe is down"))

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")

	// The transfer id is informational; the settlement already committed.
	require.NoError(t, err)
	m.sponsorshipRepo.AssertNotCalled(t, "SetTransferID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettlementService_HandleWebhook_SettlesTreasuryDonation(t *testing.T) {
	svc, m := newTestSettlementService()

	settled := &payments.SettledPayment{
		SessionID:       "cs_9",
		PaymentIntentID: "pi_9",
		AmountTotal:     decimal.RequireFromString("25.50"),
		Currency:        "USD",
		Metadata: payments.CheckoutMetadata{
			Kind:        payments.CheckoutKindTreasuryDonation,
			CommunityID: 42,
			DonationRef: "ref-1",
			DonorName:   "Dana",
			DonorEmail:  "dana@example.com",
		},
	}
	m.provider.On("ParseWebhook", mock.Anything, "sig").Return(settled, nil)
	m.treasury.On("Donate", mock.Anything, int64(42), decimalEq(decimal.RequireFromString("25.50")),
		DonorInfo{Name: "Dana", Email: "dana@example.com"}, "pi_9").
		Return(&domain.WalletTransaction{ID: 99}, nil)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")

	require.NoError(t, err)
	m.treasury.AssertExpectations(t)
}

func TestSettlementService_HandleWebhook_DonationStorageFailurePropagates(t *testing.T) {
	svc, m := newTestSettlementService()

	settled := &payments.SettledPayment{
		SessionID:   "cs_9",
		AmountTotal: decimal.NewFromInt(25),
		Metadata: payments.CheckoutMetadata{
			Kind:        payments.CheckoutKindTreasuryDonation,
			CommunityID: 42,
			DonationRef: "ref-1",
		},
	}
	m.provider.On("ParseWebhook", mock.Anything, "sig").Return(settled, nil)
	m.treasury.On("Donate", mock.Anything, int64(42), mock.Anything, mock.Anything, "cs_9").
		Return(nil, errors.New("db unavailable"))

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")

	// The caller must see the failure so the provider redelivers.
	require.Error(t, err)
}

func TestSettlementService_HandleWebhook_UnknownCheckoutKind(t *testing.T) {
	svc, m := newTestSettlementService()

	settled := &payments.SettledPayment{
		SessionID: "cs_1",
		Metadata:  payments.CheckoutMetadata{Kind: payments.CheckoutKind("refund")},
	}
	m.provider.On("ParseWebhook", mock.Anything, "sig").Return(settled, nil)

	err := svc.HandleWebhook(context.Background(), []byte("{}"), "sig")

	assert.ErrorIs(t, err, util.ErrInvalidInput)
}
