// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"
	"time"

	"communityledger/internal/domain"
	"communityledger/internal/payments"
	"communityledger/internal/repository"
	"communityledger/pkg/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockTxController is a mock transaction controller that also satisfies
// repository.DBExecutor, mirroring how *sqlx.Tx plays both roles.
type MockTxController struct {
	mock.Mock
	MockDBExecutor
}

func (m *MockTxController) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTxController) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// testTxFuncs returns injectable transaction functions bound to tx.
func testTxFuncs(tx *MockTxController) (db.BeginTxFunc, db.CommitTxFunc, db.RollbackTxFunc) {
	beginTx := func(ctx context.Context, dbConn db.DBTxBeginner) (db.TxController, error) {
		return tx, nil
	}
	commitTx := func(tc db.TxController) error {
		return tc.Commit()
	}
	rollbackTx := func(tc db.TxController) {
		_ = tc.Rollback()
	}
	return beginTx, commitTx, rollbackTx
}

// MockWalletRepository is a mock implementation of repository.WalletRepository.
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	args := m.Called(ctx, q, wallet)
	return args.Error(0)
}

func (m *MockWalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWalletByOwner(ctx context.Context, q repository.DBExecutor, ownerType domain.OwnerType, ownerID *int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, ownerType, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetWalletByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Wallet, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletRepository) SetWalletBalance(ctx context.Context, q repository.DBExecutor, walletID int64, balance decimal.Decimal) error {
	args := m.Called(ctx, q, walletID, balance)
	return args.Error(0)
}

func (m *MockWalletRepository) SetWalletStatus(ctx context.Context, q repository.DBExecutor, walletID int64, status domain.WalletStatus) error {
	args := m.Called(ctx, q, walletID, status)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.WalletTransaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetTransactionsByWalletID(ctx context.Context, q repository.DBExecutor, walletID int64, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	args := m.Called(ctx, q, walletID, limit, offset)
	return args.Get(0).([]domain.WalletTransaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) GetTransactionByPaymentRef(ctx context.Context, q repository.DBExecutor, paymentRef string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, q, paymentRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockTransactionRepository) GetWalletTotals(ctx context.Context, q repository.DBExecutor, walletID int64) (*repository.WalletTotals, error) {
	args := m.Called(ctx, q, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.WalletTotals), args.Error(1)
}

// MockSponsorshipRepository is a mock implementation of repository.SponsorshipRepository.
type MockSponsorshipRepository struct {
	mock.Mock
}

func (m *MockSponsorshipRepository) GetSponsorshipByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Sponsorship, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sponsorship), args.Error(1)
}

func (m *MockSponsorshipRepository) TransitionStatus(ctx context.Context, q repository.DBExecutor, id int64, from, to domain.SponsorshipStatus) (bool, error) {
	args := m.Called(ctx, q, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockSponsorshipRepository) SetCheckoutSession(ctx context.Context, q repository.DBExecutor, id int64, sessionID string, platformFee, founderAmount decimal.Decimal) error {
	args := m.Called(ctx, q, id, sessionID, platformFee, founderAmount)
	return args.Error(0)
}

func (m *MockSponsorshipRepository) MarkPaid(ctx context.Context, q repository.DBExecutor, id int64, sessionID, paymentIntentID string, platformFee, founderAmount decimal.Decimal, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, q, id, sessionID, paymentIntentID, platformFee, founderAmount, paidAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockSponsorshipRepository) MarkPaidByTreasury(ctx context.Context, q repository.DBExecutor, id int64, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, q, id, paidAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockSponsorshipRepository) SetTransferID(ctx context.Context, q repository.DBExecutor, id int64, transferID string) error {
	args := m.Called(ctx, q, id, transferID)
	return args.Error(0)
}

// MockContentRepository is a mock implementation of repository.ContentRepository.
type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) GetContentByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.CommunityContent, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommunityContent), args.Error(1)
}

func (m *MockContentRepository) AddFunding(ctx context.Context, q repository.DBExecutor, contentID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, q, contentID, amount)
	return args.Error(0)
}

// MockCommunityRepository is a mock implementation of repository.CommunityRepository.
type MockCommunityRepository struct {
	mock.Mock
}

func (m *MockCommunityRepository) GetCommunityByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Community, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Community), args.Error(1)
}

func (m *MockCommunityRepository) GetMemberRole(ctx context.Context, q repository.DBExecutor, communityID, userID int64) (domain.MemberRole, error) {
	args := m.Called(ctx, q, communityID, userID)
	return args.Get(0).(domain.MemberRole), args.Error(1)
}

// MockProvider is a mock implementation of payments.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, spec payments.CheckoutSpec) (*payments.CheckoutHandle, error) {
	args := m.Called(ctx, spec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.CheckoutHandle), args.Error(1)
}

func (m *MockProvider) ParseWebhook(payload []byte, signature string) (*payments.SettledPayment, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.SettledPayment), args.Error(1)
}

func (m *MockProvider) ResolveTransferDestination(ctx context.Context, paymentIntentID string) (string, error) {
	args := m.Called(ctx, paymentIntentID)
	return args.String(0), args.Error(1)
}

// MockLedgerService is a mock implementation of LedgerService.
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) GetOrCreateWallet(ctx context.Context, ownerType domain.OwnerType, ownerID *int64) (*domain.Wallet, error) {
	args := m.Called(ctx, ownerType, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockLedgerService) GetWallet(ctx context.Context, walletID int64) (*domain.Wallet, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, walletID int64, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	args := m.Called(ctx, walletID, limit, offset)
	return args.Get(0).([]domain.WalletTransaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerService) SetWalletStatus(ctx context.Context, walletID int64, status domain.WalletStatus) (*domain.Wallet, error) {
	args := m.Called(ctx, walletID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockLedgerService) ApplyLedgerEntry(ctx context.Context, walletID int64, amount decimal.Decimal, kind domain.TransactionKind, links domain.EntryLinks, description string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, walletID, amount, kind, links, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockLedgerService) ApplyEntry(ctx context.Context, q repository.DBExecutor, walletID int64, amount decimal.Decimal, kind domain.TransactionKind, links domain.EntryLinks, description string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, q, walletID, amount, kind, links, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

// MockTreasuryService is a mock implementation of TreasuryService.
type MockTreasuryService struct {
	mock.Mock
}

func (m *MockTreasuryService) Donate(ctx context.Context, communityID int64, amount decimal.Decimal, donor DonorInfo, paymentRef string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, communityID, amount, donor, paymentRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockTreasuryService) Spend(ctx context.Context, communityID, contentID int64, amount decimal.Decimal, sponsorshipID *int64, actorID int64, description string) (*domain.WalletTransaction, error) {
	args := m.Called(ctx, communityID, contentID, amount, sponsorshipID, actorID, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WalletTransaction), args.Error(1)
}

func (m *MockTreasuryService) GetStats(ctx context.Context, communityID, requesterID int64) (*TreasurySummary, error) {
	args := m.Called(ctx, communityID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*TreasurySummary), args.Error(1)
}
