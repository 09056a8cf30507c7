// internal/service/ledger_service.go
package service

import (
	"context"
	"fmt"

	"communityledger/internal/domain"
	"communityledger/internal/repository"
	"communityledger/internal/util"
	"communityledger/pkg/db"

	"github.com/shopspring/decimal"
)

// currencyScale is the number of decimal places a ledger amount may carry.
const currencyScale = 2

// LedgerService is the single authorized mutation path for wallet balances.
// Every balance change happens through ApplyEntry/ApplyLedgerEntry, which
// couples the balance write with an immutable transaction record in one
// database transaction.
type LedgerService interface {
	// GetOrCreateWallet returns the wallet for an owner key, creating it
	// lazily on first access. Safe under concurrent first access.
	GetOrCreateWallet(ctx context.Context, ownerType domain.OwnerType, ownerID *int64) (*domain.Wallet, error)
	// GetWallet retrieves a wallet by its ID.
	GetWallet(ctx context.Context, walletID int64) (*domain.Wallet, error)
	// ListTransactions retrieves a wallet's ledger history, newest first.
	ListTransactions(ctx context.Context, walletID int64, limit, offset int) ([]domain.WalletTransaction, int64, error)
	// SetWalletStatus freezes or unfreezes a wallet. A frozen wallet rejects
	// every mutator call until unfrozen; reads keep working.
	SetWalletStatus(ctx context.Context, walletID int64, status domain.WalletStatus) (*domain.Wallet, error)
	// ApplyLedgerEntry applies one signed entry in its own database
	// transaction.
	ApplyLedgerEntry(ctx context.Context, walletID int64, amount decimal.Decimal, kind domain.TransactionKind, links domain.EntryLinks, description string) (*domain.WalletTransaction, error)
	// ApplyEntry applies one signed entry inside the caller's transaction,
	// identified by q. The wallet row is locked first, so concurrent entries
	// against the same wallet serialize and an overdraft can never commit.
	ApplyEntry(ctx context.Context, q repository.DBExecutor, walletID int64, amount decimal.Decimal, kind domain.TransactionKind, links domain.EntryLinks, description string) (*domain.WalletTransaction, error)
}

// ledgerService implements the LedgerService interface.
type ledgerService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
	defaultCurrency string
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	defaultCurrency string,
) LedgerService {
	return &ledgerService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
		defaultCurrency: defaultCurrency,
	}
}

// GetOrCreateWallet returns the wallet for an owner key, creating one with a
// zero balance on first access. When two callers race on the same owner key
// the loser observes the winner's row.
func (s *ledgerService) GetOrCreateWallet(ctx context.Context, ownerType domain.OwnerType, ownerID *int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByOwner(ctx, s.dbExecutor, ownerType, ownerID)
	if err == nil {
		return wallet, nil
	}
	if !util.IsError(err, util.ErrNotFound) {
		return nil, fmt.Errorf("get or create wallet: %w", err)
	}

	newWallet := domain.NewWallet(ownerType, ownerID, s.defaultCurrency)
	err = s.walletRepo.CreateWallet(ctx, s.dbExecutor, newWallet)
	if err == nil {
		return newWallet, nil
	}
	if !util.IsError(err, util.ErrDuplicateEntry) {
		return nil, fmt.Errorf("get or create wallet: %w", err)
	}

	// Lost the creation race; the winner's row exists now.
	wallet, err = s.walletRepo.GetWalletByOwner(ctx, s.dbExecutor, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get or create wallet: re-read after lost race: %w", err)
	}
	return wallet, nil
}

// GetWallet retrieves a wallet by its ID.
func (s *ledgerService) GetWallet(ctx context.Context, walletID int64) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByID(ctx, s.dbExecutor, walletID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get wallet %d: %w", walletID, err)
	}
	return wallet, nil
}

// ListTransactions retrieves a paginated ledger history for a wallet.
func (s *ledgerService) ListTransactions(ctx context.Context, walletID int64, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	if _, err := s.GetWallet(ctx, walletID); err != nil {
		return nil, 0, err
	}
	transactions, totalCount, err := s.transactionRepo.GetTransactionsByWalletID(ctx, s.dbExecutor, walletID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions for wallet %d: %w", walletID, err)
	}
	return transactions, totalCount, nil
}

// SetWalletStatus freezes or unfreezes a wallet.
func (s *ledgerService) SetWalletStatus(ctx context.Context, walletID int64, status domain.WalletStatus) (*domain.Wallet, error) {
	if status != domain.WalletStatusActive && status != domain.WalletStatusFrozen {
		return nil, fmt.Errorf("%w: unknown wallet status %q", util.ErrInvalidInput, status)
	}
	if err := s.walletRepo.SetWalletStatus(ctx, s.dbExecutor, walletID, status); err != nil {
		return nil, fmt.Errorf("set wallet %d status: %w", walletID, err)
	}
	return s.GetWallet(ctx, walletID)
}

// ApplyLedgerEntry applies one signed entry in its own database transaction.
func (s *ledgerService) ApplyLedgerEntry(ctx context.Context, walletID int64, amount decimal.Decimal, kind domain.TransactionKind, links domain.EntryLinks, description string) (*domain.WalletTransaction, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("apply ledger entry: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("apply ledger entry: transaction controller does not implement DBExecutor")
	}

	entry, err := s.ApplyEntry(ctx, txExecutor, walletID, amount, kind, links, description)
	if err != nil {
		return nil, err
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("apply ledger entry: failed to commit transaction: %w", err)
	}
	return entry, nil
}

// ApplyEntry applies one signed entry inside the caller's transaction. The
// row lock taken here is what serializes concurrent mutations of a wallet:
// no two committed entries can have read the same balance.
func (s *ledgerService) ApplyEntry(ctx context.Context, q repository.DBExecutor, walletID int64, amount decimal.Decimal, kind domain.TransactionKind, links domain.EntryLinks, description string) (*domain.WalletTransaction, error) {
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: entry amount must be nonzero", util.ErrInvalidAmount)
	}
	if !amount.Equal(amount.Round(currencyScale)) {
		return nil, fmt.Errorf("%w: entry amount %s exceeds currency precision", util.ErrInvalidAmount, amount)
	}

	wallet, err := s.walletRepo.GetWalletByIDForUpdate(ctx, q, walletID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("apply entry: failed to lock wallet %d: %w", walletID, err)
	}
	if wallet.Status == domain.WalletStatusFrozen {
		return nil, util.ErrWalletFrozen
	}

	newBalance := wallet.Balance.Add(amount)
	if newBalance.IsNegative() {
		return nil, util.ErrInsufficientFunds
	}

	if err := s.walletRepo.SetWalletBalance(ctx, q, walletID, newBalance); err != nil {
		return nil, fmt.Errorf("apply entry: failed to update wallet balance: %w", err)
	}

	var desc *string
	if description != "" {
		desc = &description
	}
	entry := domain.NewWalletTransaction(walletID, amount, wallet.Balance, newBalance, kind, links, desc)
	if err := s.transactionRepo.CreateTransaction(ctx, q, entry); err != nil {
		return nil, fmt.Errorf("apply entry: failed to create transaction record: %w", err)
	}

	return entry, nil
}
