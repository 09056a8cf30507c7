// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "communityledger/internal/api"
	"communityledger/internal/api/handler"
	"communityledger/internal/config"
	"communityledger/internal/payments"
	"communityledger/internal/repository"
	"communityledger/internal/repository/postgres"
	"communityledger/internal/service"
	"communityledger/internal/util"
	"communityledger/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository
	SponsorshipRepository repository.SponsorshipRepository
	ContentRepository     repository.ContentRepository
	CommunityRepository   repository.CommunityRepository

	// Payment provider
	PaymentProvider payments.Provider

	// Services
	LedgerService     service.LedgerService
	TreasuryService   service.TreasuryService
	CheckoutService   service.CheckoutService
	SettlementService service.SettlementService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance. The logger is usable
// immediately so initialization failures can be reported.
func NewApplication() *Application {
	return &Application{Logger: util.GetLogger()}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	app.WalletRepository = postgres.NewWalletRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.SponsorshipRepository = postgres.NewSponsorshipRepository(app.DB)
	app.ContentRepository = postgres.NewContentRepository(app.DB)
	app.CommunityRepository = postgres.NewCommunityRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	if app.PaymentProvider == nil {
		app.PaymentProvider = payments.NewStripeProvider(
			app.Config.Stripe.SecretKey,
			app.Config.Stripe.WebhookSecret,
			app.Config.Stripe.SuccessURL,
			app.Config.Stripe.CancelURL,
		)
	}

	app.LedgerService = service.NewLedgerService(
		app.DB,
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Config.DefaultCurrency,
	)
	app.TreasuryService = service.NewTreasuryService(
		app.DB,
		app.DB,
		app.LedgerService,
		app.TransactionRepository,
		app.SponsorshipRepository,
		app.ContentRepository,
		app.CommunityRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.CheckoutService = service.NewCheckoutService(
		app.DB,
		app.SponsorshipRepository,
		app.CommunityRepository,
		app.PaymentProvider,
		app.Config.PlatformFeePercent,
		app.Config.DefaultCurrency,
		app.Logger,
	)
	app.SettlementService = service.NewSettlementService(
		app.DB,
		app.DB,
		app.PaymentProvider,
		app.TreasuryService,
		app.SponsorshipRepository,
		app.ContentRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Logger,
	)
	app.Logger.Info("Services initialized.")

	walletHandler := handler.NewWalletHandler(app.LedgerService, app.Logger)
	treasuryHandler := handler.NewTreasuryHandler(app.TreasuryService, app.CheckoutService, app.LedgerService, app.Logger)
	checkoutHandler := handler.NewCheckoutHandler(app.CheckoutService, app.Logger)
	webhookHandler := handler.NewWebhookHandler(app.SettlementService, app.Logger)
	app.HTTPHandler = router.NewRouter(walletHandler, treasuryHandler, checkoutHandler, webhookHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
