// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"communityledger/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(
	walletHandler *handler.WalletHandler,
	treasuryHandler *handler.TreasuryHandler,
	checkoutHandler *handler.CheckoutHandler,
	webhookHandler *handler.WebhookHandler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Wallet/ledger dashboards
	r.Route("/wallets", func(r chi.Router) {
		r.Get("/{walletID}", walletHandler.GetWallet)
		r.Get("/{walletID}/transactions", walletHandler.GetTransactionHistory)
		r.Post("/{walletID}/status", walletHandler.SetWalletStatus)
	})

	// Community treasury
	r.Route("/communities/{communityID}", func(r chi.Router) {
		r.Get("/wallet", treasuryHandler.GetCommunityWallet)
		r.Get("/treasury", treasuryHandler.GetStats)
		r.Post("/treasury/spend", treasuryHandler.Spend)
		r.Post("/treasury/donations/checkout", treasuryHandler.CreateDonationCheckout)
	})

	// Sponsorship checkout
	r.Post("/sponsorships/{sponsorshipID}/checkout", checkoutHandler.CreateSponsorshipCheckout)

	// Provider webhooks
	r.Post("/webhooks/stripe", webhookHandler.HandleStripeWebhook)

	return r
}
