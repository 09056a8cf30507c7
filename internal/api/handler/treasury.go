// internal/api/handler/treasury.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"communityledger/internal/domain"
	"communityledger/internal/service"
	"communityledger/internal/util"
)

// TreasuryHandler serves the community treasury operations.
type TreasuryHandler struct {
	treasury service.TreasuryService
	checkout service.CheckoutService
	ledger   service.LedgerService
	logger   *slog.Logger
}

// NewTreasuryHandler creates a new TreasuryHandler.
func NewTreasuryHandler(treasury service.TreasuryService, checkout service.CheckoutService, ledger service.LedgerService, logger *slog.Logger) *TreasuryHandler {
	return &TreasuryHandler{treasury: treasury, checkout: checkout, ledger: ledger, logger: logger}
}

func communityIDFromRequest(r *http.Request) (int64, error) {
	communityID, err := strconv.ParseInt(chi.URLParam(r, "communityID"), 10, 64)
	if err != nil || communityID <= 0 {
		return 0, util.ErrInvalidInput
	}
	return communityID, nil
}

// GetCommunityWallet handles the treasury wallet lookup, creating the wallet
// lazily on first access.
// GET /communities/{communityID}/wallet
func (h *TreasuryHandler) GetCommunityWallet(w http.ResponseWriter, r *http.Request) {
	communityID, err := communityIDFromRequest(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	wallet, err := h.ledger.GetOrCreateWallet(r.Context(), domain.OwnerTypeCommunity, &communityID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, wallet)
}

// SpendRequest represents the request body for a treasury spend.
type SpendRequest struct {
	ContentID     int64           `json:"content_id"`
	Amount        decimal.Decimal `json:"amount"`
	SponsorshipID *int64          `json:"sponsorship_id"`
	Description   string          `json:"description"`
}

// Spend handles the spend-from-treasury request.
// POST /communities/{communityID}/treasury/spend
func (h *TreasuryHandler) Spend(w http.ResponseWriter, r *http.Request) {
	communityID, err := communityIDFromRequest(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	actorID, err := actorFromRequest(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	var req SpendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}
	if req.ContentID <= 0 {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	entry, err := h.treasury.Spend(r.Context(), communityID, req.ContentID, req.Amount, req.SponsorshipID, actorID, req.Description)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"message":        "Treasury spend successful",
		"transaction_id": entry.ID,
		"new_balance":    entry.BalanceAfter,
	})
}

// GetStats handles the treasury summary request.
// GET /communities/{communityID}/treasury
func (h *TreasuryHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	communityID, err := communityIDFromRequest(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}
	actorID, err := actorFromRequest(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	summary, err := h.treasury.GetStats(r.Context(), communityID, actorID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, summary)
}

// DonationCheckoutRequest represents the request body for a treasury
// donation checkout.
type DonationCheckoutRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	DonorName  string          `json:"donor_name"`
	DonorEmail string          `json:"donor_email"`
}

// CreateDonationCheckout handles the donation checkout creation request.
// POST /communities/{communityID}/treasury/donations/checkout
func (h *TreasuryHandler) CreateDonationCheckout(w http.ResponseWriter, r *http.Request) {
	communityID, err := communityIDFromRequest(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	var req DonationCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	handle, err := h.checkout.CreateTreasuryDonationCheckout(r.Context(), communityID, req.Amount,
		service.DonorInfo{Name: req.DonorName, Email: req.DonorEmail})
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusCreated, handle)
}
