// internal/api/handler/checkout.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"communityledger/internal/service"
	"communityledger/internal/util"
)

// CheckoutHandler serves sponsorship checkout creation.
type CheckoutHandler struct {
	checkout service.CheckoutService
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkout service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

// SponsorshipCheckoutRequest represents the request body for a sponsorship
// checkout.
type SponsorshipCheckoutRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	PayerEmail string          `json:"payer_email"`
}

// CreateSponsorshipCheckout handles the sponsorship checkout creation request.
// POST /sponsorships/{sponsorshipID}/checkout
func (h *CheckoutHandler) CreateSponsorshipCheckout(w http.ResponseWriter, r *http.Request) {
	sponsorshipID, err := strconv.ParseInt(chi.URLParam(r, "sponsorshipID"), 10, 64)
	if err != nil || sponsorshipID <= 0 {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	var req SponsorshipCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	handle, err := h.checkout.CreateSponsorshipCheckout(r.Context(), sponsorshipID, req.Amount, req.PayerEmail)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusCreated, handle)
}
