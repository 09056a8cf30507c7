// internal/api/handler/wallet.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"communityledger/internal/api/types"
	"communityledger/internal/domain"
	"communityledger/internal/service"
	"communityledger/internal/util"
)

// WalletHandler serves the read-only wallet/ledger dashboards and the
// admin-only freeze switch.
type WalletHandler struct {
	ledger service.LedgerService
	logger *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger service.LedgerService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{ledger: ledger, logger: logger}
}

func walletIDFromRequest(r *http.Request) (int64, error) {
	walletID, err := strconv.ParseInt(chi.URLParam(r, "walletID"), 10, 64)
	if err != nil || walletID <= 0 {
		return 0, util.ErrInvalidInput
	}
	return walletID, nil
}

// GetWallet handles the wallet lookup request.
// GET /wallets/{walletID}
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	walletID, err := walletIDFromRequest(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	wallet, err := h.ledger.GetWallet(r.Context(), walletID)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, wallet)
}

// GetTransactionHistory handles the ledger history request.
// GET /wallets/{walletID}/transactions
func (h *WalletHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	walletID, err := walletIDFromRequest(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	transactions, totalCount, err := h.ledger.ListTransactions(r.Context(), walletID, limit, offset)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, types.PaginatedResponse[domain.WalletTransaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}

// SetWalletStatusRequest represents the request body for a status change.
type SetWalletStatusRequest struct {
	Status domain.WalletStatus `json:"status"`
}

// SetWalletStatus handles the wallet freeze/unfreeze request.
// POST /wallets/{walletID}/status
func (h *WalletHandler) SetWalletStatus(w http.ResponseWriter, r *http.Request) {
	walletID, err := walletIDFromRequest(r)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	var req SetWalletStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(h.logger, w, util.ErrInvalidInput)
		return
	}

	wallet, err := h.ledger.SetWalletStatus(r.Context(), walletID, req.Status)
	if err != nil {
		respondWithError(h.logger, w, err)
		return
	}

	respondWithJSON(h.logger, w, http.StatusOK, wallet)
}
