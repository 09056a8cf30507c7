// internal/api/handler/webhook.go
package handler

import (
	"io"
	"log/slog"
	"net/http"

	"communityledger/internal/service"
	"communityledger/internal/util"
)

// maxWebhookBodyBytes caps inbound webhook payloads.
const maxWebhookBodyBytes = 64 * 1024

// WebhookHandler receives payment-provider webhooks. The response status is
// the retry signal: 2xx stops redelivery, 4xx marks the event permanently
// rejected, 5xx asks the provider to deliver it again.
type WebhookHandler struct {
	settlement service.SettlementService
	logger     *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(settlement service.SettlementService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{settlement: settlement, logger: logger}
}

// HandleStripeWebhook handles one inbound provider event.
// POST /webhooks/stripe
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warn("Failed to read webhook body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	err = h.settlement.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	switch {
	case err == nil:
		respondWithJSON(h.logger, w, http.StatusOK, map[string]bool{"received": true})
	case util.IsError(err, util.ErrSignatureInvalid):
		h.logger.Warn("Webhook signature verification failed", "error", err)
		w.WriteHeader(http.StatusBadRequest)
	case util.IsError(err, util.ErrInvalidInput), util.IsError(err, util.ErrInvalidAmount),
		util.IsError(err, util.ErrNotFound):
		// Permanently rejected; redelivery cannot fix a malformed event.
		h.logger.Error("Webhook permanently rejected", "error", err)
		w.WriteHeader(http.StatusBadRequest)
	default:
		// Transient failure; the provider's retry is safe because settlement
		// is idempotent.
		h.logger.Error("Webhook settlement failed, expecting redelivery", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}
