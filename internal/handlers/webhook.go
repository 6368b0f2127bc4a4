package handlers

import (
	"io"
	"log"
	"net/http"
)

const maxWebhookBody = 65536

// StripeWebhook verifies and processes gateway events. Once the signature
// checks out the endpoint always acknowledges with 200: a processing failure
// must not make Stripe retry into a duplicate settlement, and unsettled rows
// are surfaced through the admin reconciliation listing instead.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unable to read payload")
		return
	}
	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		respondError(w, http.StatusBadRequest, "missing signature")
		return
	}
	event, err := h.webhooks.VerifyWebhook(payload, signature)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid signature")
		return
	}
	if err := h.reconciler.HandleEvent(r.Context(), event); err != nil {
		log.Printf("webhook %s: processing failed: %v", event.Type, err)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  200,
		"success": true,
	})
}
