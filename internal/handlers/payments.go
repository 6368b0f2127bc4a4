package handlers

import (
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/models"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) PayOffer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	offerID := chi.URLParam(r, "id")
	result, err := h.settlement.PayOffer(r.Context(), offerID, userID)
	if err != nil {
		respondSettlementError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) RefundOffer(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	offerID := chi.URLParam(r, "id")
	if err := h.settlement.RefundOffer(r.Context(), offerID, adminID); err != nil {
		respondSettlementError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": models.OfferStatusRefunded})
}
