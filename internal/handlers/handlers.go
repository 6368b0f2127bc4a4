package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"marketplace/internal/money"
	"marketplace/internal/services"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func parseAmountMinor(input string) (int64, error) {
	amount, err := money.ParseMinor(input)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, money.ErrInvalidAmount
	}
	return amount, nil
}

func parsePaging(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

// respondSettlementError maps the settlement sentinels onto client statuses;
// anything unknown stays a generic 500.
func respondSettlementError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		respondError(w, http.StatusNotFound, "request_not_found")
	case errors.Is(err, services.ErrAlreadyProcessed):
		respondError(w, http.StatusConflict, "already_processed")
	case errors.Is(err, services.ErrInsufficientBalance):
		respondError(w, http.StatusBadRequest, "insufficient_balance")
	case errors.Is(err, services.ErrNoPayoutAccount):
		respondError(w, http.StatusBadRequest, "payout_account_required")
	case errors.Is(err, services.ErrMissingReviewer):
		respondError(w, http.StatusBadRequest, "reviewer_required")
	case errors.Is(err, services.ErrWalletFrozen):
		respondError(w, http.StatusForbidden, "wallet_frozen")
	case errors.Is(err, services.ErrOfferNotPayable):
		respondError(w, http.StatusBadRequest, "offer_not_payable")
	case errors.Is(err, services.ErrOfferNotRefundable):
		respondError(w, http.StatusBadRequest, "offer_not_refundable")
	case errors.Is(err, services.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "invalid_amount")
	default:
		respondError(w, http.StatusInternalServerError, "settlement_failed")
	}
}
