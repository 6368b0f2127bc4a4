package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/services"
)

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	wallet, err := h.walletSvc.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load wallet")
		return
	}
	respondJSON(w, http.StatusOK, wallet)
}

type depositRequest struct {
	Amount string `json:"amount"`
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	intent, err := h.walletSvc.Deposit(r.Context(), userID, amount)
	if err != nil {
		if errors.Is(err, services.ErrWalletFrozen) {
			respondError(w, http.StatusForbidden, "wallet_frozen")
			return
		}
		if errors.Is(err, services.ErrInvalidAmount) {
			respondError(w, http.StatusBadRequest, "invalid_amount")
			return
		}
		respondError(w, http.StatusInternalServerError, "deposit failed")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"checkout_url":   intent.URL,
		"session_id":     intent.SessionID,
		"transaction_id": intent.TransactionID,
	})
}

func (h *Handler) ConnectPayoutAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accountID, err := h.walletSvc.ConnectPayoutAccount(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to connect payout account")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"account_id": accountID})
}

func (h *Handler) OnboardingLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	url, err := h.walletSvc.OnboardingLink(r.Context(), userID, h.cfg.OnboardingReturnURL, h.cfg.OnboardingReturnURL)
	if err != nil {
		if errors.Is(err, services.ErrNoPayoutAccount) {
			respondError(w, http.StatusBadRequest, "payout_account_required")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create onboarding link")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) PayoutAccountStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	status, err := h.walletSvc.AccountStatus(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load account status")
		return
	}
	respondJSON(w, http.StatusOK, status)
}
