package handlers

import (
	"encoding/json"
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/validator"

	"github.com/go-chi/chi/v5"
)

type withdrawalRequestBody struct {
	Amount string `json:"amount"`
}

func (h *Handler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req withdrawalRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	requestID, err := h.walletSvc.RequestWithdrawal(r.Context(), userID, amount)
	if err != nil {
		respondSettlementError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"request_id": requestID,
		"status":     models.RequestStatusPending,
	})
}

func (h *Handler) ListMyWithdrawals(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := parsePaging(r)
	requests, err := h.withdrawals.ListByContractor(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list withdrawal requests")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) ListWithdrawalRequests(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.RequestStatusPending
	}
	limit, offset := parsePaging(r)
	requests, err := h.withdrawals.ListByStatus(r.Context(), status, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list withdrawal requests")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	requestID := chi.URLParam(r, "id")
	result, err := h.settlement.ApproveWithdrawal(r.Context(), requestID, adminID)
	if err != nil {
		respondSettlementError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type rejectRequestBody struct {
	Reason string `json:"reason"`
}

func (h *Handler) RejectWithdrawal(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	requestID := chi.URLParam(r, "id")
	var req rejectRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := validator.ValidateReason(req.Reason); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.settlement.RejectWithdrawal(r.Context(), requestID, adminID, req.Reason); err != nil {
		respondSettlementError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": models.RequestStatusRejected})
}
