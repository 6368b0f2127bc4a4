package handlers

import (
	"net/http"
	"time"

	"marketplace/internal/middleware"
)

func (h *Handler) ListMyTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := parsePaging(r)
	txType := r.URL.Query().Get("type")
	transactions, err := h.transactions.ListByUser(r.Context(), userID, txType, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list transactions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
}

func (h *Handler) AdminListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaging(r)
	transactions, err := h.transactions.ListAll(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list transactions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
}

// ListUnsettledTransactions surfaces payouts and withdrawals whose gateway
// transfer failed or never completed, for manual retry.
func (h *Handler) ListUnsettledTransactions(w http.ResponseWriter, r *http.Request) {
	age := 24 * time.Hour
	if raw := r.URL.Query().Get("older_than"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "invalid older_than duration")
			return
		}
		age = parsed
	}
	transactions, err := h.reconciler.ListUnsettled(r.Context(), age)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list unsettled transactions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaging(r)
	logs, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list audit logs")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"logs": logs})
}
