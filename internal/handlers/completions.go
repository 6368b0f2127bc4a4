package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/store"
	"marketplace/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type completionRequestBody struct {
	OfferID string `json:"offer_id"`
}

// CreateCompletionRequest files a review request for a paid job. Only the
// job's customer can file it, and only one request per job is allowed.
func (h *Handler) CreateCompletionRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	jobID := chi.URLParam(r, "id")
	var req completionRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	job, err := h.jobs.GetJob(r.Context(), jobID)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "job not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load job")
		return
	}
	if job.CustomerID != userID {
		respondError(w, http.StatusForbidden, "not the job owner")
		return
	}
	offer, err := h.jobs.GetOffer(r.Context(), req.OfferID)
	if err != nil {
		if err == sql.ErrNoRows {
			respondError(w, http.StatusNotFound, "offer not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to load offer")
		return
	}
	if offer.JobID != jobID {
		respondError(w, http.StatusBadRequest, "offer does not belong to job")
		return
	}
	if offer.Status != models.OfferStatusPaid {
		respondError(w, http.StatusBadRequest, "offer is not paid")
		return
	}
	requestID := uuid.NewString()
	err = h.txRunner.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.completions.Create(r.Context(), tx, store.CompletionRequestInput{
			ID:           requestID,
			JobID:        jobID,
			OfferID:      offer.ID,
			CustomerID:   userID,
			ContractorID: offer.ContractorID,
		}); err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{
			"job_id":   jobID,
			"offer_id": offer.ID,
		})
		return h.audit.Log(r.Context(), tx, userID, "create_completion_request", "completion_request", requestID, string(data))
	})
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			respondError(w, http.StatusConflict, "completion request already exists for job")
			return
		}
		respondError(w, http.StatusInternalServerError, "unable to create completion request")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{
		"request_id": requestID,
		"status":     models.RequestStatusPending,
	})
}

func (h *Handler) ListCompletionRequests(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.RequestStatusPending
	}
	limit, offset := parsePaging(r)
	requests, err := h.completions.ListByStatus(r.Context(), status, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list completion requests")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"requests": requests})
}

func (h *Handler) ApproveCompletion(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	requestID := chi.URLParam(r, "id")
	result, err := h.settlement.ApproveCompletion(r.Context(), requestID, adminID)
	if err != nil {
		respondSettlementError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) RejectCompletion(w http.ResponseWriter, r *http.Request) {
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
	if err := h.settlement.RejectCompletion(r.Context(), requestID, adminID, req.Reason); err != nil {
		respondSettlementError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": models.RequestStatusRejected})
}
