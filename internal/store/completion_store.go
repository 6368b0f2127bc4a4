package store

import (
	"context"

	"marketplace/internal/models"
)

type CompletionStore struct {
	db DB
}

func NewCompletionStore(db DB) *CompletionStore {
	return &CompletionStore{db: db}
}

type CompletionRequestInput struct {
	ID           string
	JobID        string
	OfferID      string
	CustomerID   string
	ContractorID string
}

const completionColumns = `id, job_id, offer_id, customer_id, contractor_id, status,
	reviewed_by, reviewed_at, rejection_reason, created_at`

func (s *CompletionStore) Create(ctx context.Context, tx Execer, input CompletionRequestInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO completion_requests (id, job_id, offer_id, customer_id, contractor_id, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
	`, input.ID, input.JobID, input.OfferID, input.CustomerID, input.ContractorID)
	return err
}

func (s *CompletionStore) GetByID(ctx context.Context, requestID string) (models.CompletionRequest, error) {
	var row models.CompletionRequest
	err := s.db.GetContext(ctx, &row, `
		SELECT `+completionColumns+`
		FROM completion_requests
		WHERE id = $1
	`, requestID)
	if err != nil {
		return models.CompletionRequest{}, err
	}
	return row, nil
}

// Approve transitions pending -> approved. The status guard is the last word
// on concurrent approvals: the loser sees zero affected rows.
func (s *CompletionStore) Approve(ctx context.Context, tx Execer, requestID, adminID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE completion_requests
		SET status = 'approved', reviewed_by = $1, reviewed_at = NOW()
		WHERE id = $2 AND status = 'pending'
	`, adminID, requestID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *CompletionStore) Reject(ctx context.Context, tx Execer, requestID, adminID, reason string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE completion_requests
		SET status = 'rejected', reviewed_by = $1, reviewed_at = NOW(), rejection_reason = $2
		WHERE id = $3 AND status = 'pending'
	`, adminID, reason, requestID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *CompletionStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.CompletionRequest, error) {
	query := `
		SELECT ` + completionColumns + `
		FROM completion_requests
	`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, status, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}
	var rows []models.CompletionRequest
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
