package store

import (
	"context"

	"marketplace/internal/models"
)

type WithdrawalStore struct {
	db DB
}

func NewWithdrawalStore(db DB) *WithdrawalStore {
	return &WithdrawalStore{db: db}
}

const withdrawalColumns = `id, contractor_id, amount, status, reviewed_by, reviewed_at,
	rejection_reason, stripe_transfer_id, created_at`

func (s *WithdrawalStore) Create(ctx context.Context, tx Execer, id, contractorID string, amount int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO withdrawal_requests (id, contractor_id, amount, status)
		VALUES ($1, $2, $3, 'pending')
	`, id, contractorID, amount)
	return err
}

func (s *WithdrawalStore) GetByID(ctx context.Context, requestID string) (models.WithdrawalRequest, error) {
	var row models.WithdrawalRequest
	err := s.db.GetContext(ctx, &row, `
		SELECT `+withdrawalColumns+`
		FROM withdrawal_requests
		WHERE id = $1
	`, requestID)
	if err != nil {
		return models.WithdrawalRequest{}, err
	}
	return row, nil
}

func (s *WithdrawalStore) Approve(ctx context.Context, tx Execer, requestID, adminID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE withdrawal_requests
		SET status = 'approved', reviewed_by = $1, reviewed_at = NOW()
		WHERE id = $2 AND status = 'pending'
	`, adminID, requestID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *WithdrawalStore) Reject(ctx context.Context, tx Execer, requestID, adminID, reason string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE withdrawal_requests
		SET status = 'rejected', reviewed_by = $1, reviewed_at = NOW(), rejection_reason = $2
		WHERE id = $3 AND status = 'pending'
	`, adminID, reason, requestID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *WithdrawalStore) SetTransferID(ctx context.Context, tx Execer, requestID, transferID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE withdrawal_requests
		SET stripe_transfer_id = $1
		WHERE id = $2
	`, transferID, requestID)
	return err
}

func (s *WithdrawalStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
	`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, status, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}
	var rows []models.WithdrawalRequest
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *WithdrawalStore) ListByContractor(ctx context.Context, contractorID string, limit, offset int) ([]models.WithdrawalRequest, error) {
	var rows []models.WithdrawalRequest
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+withdrawalColumns+`
		FROM withdrawal_requests
		WHERE contractor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, contractorID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
