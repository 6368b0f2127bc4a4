package store

import (
	"context"
	"time"

	"marketplace/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type TransactionInput struct {
	ID              string
	Type            string
	Status          string
	Amount          int64
	FromUserID      *string
	ToUserID        *string
	JobID           *string
	OfferID         *string
	Description     string
	StripeSessionID *string
}

const transactionColumns = `id, type, status, amount, from_user_id, to_user_id, job_id, offer_id,
	description, failure_reason, stripe_transfer_id, stripe_session_id, stripe_payment_id, completed_at, created_at`

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, type, status, amount, from_user_id, to_user_id, job_id, offer_id, description, stripe_session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, input.ID, input.Type, input.Status, input.Amount, input.FromUserID, input.ToUserID,
		input.JobID, input.OfferID, input.Description, input.StripeSessionID)
	return err
}

func (s *TransactionStore) GetByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	var row models.Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = $1
	`, transactionID)
	if err != nil {
		return models.Transaction{}, err
	}
	return row, nil
}

func (s *TransactionStore) MarkCompleted(ctx context.Context, tx Execer, transactionID, transferID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = 'completed', stripe_transfer_id = $1, completed_at = NOW()
		WHERE id = $2 AND status <> 'completed'
	`, transferID, transactionID)
	return err
}

func (s *TransactionStore) MarkFailed(ctx context.Context, tx Execer, transactionID, reason string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = 'failed', failure_reason = $1
		WHERE id = $2 AND status = 'pending'
	`, reason, transactionID)
	return err
}

// GetBySessionForUpdate loads and locks the transaction tied to a checkout
// session inside the caller's transaction.
func (s *TransactionStore) GetBySessionForUpdate(ctx context.Context, tx Getter, sessionID string) (models.Transaction, error) {
	var row models.Transaction
	err := tx.GetContext(ctx, &row, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE stripe_session_id = $1
		FOR UPDATE
	`, sessionID)
	if err != nil {
		return models.Transaction{}, err
	}
	return row, nil
}

// CompleteBySession settles the pending deposit created at checkout time. The
// status guard makes duplicate webhook deliveries a no-op; the affected row
// count tells the caller whether a matching pending row existed.
func (s *TransactionStore) CompleteBySession(ctx context.Context, tx Execer, sessionID, paymentID string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = 'completed', stripe_payment_id = $1, completed_at = NOW()
		WHERE stripe_session_id = $2 AND status = 'pending'
	`, paymentID, sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TransactionStore) FailBySession(ctx context.Context, tx Execer, sessionID, reason string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = 'failed', failure_reason = $1
		WHERE stripe_session_id = $2 AND status = 'pending'
	`, reason, sessionID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID, txType string, limit, offset int) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE (from_user_id = $1 OR to_user_id = $1)
	`
	args := []any{userID}
	if txType != "" {
		query += ` AND type = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		args = append(args, txType, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	var rows []models.Transaction
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListUnsettled returns transfer-backed transactions that failed or have sat
// pending since before the cutoff. A reconciliation sweep consumes this; the
// sweep itself is not part of this service.
func (s *TransactionStore) ListUnsettled(ctx context.Context, olderThan time.Time) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE type IN ('contractor_payout', 'withdrawal')
		  AND (status = 'failed' OR (status = 'pending' AND created_at < $1))
		ORDER BY created_at
	`, olderThan)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
