package store

import (
	"context"

	"marketplace/internal/models"
)

// JobStore exposes the narrow read-modify access the settlement engine needs
// on jobs and offers. Full job/offer CRUD lives elsewhere.
type JobStore struct {
	db DB
}

func NewJobStore(db DB) *JobStore {
	return &JobStore{db: db}
}

func (s *JobStore) GetJob(ctx context.Context, jobID string) (models.Job, error) {
	var row models.Job
	err := s.db.GetContext(ctx, &row, `
		SELECT id, customer_id, title, status, created_at
		FROM jobs
		WHERE id = $1
	`, jobID)
	if err != nil {
		return models.Job{}, err
	}
	return row, nil
}

func (s *JobStore) GetOffer(ctx context.Context, offerID string) (models.Offer, error) {
	var row models.Offer
	err := s.db.GetContext(ctx, &row, `
		SELECT id, job_id, contractor_id, amount, platform_fee, service_fee, contractor_payout, status, created_at
		FROM offers
		WHERE id = $1
	`, offerID)
	if err != nil {
		return models.Offer{}, err
	}
	return row, nil
}

func (s *JobStore) SetJobStatus(ctx context.Context, tx Execer, jobID, status string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE jobs
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, jobID)
	return err
}

func (s *JobStore) SetOfferStatus(ctx context.Context, tx Execer, offerID, status string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE offers
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, offerID)
	return err
}

// TransitionOffer moves an offer only out of the expected current status; the
// affected row count exposes a lost race.
func (s *JobStore) TransitionOffer(ctx context.Context, tx Execer, offerID, from, to string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE offers
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, offerID, from)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *JobStore) SetOfferFees(ctx context.Context, tx Execer, offerID string, platformFee, serviceFee, contractorPayout int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE offers
		SET platform_fee = $1, service_fee = $2, contractor_payout = $3, updated_at = NOW()
		WHERE id = $4
	`, platformFee, serviceFee, contractorPayout, offerID)
	return err
}
