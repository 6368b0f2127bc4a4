package store

import (
	"context"

	"marketplace/internal/models"
)

type NotificationStore struct {
	db DB
}

func NewNotificationStore(db DB) *NotificationStore {
	return &NotificationStore{db: db}
}

type NotificationInput struct {
	ID     string
	UserID string
	Title  string
	Body   string
	Type   string
	Data   string
}

func (s *NotificationStore) Insert(ctx context.Context, input NotificationInput) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, body, type, data, read)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
	`, input.ID, input.UserID, input.Title, input.Body, input.Type, input.Data)
	return err
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	var rows []models.Notification
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, title, body, type, data, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, notificationID, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET read = TRUE
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
