package notify

import (
	"context"
	"encoding/json"

	"marketplace/internal/store"

	"github.com/google/uuid"
)

type NotificationStore interface {
	Insert(ctx context.Context, input store.NotificationInput) error
}

// Dispatcher persists a notification and pushes it to any live connections.
// Callers treat delivery as best-effort.
type Dispatcher struct {
	store NotificationStore
	hub   *Hub
}

func NewDispatcher(notificationStore NotificationStore, hub *Hub) *Dispatcher {
	return &Dispatcher{store: notificationStore, hub: hub}
}

func (d *Dispatcher) SendToUser(ctx context.Context, notification Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	data := "{}"
	if len(notification.Data) > 0 {
		encoded, err := json.Marshal(notification.Data)
		if err == nil {
			data = string(encoded)
		}
	}
	if err := d.store.Insert(ctx, store.NotificationInput{
		ID:     notification.ID,
		UserID: notification.UserID,
		Title:  notification.Title,
		Body:   notification.Body,
		Type:   notification.Type,
		Data:   data,
	}); err != nil {
		return err
	}
	d.hub.Push(notification.UserID, notification)
	return nil
}
