package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"marketplace/internal/store"
)

type stubNotificationStore struct {
	insertFn func(ctx context.Context, input store.NotificationInput) error
}

func (s stubNotificationStore) Insert(ctx context.Context, input store.NotificationInput) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, input)
}

func TestDispatcherPersistsAndPushes(t *testing.T) {
	var inserted []store.NotificationInput
	hub := NewHub()
	client := &Client{send: make(chan []byte, 1)}
	hub.Register("user-1", client)
	dispatcher := NewDispatcher(stubNotificationStore{
		insertFn: func(_ context.Context, input store.NotificationInput) error {
			inserted = append(inserted, input)
			return nil
		},
	}, hub)

	err := dispatcher.SendToUser(context.Background(), Notification{
		UserID: "user-1",
		Title:  "Payout sent",
		Body:   "Your payout is on the way",
		Type:   "payout",
		Data:   map[string]string{"request_id": "req-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(inserted))
	}
	if inserted[0].ID == "" {
		t.Fatal("expected generated notification id")
	}
	var data map[string]string
	if err := json.Unmarshal([]byte(inserted[0].Data), &data); err != nil {
		t.Fatalf("data is not valid json: %v", err)
	}
	if data["request_id"] != "req-1" {
		t.Fatalf("unexpected data: %#v", data)
	}

	select {
	case payload := <-client.send:
		var pushed Notification
		if err := json.Unmarshal(payload, &pushed); err != nil {
			t.Fatalf("failed to decode pushed payload: %v", err)
		}
		if pushed.Title != "Payout sent" {
			t.Fatalf("unexpected notification: %#v", pushed)
		}
	default:
		t.Fatal("expected a pushed notification")
	}
}

func TestDispatcherInsertFailureSkipsPush(t *testing.T) {
	hub := NewHub()
	client := &Client{send: make(chan []byte, 1)}
	hub.Register("user-1", client)
	dispatcher := NewDispatcher(stubNotificationStore{
		insertFn: func(context.Context, store.NotificationInput) error {
			return errors.New("db down")
		},
	}, hub)

	if err := dispatcher.SendToUser(context.Background(), Notification{UserID: "user-1"}); err == nil {
		t.Fatal("expected error")
	}
	select {
	case <-client.send:
		t.Fatal("push should not happen when persistence fails")
	default:
	}
}

func TestHubSkipsSlowClients(t *testing.T) {
	hub := NewHub()
	slow := &Client{send: make(chan []byte)}
	fast := &Client{send: make(chan []byte, 1)}
	hub.Register("user-1", slow)
	hub.Register("user-1", fast)

	hub.Push("user-1", Notification{UserID: "user-1", Title: "hello"})

	select {
	case <-fast.send:
	default:
		t.Fatal("expected delivery to the fast client")
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	client := &Client{send: make(chan []byte, 1)}
	hub.Register("user-1", client)
	hub.Unregister("user-1", client)

	hub.Push("user-1", Notification{UserID: "user-1"})
	select {
	case <-client.send:
		t.Fatal("unexpected delivery after unregister")
	default:
	}
}
