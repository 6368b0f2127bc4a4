package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stripe/stripe-go/v78"
)

func checkoutEvent(t *testing.T, eventType string, session map[string]any) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("failed to marshal session: %v", err)
	}
	return stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestParseEventCompletedPaidSession(t *testing.T) {
	event, err := parseEvent(checkoutEvent(t, "checkout.session.completed", map[string]any{
		"id":             "cs_1",
		"amount_total":   2500,
		"payment_status": "paid",
		"metadata":       map[string]string{"user_id": "user-1"},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != EventDepositSucceeded {
		t.Fatalf("expected deposit succeeded, got %v", event.Kind)
	}
	if event.SessionID != "cs_1" || event.UserID != "user-1" || event.AmountMinor != 2500 {
		t.Fatalf("unexpected event: %#v", event)
	}
}

func TestParseEventCompletedUnpaidSessionIsIgnored(t *testing.T) {
	event, err := parseEvent(checkoutEvent(t, "checkout.session.completed", map[string]any{
		"id":             "cs_1",
		"payment_status": "unpaid",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != EventIgnored {
		t.Fatalf("expected ignored, got %v", event.Kind)
	}
}

func TestParseEventAsyncPayment(t *testing.T) {
	event, err := parseEvent(checkoutEvent(t, "checkout.session.async_payment_succeeded", map[string]any{
		"id":           "cs_2",
		"amount_total": 1000,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != EventDepositSucceeded {
		t.Fatalf("expected deposit succeeded, got %v", event.Kind)
	}

	event, err = parseEvent(checkoutEvent(t, "checkout.session.async_payment_failed", map[string]any{
		"id": "cs_2",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != EventDepositFailed {
		t.Fatalf("expected deposit failed, got %v", event.Kind)
	}
}

func TestParseEventUnrelatedTypeIsIgnored(t *testing.T) {
	event, err := parseEvent(stripe.Event{Type: "invoice.paid", Data: &stripe.EventData{Raw: []byte(`{}`)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != EventIgnored {
		t.Fatalf("expected ignored, got %v", event.Kind)
	}
	if event.Type != "invoice.paid" {
		t.Fatalf("expected original type preserved, got %q", event.Type)
	}
}

func TestParseEventMalformedPayload(t *testing.T) {
	_, err := parseEvent(stripe.Event{
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: []byte(`not json`)},
	})
	if err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
