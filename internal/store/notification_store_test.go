package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestNotificationStoreInsert(t *testing.T) {
	ctx := context.Background()
	store := NewNotificationStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO notifications") || !strings.Contains(query, "FALSE") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 6 || args[0] != "n-1" || args[1] != "user-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	})
	err := store.Insert(ctx, NotificationInput{
		ID: "n-1", UserID: "user-1", Title: "Payout sent", Body: "Your payout is on the way", Type: "payout", Data: "{}",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNotificationStoreMarkReadScopedToUser(t *testing.T) {
	ctx := context.Background()
	store := NewNotificationStore(stubDB{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "WHERE id = $1 AND user_id = $2") {
				t.Fatalf("mark read must scope to the owner: %s", query)
			}
			if args[0] != "n-1" || args[1] != "someone-else" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 0}, nil
		},
	})
	rows, err := store.MarkRead(ctx, "n-1", "someone-else")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected zero rows for another user's notification, got %d", rows)
	}
}
