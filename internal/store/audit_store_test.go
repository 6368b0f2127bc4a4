package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestAuditStoreLog(t *testing.T) {
	ctx := context.Background()
	store := NewAuditStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO audit_logs") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 5 || args[0] != "admin-1" || args[1] != "approve_completion" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	err := store.Log(ctx, execer, "admin-1", "approve_completion", "completion_request", "req-1", `{"job_id":"job-1"}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuditStoreList(t *testing.T) {
	ctx := context.Background()
	store := NewAuditStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FROM audit_logs") || !strings.Contains(query, "ORDER BY created_at DESC") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != 50 || args[1] != 0 {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*[]AuditLog) = []AuditLog{{ID: "log-1", Action: "login"}}
			return nil
		},
	})
	rows, err := store.List(ctx, 50, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Action != "login" {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}
