package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"marketplace/internal/models"
)

func TestUserStoreCreate(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO users") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 5 || args[0] != "user-1" || args[1] != "alice" || args[3] != "customer" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	if err := store.Create(ctx, execer, "user-1", "alice", "alice@example.com", "customer", "hash"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUserStoreGetByEmail(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "WHERE email = $1") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != "alice@example.com" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*models.User) = models.User{ID: "user-1", Email: "alice@example.com"}
			return nil
		},
	})
	user, err := store.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("unexpected user: %#v", user)
	}
}

func TestUserStoreGetAdmin(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "role = 'admin'") || !strings.Contains(query, "LIMIT 1") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 0 {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*models.User) = models.User{ID: "admin-1", Role: models.RoleAdmin}
			return nil
		},
	})
	admin, err := store.GetAdmin(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if admin.Role != models.RoleAdmin {
		t.Fatalf("unexpected user: %#v", admin)
	}
}
