package services

import (
	"context"
	"database/sql"
	"testing"

	"marketplace/internal/models"
	"marketplace/internal/store"
)

type stubAdminUserStore struct {
	getAdminFn func(ctx context.Context) (models.User, error)
	createFn   func(ctx context.Context, tx store.Execer, id, username, email, role, passwordHash string) error
}

func (s stubAdminUserStore) GetAdmin(ctx context.Context) (models.User, error) {
	if s.getAdminFn == nil {
		return models.User{}, sql.ErrNoRows
	}
	return s.getAdminFn(ctx)
}

func (s stubAdminUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, role, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, role, passwordHash)
}

type stubAdminWalletStore struct {
	getByUserFn func(ctx context.Context, userID string) (models.Wallet, error)
	createFn    func(ctx context.Context, tx store.Execer, id, userID string) error
}

func (s stubAdminWalletStore) GetByUser(ctx context.Context, userID string) (models.Wallet, error) {
	if s.getByUserFn == nil {
		return models.Wallet{}, sql.ErrNoRows
	}
	return s.getByUserFn(ctx, userID)
}

func (s stubAdminWalletStore) Create(ctx context.Context, tx store.Execer, id, userID string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, userID)
}

func TestAdminAccountLazyCreation(t *testing.T) {
	var (
		createdRole  string
		createdEmail string
		walletFor    string
		adminCalls   int
	)
	users := stubAdminUserStore{
		getAdminFn: func(ctx context.Context) (models.User, error) {
			adminCalls++
			if adminCalls == 1 {
				return models.User{}, sql.ErrNoRows
			}
			return models.User{ID: "admin-1", Email: "platform@marketplace.local", Role: models.RoleAdmin}, nil
		},
		createFn: func(ctx context.Context, tx store.Execer, id, username, email, role, passwordHash string) error {
			createdRole = role
			createdEmail = email
			return nil
		},
	}
	wallets := stubAdminWalletStore{
		getByUserFn: func(ctx context.Context, userID string) (models.Wallet, error) {
			return models.Wallet{ID: "wallet-admin", UserID: userID}, nil
		},
		createFn: func(ctx context.Context, tx store.Execer, id, userID string) error {
			walletFor = userID
			return nil
		},
	}
	provider := NewAdminAccountProvider(fakeTxRunner{}, users, wallets, "platform@marketplace.local")

	account, err := provider.Get(context.Background())
	if err != nil {
		t.Fatalf("get admin account: %v", err)
	}
	if account.UserID != "admin-1" || account.WalletID != "wallet-admin" {
		t.Fatalf("unexpected account: %+v", account)
	}
	if createdRole != models.RoleAdmin || createdEmail != "platform@marketplace.local" {
		t.Fatalf("admin user not provisioned correctly: role=%s email=%s", createdRole, createdEmail)
	}
	if walletFor == "" {
		t.Fatal("admin wallet not provisioned")
	}

	// Cached: no further database reads.
	before := adminCalls
	if _, err := provider.Get(context.Background()); err != nil {
		t.Fatalf("cached get: %v", err)
	}
	if adminCalls != before {
		t.Fatal("second Get must serve from cache")
	}

	provider.Reset()
	if _, err := provider.Get(context.Background()); err != nil {
		t.Fatalf("get after reset: %v", err)
	}
	if adminCalls == before {
		t.Fatal("Reset must force a re-read")
	}
}

func TestAdminAccountExisting(t *testing.T) {
	var userCreates int
	users := stubAdminUserStore{
		getAdminFn: func(ctx context.Context) (models.User, error) {
			return models.User{ID: "admin-1", Email: "ops@marketplace.local"}, nil
		},
		createFn: func(ctx context.Context, tx store.Execer, id, username, email, role, passwordHash string) error {
			userCreates++
			return nil
		},
	}
	wallets := stubAdminWalletStore{
		getByUserFn: func(ctx context.Context, userID string) (models.Wallet, error) {
			return models.Wallet{ID: "wallet-admin"}, nil
		},
	}
	provider := NewAdminAccountProvider(fakeTxRunner{}, users, wallets, "ops@marketplace.local")
	account, err := provider.Get(context.Background())
	if err != nil {
		t.Fatalf("get admin account: %v", err)
	}
	if account.Email != "ops@marketplace.local" || userCreates != 0 {
		t.Fatalf("existing admin must be reused: %+v creates=%d", account, userCreates)
	}
}
