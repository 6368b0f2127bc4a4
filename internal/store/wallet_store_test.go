package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"marketplace/internal/models"
)

func TestWalletStoreCreate(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO wallets") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != "wallet-1" || args[1] != "user-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewWalletStore(stubDB{})
	if err := store.Create(ctx, execer, "wallet-1", "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWalletStoreGetForUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewWalletStore(stubDB{})
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FOR UPDATE") {
				t.Fatalf("expected row lock in query: %s", query)
			}
			if len(args) != 1 || args[0] != "user-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*models.Wallet) = models.Wallet{ID: "wallet-1", UserID: "user-1"}
			return nil
		},
	}
	wallet, err := store.GetForUpdate(ctx, getter, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wallet.ID != "wallet-1" {
		t.Fatalf("unexpected wallet: %+v", wallet)
	}
}

func TestWalletStoreDebitBalanceGuarded(t *testing.T) {
	ctx := context.Background()
	store := NewWalletStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "balance >= $1") {
				t.Fatalf("debit must be balance-guarded: %s", query)
			}
			return stubResult{rows: 0}, nil
		},
	}
	rows, err := store.DebitBalance(ctx, execer, "wallet-1", 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows != 0 {
		t.Fatalf("expected zero rows for uncovered debit, got %d", rows)
	}
}

func TestWalletStoreDebitForSpendTracksTotal(t *testing.T) {
	ctx := context.Background()
	store := NewWalletStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "total_spent = total_spent + $1") || !strings.Contains(query, "balance >= $1") {
				t.Fatalf("unexpected query: %s", query)
			}
			return stubResult{rows: 1}, nil
		},
	}
	rows, err := store.DebitForSpend(ctx, execer, "wallet-1", 5000)
	if err != nil || rows != 1 {
		t.Fatalf("unexpected result: rows=%d err=%v", rows, err)
	}
}

func TestWalletStoreCreditEarnings(t *testing.T) {
	ctx := context.Background()
	store := NewWalletStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "total_earnings = total_earnings + $1") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != int64(8500) || args[1] != "wallet-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	if err := store.CreditEarnings(ctx, execer, "wallet-1", 8500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWalletStoreSetStripeCustomerIfEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewWalletStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "stripe_customer_id IS NULL") {
				t.Fatalf("existing customer id must not be overwritten: %s", query)
			}
			return stubResult{rows: 1}, nil
		},
	}
	if err := store.SetStripeCustomerIfEmpty(ctx, execer, "user-1", "cus_1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
