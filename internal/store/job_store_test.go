package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestJobStoreTransitionOfferGuarded(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "WHERE id = $2 AND status = $3") {
				t.Fatalf("transition must match the expected current status: %s", query)
			}
			if args[0] != "paid" || args[1] != "offer-1" || args[2] != "accepted" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	rows, err := store.TransitionOffer(ctx, execer, "offer-1", "accepted", "paid")
	if err != nil || rows != 1 {
		t.Fatalf("unexpected result: rows=%d err=%v", rows, err)
	}
}

func TestJobStoreSetOfferFees(t *testing.T) {
	ctx := context.Background()
	store := NewJobStore(stubDB{})
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "platform_fee = $1, service_fee = $2, contractor_payout = $3") {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != int64(10000) || args[1] != int64(5000) || args[2] != int64(85000) || args[3] != "offer-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	if err := store.SetOfferFees(ctx, execer, "offer-1", 10000, 5000, 85000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
