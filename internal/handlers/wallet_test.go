package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"
)

func TestDepositReturnsCheckoutSession(t *testing.T) {
	var gotAmount int64
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubWalletService{
		depositFn: func(_ context.Context, _ string, amountMinor int64) (services.DepositIntent, error) {
			gotAmount = amountMinor
			return services.DepositIntent{
				URL:           "https://checkout.stripe.test/session",
				SessionID:     "cs_1",
				TransactionID: "tx-1",
			}, nil
		},
	}, stubSettlementService{}, stubReconcileService{}, stubWebhookVerifier{}, stubTransactionStore{}, stubCompletionStore{}, stubWithdrawalStore{}, stubJobStore{}, stubNotificationStore{}, stubAuditStore{})

	req := authedRequest(t, http.MethodPost, "/wallet/deposit", []byte(`{"amount":"25.00"}`))
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.Deposit)).ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotAmount != 2500 {
		t.Fatalf("expected 2500 minor units, got %d", gotAmount)
	}
	var payload map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["checkout_url"] != "https://checkout.stripe.test/session" || payload["session_id"] != "cs_1" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestDepositRejectsBadAmounts(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubWalletService{}, stubSettlementService{}, stubReconcileService{}, stubWebhookVerifier{}, stubTransactionStore{}, stubCompletionStore{}, stubWithdrawalStore{}, stubJobStore{}, stubNotificationStore{}, stubAuditStore{})

	for _, amount := range []string{"0", "-5.00", "1.005", "abc"} {
		req := authedRequest(t, http.MethodPost, "/wallet/deposit", []byte(`{"amount":"`+amount+`"}`))
		rr := httptest.NewRecorder()
		middleware.Auth("secret")(http.HandlerFunc(handler.Deposit)).ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("amount %q: expected 400, got %d", amount, rr.Code)
		}
	}
}

func TestDepositFrozenWallet(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubWalletService{
		depositFn: func(context.Context, string, int64) (services.DepositIntent, error) {
			return services.DepositIntent{}, services.ErrWalletFrozen
		},
	}, stubSettlementService{}, stubReconcileService{}, stubWebhookVerifier{}, stubTransactionStore{}, stubCompletionStore{}, stubWithdrawalStore{}, stubJobStore{}, stubNotificationStore{}, stubAuditStore{})

	req := authedRequest(t, http.MethodPost, "/wallet/deposit", []byte(`{"amount":"25.00"}`))
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.Deposit)).ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestRequestWithdrawalSuccess(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubWalletService{
		requestWithdrawalFn: func(_ context.Context, contractorID string, amountMinor int64) (string, error) {
			if contractorID != "user-1" || amountMinor != 5000 {
				t.Fatalf("unexpected args: %s %d", contractorID, amountMinor)
			}
			return "req-1", nil
		},
	}, stubSettlementService{}, stubReconcileService{}, stubWebhookVerifier{}, stubTransactionStore{}, stubCompletionStore{}, stubWithdrawalStore{}, stubJobStore{}, stubNotificationStore{}, stubAuditStore{})

	req := authedRequest(t, http.MethodPost, "/wallet/withdrawals", []byte(`{"amount":"50.00"}`))
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.RequestWithdrawal)).ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["request_id"] != "req-1" || payload["status"] != models.RequestStatusPending {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestRequestWithdrawalInsufficientBalance(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubWalletService{
		requestWithdrawalFn: func(context.Context, string, int64) (string, error) {
			return "", services.ErrInsufficientBalance
		},
	}, stubSettlementService{}, stubReconcileService{}, stubWebhookVerifier{}, stubTransactionStore{}, stubCompletionStore{}, stubWithdrawalStore{}, stubJobStore{}, stubNotificationStore{}, stubAuditStore{})

	req := authedRequest(t, http.MethodPost, "/wallet/withdrawals", []byte(`{"amount":"50.00"}`))
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.RequestWithdrawal)).ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestOnboardingLinkWithoutAccount(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubWalletService{
		onboardingLinkFn: func(context.Context, string, string, string) (string, error) {
			return "", services.ErrNoPayoutAccount
		},
	}, stubSettlementService{}, stubReconcileService{}, stubWebhookVerifier{}, stubTransactionStore{}, stubCompletionStore{}, stubWithdrawalStore{}, stubJobStore{}, stubNotificationStore{}, stubAuditStore{})

	req := authedRequest(t, http.MethodPost, "/wallet/payout-account/onboarding-link", nil)
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.OnboardingLink)).ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestPayOfferSuccess(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubWalletService{}, stubSettlementService{
		payOfferFn: func(_ context.Context, offerID, customerID string) (services.OfferPayment, error) {
			if offerID != "offer-1" || customerID != "user-1" {
				t.Fatalf("unexpected args: %s %s", offerID, customerID)
			}
			return services.OfferPayment{OfferID: offerID, PlatformFee: 10000, ServiceFee: 5000, ContractorPayout: 85000}, nil
		},
	}, stubReconcileService{}, stubWebhookVerifier{}, stubTransactionStore{}, stubCompletionStore{}, stubWithdrawalStore{}, stubJobStore{}, stubNotificationStore{}, stubAuditStore{})

	req := withURLParam(authedRequest(t, http.MethodPost, "/offers/offer-1/pay", nil), "id", "offer-1")
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.PayOffer)).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestPayOfferNotPayable(t *testing.T) {
	handler := newTestHandler(fakeTxRunner{}, stubUserStore{}, stubWalletService{}, stubSettlementService{
		payOfferFn: func(context.Context, string, string) (services.OfferPayment, error) {
			return services.OfferPayment{}, services.ErrOfferNotPayable
		},
	}, stubReconcileService{}, stubWebhookVerifier{}, stubTransactionStore{}, stubCompletionStore{}, stubWithdrawalStore{}, stubJobStore{}, stubNotificationStore{}, stubAuditStore{})

	req := withURLParam(authedRequest(t, http.MethodPost, "/offers/offer-1/pay", nil), "id", "offer-1")
	rr := httptest.NewRecorder()
	middleware.Auth("secret")(http.HandlerFunc(handler.PayOffer)).ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
