package handlers

import (
	"context"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/gateway"
	"marketplace/internal/models"
	"marketplace/internal/notify"
	"marketplace/internal/services"
	"marketplace/internal/store"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn     func(ctx context.Context, tx store.Execer, id, username, email, role, passwordHash string) error
	getByEmailFn func(ctx context.Context, email string) (models.User, error)
	getByIDFn    func(ctx context.Context, userID string) (models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, email, role, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, email, role, passwordHash)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (models.User, error) {
	if s.getByEmailFn == nil {
		return models.User{}, nil
	}
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: userID}, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubWalletService struct {
	getOrCreateFn       func(ctx context.Context, userID string) (models.Wallet, error)
	depositFn           func(ctx context.Context, userID string, amountMinor int64) (services.DepositIntent, error)
	requestWithdrawalFn func(ctx context.Context, contractorID string, amountMinor int64) (string, error)
	connectFn           func(ctx context.Context, userID string) (string, error)
	onboardingLinkFn    func(ctx context.Context, userID, refreshURL, returnURL string) (string, error)
	accountStatusFn     func(ctx context.Context, userID string) (gateway.AccountStatus, error)
}

func (s stubWalletService) GetOrCreateWallet(ctx context.Context, userID string) (models.Wallet, error) {
	if s.getOrCreateFn == nil {
		return models.Wallet{ID: "wallet-1", UserID: userID}, nil
	}
	return s.getOrCreateFn(ctx, userID)
}

func (s stubWalletService) Deposit(ctx context.Context, userID string, amountMinor int64) (services.DepositIntent, error) {
	if s.depositFn == nil {
		return services.DepositIntent{}, nil
	}
	return s.depositFn(ctx, userID, amountMinor)
}

func (s stubWalletService) RequestWithdrawal(ctx context.Context, contractorID string, amountMinor int64) (string, error) {
	if s.requestWithdrawalFn == nil {
		return "req-1", nil
	}
	return s.requestWithdrawalFn(ctx, contractorID, amountMinor)
}

func (s stubWalletService) ConnectPayoutAccount(ctx context.Context, userID string) (string, error) {
	if s.connectFn == nil {
		return "acct_test", nil
	}
	return s.connectFn(ctx, userID)
}

func (s stubWalletService) OnboardingLink(ctx context.Context, userID, refreshURL, returnURL string) (string, error) {
	if s.onboardingLinkFn == nil {
		return "https://connect.stripe.test/onboarding", nil
	}
	return s.onboardingLinkFn(ctx, userID, refreshURL, returnURL)
}

func (s stubWalletService) AccountStatus(ctx context.Context, userID string) (gateway.AccountStatus, error) {
	if s.accountStatusFn == nil {
		return gateway.AccountStatus{Status: gateway.AccountStatusNotConnected}, nil
	}
	return s.accountStatusFn(ctx, userID)
}

type stubSettlementService struct {
	approveCompletionFn func(ctx context.Context, requestID, adminID string) (services.CompletionApproval, error)
	rejectCompletionFn  func(ctx context.Context, requestID, adminID, reason string) error
	approveWithdrawalFn func(ctx context.Context, requestID, adminID string) (services.WithdrawalApproval, error)
	rejectWithdrawalFn  func(ctx context.Context, requestID, adminID, reason string) error
	payOfferFn          func(ctx context.Context, offerID, customerID string) (services.OfferPayment, error)
	refundOfferFn       func(ctx context.Context, offerID, adminID string) error
}

func (s stubSettlementService) ApproveCompletion(ctx context.Context, requestID, adminID string) (services.CompletionApproval, error) {
	if s.approveCompletionFn == nil {
		return services.CompletionApproval{}, nil
	}
	return s.approveCompletionFn(ctx, requestID, adminID)
}

func (s stubSettlementService) RejectCompletion(ctx context.Context, requestID, adminID, reason string) error {
	if s.rejectCompletionFn == nil {
		return nil
	}
	return s.rejectCompletionFn(ctx, requestID, adminID, reason)
}

func (s stubSettlementService) ApproveWithdrawal(ctx context.Context, requestID, adminID string) (services.WithdrawalApproval, error) {
	if s.approveWithdrawalFn == nil {
		return services.WithdrawalApproval{}, nil
	}
	return s.approveWithdrawalFn(ctx, requestID, adminID)
}

func (s stubSettlementService) RejectWithdrawal(ctx context.Context, requestID, adminID, reason string) error {
	if s.rejectWithdrawalFn == nil {
		return nil
	}
	return s.rejectWithdrawalFn(ctx, requestID, adminID, reason)
}

func (s stubSettlementService) PayOffer(ctx context.Context, offerID, customerID string) (services.OfferPayment, error) {
	if s.payOfferFn == nil {
		return services.OfferPayment{}, nil
	}
	return s.payOfferFn(ctx, offerID, customerID)
}

func (s stubSettlementService) RefundOffer(ctx context.Context, offerID, adminID string) error {
	if s.refundOfferFn == nil {
		return nil
	}
	return s.refundOfferFn(ctx, offerID, adminID)
}

type stubReconcileService struct {
	handleEventFn   func(ctx context.Context, event gateway.Event) error
	listUnsettledFn func(ctx context.Context, age time.Duration) ([]models.Transaction, error)
}

func (s stubReconcileService) HandleEvent(ctx context.Context, event gateway.Event) error {
	if s.handleEventFn == nil {
		return nil
	}
	return s.handleEventFn(ctx, event)
}

func (s stubReconcileService) ListUnsettled(ctx context.Context, age time.Duration) ([]models.Transaction, error) {
	if s.listUnsettledFn == nil {
		return nil, nil
	}
	return s.listUnsettledFn(ctx, age)
}

type stubWebhookVerifier struct {
	verifyFn func(payload []byte, signatureHeader string) (gateway.Event, error)
}

func (s stubWebhookVerifier) VerifyWebhook(payload []byte, signatureHeader string) (gateway.Event, error) {
	if s.verifyFn == nil {
		return gateway.Event{Kind: gateway.EventIgnored}, nil
	}
	return s.verifyFn(payload, signatureHeader)
}

type stubTransactionStore struct {
	listByUserFn func(ctx context.Context, userID, txType string, limit, offset int) ([]models.Transaction, error)
	listAllFn    func(ctx context.Context, limit, offset int) ([]models.Transaction, error)
}

func (s stubTransactionStore) ListByUser(ctx context.Context, userID, txType string, limit, offset int) ([]models.Transaction, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, txType, limit, offset)
}

func (s stubTransactionStore) ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error) {
	if s.listAllFn == nil {
		return nil, nil
	}
	return s.listAllFn(ctx, limit, offset)
}

type stubCompletionStore struct {
	createFn       func(ctx context.Context, tx store.Execer, input store.CompletionRequestInput) error
	listByStatusFn func(ctx context.Context, status string, limit, offset int) ([]models.CompletionRequest, error)
}

func (s stubCompletionStore) Create(ctx context.Context, tx store.Execer, input store.CompletionRequestInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubCompletionStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.CompletionRequest, error) {
	if s.listByStatusFn == nil {
		return nil, nil
	}
	return s.listByStatusFn(ctx, status, limit, offset)
}

type stubWithdrawalStore struct {
	listByStatusFn     func(ctx context.Context, status string, limit, offset int) ([]models.WithdrawalRequest, error)
	listByContractorFn func(ctx context.Context, contractorID string, limit, offset int) ([]models.WithdrawalRequest, error)
}

func (s stubWithdrawalStore) ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.WithdrawalRequest, error) {
	if s.listByStatusFn == nil {
		return nil, nil
	}
	return s.listByStatusFn(ctx, status, limit, offset)
}

func (s stubWithdrawalStore) ListByContractor(ctx context.Context, contractorID string, limit, offset int) ([]models.WithdrawalRequest, error) {
	if s.listByContractorFn == nil {
		return nil, nil
	}
	return s.listByContractorFn(ctx, contractorID, limit, offset)
}

type stubJobStore struct {
	getJobFn   func(ctx context.Context, jobID string) (models.Job, error)
	getOfferFn func(ctx context.Context, offerID string) (models.Offer, error)
}

func (s stubJobStore) GetJob(ctx context.Context, jobID string) (models.Job, error) {
	if s.getJobFn == nil {
		return models.Job{}, nil
	}
	return s.getJobFn(ctx, jobID)
}

func (s stubJobStore) GetOffer(ctx context.Context, offerID string) (models.Offer, error) {
	if s.getOfferFn == nil {
		return models.Offer{}, nil
	}
	return s.getOfferFn(ctx, offerID)
}

type stubNotificationStore struct {
	listByUserFn func(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	markReadFn   func(ctx context.Context, notificationID, userID string) (int64, error)
}

func (s stubNotificationStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	if s.listByUserFn == nil {
		return nil, nil
	}
	return s.listByUserFn(ctx, userID, limit, offset)
}

func (s stubNotificationStore) MarkRead(ctx context.Context, notificationID, userID string) (int64, error) {
	if s.markReadFn == nil {
		return 1, nil
	}
	return s.markReadFn(ctx, notificationID, userID)
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listFn func(ctx context.Context, limit, offset int) ([]store.AuditLog, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]store.AuditLog, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit, offset)
}

func testConfig() config.Config {
	return config.Config{
		Port:           "8080",
		JWTSecret:      "secret",
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
}

func newTestHandler(txRunner fakeTxRunner, users stubUserStore, walletSvc stubWalletService, settlement stubSettlementService, reconciler stubReconcileService, webhooks stubWebhookVerifier, transactions stubTransactionStore, completions stubCompletionStore, withdrawals stubWithdrawalStore, jobs stubJobStore, notifications stubNotificationStore, audit stubAuditStore) *Handler {
	return New(txRunner, testConfig(), users, walletSvc, settlement, reconciler, webhooks, transactions, completions, withdrawals, jobs, notifications, audit, notify.NewHub())
}
