package services

import (
	"context"
	"time"

	"marketplace/internal/gateway"
	"marketplace/internal/models"
	"marketplace/internal/notify"
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

type stubWalletStore struct {
	getByUserFn          func(ctx context.Context, userID string) (models.Wallet, error)
	getForUpdateFn       func(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error)
	creditBalanceFn      func(ctx context.Context, tx store.Execer, walletID string, amount int64) error
	debitBalanceFn       func(ctx context.Context, tx store.Execer, walletID string, amount int64) (int64, error)
	creditEarningsFn     func(ctx context.Context, tx store.Execer, walletID string, amount int64) error
	debitForWithdrawalFn func(ctx context.Context, tx store.Execer, walletID string, amount int64) (int64, error)
	debitForSpendFn      func(ctx context.Context, tx store.Execer, walletID string, amount int64) (int64, error)
	adjustEscrowFn       func(ctx context.Context, tx store.Execer, walletID string, delta int64) error

	setStripeCustomerIfEmptyFn func(ctx context.Context, tx store.Execer, userID, customerID string) error
}

func (s stubWalletStore) GetByUser(ctx context.Context, userID string) (models.Wallet, error) {
	if s.getByUserFn == nil {
		return models.Wallet{}, nil
	}
	return s.getByUserFn(ctx, userID)
}

func (s stubWalletStore) GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error) {
	if s.getForUpdateFn == nil {
		return models.Wallet{}, nil
	}
	return s.getForUpdateFn(ctx, tx, userID)
}

func (s stubWalletStore) CreditBalance(ctx context.Context, tx store.Execer, walletID string, amount int64) error {
	if s.creditBalanceFn == nil {
		return nil
	}
	return s.creditBalanceFn(ctx, tx, walletID, amount)
}

func (s stubWalletStore) DebitBalance(ctx context.Context, tx store.Execer, walletID string, amount int64) (int64, error) {
	if s.debitBalanceFn == nil {
		return 1, nil
	}
	return s.debitBalanceFn(ctx, tx, walletID, amount)
}

func (s stubWalletStore) CreditEarnings(ctx context.Context, tx store.Execer, walletID string, amount int64) error {
	if s.creditEarningsFn == nil {
		return nil
	}
	return s.creditEarningsFn(ctx, tx, walletID, amount)
}

func (s stubWalletStore) DebitForWithdrawal(ctx context.Context, tx store.Execer, walletID string, amount int64) (int64, error) {
	if s.debitForWithdrawalFn == nil {
		return 1, nil
	}
	return s.debitForWithdrawalFn(ctx, tx, walletID, amount)
}

func (s stubWalletStore) DebitForSpend(ctx context.Context, tx store.Execer, walletID string, amount int64) (int64, error) {
	if s.debitForSpendFn == nil {
		return 1, nil
	}
	return s.debitForSpendFn(ctx, tx, walletID, amount)
}

func (s stubWalletStore) AdjustEscrow(ctx context.Context, tx store.Execer, walletID string, delta int64) error {
	if s.adjustEscrowFn == nil {
		return nil
	}
	return s.adjustEscrowFn(ctx, tx, walletID, delta)
}

func (s stubWalletStore) SetStripeCustomerIfEmpty(ctx context.Context, tx store.Execer, userID, customerID string) error {
	if s.setStripeCustomerIfEmptyFn == nil {
		return nil
	}
	return s.setStripeCustomerIfEmptyFn(ctx, tx, userID, customerID)
}

type stubTransactionStore struct {
	createFn                func(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	markCompletedFn         func(ctx context.Context, tx store.Execer, transactionID, transferID string) error
	markFailedFn            func(ctx context.Context, tx store.Execer, transactionID, reason string) error
	getBySessionForUpdateFn func(ctx context.Context, tx store.Getter, sessionID string) (models.Transaction, error)
	completeBySessionFn     func(ctx context.Context, tx store.Execer, sessionID, paymentID string) (int64, error)
	failBySessionFn         func(ctx context.Context, tx store.Execer, sessionID, reason string) (int64, error)
	listUnsettledFn         func(ctx context.Context, olderThan time.Time) ([]models.Transaction, error)
}

func (s stubTransactionStore) Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubTransactionStore) MarkCompleted(ctx context.Context, tx store.Execer, transactionID, transferID string) error {
	if s.markCompletedFn == nil {
		return nil
	}
	return s.markCompletedFn(ctx, tx, transactionID, transferID)
}

func (s stubTransactionStore) MarkFailed(ctx context.Context, tx store.Execer, transactionID, reason string) error {
	if s.markFailedFn == nil {
		return nil
	}
	return s.markFailedFn(ctx, tx, transactionID, reason)
}

func (s stubTransactionStore) GetBySessionForUpdate(ctx context.Context, tx store.Getter, sessionID string) (models.Transaction, error) {
	if s.getBySessionForUpdateFn == nil {
		return models.Transaction{}, nil
	}
	return s.getBySessionForUpdateFn(ctx, tx, sessionID)
}

func (s stubTransactionStore) CompleteBySession(ctx context.Context, tx store.Execer, sessionID, paymentID string) (int64, error) {
	if s.completeBySessionFn == nil {
		return 1, nil
	}
	return s.completeBySessionFn(ctx, tx, sessionID, paymentID)
}

func (s stubTransactionStore) FailBySession(ctx context.Context, tx store.Execer, sessionID, reason string) (int64, error) {
	if s.failBySessionFn == nil {
		return 1, nil
	}
	return s.failBySessionFn(ctx, tx, sessionID, reason)
}

func (s stubTransactionStore) ListUnsettled(ctx context.Context, olderThan time.Time) ([]models.Transaction, error) {
	if s.listUnsettledFn == nil {
		return nil, nil
	}
	return s.listUnsettledFn(ctx, olderThan)
}

type stubCompletionStore struct {
	getByIDFn func(ctx context.Context, requestID string) (models.CompletionRequest, error)
	approveFn func(ctx context.Context, tx store.Execer, requestID, adminID string) (int64, error)
	rejectFn  func(ctx context.Context, tx store.Execer, requestID, adminID, reason string) (int64, error)
}

func (s stubCompletionStore) GetByID(ctx context.Context, requestID string) (models.CompletionRequest, error) {
	if s.getByIDFn == nil {
		return models.CompletionRequest{}, nil
	}
	return s.getByIDFn(ctx, requestID)
}

func (s stubCompletionStore) Approve(ctx context.Context, tx store.Execer, requestID, adminID string) (int64, error) {
	if s.approveFn == nil {
		return 1, nil
	}
	return s.approveFn(ctx, tx, requestID, adminID)
}

func (s stubCompletionStore) Reject(ctx context.Context, tx store.Execer, requestID, adminID, reason string) (int64, error) {
	if s.rejectFn == nil {
		return 1, nil
	}
	return s.rejectFn(ctx, tx, requestID, adminID, reason)
}

type stubWithdrawalStore struct {
	getByIDFn       func(ctx context.Context, requestID string) (models.WithdrawalRequest, error)
	approveFn       func(ctx context.Context, tx store.Execer, requestID, adminID string) (int64, error)
	rejectFn        func(ctx context.Context, tx store.Execer, requestID, adminID, reason string) (int64, error)
	setTransferIDFn func(ctx context.Context, tx store.Execer, requestID, transferID string) error
	createFn        func(ctx context.Context, tx store.Execer, id, contractorID string, amount int64) error
}

func (s stubWithdrawalStore) GetByID(ctx context.Context, requestID string) (models.WithdrawalRequest, error) {
	if s.getByIDFn == nil {
		return models.WithdrawalRequest{}, nil
	}
	return s.getByIDFn(ctx, requestID)
}

func (s stubWithdrawalStore) Approve(ctx context.Context, tx store.Execer, requestID, adminID string) (int64, error) {
	if s.approveFn == nil {
		return 1, nil
	}
	return s.approveFn(ctx, tx, requestID, adminID)
}

func (s stubWithdrawalStore) Reject(ctx context.Context, tx store.Execer, requestID, adminID, reason string) (int64, error) {
	if s.rejectFn == nil {
		return 1, nil
	}
	return s.rejectFn(ctx, tx, requestID, adminID, reason)
}

func (s stubWithdrawalStore) SetTransferID(ctx context.Context, tx store.Execer, requestID, transferID string) error {
	if s.setTransferIDFn == nil {
		return nil
	}
	return s.setTransferIDFn(ctx, tx, requestID, transferID)
}

func (s stubWithdrawalStore) Create(ctx context.Context, tx store.Execer, id, contractorID string, amount int64) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, contractorID, amount)
}

type stubJobStore struct {
	getJobFn          func(ctx context.Context, jobID string) (models.Job, error)
	getOfferFn        func(ctx context.Context, offerID string) (models.Offer, error)
	setJobStatusFn    func(ctx context.Context, tx store.Execer, jobID, status string) error
	setOfferStatusFn  func(ctx context.Context, tx store.Execer, offerID, status string) error
	transitionOfferFn func(ctx context.Context, tx store.Execer, offerID, from, to string) (int64, error)
	setOfferFeesFn    func(ctx context.Context, tx store.Execer, offerID string, platformFee, serviceFee, contractorPayout int64) error
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

func (s stubJobStore) SetJobStatus(ctx context.Context, tx store.Execer, jobID, status string) error {
	if s.setJobStatusFn == nil {
		return nil
	}
	return s.setJobStatusFn(ctx, tx, jobID, status)
}

func (s stubJobStore) SetOfferStatus(ctx context.Context, tx store.Execer, offerID, status string) error {
	if s.setOfferStatusFn == nil {
		return nil
	}
	return s.setOfferStatusFn(ctx, tx, offerID, status)
}

func (s stubJobStore) TransitionOffer(ctx context.Context, tx store.Execer, offerID, from, to string) (int64, error) {
	if s.transitionOfferFn == nil {
		return 1, nil
	}
	return s.transitionOfferFn(ctx, tx, offerID, from, to)
}

func (s stubJobStore) SetOfferFees(ctx context.Context, tx store.Execer, offerID string, platformFee, serviceFee, contractorPayout int64) error {
	if s.setOfferFeesFn == nil {
		return nil
	}
	return s.setOfferFeesFn(ctx, tx, offerID, platformFee, serviceFee, contractorPayout)
}

type stubTransferGateway struct {
	createTransferFn func(ctx context.Context, destinationAccountID string, amountMinor int64, description string) (string, error)
}

func (s stubTransferGateway) CreateTransfer(ctx context.Context, destinationAccountID string, amountMinor int64, description string) (string, error) {
	if s.createTransferFn == nil {
		return "tr_test", nil
	}
	return s.createTransferFn(ctx, destinationAccountID, amountMinor, description)
}

type stubNotifier struct {
	sendFn func(ctx context.Context, notification notify.Notification) error
	sent   []notify.Notification
}

func (s *stubNotifier) SendToUser(ctx context.Context, notification notify.Notification) error {
	s.sent = append(s.sent, notification)
	if s.sendFn == nil {
		return nil
	}
	return s.sendFn(ctx, notification)
}

type stubAdminProvider struct {
	account AdminAccount
	err     error
}

func (s stubAdminProvider) Get(ctx context.Context) (AdminAccount, error) {
	return s.account, s.err
}

type stubAuditStore struct {
	logFn  func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	logged []string
}

func (s *stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	s.logged = append(s.logged, action)
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubWalletCreator struct {
	stubWalletStore
	createWalletFn     func(ctx context.Context, tx store.Execer, id, userID string) error
	setStripeAccountFn func(ctx context.Context, tx store.Execer, userID, accountID string) error
}

func (s stubWalletCreator) Create(ctx context.Context, tx store.Execer, id, userID string) error {
	if s.createWalletFn == nil {
		return nil
	}
	return s.createWalletFn(ctx, tx, id, userID)
}

func (s stubWalletCreator) SetStripeAccount(ctx context.Context, tx store.Execer, userID, accountID string) error {
	if s.setStripeAccountFn == nil {
		return nil
	}
	return s.setStripeAccountFn(ctx, tx, userID, accountID)
}

type stubUserStore struct {
	getByIDFn func(ctx context.Context, userID string) (models.User, error)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{ID: userID, Email: "user@example.com"}, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubWalletProvider struct {
	getOrCreateFn func(ctx context.Context, userID string) (models.Wallet, error)
}

func (s stubWalletProvider) GetOrCreateWallet(ctx context.Context, userID string) (models.Wallet, error) {
	if s.getOrCreateFn == nil {
		return models.Wallet{}, nil
	}
	return s.getOrCreateFn(ctx, userID)
}

type stubCheckoutGateway struct {
	createPayoutAccountFn   func(ctx context.Context, ownerID, email string) (string, error)
	createOnboardingLinkFn  func(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	getAccountStatusFn      func(ctx context.Context, accountID string) (gateway.AccountStatus, error)
	createCheckoutSessionFn func(ctx context.Context, userID string, amountMinor int64, email string, customerID *string) (gateway.CheckoutSession, error)
}

func (s stubCheckoutGateway) CreatePayoutAccount(ctx context.Context, ownerID, email string) (string, error) {
	if s.createPayoutAccountFn == nil {
		return "acct_test", nil
	}
	return s.createPayoutAccountFn(ctx, ownerID, email)
}

func (s stubCheckoutGateway) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	if s.createOnboardingLinkFn == nil {
		return "https://connect.stripe.test/onboarding", nil
	}
	return s.createOnboardingLinkFn(ctx, accountID, refreshURL, returnURL)
}

func (s stubCheckoutGateway) GetAccountStatus(ctx context.Context, accountID string) (gateway.AccountStatus, error) {
	if s.getAccountStatusFn == nil {
		return gateway.AccountStatus{Status: gateway.AccountStatusVerified}, nil
	}
	return s.getAccountStatusFn(ctx, accountID)
}

func (s stubCheckoutGateway) CreateCheckoutSession(ctx context.Context, userID string, amountMinor int64, email string, customerID *string) (gateway.CheckoutSession, error) {
	if s.createCheckoutSessionFn == nil {
		return gateway.CheckoutSession{URL: "https://checkout.stripe.test/session", SessionID: "cs_test"}, nil
	}
	return s.createCheckoutSessionFn(ctx, userID, amountMinor, email, customerID)
}
