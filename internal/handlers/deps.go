package handlers

import (
	"context"
	"time"

	"marketplace/internal/gateway"
	"marketplace/internal/models"
	"marketplace/internal/services"
	"marketplace/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, email, role, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type WalletService interface {
	GetOrCreateWallet(ctx context.Context, userID string) (models.Wallet, error)
	Deposit(ctx context.Context, userID string, amountMinor int64) (services.DepositIntent, error)
	RequestWithdrawal(ctx context.Context, contractorID string, amountMinor int64) (string, error)
	ConnectPayoutAccount(ctx context.Context, userID string) (string, error)
	OnboardingLink(ctx context.Context, userID, refreshURL, returnURL string) (string, error)
	AccountStatus(ctx context.Context, userID string) (gateway.AccountStatus, error)
}

type SettlementService interface {
	ApproveCompletion(ctx context.Context, requestID, adminID string) (services.CompletionApproval, error)
	RejectCompletion(ctx context.Context, requestID, adminID, reason string) error
	ApproveWithdrawal(ctx context.Context, requestID, adminID string) (services.WithdrawalApproval, error)
	RejectWithdrawal(ctx context.Context, requestID, adminID, reason string) error
	PayOffer(ctx context.Context, offerID, customerID string) (services.OfferPayment, error)
	RefundOffer(ctx context.Context, offerID, adminID string) error
}

type ReconcileService interface {
	HandleEvent(ctx context.Context, event gateway.Event) error
	ListUnsettled(ctx context.Context, age time.Duration) ([]models.Transaction, error)
}

type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signatureHeader string) (gateway.Event, error)
}

type TransactionStore interface {
	ListByUser(ctx context.Context, userID, txType string, limit, offset int) ([]models.Transaction, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Transaction, error)
}

type CompletionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.CompletionRequestInput) error
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.CompletionRequest, error)
}

type WithdrawalStore interface {
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]models.WithdrawalRequest, error)
	ListByContractor(ctx context.Context, contractorID string, limit, offset int) ([]models.WithdrawalRequest, error)
}

type JobStore interface {
	GetJob(ctx context.Context, jobID string) (models.Job, error)
	GetOffer(ctx context.Context, offerID string) (models.Offer, error)
}

type NotificationStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) (int64, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]store.AuditLog, error)
}
