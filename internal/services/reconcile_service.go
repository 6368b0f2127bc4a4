package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"marketplace/internal/db"
	"marketplace/internal/gateway"
	"marketplace/internal/models"
	"marketplace/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrMissingEventUser = errors.New("event has no user metadata")

type ReconcileWalletStore interface {
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error)
	CreditBalance(ctx context.Context, tx store.Execer, walletID string, amount int64) error
	SetStripeCustomerIfEmpty(ctx context.Context, tx store.Execer, userID, customerID string) error
}

type ReconcileTransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	GetBySessionForUpdate(ctx context.Context, tx store.Getter, sessionID string) (models.Transaction, error)
	CompleteBySession(ctx context.Context, tx store.Execer, sessionID, paymentID string) (int64, error)
	FailBySession(ctx context.Context, tx store.Execer, sessionID, reason string) (int64, error)
	ListUnsettled(ctx context.Context, olderThan time.Time) ([]models.Transaction, error)
}

type WalletProvider interface {
	GetOrCreateWallet(ctx context.Context, userID string) (models.Wallet, error)
}

// ReconcileService aligns the local ledger with what the payment processor
// reports asynchronously. Every path is idempotent against at-least-once
// delivery: matching is by checkout session id with a status guard.
type ReconcileService struct {
	txRunner     db.TxRunner
	wallets      ReconcileWalletStore
	walletOwner  WalletProvider
	transactions ReconcileTransactionStore
}

func NewReconcileService(txRunner db.TxRunner, wallets ReconcileWalletStore, walletOwner WalletProvider, transactions ReconcileTransactionStore) *ReconcileService {
	return &ReconcileService{
		txRunner:     txRunner,
		wallets:      wallets,
		walletOwner:  walletOwner,
		transactions: transactions,
	}
}

func (s *ReconcileService) HandleEvent(ctx context.Context, event gateway.Event) error {
	switch event.Kind {
	case gateway.EventDepositSucceeded:
		return s.depositSucceeded(ctx, event)
	case gateway.EventDepositFailed:
		return s.depositFailed(ctx, event)
	default:
		return nil
	}
}

func (s *ReconcileService) depositSucceeded(ctx context.Context, event gateway.Event) error {
	if event.UserID == "" {
		return ErrMissingEventUser
	}
	if _, err := s.walletOwner.GetOrCreateWallet(ctx, event.UserID); err != nil {
		return err
	}
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		wallet, err := s.wallets.GetForUpdate(ctx, tx, event.UserID)
		if err != nil {
			return err
		}
		rows, err := s.transactions.CompleteBySession(ctx, tx, event.SessionID, event.PaymentIntentID)
		if err != nil {
			return err
		}
		if rows == 0 {
			_, err := s.transactions.GetBySessionForUpdate(ctx, tx, event.SessionID)
			if err == nil {
				// Duplicate delivery: the session already settled,
				// nothing to credit.
				return nil
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			// No pending row on file. Should not normally happen;
			// recreate the deposit from the event so the credit is
			// not lost.
			log.Printf("reconcile: no pending transaction for session %s, creating fallback deposit", event.SessionID)
			sessionID := event.SessionID
			if err := s.transactions.Create(ctx, tx, store.TransactionInput{
				ID:              uuid.NewString(),
				Type:            models.TransactionTypeDeposit,
				Status:          models.TransactionStatusPending,
				Amount:          event.AmountMinor,
				ToUserID:        &event.UserID,
				Description:     "Wallet deposit (reconciled from webhook)",
				StripeSessionID: &sessionID,
			}); err != nil {
				return err
			}
			if _, err := s.transactions.CompleteBySession(ctx, tx, event.SessionID, event.PaymentIntentID); err != nil {
				return err
			}
		}
		if err := s.wallets.CreditBalance(ctx, tx, wallet.ID, event.AmountMinor); err != nil {
			return err
		}
		if event.CustomerID != "" {
			return s.wallets.SetStripeCustomerIfEmpty(ctx, tx, event.UserID, event.CustomerID)
		}
		return nil
	})
}

func (s *ReconcileService) depositFailed(ctx context.Context, event gateway.Event) error {
	return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.transactions.FailBySession(ctx, tx, event.SessionID, "payment failed")
		if err != nil {
			return err
		}
		if rows == 0 {
			log.Printf("reconcile: no pending transaction for failed session %s", event.SessionID)
		}
		return nil
	})
}

// ListUnsettled exposes transfer-backed transactions needing attention to an
// out-of-band reconciliation sweep.
func (s *ReconcileService) ListUnsettled(ctx context.Context, age time.Duration) ([]models.Transaction, error) {
	return s.transactions.ListUnsettled(ctx, time.Now().Add(-age))
}
