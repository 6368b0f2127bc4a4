package services

import (
	"context"
	"database/sql"
	"errors"

	"marketplace/internal/db"
	"marketplace/internal/gateway"
	"marketplace/internal/models"
	"marketplace/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type WalletCreator interface {
	WalletStore
	Create(ctx context.Context, tx store.Execer, id, userID string) error
	SetStripeAccount(ctx context.Context, tx store.Execer, userID, accountID string) error
}

type UserStore interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type CheckoutGateway interface {
	CreatePayoutAccount(ctx context.Context, ownerID, email string) (string, error)
	CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	GetAccountStatus(ctx context.Context, accountID string) (gateway.AccountStatus, error)
	CreateCheckoutSession(ctx context.Context, userID string, amountMinor int64, email string, customerID *string) (gateway.CheckoutSession, error)
}

type WithdrawalRequester interface {
	Create(ctx context.Context, tx store.Execer, id, contractorID string, amount int64) error
}

type WalletService struct {
	txRunner     db.TxRunner
	wallets      WalletCreator
	users        UserStore
	transactions TransactionStore
	withdrawals  WithdrawalRequester
	gateway      CheckoutGateway
}

func NewWalletService(txRunner db.TxRunner, wallets WalletCreator, users UserStore, transactions TransactionStore, withdrawals WithdrawalRequester, checkoutGateway CheckoutGateway) *WalletService {
	return &WalletService{
		txRunner:     txRunner,
		wallets:      wallets,
		users:        users,
		transactions: transactions,
		withdrawals:  withdrawals,
		gateway:      checkoutGateway,
	}
}

// GetOrCreateWallet is safe under concurrent first access: a lost creation
// race surfaces as a unique violation and resolves by re-fetching.
func (s *WalletService) GetOrCreateWallet(ctx context.Context, userID string) (models.Wallet, error) {
	wallet, err := s.wallets.GetByUser(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Wallet{}, err
	}
	createErr := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.wallets.Create(ctx, tx, uuid.NewString(), userID)
	})
	if createErr != nil && !db.IsUniqueViolation(createErr) {
		return models.Wallet{}, createErr
	}
	return s.wallets.GetByUser(ctx, userID)
}

type DepositIntent struct {
	URL           string `json:"url"`
	SessionID     string `json:"session_id"`
	TransactionID string `json:"transaction_id"`
}

// Deposit opens a checkout session and records the pending deposit the
// webhook reconciler later settles by session id.
func (s *WalletService) Deposit(ctx context.Context, userID string, amountMinor int64) (DepositIntent, error) {
	if amountMinor <= 0 {
		return DepositIntent{}, ErrInvalidAmount
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return DepositIntent{}, err
	}
	wallet, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return DepositIntent{}, err
	}
	if wallet.IsFrozen {
		return DepositIntent{}, ErrWalletFrozen
	}
	session, err := s.gateway.CreateCheckoutSession(ctx, userID, amountMinor, user.Email, wallet.StripeCustomerID)
	if err != nil {
		return DepositIntent{}, err
	}
	transactionID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:              transactionID,
			Type:            models.TransactionTypeDeposit,
			Status:          models.TransactionStatusPending,
			Amount:          amountMinor,
			ToUserID:        &userID,
			Description:     "Wallet deposit",
			StripeSessionID: &session.SessionID,
		})
	})
	if err != nil {
		// The session exists either way; reconciliation recreates the
		// row from the webhook if this insert was lost.
		return DepositIntent{}, err
	}
	return DepositIntent{URL: session.URL, SessionID: session.SessionID, TransactionID: transactionID}, nil
}

// RequestWithdrawal records a pending withdrawal for admin review. Balance is
// checked here as a courtesy; approval re-checks it authoritatively.
func (s *WalletService) RequestWithdrawal(ctx context.Context, contractorID string, amountMinor int64) (string, error) {
	if amountMinor <= 0 {
		return "", ErrInvalidAmount
	}
	wallet, err := s.GetOrCreateWallet(ctx, contractorID)
	if err != nil {
		return "", err
	}
	if wallet.IsFrozen {
		return "", ErrWalletFrozen
	}
	if wallet.StripeAccountID == nil || *wallet.StripeAccountID == "" {
		return "", ErrNoPayoutAccount
	}
	if wallet.Balance < amountMinor {
		return "", ErrInsufficientBalance
	}
	requestID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.withdrawals.Create(ctx, tx, requestID, contractorID, amountMinor)
	})
	if err != nil {
		return "", err
	}
	return requestID, nil
}

// ConnectPayoutAccount provisions an external payout account once and stores
// its id on the wallet. Repeat calls return the existing account.
func (s *WalletService) ConnectPayoutAccount(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	wallet, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return "", err
	}
	if wallet.StripeAccountID != nil && *wallet.StripeAccountID != "" {
		return *wallet.StripeAccountID, nil
	}
	accountID, err := s.gateway.CreatePayoutAccount(ctx, userID, user.Email)
	if err != nil {
		return "", err
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.wallets.SetStripeAccount(ctx, tx, userID, accountID)
	})
	if err != nil {
		return "", err
	}
	return accountID, nil
}

func (s *WalletService) OnboardingLink(ctx context.Context, userID, refreshURL, returnURL string) (string, error) {
	wallet, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return "", err
	}
	if wallet.StripeAccountID == nil || *wallet.StripeAccountID == "" {
		return "", ErrNoPayoutAccount
	}
	return s.gateway.CreateOnboardingLink(ctx, *wallet.StripeAccountID, refreshURL, returnURL)
}

func (s *WalletService) AccountStatus(ctx context.Context, userID string) (gateway.AccountStatus, error) {
	wallet, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return gateway.AccountStatus{}, err
	}
	if wallet.StripeAccountID == nil || *wallet.StripeAccountID == "" {
		return gateway.AccountStatus{Status: gateway.AccountStatusNotConnected}, nil
	}
	return s.gateway.GetAccountStatus(ctx, *wallet.StripeAccountID)
}
