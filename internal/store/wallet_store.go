package store

import (
	"context"

	"marketplace/internal/models"
)

type WalletStore struct {
	db DB
}

func NewWalletStore(db DB) *WalletStore {
	return &WalletStore{db: db}
}

const walletColumns = `id, user_id, balance, escrow_balance, total_earnings, total_spent, total_withdrawals,
	is_active, is_frozen, stripe_account_id, stripe_customer_id, created_at`

func (s *WalletStore) Create(ctx context.Context, tx Execer, id, userID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (id, user_id, balance, escrow_balance, total_earnings, total_spent, total_withdrawals, is_active, is_frozen)
		VALUES ($1, $2, 0, 0, 0, 0, 0, TRUE, FALSE)
	`, id, userID)
	return err
}

func (s *WalletStore) GetByUser(ctx context.Context, userID string) (models.Wallet, error) {
	var row models.Wallet
	err := s.db.GetContext(ctx, &row, `
		SELECT `+walletColumns+`
		FROM wallets
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return models.Wallet{}, err
	}
	return row, nil
}

func (s *WalletStore) GetForUpdate(ctx context.Context, tx Getter, userID string) (models.Wallet, error) {
	var row models.Wallet
	err := tx.GetContext(ctx, &row, `
		SELECT `+walletColumns+`
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
	if err != nil {
		return models.Wallet{}, err
	}
	return row, nil
}

func (s *WalletStore) CreditBalance(ctx context.Context, tx Execer, walletID string, amount int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`, amount, walletID)
	return err
}

// DebitBalance subtracts amount only when the balance covers it; callers must
// check the affected row count to detect an insufficient balance.
func (s *WalletStore) DebitBalance(ctx context.Context, tx Execer, walletID string, amount int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`, amount, walletID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *WalletStore) CreditEarnings(ctx context.Context, tx Execer, walletID string, amount int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = balance + $1, total_earnings = total_earnings + $1, updated_at = NOW()
		WHERE id = $2
	`, amount, walletID)
	return err
}

func (s *WalletStore) DebitForWithdrawal(ctx context.Context, tx Execer, walletID string, amount int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = balance - $1, total_withdrawals = total_withdrawals + $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`, amount, walletID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *WalletStore) DebitForSpend(ctx context.Context, tx Execer, walletID string, amount int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET balance = balance - $1, total_spent = total_spent + $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`, amount, walletID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *WalletStore) AdjustEscrow(ctx context.Context, tx Execer, walletID string, delta int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET escrow_balance = escrow_balance + $1, updated_at = NOW()
		WHERE id = $2
	`, delta, walletID)
	return err
}

func (s *WalletStore) SetStripeAccount(ctx context.Context, tx Execer, userID, accountID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET stripe_account_id = $1, updated_at = NOW()
		WHERE user_id = $2
	`, accountID, userID)
	return err
}

// SetStripeCustomerIfEmpty attaches the customer id learned from a checkout
// webhook without overwriting one that is already on file.
func (s *WalletStore) SetStripeCustomerIfEmpty(ctx context.Context, tx Execer, userID, customerID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE wallets
		SET stripe_customer_id = $1, updated_at = NOW()
		WHERE user_id = $2 AND stripe_customer_id IS NULL
	`, customerID, userID)
	return err
}
