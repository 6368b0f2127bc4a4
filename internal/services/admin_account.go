package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"marketplace/internal/db"
	"marketplace/internal/models"
	"marketplace/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type AdminAccount struct {
	UserID   string
	WalletID string
	Email    string
}

type AdminUserStore interface {
	GetAdmin(ctx context.Context) (models.User, error)
	Create(ctx context.Context, tx store.Execer, id, username, email, role, passwordHash string) error
}

type AdminWalletStore interface {
	GetByUser(ctx context.Context, userID string) (models.Wallet, error)
	Create(ctx context.Context, tx store.Execer, id, userID string) error
}

// AdminAccountProvider materializes the singleton platform account on first
// use and caches it for the life of the process. The platform account is the
// counterparty for payouts and the sink for fees.
type AdminAccountProvider struct {
	mu       sync.Mutex
	cached   *AdminAccount
	txRunner db.TxRunner
	users    AdminUserStore
	wallets  AdminWalletStore
	email    string
}

func NewAdminAccountProvider(txRunner db.TxRunner, users AdminUserStore, wallets AdminWalletStore, email string) *AdminAccountProvider {
	return &AdminAccountProvider{
		txRunner: txRunner,
		users:    users,
		wallets:  wallets,
		email:    email,
	}
}

func (p *AdminAccountProvider) Get(ctx context.Context) (AdminAccount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != nil {
		return *p.cached, nil
	}
	account, err := p.load(ctx)
	if err != nil {
		return AdminAccount{}, err
	}
	p.cached = &account
	return account, nil
}

// Reset drops the cached account so the next Get re-reads the database.
// Test isolation depends on it.
func (p *AdminAccountProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = nil
}

func (p *AdminAccountProvider) load(ctx context.Context) (AdminAccount, error) {
	user, err := p.users.GetAdmin(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return AdminAccount{}, err
		}
		userID := uuid.NewString()
		createErr := p.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			if err := p.users.Create(ctx, tx, userID, "platform", p.email, models.RoleAdmin, ""); err != nil {
				return err
			}
			return p.wallets.Create(ctx, tx, uuid.NewString(), userID)
		})
		if createErr != nil && !db.IsUniqueViolation(createErr) {
			return AdminAccount{}, createErr
		}
		// A concurrent process may have won the creation race; re-read
		// either way.
		user, err = p.users.GetAdmin(ctx)
		if err != nil {
			return AdminAccount{}, err
		}
	}
	wallet, err := p.wallets.GetByUser(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return AdminAccount{}, err
		}
		createErr := p.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			return p.wallets.Create(ctx, tx, uuid.NewString(), user.ID)
		})
		if createErr != nil && !db.IsUniqueViolation(createErr) {
			return AdminAccount{}, createErr
		}
		wallet, err = p.wallets.GetByUser(ctx, user.ID)
		if err != nil {
			return AdminAccount{}, err
		}
	}
	return AdminAccount{UserID: user.ID, WalletID: wallet.ID, Email: user.Email}, nil
}
