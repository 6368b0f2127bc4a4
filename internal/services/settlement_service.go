package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"marketplace/internal/db"
	"marketplace/internal/models"
	"marketplace/internal/money"
	"marketplace/internal/notify"
	"marketplace/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrRequestNotFound     = errors.New("request not found")
	ErrAlreadyProcessed    = errors.New("request already processed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoPayoutAccount     = errors.New("no payout account connected")
	ErrMissingReviewer     = errors.New("reviewer id is required")
	ErrWalletFrozen        = errors.New("wallet is frozen")
	ErrOfferNotPayable     = errors.New("offer is not payable")
	ErrOfferNotRefundable  = errors.New("offer is not refundable")
	ErrInvalidAmount       = errors.New("invalid amount")
	// ErrSettlementAborted wraps a local transaction failure: the whole group
	// rolled back and no external call was made.
	ErrSettlementAborted = errors.New("settlement aborted")
)

type WalletStore interface {
	GetByUser(ctx context.Context, userID string) (models.Wallet, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.Wallet, error)
	CreditBalance(ctx context.Context, tx store.Execer, walletID string, amount int64) error
	DebitBalance(ctx context.Context, tx store.Execer, walletID string, amount int64) (int64, error)
	CreditEarnings(ctx context.Context, tx store.Execer, walletID string, amount int64) error
	DebitForWithdrawal(ctx context.Context, tx store.Execer, walletID string, amount int64) (int64, error)
	DebitForSpend(ctx context.Context, tx store.Execer, walletID string, amount int64) (int64, error)
	AdjustEscrow(ctx context.Context, tx store.Execer, walletID string, delta int64) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	MarkCompleted(ctx context.Context, tx store.Execer, transactionID, transferID string) error
	MarkFailed(ctx context.Context, tx store.Execer, transactionID, reason string) error
}

type CompletionStore interface {
	GetByID(ctx context.Context, requestID string) (models.CompletionRequest, error)
	Approve(ctx context.Context, tx store.Execer, requestID, adminID string) (int64, error)
	Reject(ctx context.Context, tx store.Execer, requestID, adminID, reason string) (int64, error)
}

type WithdrawalStore interface {
	GetByID(ctx context.Context, requestID string) (models.WithdrawalRequest, error)
	Approve(ctx context.Context, tx store.Execer, requestID, adminID string) (int64, error)
	Reject(ctx context.Context, tx store.Execer, requestID, adminID, reason string) (int64, error)
	SetTransferID(ctx context.Context, tx store.Execer, requestID, transferID string) error
}

type JobStore interface {
	GetJob(ctx context.Context, jobID string) (models.Job, error)
	GetOffer(ctx context.Context, offerID string) (models.Offer, error)
	SetJobStatus(ctx context.Context, tx store.Execer, jobID, status string) error
	SetOfferStatus(ctx context.Context, tx store.Execer, offerID, status string) error
	TransitionOffer(ctx context.Context, tx store.Execer, offerID, from, to string) (int64, error)
	SetOfferFees(ctx context.Context, tx store.Execer, offerID string, platformFee, serviceFee, contractorPayout int64) error
}

type TransferGateway interface {
	CreateTransfer(ctx context.Context, destinationAccountID string, amountMinor int64, description string) (string, error)
}

type Notifier interface {
	SendToUser(ctx context.Context, notification notify.Notification) error
}

type AdminProvider interface {
	Get(ctx context.Context) (AdminAccount, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type FeeRates struct {
	Platform decimal.Decimal
	Service  decimal.Decimal
}

func ParseFeeRates(platformRate, serviceRate string) (FeeRates, error) {
	platform, err := decimal.NewFromString(platformRate)
	if err != nil {
		return FeeRates{}, fmt.Errorf("invalid platform fee rate: %w", err)
	}
	service, err := decimal.NewFromString(serviceRate)
	if err != nil {
		return FeeRates{}, fmt.Errorf("invalid service fee rate: %w", err)
	}
	return FeeRates{Platform: platform, Service: service}, nil
}

// SettlementService orchestrates every movement of wallet money. The contract
// for transfer-backed flows is strict: the local atomic group (balances,
// pending transaction, status transitions) commits first, then the gateway
// call runs as advisory phase two. A failed transfer never rolls the local
// ledger back; the transaction row carries the failure for reconciliation.
type SettlementService struct {
	txRunner     db.TxRunner
	wallets      WalletStore
	transactions TransactionStore
	completions  CompletionStore
	withdrawals  WithdrawalStore
	jobs         JobStore
	gateway      TransferGateway
	notifier     Notifier
	admin        AdminProvider
	audit        AuditStore
	fees         FeeRates
}

func NewSettlementService(txRunner db.TxRunner, wallets WalletStore, transactions TransactionStore, completions CompletionStore, withdrawals WithdrawalStore, jobs JobStore, transferGateway TransferGateway, notifier Notifier, admin AdminProvider, audit AuditStore, fees FeeRates) *SettlementService {
	return &SettlementService{
		txRunner:     txRunner,
		wallets:      wallets,
		transactions: transactions,
		completions:  completions,
		withdrawals:  withdrawals,
		jobs:         jobs,
		gateway:      transferGateway,
		notifier:     notifier,
		admin:        admin,
		audit:        audit,
		fees:         fees,
	}
}

const (
	SettlementStatusCompleted      = "completed"
	SettlementStatusTransferFailed = "transfer_failed"
)

type CompletionApproval struct {
	RequestID     string  `json:"request_id"`
	JobID         string  `json:"job_id"`
	TransactionID string  `json:"transaction_id"`
	TransferID    *string `json:"transfer_id"`
	Amount        int64   `json:"amount"`
	Status        string  `json:"status"`
}

func (s *SettlementService) ApproveCompletion(ctx context.Context, requestID, adminID string) (CompletionApproval, error) {
	if adminID == "" {
		return CompletionApproval{}, ErrMissingReviewer
	}
	request, err := s.completions.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CompletionApproval{}, ErrRequestNotFound
		}
		return CompletionApproval{}, err
	}
	if request.Status != models.RequestStatusPending {
		return CompletionApproval{}, ErrAlreadyProcessed
	}
	offer, err := s.jobs.GetOffer(ctx, request.OfferID)
	if err != nil {
		return CompletionApproval{}, err
	}
	contractorWallet, err := s.wallets.GetByUser(ctx, request.ContractorID)
	if err != nil {
		return CompletionApproval{}, err
	}
	if contractorWallet.StripeAccountID == nil || *contractorWallet.StripeAccountID == "" {
		return CompletionApproval{}, ErrNoPayoutAccount
	}
	admin, err := s.admin.Get(ctx)
	if err != nil {
		return CompletionApproval{}, err
	}

	payout := offer.ContractorPayout
	transactionID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		adminWallet, contractor, err := lockTwoWallets(ctx, tx, s.wallets, admin.UserID, request.ContractorID)
		if err != nil {
			return err
		}
		if contractor.IsFrozen {
			return ErrWalletFrozen
		}
		// Last guarded condition: a concurrent approval loses here and
		// observes "already processed" with nothing applied.
		rows, err := s.completions.Approve(ctx, tx, requestID, adminID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyProcessed
		}
		rows, err = s.wallets.DebitBalance(ctx, tx, adminWallet.ID, payout)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInsufficientBalance
		}
		if err := s.wallets.AdjustEscrow(ctx, tx, adminWallet.ID, -payout); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:          uuid.NewString(),
			Type:        models.TransactionTypeEscrowRelease,
			Status:      models.TransactionStatusCompleted,
			Amount:      payout,
			FromUserID:  &admin.UserID,
			ToUserID:    &request.ContractorID,
			JobID:       &request.JobID,
			OfferID:     &request.OfferID,
			Description: "Escrow released on completion approval",
		}); err != nil {
			return err
		}
		if err := s.wallets.CreditEarnings(ctx, tx, contractor.ID, payout); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:          transactionID,
			Type:        models.TransactionTypeContractorPayout,
			Status:      models.TransactionStatusPending,
			Amount:      payout,
			FromUserID:  &admin.UserID,
			ToUserID:    &request.ContractorID,
			JobID:       &request.JobID,
			OfferID:     &request.OfferID,
			Description: "Contractor payout for completed job",
		}); err != nil {
			return err
		}
		if err := s.jobs.SetJobStatus(ctx, tx, request.JobID, models.JobStatusCompleted); err != nil {
			return err
		}
		if err := s.jobs.SetOfferStatus(ctx, tx, request.OfferID, models.OfferStatusCompleted); err != nil {
			return err
		}
		return s.logAudit(ctx, tx, adminID, "approve_completion", "completion_request", requestID, map[string]string{
			"transaction_id": transactionID,
		})
	})
	if err != nil {
		return CompletionApproval{}, abortable(err)
	}

	result := CompletionApproval{
		RequestID:     requestID,
		JobID:         request.JobID,
		TransactionID: transactionID,
		Amount:        payout,
	}
	transferID, transferErr := s.settleTransfer(ctx, transactionID, *contractorWallet.StripeAccountID, payout, "Job completion payout")
	if transferErr != nil {
		result.Status = SettlementStatusTransferFailed
	} else {
		result.Status = SettlementStatusCompleted
		result.TransferID = &transferID
	}
	s.sendNotification(ctx, notify.Notification{
		UserID: request.ContractorID,
		Title:  "Payment released",
		Body:   fmt.Sprintf("You have been paid %s for a completed job", money.FormatMinor(payout)),
		Type:   "payout",
		Data:   map[string]string{"job_id": request.JobID, "transaction_id": transactionID},
	})
	return result, nil
}

func (s *SettlementService) RejectCompletion(ctx context.Context, requestID, adminID, reason string) error {
	if adminID == "" {
		return ErrMissingReviewer
	}
	request, err := s.completions.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRequestNotFound
		}
		return err
	}
	if request.Status != models.RequestStatusPending {
		return ErrAlreadyProcessed
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.completions.Reject(ctx, tx, requestID, adminID, reason)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyProcessed
		}
		return s.logAudit(ctx, tx, adminID, "reject_completion", "completion_request", requestID, map[string]string{
			"reason": reason,
		})
	})
	if err != nil {
		return abortable(err)
	}
	s.sendNotification(ctx, notify.Notification{
		UserID: request.CustomerID,
		Title:  "Completion request rejected",
		Body:   reason,
		Type:   "completion_rejected",
		Data:   map[string]string{"job_id": request.JobID},
	})
	return nil
}

type WithdrawalApproval struct {
	RequestID     string  `json:"request_id"`
	TransactionID string  `json:"transaction_id"`
	TransferID    *string `json:"transfer_id"`
	Amount        int64   `json:"amount"`
	Status        string  `json:"status"`
}

func (s *SettlementService) ApproveWithdrawal(ctx context.Context, requestID, adminID string) (WithdrawalApproval, error) {
	if adminID == "" {
		return WithdrawalApproval{}, ErrMissingReviewer
	}
	request, err := s.withdrawals.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WithdrawalApproval{}, ErrRequestNotFound
		}
		return WithdrawalApproval{}, err
	}
	if request.Status != models.RequestStatusPending {
		return WithdrawalApproval{}, ErrAlreadyProcessed
	}
	wallet, err := s.wallets.GetByUser(ctx, request.ContractorID)
	if err != nil {
		return WithdrawalApproval{}, err
	}
	if wallet.StripeAccountID == nil || *wallet.StripeAccountID == "" {
		return WithdrawalApproval{}, ErrNoPayoutAccount
	}
	// Hard precondition, not a partial-commit scenario.
	if wallet.Balance < request.Amount {
		return WithdrawalApproval{}, ErrInsufficientBalance
	}

	transactionID := uuid.NewString()
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		locked, err := s.wallets.GetForUpdate(ctx, tx, request.ContractorID)
		if err != nil {
			return err
		}
		if locked.IsFrozen {
			return ErrWalletFrozen
		}
		rows, err := s.withdrawals.Approve(ctx, tx, requestID, adminID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyProcessed
		}
		rows, err = s.wallets.DebitForWithdrawal(ctx, tx, locked.ID, request.Amount)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInsufficientBalance
		}
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:          transactionID,
			Type:        models.TransactionTypeWithdrawal,
			Status:      models.TransactionStatusPending,
			Amount:      request.Amount,
			FromUserID:  &request.ContractorID,
			Description: "Wallet withdrawal",
		}); err != nil {
			return err
		}
		return s.logAudit(ctx, tx, adminID, "approve_withdrawal", "withdrawal_request", requestID, map[string]string{
			"transaction_id": transactionID,
		})
	})
	if err != nil {
		return WithdrawalApproval{}, abortable(err)
	}

	result := WithdrawalApproval{
		RequestID:     requestID,
		TransactionID: transactionID,
		Amount:        request.Amount,
	}
	transferID, transferErr := s.settleTransfer(ctx, transactionID, *wallet.StripeAccountID, request.Amount, "Wallet withdrawal")
	if transferErr != nil {
		result.Status = SettlementStatusTransferFailed
	} else {
		result.Status = SettlementStatusCompleted
		result.TransferID = &transferID
		if err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			return s.withdrawals.SetTransferID(ctx, tx, requestID, transferID)
		}); err != nil {
			log.Printf("settlement: record transfer id on withdrawal %s: %v", requestID, err)
		}
	}
	s.sendNotification(ctx, notify.Notification{
		UserID: request.ContractorID,
		Title:  "Withdrawal approved",
		Body:   fmt.Sprintf("Your withdrawal of %s was approved", money.FormatMinor(request.Amount)),
		Type:   "withdrawal",
		Data:   map[string]string{"request_id": requestID, "transaction_id": transactionID},
	})
	return result, nil
}

func (s *SettlementService) RejectWithdrawal(ctx context.Context, requestID, adminID, reason string) error {
	if adminID == "" {
		return ErrMissingReviewer
	}
	request, err := s.withdrawals.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRequestNotFound
		}
		return err
	}
	if request.Status != models.RequestStatusPending {
		return ErrAlreadyProcessed
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.withdrawals.Reject(ctx, tx, requestID, adminID, reason)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyProcessed
		}
		return s.logAudit(ctx, tx, adminID, "reject_withdrawal", "withdrawal_request", requestID, map[string]string{
			"reason": reason,
		})
	})
	if err != nil {
		return abortable(err)
	}
	s.sendNotification(ctx, notify.Notification{
		UserID: request.ContractorID,
		Title:  "Withdrawal rejected",
		Body:   reason,
		Type:   "withdrawal_rejected",
		Data:   map[string]string{"request_id": requestID},
	})
	return nil
}

type OfferPayment struct {
	OfferID          string `json:"offer_id"`
	PlatformFee      int64  `json:"platform_fee"`
	ServiceFee       int64  `json:"service_fee"`
	ContractorPayout int64  `json:"contractor_payout"`
}

// PayOffer moves the offer amount from the customer wallet into the platform
// wallet, holding the contractor share in escrow and recording both fee cuts.
// Purely internal movement: no gateway call, transactions complete at once.
func (s *SettlementService) PayOffer(ctx context.Context, offerID, customerID string) (OfferPayment, error) {
	offer, err := s.jobs.GetOffer(ctx, offerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OfferPayment{}, ErrRequestNotFound
		}
		return OfferPayment{}, err
	}
	if offer.Status != models.OfferStatusAccepted {
		return OfferPayment{}, ErrOfferNotPayable
	}
	job, err := s.jobs.GetJob(ctx, offer.JobID)
	if err != nil {
		return OfferPayment{}, err
	}
	if job.CustomerID != customerID {
		return OfferPayment{}, ErrRequestNotFound
	}
	admin, err := s.admin.Get(ctx)
	if err != nil {
		return OfferPayment{}, err
	}

	platformFee, serviceFee, payout := splitFees(offer.Amount, s.fees)
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		customerWallet, adminWallet, err := lockTwoWallets(ctx, tx, s.wallets, customerID, admin.UserID)
		if err != nil {
			return err
		}
		if customerWallet.IsFrozen {
			return ErrWalletFrozen
		}
		rows, err := s.jobs.TransitionOffer(ctx, tx, offerID, models.OfferStatusAccepted, models.OfferStatusPaid)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyProcessed
		}
		rows, err = s.wallets.DebitForSpend(ctx, tx, customerWallet.ID, offer.Amount)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInsufficientBalance
		}
		if err := s.wallets.CreditBalance(ctx, tx, adminWallet.ID, offer.Amount); err != nil {
			return err
		}
		if err := s.wallets.AdjustEscrow(ctx, tx, adminWallet.ID, payout); err != nil {
			return err
		}
		if err := s.jobs.SetOfferFees(ctx, tx, offerID, platformFee, serviceFee, payout); err != nil {
			return err
		}
		if err := s.jobs.SetJobStatus(ctx, tx, offer.JobID, models.JobStatusInProgress); err != nil {
			return err
		}
		entries := []store.TransactionInput{
			{Type: models.TransactionTypeEscrowHold, Amount: payout, Description: "Offer funds held in escrow"},
			{Type: models.TransactionTypePlatformFee, Amount: platformFee, Description: "Platform fee"},
			{Type: models.TransactionTypeServiceFee, Amount: serviceFee, Description: "Service fee"},
		}
		for _, entry := range entries {
			if entry.Amount == 0 {
				continue
			}
			entry.ID = uuid.NewString()
			entry.Status = models.TransactionStatusCompleted
			entry.FromUserID = &customerID
			entry.ToUserID = &admin.UserID
			entry.JobID = &offer.JobID
			entry.OfferID = &offerID
			if err := s.transactions.Create(ctx, tx, entry); err != nil {
				return err
			}
		}
		return s.logAudit(ctx, tx, customerID, "pay_offer", "offer", offerID, map[string]string{
			"amount": money.FormatMinor(offer.Amount),
		})
	})
	if err != nil {
		return OfferPayment{}, abortable(err)
	}
	s.sendNotification(ctx, notify.Notification{
		UserID: offer.ContractorID,
		Title:  "Offer paid",
		Body:   "The customer funded the offer; you can start working",
		Type:   "offer_paid",
		Data:   map[string]string{"offer_id": offerID, "job_id": offer.JobID},
	})
	return OfferPayment{
		OfferID:          offerID,
		PlatformFee:      platformFee,
		ServiceFee:       serviceFee,
		ContractorPayout: payout,
	}, nil
}

// RefundOffer reverses a funded offer before completion: full amount back to
// the customer, fees included, escrow released.
func (s *SettlementService) RefundOffer(ctx context.Context, offerID, adminID string) error {
	if adminID == "" {
		return ErrMissingReviewer
	}
	offer, err := s.jobs.GetOffer(ctx, offerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRequestNotFound
		}
		return err
	}
	if offer.Status != models.OfferStatusPaid {
		return ErrOfferNotRefundable
	}
	job, err := s.jobs.GetJob(ctx, offer.JobID)
	if err != nil {
		return err
	}
	admin, err := s.admin.Get(ctx)
	if err != nil {
		return err
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		adminWallet, customerWallet, err := lockTwoWallets(ctx, tx, s.wallets, admin.UserID, job.CustomerID)
		if err != nil {
			return err
		}
		rows, err := s.jobs.TransitionOffer(ctx, tx, offerID, models.OfferStatusPaid, models.OfferStatusRefunded)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyProcessed
		}
		rows, err = s.wallets.DebitBalance(ctx, tx, adminWallet.ID, offer.Amount)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInsufficientBalance
		}
		if err := s.wallets.AdjustEscrow(ctx, tx, adminWallet.ID, -offer.ContractorPayout); err != nil {
			return err
		}
		if offer.ContractorPayout > 0 {
			if err := s.transactions.Create(ctx, tx, store.TransactionInput{
				ID:          uuid.NewString(),
				Type:        models.TransactionTypeEscrowRelease,
				Status:      models.TransactionStatusCompleted,
				Amount:      offer.ContractorPayout,
				FromUserID:  &admin.UserID,
				ToUserID:    &job.CustomerID,
				JobID:       &offer.JobID,
				OfferID:     &offerID,
				Description: "Escrow released on refund",
			}); err != nil {
				return err
			}
		}
		if err := s.wallets.CreditBalance(ctx, tx, customerWallet.ID, offer.Amount); err != nil {
			return err
		}
		if err := s.jobs.SetJobStatus(ctx, tx, offer.JobID, models.JobStatusOpen); err != nil {
			return err
		}
		if err := s.transactions.Create(ctx, tx, store.TransactionInput{
			ID:          uuid.NewString(),
			Type:        models.TransactionTypeRefund,
			Status:      models.TransactionStatusCompleted,
			Amount:      offer.Amount,
			FromUserID:  &admin.UserID,
			ToUserID:    &job.CustomerID,
			JobID:       &offer.JobID,
			OfferID:     &offerID,
			Description: "Offer refund",
		}); err != nil {
			return err
		}
		return s.logAudit(ctx, tx, adminID, "refund_offer", "offer", offerID, map[string]string{
			"amount": money.FormatMinor(offer.Amount),
		})
	})
	if err != nil {
		return abortable(err)
	}
	s.sendNotification(ctx, notify.Notification{
		UserID: job.CustomerID,
		Title:  "Offer refunded",
		Body:   fmt.Sprintf("%s was returned to your wallet", money.FormatMinor(offer.Amount)),
		Type:   "refund",
		Data:   map[string]string{"offer_id": offerID},
	})
	return nil
}

// settleTransfer is the advisory phase two: the gateway outcome only moves
// the transaction row, never the committed balances.
func (s *SettlementService) settleTransfer(ctx context.Context, transactionID, destinationAccountID string, amount int64, description string) (string, error) {
	transferID, err := s.gateway.CreateTransfer(ctx, destinationAccountID, amount, description)
	if err != nil {
		log.Printf("settlement: transfer for transaction %s failed: %v", transactionID, err)
		if uerr := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			return s.transactions.MarkFailed(ctx, tx, transactionID, err.Error())
		}); uerr != nil {
			log.Printf("settlement: mark transaction %s failed: %v", transactionID, uerr)
		}
		return "", err
	}
	if uerr := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.transactions.MarkCompleted(ctx, tx, transactionID, transferID)
	}); uerr != nil {
		log.Printf("settlement: mark transaction %s completed: %v", transactionID, uerr)
	}
	return transferID, nil
}

func (s *SettlementService) sendNotification(ctx context.Context, notification notify.Notification) {
	if err := s.notifier.SendToUser(ctx, notification); err != nil {
		log.Printf("settlement: notify user %s: %v", notification.UserID, err)
	}
}

func (s *SettlementService) logAudit(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID string, data map[string]string) error {
	encoded, _ := json.Marshal(data)
	return s.audit.Log(ctx, tx, actorID, action, entityType, entityID, string(encoded))
}

func splitFees(amount int64, fees FeeRates) (platformFee, serviceFee, payout int64) {
	total := decimal.NewFromInt(amount)
	platformFee = total.Mul(fees.Platform).RoundBank(0).IntPart()
	serviceFee = total.Mul(fees.Service).RoundBank(0).IntPart()
	payout = amount - platformFee - serviceFee
	return platformFee, serviceFee, payout
}

func abortable(err error) error {
	for _, sentinel := range []error{
		ErrRequestNotFound, ErrAlreadyProcessed, ErrInsufficientBalance, ErrNoPayoutAccount,
		ErrMissingReviewer, ErrWalletFrozen, ErrOfferNotPayable, ErrOfferNotRefundable, ErrInvalidAmount,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrSettlementAborted, err)
}

func lockTwoWallets(ctx context.Context, tx store.Getter, wallets WalletStore, firstUserID, secondUserID string) (models.Wallet, models.Wallet, error) {
	leftID, rightID := orderedIDs(firstUserID, secondUserID)
	left, err := wallets.GetForUpdate(ctx, tx, leftID)
	if err != nil {
		return models.Wallet{}, models.Wallet{}, err
	}
	right, err := wallets.GetForUpdate(ctx, tx, rightID)
	if err != nil {
		return models.Wallet{}, models.Wallet{}, err
	}
	if firstUserID == leftID {
		return left, right, nil
	}
	return right, left, nil
}

func orderedIDs(firstID, secondID string) (string, string) {
	if firstID <= secondID {
		return firstID, secondID
	}
	return secondID, firstID
}
