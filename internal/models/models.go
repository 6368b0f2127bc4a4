package models

import "time"

const (
	RoleCustomer   = "customer"
	RoleContractor = "contractor"
	RoleAdmin      = "admin"
)

const (
	TransactionTypePlatformFee      = "platform_fee"
	TransactionTypeServiceFee       = "service_fee"
	TransactionTypeContractorPayout = "contractor_payout"
	TransactionTypeRefund           = "refund"
	TransactionTypeDeposit          = "deposit"
	TransactionTypeWithdrawal       = "withdrawal"
	TransactionTypeEscrowHold       = "escrow_hold"
	TransactionTypeEscrowRelease    = "escrow_release"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

const (
	JobStatusOpen       = "open"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"

	OfferStatusAccepted  = "accepted"
	OfferStatusPaid      = "paid"
	OfferStatusRefunded  = "refunded"
	OfferStatusCompleted = "completed"
)

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	Role         string    `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Wallet struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	Balance          int64     `db:"balance" json:"balance"`
	EscrowBalance    int64     `db:"escrow_balance" json:"escrow_balance"`
	TotalEarnings    int64     `db:"total_earnings" json:"total_earnings"`
	TotalSpent       int64     `db:"total_spent" json:"total_spent"`
	TotalWithdrawals int64     `db:"total_withdrawals" json:"total_withdrawals"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	IsFrozen         bool      `db:"is_frozen" json:"is_frozen"`
	StripeAccountID  *string   `db:"stripe_account_id" json:"stripe_account_id,omitempty"`
	StripeCustomerID *string   `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

type Transaction struct {
	ID               string     `db:"id" json:"id"`
	Type             string     `db:"type" json:"type"`
	Status           string     `db:"status" json:"status"`
	Amount           int64      `db:"amount" json:"amount"`
	FromUserID       *string    `db:"from_user_id" json:"from_user_id,omitempty"`
	ToUserID         *string    `db:"to_user_id" json:"to_user_id,omitempty"`
	JobID            *string    `db:"job_id" json:"job_id,omitempty"`
	OfferID          *string    `db:"offer_id" json:"offer_id,omitempty"`
	Description      string     `db:"description" json:"description"`
	FailureReason    *string    `db:"failure_reason" json:"failure_reason,omitempty"`
	StripeTransferID *string    `db:"stripe_transfer_id" json:"stripe_transfer_id,omitempty"`
	StripeSessionID  *string    `db:"stripe_session_id" json:"stripe_session_id,omitempty"`
	StripePaymentID  *string    `db:"stripe_payment_id" json:"stripe_payment_id,omitempty"`
	CompletedAt      *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

type CompletionRequest struct {
	ID              string     `db:"id" json:"id"`
	JobID           string     `db:"job_id" json:"job_id"`
	OfferID         string     `db:"offer_id" json:"offer_id"`
	CustomerID      string     `db:"customer_id" json:"customer_id"`
	ContractorID    string     `db:"contractor_id" json:"contractor_id"`
	Status          string     `db:"status" json:"status"`
	ReviewedBy      *string    `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

type WithdrawalRequest struct {
	ID               string     `db:"id" json:"id"`
	ContractorID     string     `db:"contractor_id" json:"contractor_id"`
	Amount           int64      `db:"amount" json:"amount"`
	Status           string     `db:"status" json:"status"`
	ReviewedBy       *string    `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time `db:"reviewed_at" json:"reviewed_at,omitempty"`
	RejectionReason  *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	StripeTransferID *string    `db:"stripe_transfer_id" json:"stripe_transfer_id,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

type Job struct {
	ID         string    `db:"id" json:"id"`
	CustomerID string    `db:"customer_id" json:"customer_id"`
	Title      string    `db:"title" json:"title"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type Offer struct {
	ID               string    `db:"id" json:"id"`
	JobID            string    `db:"job_id" json:"job_id"`
	ContractorID     string    `db:"contractor_id" json:"contractor_id"`
	Amount           int64     `db:"amount" json:"amount"`
	PlatformFee      int64     `db:"platform_fee" json:"platform_fee"`
	ServiceFee       int64     `db:"service_fee" json:"service_fee"`
	ContractorPayout int64     `db:"contractor_payout" json:"contractor_payout"`
	Status           string    `db:"status" json:"status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	Type      string    `db:"type" json:"type"`
	Data      string    `db:"data" json:"data"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
