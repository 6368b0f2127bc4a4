package gateway

import "fmt"

// Error is the typed failure every adapter call returns instead of leaking
// vendor error shapes to the settlement engine.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s: %s", e.Code, e.Message)
}

const (
	AccountStatusNotConnected = "not_connected"
	AccountStatusPending      = "pending"
	AccountStatusVerified     = "verified"
	AccountStatusRestricted   = "restricted"
)

type AccountStatus struct {
	Status             string   `json:"status"`
	PayoutsEnabled     bool     `json:"payouts_enabled"`
	RequirementsNeeded []string `json:"requirements_needed"`
}

type CheckoutSession struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// Event kinds after dispatch. Anything the reconciler does not act on is
// reported as EventIgnored and acknowledged without side effects.
const (
	EventDepositSucceeded = "deposit_succeeded"
	EventDepositFailed    = "deposit_failed"
	EventIgnored          = "ignored"
)

type Event struct {
	Kind            string
	Type            string
	UserID          string
	AmountMinor     int64
	SessionID       string
	PaymentIntentID string
	CustomerID      string
}
