package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type StripeGateway struct {
	api *client.API
	cfg StripeConfig
}

func NewStripeGateway(cfg StripeConfig) *StripeGateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeGateway{api: api, cfg: cfg}
}

func (g *StripeGateway) CreatePayoutAccount(ctx context.Context, ownerID, email string) (string, error) {
	params := &stripe.AccountParams{
		Params: stripe.Params{Context: ctx},
		Type:   stripe.String(string(stripe.AccountTypeExpress)),
		Email:  stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			Transfers: &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	params.AddMetadata("user_id", ownerID)
	account, err := g.api.Accounts.New(params)
	if err != nil {
		return "", wrapErr(err)
	}
	return account.ID, nil
}

func (g *StripeGateway) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	link, err := g.api.AccountLinks.New(&stripe.AccountLinkParams{
		Params:     stripe.Params{Context: ctx},
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	})
	if err != nil {
		return "", wrapErr(err)
	}
	return link.URL, nil
}

func (g *StripeGateway) GetAccountStatus(ctx context.Context, accountID string) (AccountStatus, error) {
	if accountID == "" {
		return AccountStatus{Status: AccountStatusNotConnected}, nil
	}
	account, err := g.api.Accounts.GetByID(accountID, &stripe.AccountParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return AccountStatus{}, wrapErr(err)
	}
	status := AccountStatus{PayoutsEnabled: account.PayoutsEnabled}
	if account.Requirements != nil {
		status.RequirementsNeeded = account.Requirements.CurrentlyDue
	}
	switch {
	case !account.DetailsSubmitted:
		status.Status = AccountStatusPending
	case account.PayoutsEnabled:
		status.Status = AccountStatusVerified
	default:
		status.Status = AccountStatusRestricted
	}
	return status, nil
}

func (g *StripeGateway) CreateTransfer(ctx context.Context, destinationAccountID string, amountMinor int64, description string) (string, error) {
	transfer, err := g.api.Transfers.New(&stripe.TransferParams{
		Params:      stripe.Params{Context: ctx},
		Amount:      stripe.Int64(amountMinor),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Destination: stripe.String(destinationAccountID),
		Description: stripe.String(description),
	})
	if err != nil {
		return "", wrapErr(err)
	}
	return transfer.ID, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, userID string, amountMinor int64, email string, customerID *string) (CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:     stripe.Params{Context: ctx},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(g.cfg.SuccessURL),
		CancelURL:  stripe.String(g.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(amountMinor),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Wallet deposit"),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	if customerID != nil && *customerID != "" {
		params.Customer = customerID
	} else {
		params.CustomerEmail = stripe.String(email)
	}
	params.AddMetadata("user_id", userID)
	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return CheckoutSession{}, wrapErr(err)
	}
	return CheckoutSession{URL: session.URL, SessionID: session.ID}, nil
}

// VerifyWebhook checks the signature against the raw payload and maps the
// Stripe event onto the reconciler's event shape.
func (g *StripeGateway) VerifyWebhook(payload []byte, signatureHeader string) (Event, error) {
	stripeEvent, err := webhook.ConstructEvent(payload, signatureHeader, g.cfg.WebhookSecret)
	if err != nil {
		return Event{}, &Error{Code: "invalid_signature", Message: err.Error()}
	}
	return parseEvent(stripeEvent)
}

func parseEvent(stripeEvent stripe.Event) (Event, error) {
	event := Event{Kind: EventIgnored, Type: string(stripeEvent.Type)}
	switch stripeEvent.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded", "checkout.session.async_payment_failed":
	default:
		return event, nil
	}
	var session stripe.CheckoutSession
	if err := json.Unmarshal(stripeEvent.Data.Raw, &session); err != nil {
		return Event{}, &Error{Code: "malformed_event", Message: err.Error()}
	}
	event.SessionID = session.ID
	event.UserID = session.Metadata["user_id"]
	event.AmountMinor = session.AmountTotal
	if session.Customer != nil {
		event.CustomerID = session.Customer.ID
	}
	if session.PaymentIntent != nil {
		event.PaymentIntentID = session.PaymentIntent.ID
	}
	switch stripeEvent.Type {
	case "checkout.session.completed":
		// Sessions paid by delayed methods settle later via the
		// async_payment events; crediting here would double-count.
		if session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			event.Kind = EventDepositSucceeded
		}
	case "checkout.session.async_payment_succeeded":
		event.Kind = EventDepositSucceeded
	case "checkout.session.async_payment_failed":
		event.Kind = EventDepositFailed
	}
	return event, nil
}

func wrapErr(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &Error{Code: string(stripeErr.Code), Message: stripeErr.Msg}
	}
	return &Error{Code: "gateway_error", Message: err.Error()}
}
