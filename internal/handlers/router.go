package handlers

import (
	"net/http"

	"marketplace/internal/config"
	"marketplace/internal/db"
	"marketplace/internal/notify"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"marketplace/internal/middleware"
)

type Handler struct {
	txRunner      db.TxRunner
	cfg           config.Config
	users         UserStore
	walletSvc     WalletService
	settlement    SettlementService
	reconciler    ReconcileService
	webhooks      WebhookVerifier
	transactions  TransactionStore
	completions   CompletionStore
	withdrawals   WithdrawalStore
	jobs          JobStore
	notifications NotificationStore
	audit         AuditStore
	hub           *notify.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, walletSvc WalletService, settlement SettlementService, reconciler ReconcileService, webhooks WebhookVerifier, transactions TransactionStore, completions CompletionStore, withdrawals WithdrawalStore, jobs JobStore, notifications NotificationStore, audit AuditStore, hub *notify.Hub) *Handler {
	return &Handler{
		txRunner:      txRunner,
		cfg:           cfg,
		users:         users,
		walletSvc:     walletSvc,
		settlement:    settlement,
		reconciler:    reconciler,
		webhooks:      webhooks,
		transactions:  transactions,
		completions:   completions,
		withdrawals:   withdrawals,
		jobs:          jobs,
		notifications: notifications,
		audit:         audit,
		hub:           hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Route("/wallet", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.GetWallet)
		r.Post("/deposit", h.Deposit)
		r.Get("/transactions", h.ListMyTransactions)
		r.Post("/withdrawals", h.RequestWithdrawal)
		r.Get("/withdrawals", h.ListMyWithdrawals)
		r.Post("/payout-account", h.ConnectPayoutAccount)
		r.Post("/payout-account/onboarding-link", h.OnboardingLink)
		r.Get("/payout-account/status", h.PayoutAccountStatus)
	})

	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/offers/{id}/pay", h.PayOffer)
	router.With(middleware.Auth(h.cfg.JWTSecret)).Post("/jobs/{id}/complete", h.CreateCompletionRequest)

	router.Route("/notifications", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/", h.ListNotifications)
		r.Post("/{id}/read", h.MarkNotificationRead)
	})
	router.Get("/ws/notifications", h.WSNotifications)

	// Stripe posts here; the raw body must reach signature verification
	// untouched, so no middleware that consumes it.
	router.Post("/webhooks/stripe", h.StripeWebhook)

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Use(middleware.RequireAdmin(h.users))
		r.Get("/completion-requests", h.ListCompletionRequests)
		r.Post("/completion-requests/{id}/approve", h.ApproveCompletion)
		r.Post("/completion-requests/{id}/reject", h.RejectCompletion)
		r.Get("/withdrawal-requests", h.ListWithdrawalRequests)
		r.Post("/withdrawal-requests/{id}/approve", h.ApproveWithdrawal)
		r.Post("/withdrawal-requests/{id}/reject", h.RejectWithdrawal)
		r.Post("/offers/{id}/refund", h.RefundOffer)
		r.Get("/transactions", h.AdminListTransactions)
		r.Get("/transactions/unsettled", h.ListUnsettledTransactions)
		r.Get("/audit", h.ListAuditLogs)
	})

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
