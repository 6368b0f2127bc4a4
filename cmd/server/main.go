package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/db"
	"marketplace/internal/gateway"
	"marketplace/internal/handlers"
	"marketplace/internal/notify"
	"marketplace/internal/services"
	"marketplace/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	wallets := store.NewWalletStore(database)
	transactions := store.NewTransactionStore(database)
	completions := store.NewCompletionStore(database)
	withdrawals := store.NewWithdrawalStore(database)
	jobs := store.NewJobStore(database)
	notifications := store.NewNotificationStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)

	stripeGateway := gateway.NewStripeGateway(gateway.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		SuccessURL:    cfg.CheckoutSuccessURL,
		CancelURL:     cfg.CheckoutCancelURL,
	})

	hub := notify.NewHub()
	dispatcher := notify.NewDispatcher(notifications, hub)
	adminAccount := services.NewAdminAccountProvider(txRunner, users, wallets, cfg.AdminEmail)

	fees, err := services.ParseFeeRates(cfg.PlatformFeeRate, cfg.ServiceFeeRate)
	if err != nil {
		log.Fatalf("invalid fee configuration: %v", err)
	}

	walletSvc := services.NewWalletService(txRunner, wallets, users, transactions, withdrawals, stripeGateway)
	settlement := services.NewSettlementService(txRunner, wallets, transactions, completions, withdrawals, jobs, stripeGateway, dispatcher, adminAccount, audit, fees)
	reconciler := services.NewReconcileService(txRunner, wallets, walletSvc, transactions)

	handler := handlers.New(txRunner, cfg, users, walletSvc, settlement, reconciler, stripeGateway, transactions, completions, withdrawals, jobs, notifications, audit, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("marketplace API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
