// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockus-platform/internal/config"
	"stockus-platform/internal/domain/ports/adapter"
	mailAdapters "stockus-platform/internal/infra/adapters/mail"
	payAdapters "stockus-platform/internal/infra/adapters/payment"
	pg "stockus-platform/internal/infra/db/postgres"
	"stockus-platform/internal/infra/logging"
	"stockus-platform/internal/infra/metrics"
	red "stockus-platform/internal/infra/redis"
	"stockus-platform/internal/infra/sched"
	"stockus-platform/internal/infra/web"
	"stockus-platform/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop gateway and mailer)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	userRepo := pg.NewUserRepo(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	promoRepo := pg.NewPromoRepo(pool)
	referralRepo := pg.NewReferralRepo(pool)
	reportRepo := pg.NewReportRepo(pool)
	cohortRepo := pg.NewCohortRepo(pool)

	// ---- Adapters ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev && cfg.Payment.Midtrans.ServerKey == "" {
		gateway = payAdapters.NewNoopGateway()
		logger.Warn().Msg("payment gateway: noop (dev)")
	} else {
		gateway, err = payAdapters.NewMidtransGateway(cfg.Payment.Midtrans.ServerKey, cfg.Payment.Midtrans.Sandbox)
		if err != nil {
			logger.Fatal().Err(err).Msg("midtrans gateway init failed")
		}
	}

	var mailer adapter.Mailer
	if cfg.Mail.Enabled {
		mailer = mailAdapters.NewRESTMailer(cfg.Mail.Endpoint, cfg.Mail.APIKey, cfg.Mail.From)
	} else {
		mailer = mailAdapters.NewNoopMailer(logger)
	}

	// ---- Use cases ----
	ledgerUC := usecase.NewLedgerUseCase(promoRepo, referralRepo, logger)
	reconcileUC := usecase.NewReconcileUseCase(
		paymentRepo, subRepo, userRepo, ledgerUC, tm, mailer,
		cfg.Payment.Midtrans.ServerKey, cfg.Pricing.Currency, cfg.Pricing.ReferralReward, logger,
	)
	checkoutUC := usecase.NewCheckoutUseCase(
		paymentRepo, subRepo, userRepo, cohortRepo, ledgerUC, gateway, tm,
		cfg.Pricing.SubscriptionPrice, logger,
	)
	contentUC := usecase.NewContentUseCase(reportRepo, cohortRepo, logger)
	userUC := usecase.NewUserUseCase(userRepo, subRepo, referralRepo, ledgerUC, tm, logger)

	// ---- HTTP server ----
	authManager := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.SecureCookie, cfg.Auth.CookieDomain, cfg.Auth.SessionTTL)
	server := web.NewServer(reconcileUC, checkoutUC, contentUC, userUC, authManager, rateLimiter, cfg.Server.AllowedOrigins, logger)
	go func() {
		if err := server.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Status poller ----
	poller := sched.NewStatusPoller(
		reconcileUC, paymentRepo, gateway, cfg.Payment.Midtrans.ServerKey,
		cfg.Poller.Interval, cfg.Poller.StaleAfter, cfg.Poller.Batch, logger,
	)
	go poller.Start(ctx)

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
}
