// Package main runs the settlement engine: it wires the ledger, payment
// orchestrator and expiry sweeper against Postgres and Redis and sweeps
// until terminated.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"nexapay/internal/config"
	"nexapay/internal/repositories"
	"nexapay/internal/services/fees"
	"nexapay/internal/services/ledger"
	"nexapay/internal/services/limits"
	"nexapay/internal/services/payment"
	"nexapay/internal/services/rates"
	"nexapay/internal/services/risk"

	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := repositories.InitDB()
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("failed to get database instance", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := sqlDB.Ping(); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	redisClient := repositories.NewRedisClient()
	defer redisClient.Close()
	cache := repositories.NewRedisCache(redisClient)

	walletRepo := repositories.NewWalletRepository(db)
	txRepo := repositories.NewTransactionRepository(db)

	limits.DefaultDailyCap = config.GetDecimalEnv("LIMIT_DAILY_CAP", limits.DefaultDailyCap)
	limits.DefaultMonthlyCap = config.GetDecimalEnv("LIMIT_MONTHLY_CAP", limits.DefaultMonthlyCap)
	limits.DefaultYearlyCap = config.GetDecimalEnv("LIMIT_YEARLY_CAP", limits.DefaultYearlyCap)

	policy := limits.NewPolicy()
	ledgerSvc := ledger.NewService(walletRepo, policy, logger)

	rateSvc := rates.NewService(nil, cache, rates.Config{
		StalenessWindow: config.GetDurationEnv("RATE_STALENESS_WINDOW", rates.DefaultStalenessWindow),
		OracleTimeout:   config.GetDurationEnv("RATE_ORACLE_TIMEOUT", rates.DefaultOracleTimeout),
	}, logger)

	riskScorer := risk.NewScorer(staticProfiles{}, risk.Config{
		VelocityThreshold: config.GetIntEnv("RISK_VELOCITY_THRESHOLD", risk.DefaultVelocityThreshold),
	})

	paymentSvc := payment.NewService(
		txRepo,
		walletRepo,
		ledgerSvc,
		rateSvc,
		fees.NewCalculator(),
		riskScorer,
		cache,
		payment.Config{
			PendingExpiry:           config.GetDurationEnv("PENDING_EXPIRY", payment.DefaultPendingExpiry),
			SettlementRetryInterval: config.GetDurationEnv("SETTLEMENT_RETRY_INTERVAL", payment.DefaultSettlementRetryInterval),
			MaxRetries:              config.GetIntEnv("SETTLEMENT_MAX_RETRIES", payment.DefaultMaxRetries),
		},
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("settlement engine started")
	sweeper := payment.NewSweeper(paymentSvc, config.GetDurationEnv("SWEEP_INTERVAL", payment.DefaultSweepInterval), logger)
	sweeper.Run(ctx)
	logger.Info("settlement engine stopped")
}

func newLogger() (*zap.Logger, error) {
	if config.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// staticProfiles is the placeholder verification/velocity provider used
// until the real provider service is wired in. It treats every sender as
// unverified, which only raises advisory risk scores.
type staticProfiles struct{}

func (staticProfiles) SenderProfile(ctx context.Context, walletID uint) (risk.SenderProfile, error) {
	return risk.SenderProfile{}, nil
}
