package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	appbilling "github.com/imobia/backend/internal/application/billing"
	appboleto "github.com/imobia/backend/internal/application/boleto"
	"github.com/imobia/backend/internal/infrastructure/bank"
	"github.com/imobia/backend/internal/infrastructure/config"
	"github.com/imobia/backend/internal/infrastructure/logger"
	"github.com/imobia/backend/internal/infrastructure/notification"
	"github.com/imobia/backend/internal/infrastructure/persistence"
	"github.com/imobia/backend/internal/infrastructure/printing"
)

// One-shot billing pass for cron-driven deployments. Exits non-zero when any
// contract fails so the scheduler can alert on it.
func main() {
	var skipStatusRefresh bool
	flag.BoolVar(&skipStatusRefresh, "skip-status-refresh", false, "Skip the registered slip status refresh after the billing pass")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()
	log = log.Named("billing-cli")

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	contractRepo := persistence.NewGormContractRepository(db.DB)
	payerRepo := persistence.NewGormPayerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	boletoRepo := persistence.NewGormBoletoRepository(db.DB)
	logRepo := persistence.NewGormOperationLogRepository(db.DB)
	credentialRepo := persistence.NewGormCredentialRepository(db.DB)
	boletoScope := persistence.NewGormBoletoTransactionScope(db.DB)

	authClient := bank.NewAuthClient(credentialRepo, log, bank.Timeouts{
		TokenConnect:    cfg.Bank.TokenConnectTimeout,
		Token:           cfg.Bank.TokenTimeout,
		ResourceConnect: cfg.Bank.ResourceConnectTimeout,
		Resource:        cfg.Bank.ResourceTimeout,
	})
	gateway := bank.NewSlipGateway(authClient, log)

	boletoService := appboleto.NewService(
		boletoRepo, logRepo, credentialRepo, payerRepo,
		gateway, authClient, boletoScope, log,
	)

	renderer, err := printing.NewBoletoRenderer(cfg.Printing, log)
	if err != nil {
		log.Fatal("Failed to initialize slip renderer", zap.Error(err))
	}

	var notifier appbilling.Notifier
	if cfg.App.Env == "development" {
		notifier = notification.NewLogNotifier(log)
	} else {
		notifier = notification.NewSMTPNotifier(cfg.SMTP, log)
	}

	recurringService := appbilling.NewRecurringService(
		contractRepo, payerRepo, invoiceRepo,
		boletoService, renderer, notifier, log,
	)

	ctx := context.Background()
	if cfg.Scheduler.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Scheduler.JobTimeout)
		defer cancel()
	}

	startTime := time.Now()
	summary, err := recurringService.ProcessAutomaticBilling(ctx)
	if err != nil {
		log.Error("Billing pass failed", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Billing pass completed",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("ignored", summary.Ignored),
	)
	for _, d := range summary.Details {
		if d.Status == appbilling.RunStatusFailed {
			log.Warn("Contract failed",
				zap.String("contract_id", d.ContractID.String()),
				zap.String("message", d.Message),
			)
		}
	}

	if !skipStatusRefresh {
		outcome, err := boletoService.UpdateRegisteredStatuses(ctx, cfg.Billing.StatusUpdateBatchSize)
		if err != nil {
			log.Error("Slip status refresh failed", zap.Error(err))
			os.Exit(1)
		}
		log.Info("Slip status refresh completed",
			zap.Int("total", outcome.Total),
			zap.Int("updated", outcome.Updated),
			zap.Int("errors", outcome.Errors),
		)
	}

	if summary.HasFailures() {
		os.Exit(1)
	}
}
