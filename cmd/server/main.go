package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appbilling "github.com/imobia/backend/internal/application/billing"
	appboleto "github.com/imobia/backend/internal/application/boleto"
	"github.com/imobia/backend/internal/infrastructure/bank"
	"github.com/imobia/backend/internal/infrastructure/config"
	"github.com/imobia/backend/internal/infrastructure/logger"
	"github.com/imobia/backend/internal/infrastructure/notification"
	"github.com/imobia/backend/internal/infrastructure/persistence"
	"github.com/imobia/backend/internal/infrastructure/printing"
	"github.com/imobia/backend/internal/infrastructure/scheduler"
	"github.com/imobia/backend/internal/interfaces/http/handler"
	"github.com/imobia/backend/internal/interfaces/http/middleware"
	"github.com/imobia/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
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

	log.Info("Starting Imobia Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logging
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
	log.Info("Database connected successfully")

	// Repositories
	contractRepo := persistence.NewGormContractRepository(db.DB)
	payerRepo := persistence.NewGormPayerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	boletoRepo := persistence.NewGormBoletoRepository(db.DB)
	logRepo := persistence.NewGormOperationLogRepository(db.DB)
	credentialRepo := persistence.NewGormCredentialRepository(db.DB)
	boletoScope := persistence.NewGormBoletoTransactionScope(db.DB)

	// Bank channel
	authClient := bank.NewAuthClient(credentialRepo, log, bank.Timeouts{
		TokenConnect:    cfg.Bank.TokenConnectTimeout,
		Token:           cfg.Bank.TokenTimeout,
		ResourceConnect: cfg.Bank.ResourceConnectTimeout,
		Resource:        cfg.Bank.ResourceTimeout,
	})
	gateway := bank.NewSlipGateway(authClient, log)

	// Application services
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

	// Daily billing scheduler
	billingScheduler := scheduler.NewBillingScheduler(
		recurringService, boletoService,
		cfg.Scheduler, cfg.Billing.StatusUpdateBatchSize, log,
	)
	if err := billingScheduler.Start(context.Background()); err != nil {
		log.Fatal("Failed to start billing scheduler", zap.Error(err))
	}

	// HTTP handlers
	boletoHandler := handler.NewBoletoHandler(boletoService)
	invoiceHandler := handler.NewInvoiceHandler(recurringService)
	systemHandler := handler.NewSystemHandler(db, cfg.App.Name, cfg.App.Env)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.POST("/invoices", invoiceHandler.Create)
	billingRoutes.GET("/invoices", invoiceHandler.List)
	billingRoutes.GET("/invoices/stats", invoiceHandler.Statistics)
	billingRoutes.GET("/invoices/:id", invoiceHandler.GetByID)
	billingRoutes.POST("/invoices/:id/send", invoiceHandler.Send)
	billingRoutes.POST("/invoices/:id/cancel", invoiceHandler.Cancel)
	billingRoutes.POST("/run", invoiceHandler.RunBilling)

	boletoRoutes := router.NewDomainGroup("boleto", "/boletos")
	boletoRoutes.POST("", boletoHandler.Create)
	boletoRoutes.GET("", boletoHandler.List)
	boletoRoutes.GET("/stats", boletoHandler.Statistics)
	boletoRoutes.POST("/batch/register", boletoHandler.RegisterBatch)
	boletoRoutes.POST("/batch/query", boletoHandler.QueryBatch)
	boletoRoutes.GET("/:id", boletoHandler.GetByID)
	boletoRoutes.POST("/:id/register", boletoHandler.Register)
	boletoRoutes.POST("/:id/query", boletoHandler.Query)
	boletoRoutes.POST("/:id/settle", boletoHandler.Settle)
	boletoRoutes.DELETE("/:id", boletoHandler.Delete)

	credentialRoutes := router.NewDomainGroup("credential", "/bank-credentials")
	credentialRoutes.POST("/:id/test", boletoHandler.TestConnection)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/info", systemHandler.Info)
	systemRoutes.GET("/stats", systemHandler.Stats)

	r.Register(billingRoutes).
		Register(boletoRoutes).
		Register(credentialRoutes).
		Register(systemRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := billingScheduler.Stop(ctx); err != nil {
		log.Error("Billing scheduler did not stop cleanly", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness including database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
