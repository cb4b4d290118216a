package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	appbilling "github.com/imobia/backend/internal/application/billing"
	appboleto "github.com/imobia/backend/internal/application/boleto"
	"github.com/imobia/backend/internal/infrastructure/config"
)

// BillingScheduler runs the automatic billing pass once per day and follows
// it with a status refresh of registered slips.
type BillingScheduler struct {
	recurring *appbilling.RecurringService
	boletos   *appboleto.Service
	cfg       config.SchedulerConfig
	batchSize int
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewBillingScheduler creates a new BillingScheduler.
func NewBillingScheduler(
	recurring *appbilling.RecurringService,
	boletos *appboleto.Service,
	cfg config.SchedulerConfig,
	batchSize int,
	logger *zap.Logger,
) *BillingScheduler {
	return &BillingScheduler{
		recurring: recurring,
		boletos:   boletos,
		cfg:       cfg,
		batchSize: batchSize,
		logger:    logger.Named("scheduler"),
	}
}

// Start starts the daily billing loop.
func (s *BillingScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.cfg.Enabled {
		s.logger.Info("Billing scheduler is disabled")
		return nil
	}

	runAt, err := time.Parse("15:04", s.cfg.BillingAt)
	if err != nil {
		return fmt.Errorf("invalid billing run time %q: %w", s.cfg.BillingAt, err)
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runDaily(ctx, runAt.Hour(), runAt.Minute())

	s.logger.Info("Billing scheduler started",
		zap.String("billing_at", s.cfg.BillingAt),
		zap.Duration("job_timeout", s.cfg.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler.
func (s *BillingScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Billing scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Billing scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *BillingScheduler) runDaily(ctx context.Context, hour, minute int) {
	defer s.wg.Done()

	for {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if now.After(nextRun) {
			nextRun = nextRun.Add(24 * time.Hour)
		}
		delay := time.Until(nextRun)

		s.logger.Info("Daily billing pass scheduled",
			zap.Time("next_run", nextRun),
			zap.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			s.logger.Debug("Billing loop stopping")
			return
		case <-time.After(delay):
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes one billing pass followed by a status refresh. Exposed so
// the one-shot CLI can share the exact behavior of the scheduled run.
func (s *BillingScheduler) RunOnce(ctx context.Context) {
	jobCtx := ctx
	if s.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, s.cfg.JobTimeout)
		defer cancel()
	}

	startTime := time.Now()
	summary, err := s.recurring.ProcessAutomaticBilling(jobCtx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Automatic billing pass failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Automatic billing pass completed",
		zap.Duration("duration", duration),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("ignored", summary.Ignored),
	)

	outcome, err := s.boletos.UpdateRegisteredStatuses(jobCtx, s.batchSize)
	if err != nil {
		s.logger.Error("Slip status refresh failed", zap.Error(err))
		return
	}
	s.logger.Info("Slip status refresh completed",
		zap.Int("total", outcome.Total),
		zap.Int("updated", outcome.Updated),
		zap.Int("errors", outcome.Errors),
	)
}
