package scheduler

import (
	"context"
	"sync"
	"time"

	appbilling "github.com/propertyhub/backend/internal/application/billing"
	appleasing "github.com/propertyhub/backend/internal/application/leasing"
	"go.uber.org/zap"
)

// BillingScheduler manages the recurring billing jobs: the monthly rent
// cycle generation run, the daily overdue sweep, and the daily tenancy
// expiry pass.
type BillingScheduler struct {
	rentCycles *appbilling.RentCycleService
	payments   *appbilling.PaymentService
	tenancies  *appleasing.TenancyService
	logger     *zap.Logger
	config     BillingSchedulerConfig
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	isRunning  bool
}

// BillingSchedulerConfig holds configuration for the billing scheduler
type BillingSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// GenerationDay is the day of month (1-28) the rent run fires
	GenerationDay int

	// GenerationHour is the hour (0-23) the rent run fires
	GenerationHour int

	// SweepHour is the hour (0-23) the daily sweep fires
	// (should be different from GenerationHour)
	SweepHour int

	// JobTimeout is the maximum time for a single job execution
	JobTimeout time.Duration
}

// DefaultBillingSchedulerConfig returns default configuration
func DefaultBillingSchedulerConfig() BillingSchedulerConfig {
	return BillingSchedulerConfig{
		Enabled:        true,
		GenerationDay:  1,
		GenerationHour: 2, // 2 AM - raise the month's rent charges
		SweepHour:      4, // 4 AM - overdue sweep and tenancy expiry
		JobTimeout:     30 * time.Minute,
	}
}

// NewBillingScheduler creates a new billing scheduler
func NewBillingScheduler(
	rentCycles *appbilling.RentCycleService,
	payments *appbilling.PaymentService,
	tenancies *appleasing.TenancyService,
	logger *zap.Logger,
	config BillingSchedulerConfig,
) *BillingScheduler {
	return &BillingScheduler{
		rentCycles: rentCycles,
		payments:   payments,
		tenancies:  tenancies,
		logger:     logger,
		config:     config,
	}
}

// Start starts the billing scheduler
func (s *BillingScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Billing scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runMonthlyGeneration(ctx)

	s.wg.Add(1)
	go s.runDailySweep(ctx)

	s.logger.Info("Billing scheduler started",
		zap.Int("generation_day", s.config.GenerationDay),
		zap.Int("generation_hour", s.config.GenerationHour),
		zap.Int("sweep_hour", s.config.SweepHour),
	)

	return nil
}

// Stop gracefully stops the scheduler
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

// runMonthlyGeneration runs rent cycle generation once per month on the
// configured day and hour
func (s *BillingScheduler) runMonthlyGeneration(ctx context.Context) {
	defer s.wg.Done()

	for {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), s.config.GenerationDay, s.config.GenerationHour, 0, 0, 0, now.Location())
		if now.After(nextRun) {
			// Already past this month's run time, schedule for next month
			nextRun = nextRun.AddDate(0, 1, 0)
		}
		delay := time.Until(nextRun)

		s.logger.Info("Monthly rent generation scheduled",
			zap.Time("next_run", nextRun),
			zap.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			s.logger.Debug("Monthly generation loop stopping")
			return
		case <-time.After(delay):
			s.executeGeneration(ctx)
		}
	}
}

// runDailySweep runs the overdue sweep and tenancy expiry once per day at
// the configured hour
func (s *BillingScheduler) runDailySweep(ctx context.Context) {
	defer s.wg.Done()

	for {
		now := time.Now()
		nextRun := time.Date(now.Year(), now.Month(), now.Day(), s.config.SweepHour, 0, 0, 0, now.Location())
		if now.After(nextRun) {
			// Already past today's run time, schedule for tomorrow
			nextRun = nextRun.Add(24 * time.Hour)
		}
		delay := time.Until(nextRun)

		s.logger.Info("Daily billing sweep scheduled",
			zap.Time("next_run", nextRun),
			zap.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			s.logger.Debug("Daily sweep loop stopping")
			return
		case <-time.After(delay):
			s.executeSweep(ctx)
		}
	}
}

// executeGeneration runs rent cycle generation for the current period
func (s *BillingScheduler) executeGeneration(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	startTime := time.Now()
	result, err := s.rentCycles.RunForCurrentPeriod(runCtx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Monthly rent generation failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	if result.Skipped {
		s.logger.Info("Monthly rent generation skipped, another run holds the lock",
			zap.String("period", result.Period),
		)
		return
	}

	s.logger.Info("Monthly rent generation completed",
		zap.Duration("duration", duration),
		zap.String("period", result.Period),
		zap.Int("processed", result.Processed),
		zap.Int("created", result.Created),
		zap.Int("already_billed", result.AlreadyBilled),
		zap.Int("failed", result.Failed),
		zap.Int("integrity_skips", result.IntegritySkips),
	)
}

// executeSweep runs the overdue sweep followed by the tenancy expiry pass
func (s *BillingScheduler) executeSweep(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	startTime := time.Now()
	sweep, err := s.payments.SweepOverdue(runCtx)
	if err != nil {
		s.logger.Error("Overdue sweep failed",
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err),
		)
	} else if sweep.Skipped {
		s.logger.Info("Overdue sweep skipped, another run holds the lock")
	} else {
		s.logger.Info("Overdue sweep completed",
			zap.Duration("duration", time.Since(startTime)),
			zap.Int("examined", sweep.Examined),
			zap.Int("marked_overdue", sweep.MarkedOver),
			zap.Int("failed", sweep.Failed),
		)
	}

	expiryStart := time.Now()
	expiry, err := s.tenancies.ExpireEndedTenancies(runCtx)
	if err != nil {
		s.logger.Error("Tenancy expiry pass failed",
			zap.Duration("duration", time.Since(expiryStart)),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Tenancy expiry pass completed",
		zap.Duration("duration", time.Since(expiryStart)),
		zap.Int("expired", expiry.Expired),
		zap.Int("failed", expiry.Failed),
	)
}

// TriggerImmediateGeneration triggers an immediate rent generation run
func (s *BillingScheduler) TriggerImmediateGeneration(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate rent generation run")

	go func() {
		defer s.wg.Done()
		s.executeGeneration(ctx)
	}()

	return nil
}

// TriggerImmediateSweep triggers an immediate sweep run
func (s *BillingScheduler) TriggerImmediateSweep(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate billing sweep")

	go func() {
		defer s.wg.Done()
		s.executeSweep(ctx)
	}()

	return nil
}

// IsRunning returns whether the scheduler is running
func (s *BillingScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
