package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/propertyhub/backend/internal/domain/leasing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BillingRepos bundles the repositories a billing transaction writes through.
// A TransactionScope hands the callback transaction-bound instances so that
// the payment and its cycle record commit or roll back together.
type BillingRepos struct {
	Payments billing.PaymentRepository
	Cycles   billing.RentCycleRepository
}

// TransactionScope runs fn atomically against the billing tables
type TransactionScope interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos BillingRepos) error) error
}

// RentCycleService generates one rent payment and cycle record per active
// tenancy per billing period. Runs are idempotent: re-running a period
// creates records only for tenancies that have none, so a crashed run can
// simply be retried.
type RentCycleService struct {
	tenancyRepo leasing.TenancyRepository
	cycleRepo   billing.RentCycleRepository
	paymentRepo billing.PaymentRepository
	runRepo     billing.JobRunRepository
	tx          TransactionScope
	lock        billing.RunLock
	clock       shared.Clock
	logger      *zap.Logger

	// Configuration
	dueDay   int
	location *time.Location
	lockTTL  time.Duration
}

// RentCycleServiceConfig contains configuration for RentCycleService
type RentCycleServiceConfig struct {
	// DueDay is the day of month rent falls due, clamped to short months
	DueDay int
	// Location is the timezone billing dates are computed in
	Location *time.Location
	// LockTTL bounds how long a crashed run can hold the generation lock
	LockTTL time.Duration
}

// DefaultRentCycleServiceConfig returns default configuration
func DefaultRentCycleServiceConfig() RentCycleServiceConfig {
	return RentCycleServiceConfig{
		DueDay:   1,
		Location: time.UTC,
		LockTTL:  30 * time.Minute,
	}
}

// NewRentCycleService creates a new RentCycleService
func NewRentCycleService(
	tenancyRepo leasing.TenancyRepository,
	cycleRepo billing.RentCycleRepository,
	paymentRepo billing.PaymentRepository,
	runRepo billing.JobRunRepository,
	tx TransactionScope,
	lock billing.RunLock,
	clock shared.Clock,
	logger *zap.Logger,
	config RentCycleServiceConfig,
) *RentCycleService {
	if config.DueDay <= 0 {
		config.DueDay = 1
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.LockTTL <= 0 {
		config.LockTTL = 30 * time.Minute
	}

	return &RentCycleService{
		tenancyRepo: tenancyRepo,
		cycleRepo:   cycleRepo,
		paymentRepo: paymentRepo,
		runRepo:     runRepo,
		tx:          tx,
		lock:        lock,
		clock:       clock,
		logger:      logger,
		dueDay:      config.DueDay,
		location:    config.Location,
		lockTTL:     config.LockTTL,
	}
}

// GenerationResult contains the outcome of one generation run
type GenerationResult struct {
	Period         string            `json:"period"`
	DueDate        time.Time         `json:"due_date"`
	Skipped        bool              `json:"skipped"` // True when another run held the lock
	Processed      int               `json:"processed"`
	Created        int               `json:"created"`
	AlreadyBilled  int               `json:"already_billed"`
	Failed         int               `json:"failed"`
	Errors         []GenerationError `json:"errors,omitempty"`
	IntegritySkips int               `json:"integrity_skips"`
	JobRunID       uuid.UUID         `json:"job_run_id"`
}

// GenerationError contains error information for a failed tenancy
type GenerationError struct {
	TenancyID uuid.UUID `json:"tenancy_id"`
	Error     string    `json:"error"`
}

// RunForCurrentPeriod generates rent cycles for the month containing today
func (s *RentCycleService) RunForCurrentPeriod(ctx context.Context) (*GenerationResult, error) {
	today := s.clock.Today()
	return s.Run(ctx, int(today.Month()), today.Year())
}

// Run generates the rent payment and cycle record for every tenancy active
// on the period's due date. At most one run executes at a time; a second
// caller gets a no-op result rather than an error. Each tenancy is billed
// in its own transaction, so one failure never poisons the batch.
func (s *RentCycleService) Run(ctx context.Context, month, year int) (*GenerationResult, error) {
	if month < 1 || month > 12 {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Cycle month must be 1-12")
	}
	if year < 2000 || year > 2200 {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Cycle year is out of range")
	}

	period := billing.PeriodKey(month, year)
	dueDate := billing.CycleDueDate(month, year, s.dueDay, s.location)

	result := &GenerationResult{
		Period:  period,
		DueDate: dueDate,
		Errors:  make([]GenerationError, 0),
	}

	lockToken, acquired, err := s.lock.TryAcquire(ctx, billing.RentCycleLockKey, s.lockTTL)
	if err != nil {
		s.logger.Error("Failed to acquire generation lock", zap.String("period", period), zap.Error(err))
		return nil, shared.NewDomainError("LOCK_FAILED", "Failed to acquire generation lock")
	}
	if !acquired {
		s.logger.Info("Generation run already in progress, skipping", zap.String("period", period))
		result.Skipped = true
		return result, nil
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), billing.RentCycleLockKey, lockToken); err != nil {
			s.logger.Warn("Failed to release generation lock", zap.Error(err))
		}
	}()

	s.logger.Info("Starting rent cycle generation",
		zap.String("period", period),
		zap.Time("due_date", dueDate))

	run := billing.NewJobRun(billing.JobTypeRentCycleGeneration, month, year, s.clock.Now())
	if err := s.runRepo.Save(ctx, run); err != nil {
		s.logger.Error("Failed to open job run record", zap.Error(err))
		return nil, shared.NewDomainError("SAVE_FAILED", "Failed to open job run record")
	}
	result.JobRunID = run.ID

	tenancies, err := s.tenancyRepo.FindActiveOn(ctx, dueDate)
	if err != nil {
		s.logger.Error("Failed to fetch active tenancies", zap.String("period", period), zap.Error(err))
		run.Fail("fetch active tenancies: "+err.Error(), s.clock.Now())
		if saveErr := s.runRepo.Save(ctx, run); saveErr != nil {
			s.logger.Error("Failed to finalize job run record", zap.Error(saveErr))
		}
		return nil, shared.NewDomainError("FETCH_FAILED", "Failed to fetch active tenancies")
	}

	errMessages := make([]string, 0)

	for i := range tenancies {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("Generation run cancelled; completed tenancies remain billed",
				zap.String("period", period),
				zap.Int("processed", result.Processed))
			break
		}

		tenancy := &tenancies[i]
		result.Processed++

		if tenancy.HasIntegrityViolation() {
			result.IntegritySkips++
			s.logger.Warn("Skipping tenancy with broken date window",
				zap.String("tenancy_id", tenancy.ID.String()),
				zap.String("period", period))
			continue
		}

		created, err := s.billTenancy(ctx, tenancy, month, year, dueDate)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, GenerationError{
				TenancyID: tenancy.ID,
				Error:     err.Error(),
			})
			errMessages = append(errMessages, err.Error())
			s.logger.Warn("Failed to bill tenancy",
				zap.String("tenancy_id", tenancy.ID.String()),
				zap.String("period", period),
				zap.Error(err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.AlreadyBilled++
		}
	}

	run.Complete(result.Processed, result.Created, result.Failed, errMessages, s.clock.Now())
	if err := s.runRepo.Save(ctx, run); err != nil {
		s.logger.Error("Failed to finalize job run record", zap.Error(err))
	}

	s.logger.Info("Rent cycle generation completed",
		zap.String("period", period),
		zap.Int("processed", result.Processed),
		zap.Int("created", result.Created),
		zap.Int("already_billed", result.AlreadyBilled),
		zap.Int("failed", result.Failed))

	return result, nil
}

// billTenancy creates the payment and cycle record for one tenancy unless
// the period is already billed. Both existence checks run first: a cycle
// row or a rent payment for the period each independently suppresses
// generation, so partial writes from an interrupted run are never doubled.
func (s *RentCycleService) billTenancy(ctx context.Context, tenancy *leasing.Tenancy, month, year int, dueDate time.Time) (bool, error) {
	cycleExists, err := s.cycleRepo.ExistsForPeriod(ctx, tenancy.ID, month, year)
	if err != nil {
		return false, err
	}
	if cycleExists {
		return false, nil
	}

	paymentExists, err := s.paymentRepo.ExistsRentForPeriod(ctx, tenancy.ID, month, year)
	if err != nil {
		return false, err
	}
	if paymentExists {
		return false, nil
	}

	rent := tenancy.GetRentAmountMoney()

	err = s.tx.Execute(ctx, func(ctx context.Context, repos BillingRepos) error {
		payment, err := billing.NewRentPayment(tenancy.ID, tenancy.BuildingID, rent, dueDate)
		if err != nil {
			return err
		}
		if err := repos.Payments.Create(ctx, payment); err != nil {
			return err
		}

		cycle, err := billing.NewRentCycle(tenancy.ID, month, year, rent, dueDate)
		if err != nil {
			return err
		}
		return repos.Cycles.Create(ctx, cycle)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListCycles returns the cycle records for a period
func (s *RentCycleService) ListCycles(ctx context.Context, month, year int) ([]billing.RentCycle, error) {
	if month < 1 || month > 12 {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Cycle month must be 1-12")
	}
	cycles, err := s.cycleRepo.ListByPeriod(ctx, month, year)
	if err != nil {
		s.logger.Error("Failed to list rent cycles",
			zap.String("period", billing.PeriodKey(month, year)),
			zap.Error(err))
		return nil, shared.NewDomainError("FETCH_FAILED", "Failed to list rent cycles")
	}
	return cycles, nil
}

// ListRuns returns the most recent generation run records
func (s *RentCycleService) ListRuns(ctx context.Context, limit int) ([]billing.JobRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	runs, err := s.runRepo.ListByType(ctx, billing.JobTypeRentCycleGeneration, limit)
	if err != nil {
		s.logger.Error("Failed to list job runs", zap.Error(err))
		return nil, shared.NewDomainError("FETCH_FAILED", "Failed to list job runs")
	}
	return runs, nil
}
