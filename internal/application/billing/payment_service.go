package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService handles payment collection and the daily overdue sweep
type PaymentService struct {
	paymentRepo billing.PaymentRepository
	cycleRepo   billing.RentCycleRepository
	runRepo     billing.JobRunRepository
	lock        billing.RunLock
	clock       shared.Clock
	location    *time.Location
	logger      *zap.Logger

	sweepLockTTL time.Duration
}

// NewPaymentService creates a new PaymentService. location is the billing
// timezone the generator mints due dates in.
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	cycleRepo billing.RentCycleRepository,
	runRepo billing.JobRunRepository,
	lock billing.RunLock,
	clock shared.Clock,
	location *time.Location,
	logger *zap.Logger,
) *PaymentService {
	if location == nil {
		location = time.UTC
	}
	return &PaymentService{
		paymentRepo:  paymentRepo,
		cycleRepo:    cycleRepo,
		runRepo:      runRepo,
		lock:         lock,
		clock:        clock,
		location:     location,
		logger:       logger,
		sweepLockTTL: 10 * time.Minute,
	}
}

// CreateChargeInput describes a manually raised charge (deposit,
// maintenance, late fee). Rent charges are created only by the generator.
type CreateChargeInput struct {
	TenancyID   uuid.UUID
	BuildingID  uuid.UUID
	PaymentType billing.PaymentType
	Amount      decimal.Decimal
	DueDate     time.Time
	Remark      string
}

// CreateCharge raises a non-rent payment against a tenancy
func (s *PaymentService) CreateCharge(ctx context.Context, input CreateChargeInput) (*billing.Payment, error) {
	if input.PaymentType == billing.PaymentTypeRent {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Rent payments are raised by the billing run, not manually")
	}

	payment, err := billing.NewPayment(input.TenancyID, input.BuildingID, input.PaymentType,
		valueobject.NewMoneyUSD(input.Amount), input.DueDate)
	if err != nil {
		return nil, err
	}
	payment.Remark = input.Remark

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		s.logger.Error("Failed to create charge",
			zap.String("tenancy_id", input.TenancyID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("SAVE_FAILED", "Failed to create charge")
	}

	s.logger.Info("Charge created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("type", input.PaymentType.String()),
		zap.String("amount", input.Amount.String()))

	return payment, nil
}

// GetPayment retrieves a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	if id == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment ID cannot be empty")
	}
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.ErrNotFound
	}
	return payment, nil
}

// ListPayments returns payments matching the filter
func (s *PaymentService) ListPayments(ctx context.Context, filter billing.PaymentFilter) ([]billing.Payment, error) {
	payments, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list payments", zap.Error(err))
		return nil, shared.NewDomainError("FETCH_FAILED", "Failed to list payments")
	}
	return payments, nil
}

// MarkPaid settles a payment in full and mirrors the status onto its
// rent cycle record when one exists
func (s *PaymentService) MarkPaid(ctx context.Context, id uuid.UUID, on time.Time) (*billing.Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if on.IsZero() {
		on = s.clock.Now()
	}

	if err := payment.MarkPaid(on); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		s.logger.Error("Failed to save payment", zap.String("payment_id", id.String()), zap.Error(err))
		return nil, shared.NewDomainError("SAVE_FAILED", "Failed to save payment")
	}

	s.syncCycleStatus(ctx, payment)

	s.logger.Info("Payment settled",
		zap.String("payment_id", payment.ID.String()),
		zap.Time("payment_date", on))

	return payment, nil
}

// MarkPartial records a partial collection on a payment
func (s *PaymentService) MarkPartial(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := payment.MarkPartial(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		s.logger.Error("Failed to save payment", zap.String("payment_id", id.String()), zap.Error(err))
		return nil, shared.NewDomainError("SAVE_FAILED", "Failed to save payment")
	}

	s.syncCycleStatus(ctx, payment)

	return payment, nil
}

// ApplyLateFee adds a late fee to an unsettled payment
func (s *PaymentService) ApplyLateFee(ctx context.Context, id uuid.UUID, fee decimal.Decimal) (*billing.Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := payment.ApplyLateFee(valueobject.NewMoneyUSD(fee)); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		s.logger.Error("Failed to save payment", zap.String("payment_id", id.String()), zap.Error(err))
		return nil, shared.NewDomainError("SAVE_FAILED", "Failed to save payment")
	}

	s.logger.Info("Late fee applied",
		zap.String("payment_id", payment.ID.String()),
		zap.String("fee", fee.String()))

	return payment, nil
}

// SweepResult contains the outcome of one overdue sweep
type SweepResult struct {
	AsOf       time.Time `json:"as_of"`
	Examined   int       `json:"examined"`
	MarkedOver int       `json:"marked_overdue"`
	Failed     int       `json:"failed"`
	Skipped    bool      `json:"skipped"`
}

// SweepOverdue flips every unsettled payment past its due date to overdue.
// A payment due today is left alone. Like generation, the sweep holds a
// lock so overlapping schedules cannot race.
func (s *PaymentService) SweepOverdue(ctx context.Context) (*SweepResult, error) {
	today := s.clock.Today()
	result := &SweepResult{AsOf: today}

	lockToken, acquired, err := s.lock.TryAcquire(ctx, billing.SweepLockKey, s.sweepLockTTL)
	if err != nil {
		s.logger.Error("Failed to acquire sweep lock", zap.Error(err))
		return nil, shared.NewDomainError("LOCK_FAILED", "Failed to acquire sweep lock")
	}
	if !acquired {
		s.logger.Info("Overdue sweep already in progress, skipping")
		result.Skipped = true
		return result, nil
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), billing.SweepLockKey, lockToken); err != nil {
			s.logger.Warn("Failed to release sweep lock", zap.Error(err))
		}
	}()

	run := billing.NewJobRun(billing.JobTypeOverdueSweep, int(today.Month()), today.Year(), s.clock.Now())
	if err := s.runRepo.Save(ctx, run); err != nil {
		s.logger.Error("Failed to open job run record", zap.Error(err))
		return nil, shared.NewDomainError("SAVE_FAILED", "Failed to open job run record")
	}

	payments, err := s.paymentRepo.FindUnsettledDueBefore(ctx, today)
	if err != nil {
		s.logger.Error("Failed to fetch unsettled payments", zap.Error(err))
		run.Fail("fetch unsettled payments: "+err.Error(), s.clock.Now())
		if saveErr := s.runRepo.Save(ctx, run); saveErr != nil {
			s.logger.Error("Failed to finalize job run record", zap.Error(saveErr))
		}
		return nil, shared.NewDomainError("FETCH_FAILED", "Failed to fetch unsettled payments")
	}

	errMessages := make([]string, 0)

	for i := range payments {
		payment := &payments[i]
		result.Examined++

		if payment.Status == billing.PaymentStatusOverdue {
			continue
		}
		if err := payment.MarkOverdue(today); err != nil {
			result.Failed++
			errMessages = append(errMessages, err.Error())
			continue
		}
		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			result.Failed++
			errMessages = append(errMessages, err.Error())
			s.logger.Warn("Failed to save overdue payment",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(err))
			continue
		}

		s.syncCycleStatus(ctx, payment)
		result.MarkedOver++
	}

	run.Complete(result.Examined, result.MarkedOver, result.Failed, errMessages, s.clock.Now())
	if err := s.runRepo.Save(ctx, run); err != nil {
		s.logger.Error("Failed to finalize job run record", zap.Error(err))
	}

	s.logger.Info("Overdue sweep completed",
		zap.Int("examined", result.Examined),
		zap.Int("marked_overdue", result.MarkedOver),
		zap.Int("failed", result.Failed))

	return result, nil
}

// syncCycleStatus mirrors a rent payment's status onto its cycle record.
// Cycle sync is best-effort reporting state; a failure is logged, never
// propagated.
func (s *PaymentService) syncCycleStatus(ctx context.Context, payment *billing.Payment) {
	if payment.PaymentType != billing.PaymentTypeRent {
		return
	}

	// The stored due date may come back in a different zone than it was
	// minted in; the cycle's (month, year) is defined in the billing zone.
	due := payment.DueDate.In(s.location)
	cycle, err := s.cycleRepo.FindByTenancyAndPeriod(ctx, payment.TenancyID,
		int(due.Month()), due.Year())
	if err != nil || cycle == nil {
		if err != nil {
			s.logger.Warn("Failed to load rent cycle for status sync",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(err))
		}
		return
	}

	if err := cycle.SyncPaymentStatus(payment.Status); err != nil {
		return
	}
	if err := s.cycleRepo.Save(ctx, cycle); err != nil {
		s.logger.Warn("Failed to save rent cycle status",
			zap.String("cycle_id", cycle.ID.String()),
			zap.Error(err))
	}
}
