package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/propertyhub/backend/internal/domain/leasing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TenancyService handles the lease agreement lifecycle
type TenancyService struct {
	tenancyRepo leasing.TenancyRepository
	unitRepo    leasing.UnitRepository
	runRepo     billing.JobRunRepository
	clock       shared.Clock
	logger      *zap.Logger
}

// NewTenancyService creates a new TenancyService
func NewTenancyService(
	tenancyRepo leasing.TenancyRepository,
	unitRepo leasing.UnitRepository,
	runRepo billing.JobRunRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *TenancyService {
	return &TenancyService{
		tenancyRepo: tenancyRepo,
		unitRepo:    unitRepo,
		runRepo:     runRepo,
		clock:       clock,
		logger:      logger,
	}
}

// CreateTenancyInput describes a lease agreement at signing. The end date
// may still be open; it becomes mandatory at execution.
type CreateTenancyInput struct {
	UnitID     uuid.UUID
	TenantID   uuid.UUID
	StartDate  time.Time
	EndDate    *time.Time
	RentAmount decimal.Decimal
}

// CreateTenancy records a pending lease agreement against a unit
func (s *TenancyService) CreateTenancy(ctx context.Context, input CreateTenancyInput) (*leasing.Tenancy, error) {
	unit, err := s.unitRepo.FindByID(ctx, input.UnitID)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, shared.ErrNotFound
	}

	tenancy, err := leasing.NewTenancy(input.UnitID, input.TenantID, unit.BuildingID,
		input.StartDate, input.EndDate, valueobject.NewMoneyUSD(input.RentAmount))
	if err != nil {
		return nil, err
	}

	if err := s.tenancyRepo.Save(ctx, tenancy); err != nil {
		s.logger.Error("Failed to save tenancy",
			zap.String("unit_id", input.UnitID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("SAVE_FAILED", "Failed to save tenancy")
	}

	s.logger.Info("Tenancy created",
		zap.String("tenancy_id", tenancy.ID.String()),
		zap.String("unit_id", input.UnitID.String()),
		zap.Time("start_date", tenancy.StartDate))

	return tenancy, nil
}

// GetTenancy retrieves a tenancy by ID
func (s *TenancyService) GetTenancy(ctx context.Context, id uuid.UUID) (*leasing.Tenancy, error) {
	if id == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANCY", "Tenancy ID cannot be empty")
	}
	tenancy, err := s.tenancyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenancy == nil {
		return nil, shared.ErrNotFound
	}
	return tenancy, nil
}

// ClassifiedTenancy pairs a tenancy with its derived temporal state
type ClassifiedTenancy struct {
	Tenancy *leasing.Tenancy     `json:"tenancy"`
	State   leasing.TenancyState `json:"state"`
}

// ClassifyTenancy returns a tenancy with its state relative to today.
// An executed tenancy with a broken date window classifies as pending and
// is logged as a data-integrity warning.
func (s *TenancyService) ClassifyTenancy(ctx context.Context, id uuid.UUID) (*ClassifiedTenancy, error) {
	tenancy, err := s.GetTenancy(ctx, id)
	if err != nil {
		return nil, err
	}

	if tenancy.HasIntegrityViolation() {
		s.logger.Warn("Executed tenancy has a broken date window",
			zap.String("tenancy_id", tenancy.ID.String()),
			zap.String("unit_id", tenancy.UnitID.String()))
	}

	return &ClassifiedTenancy{
		Tenancy: tenancy,
		State:   leasing.Classify(tenancy, s.clock.Today()),
	}, nil
}

// ListByUnit returns a unit's tenancies, each with its derived state
func (s *TenancyService) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]ClassifiedTenancy, error) {
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID cannot be empty")
	}

	tenancies, err := s.tenancyRepo.FindByUnit(ctx, unitID)
	if err != nil {
		s.logger.Error("Failed to list tenancies", zap.String("unit_id", unitID.String()), zap.Error(err))
		return nil, shared.NewDomainError("FETCH_FAILED", "Failed to list tenancies")
	}

	today := s.clock.Today()
	classified := make([]ClassifiedTenancy, 0, len(tenancies))
	for i := range tenancies {
		classified = append(classified, ClassifiedTenancy{
			Tenancy: &tenancies[i],
			State:   leasing.Classify(&tenancies[i], today),
		})
	}
	return classified, nil
}

// ExecuteTenancy puts a pending agreement in force. An end date passed here
// closes an open window before execution. The unit must not already have an
// executed tenancy overlapping the window.
func (s *TenancyService) ExecuteTenancy(ctx context.Context, id uuid.UUID, endDate *time.Time) (*leasing.Tenancy, error) {
	tenancy, err := s.GetTenancy(ctx, id)
	if err != nil {
		return nil, err
	}

	if endDate != nil {
		if tenancy.AgreementStatus != leasing.AgreementStatusPending {
			return nil, shared.ErrInvalidState
		}
		e := shared.Midnight(*endDate)
		if e.Before(tenancy.StartDate) {
			return nil, shared.NewDomainError("INVALID_DATE_WINDOW", "End date cannot be before start date")
		}
		tenancy.EndDate = &e
	}
	if tenancy.EndDate == nil {
		return nil, shared.NewDomainError("MISSING_END_DATE", "End date must be set before execution")
	}

	overlapping, err := s.tenancyRepo.FindExecutedOverlapping(ctx, tenancy.UnitID, tenancy.StartDate, *tenancy.EndDate)
	if err != nil {
		s.logger.Error("Failed to check overlapping tenancies",
			zap.String("tenancy_id", id.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("FETCH_FAILED", "Failed to check overlapping tenancies")
	}
	for i := range overlapping {
		if overlapping[i].ID != tenancy.ID {
			return nil, shared.ErrUnitOccupied
		}
	}

	if err := tenancy.Execute(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.tenancyRepo.Save(ctx, tenancy); err != nil {
		s.logger.Error("Failed to save tenancy", zap.String("tenancy_id", id.String()), zap.Error(err))
		return nil, shared.NewDomainError("SAVE_FAILED", "Failed to save tenancy")
	}

	s.logger.Info("Tenancy executed",
		zap.String("tenancy_id", tenancy.ID.String()),
		zap.Time("start_date", tenancy.StartDate),
		zap.Time("end_date", *tenancy.EndDate))

	return tenancy, nil
}

// TerminateTenancy ends an executed agreement early, closing its window at
// the termination day
func (s *TenancyService) TerminateTenancy(ctx context.Context, id uuid.UUID, reason string) (*leasing.Tenancy, error) {
	tenancy, err := s.GetTenancy(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := tenancy.Terminate(s.clock.Now(), reason); err != nil {
		return nil, err
	}
	if err := s.tenancyRepo.Save(ctx, tenancy); err != nil {
		s.logger.Error("Failed to save tenancy", zap.String("tenancy_id", id.String()), zap.Error(err))
		return nil, shared.NewDomainError("SAVE_FAILED", "Failed to save tenancy")
	}

	s.logger.Info("Tenancy terminated",
		zap.String("tenancy_id", tenancy.ID.String()),
		zap.String("reason", reason))

	return tenancy, nil
}

// RecordMoveIn stamps the physical move-in date on an executed tenancy
func (s *TenancyService) RecordMoveIn(ctx context.Context, id uuid.UUID, date time.Time) (*leasing.Tenancy, error) {
	tenancy, err := s.GetTenancy(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := tenancy.RecordMoveIn(date); err != nil {
		return nil, err
	}
	if err := s.tenancyRepo.Save(ctx, tenancy); err != nil {
		return nil, shared.NewDomainError("SAVE_FAILED", "Failed to save tenancy")
	}
	return tenancy, nil
}

// RecordMoveOut stamps the physical move-out date
func (s *TenancyService) RecordMoveOut(ctx context.Context, id uuid.UUID, date time.Time) (*leasing.Tenancy, error) {
	tenancy, err := s.GetTenancy(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := tenancy.RecordMoveOut(date); err != nil {
		return nil, err
	}
	if err := s.tenancyRepo.Save(ctx, tenancy); err != nil {
		return nil, shared.NewDomainError("SAVE_FAILED", "Failed to save tenancy")
	}
	return tenancy, nil
}

// ExpiryResult contains the outcome of one expiry sweep
type ExpiryResult struct {
	AsOf    time.Time `json:"as_of"`
	Expired int       `json:"expired"`
	Failed  int       `json:"failed"`
}

// ExpireEndedTenancies closes out every executed tenancy whose end date has
// passed. A tenancy ending today stays current through the day; only
// strictly past end dates expire.
func (s *TenancyService) ExpireEndedTenancies(ctx context.Context) (*ExpiryResult, error) {
	today := s.clock.Today()
	result := &ExpiryResult{AsOf: today}

	run := billing.NewJobRun(billing.JobTypeTenancyExpiry, int(today.Month()), today.Year(), s.clock.Now())
	if err := s.runRepo.Save(ctx, run); err != nil {
		s.logger.Error("Failed to open job run record", zap.Error(err))
		return nil, shared.NewDomainError("SAVE_FAILED", "Failed to open job run record")
	}

	candidates, err := s.tenancyRepo.FindExpiredCandidates(ctx, today)
	if err != nil {
		s.logger.Error("Failed to fetch expiry candidates", zap.Error(err))
		run.Fail("fetch expiry candidates: "+err.Error(), s.clock.Now())
		if saveErr := s.runRepo.Save(ctx, run); saveErr != nil {
			s.logger.Error("Failed to finalize job run record", zap.Error(saveErr))
		}
		return nil, shared.NewDomainError("FETCH_FAILED", "Failed to fetch expiry candidates")
	}

	errMessages := make([]string, 0)

	for i := range candidates {
		tenancy := &candidates[i]
		if err := tenancy.Expire(s.clock.Now()); err != nil {
			result.Failed++
			errMessages = append(errMessages, err.Error())
			continue
		}
		if err := s.tenancyRepo.Save(ctx, tenancy); err != nil {
			result.Failed++
			errMessages = append(errMessages, err.Error())
			s.logger.Warn("Failed to save expired tenancy",
				zap.String("tenancy_id", tenancy.ID.String()),
				zap.Error(err))
			continue
		}
		result.Expired++
	}

	run.Complete(len(candidates), result.Expired, result.Failed, errMessages, s.clock.Now())
	if err := s.runRepo.Save(ctx, run); err != nil {
		s.logger.Error("Failed to finalize job run record", zap.Error(err))
	}

	s.logger.Info("Tenancy expiry sweep completed",
		zap.Int("expired", result.Expired),
		zap.Int("failed", result.Failed))

	return result, nil
}
