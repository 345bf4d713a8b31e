package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AgingService produces collection-risk reporting over outstanding payments
type AgingService struct {
	paymentRepo billing.PaymentRepository
	clock       shared.Clock
	location    *time.Location
	logger      *zap.Logger
}

// NewAgingService creates a new AgingService. location is the billing
// timezone; period windows must match the timezone the due dates carry.
func NewAgingService(paymentRepo billing.PaymentRepository, clock shared.Clock, location *time.Location, logger *zap.Logger) *AgingService {
	if location == nil {
		location = time.UTC
	}
	return &AgingService{
		paymentRepo: paymentRepo,
		clock:       clock,
		location:    location,
		logger:      logger,
	}
}

// BuildReport buckets every outstanding payment matching the filter by days
// past due as of today
func (s *AgingService) BuildReport(ctx context.Context, filter billing.PaymentFilter) (*billing.AgingReport, error) {
	payments, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to fetch payments for aging report", zap.Error(err))
		return nil, shared.NewDomainError("FETCH_FAILED", "Failed to fetch payments for aging report")
	}

	report := billing.BuildAgingReport(payments, s.clock.Today())
	return &report, nil
}

// CollectionRateForPeriod returns the percentage of rent due in the given
// month that has been collected, optionally scoped to one building
func (s *AgingService) CollectionRateForPeriod(ctx context.Context, month, year int, buildingID *uuid.UUID) (decimal.Decimal, error) {
	if month < 1 || month > 12 {
		return decimal.Zero, shared.NewDomainError("INVALID_PERIOD", "Cycle month must be 1-12")
	}

	from, nextMonth := billing.PeriodWindow(month, year, s.location)
	to := nextMonth.AddDate(0, 0, -1)
	rentType := billing.PaymentTypeRent

	payments, err := s.paymentRepo.List(ctx, billing.PaymentFilter{
		BuildingID: buildingID,
		Type:       &rentType,
		DueFrom:    &from,
		DueTo:      &to,
	})
	if err != nil {
		s.logger.Error("Failed to fetch payments for collection rate",
			zap.String("period", billing.PeriodKey(month, year)),
			zap.Error(err))
		return decimal.Zero, shared.NewDomainError("FETCH_FAILED", "Failed to fetch payments for collection rate")
	}

	return billing.CollectionRate(payments), nil
}
