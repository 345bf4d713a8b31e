package leasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/leasing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OccupancyService derives building occupancy and revenue reporting
type OccupancyService struct {
	unitRepo leasing.UnitRepository
	clock    shared.Clock
	logger   *zap.Logger

	horizonDays int
}

// OccupancyServiceConfig contains configuration for OccupancyService
type OccupancyServiceConfig struct {
	// UpcomingHorizonDays is how far ahead a future tenancy still counts
	// a unit as upcoming
	UpcomingHorizonDays int
}

// NewOccupancyService creates a new OccupancyService
func NewOccupancyService(unitRepo leasing.UnitRepository, clock shared.Clock, logger *zap.Logger, config OccupancyServiceConfig) *OccupancyService {
	if config.UpcomingHorizonDays <= 0 {
		config.UpcomingHorizonDays = leasing.DefaultUpcomingHorizonDays
	}

	return &OccupancyService{
		unitRepo:    unitRepo,
		clock:       clock,
		logger:      logger,
		horizonDays: config.UpcomingHorizonDays,
	}
}

// BuildingReport classifies every unit of a building into exactly one
// occupancy bucket as of today. Tenancies with broken date windows degrade
// to warnings in the log; the report itself never fails on bad data.
func (s *OccupancyService) BuildingReport(ctx context.Context, buildingID uuid.UUID) (*leasing.BuildingOccupancyReport, error) {
	if buildingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUILDING", "Building ID cannot be empty")
	}

	units, err := s.unitRepo.ListWithTenancies(ctx, buildingID)
	if err != nil {
		s.logger.Error("Failed to load units for occupancy report",
			zap.String("building_id", buildingID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("FETCH_FAILED", "Failed to load units for occupancy report")
	}

	report, warnings := leasing.AggregateOccupancy(buildingID, units, s.clock.Today(), s.horizonDays)

	for _, w := range warnings {
		s.logger.Warn("Tenancy record fails integrity checks",
			zap.String("tenancy_id", w.TenancyID.String()),
			zap.String("unit_id", w.UnitID.String()),
			zap.String("reason", w.Reason))
	}

	s.logger.Debug("Occupancy report built",
		zap.String("building_id", buildingID.String()),
		zap.Int("total_units", report.TotalUnits),
		zap.Int("occupied", report.Occupied),
		zap.String("occupancy_rate", report.OccupancyRate.String()))

	return &report, nil
}
