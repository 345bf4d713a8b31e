package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UnitRepository is the persistence contract for units
type UnitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)
	FindByBuilding(ctx context.Context, buildingID uuid.UUID) ([]Unit, error)
	// ListWithTenancies returns every unit of a building with its full
	// tenancy history attached, for occupancy reporting
	ListWithTenancies(ctx context.Context, buildingID uuid.UUID) ([]UnitWithTenancies, error)
	Save(ctx context.Context, unit *Unit) error
}

// TenancyRepository is the persistence contract for tenancies
type TenancyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenancy, error)
	FindByUnit(ctx context.Context, unitID uuid.UUID) ([]Tenancy, error)
	// FindActiveOn returns every executed tenancy whose date window covers
	// the given date (open end dates included)
	FindActiveOn(ctx context.Context, date time.Time) ([]Tenancy, error)
	// FindExecutedOverlapping returns executed tenancies on the unit whose
	// window intersects [start, end]; used to validate the one-current-
	// tenancy-per-unit invariant at execution time
	FindExecutedOverlapping(ctx context.Context, unitID uuid.UUID, start, end time.Time) ([]Tenancy, error)
	// FindExpiredCandidates returns executed tenancies whose end date is
	// strictly before the given date, for the expiry sweep
	FindExpiredCandidates(ctx context.Context, before time.Time) ([]Tenancy, error)
	Save(ctx context.Context, tenancy *Tenancy) error
}
