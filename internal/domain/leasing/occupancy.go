package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// DefaultUpcomingHorizonDays is how far ahead a future tenancy still
	// counts a unit as upcoming rather than available
	DefaultUpcomingHorizonDays = 30

	// LongTermVacancyDays is the vacancy age beyond which a unit is flagged
	LongTermVacancyDays = 45
)

// UnitOccupancyStatus is the derived occupancy bucket of a unit. Every unit
// lands in exactly one bucket.
type UnitOccupancyStatus string

const (
	UnitOccupied    UnitOccupancyStatus = "OCCUPIED"
	UnitUpcoming    UnitOccupancyStatus = "UPCOMING"
	UnitMaintenance UnitOccupancyStatus = "MAINTENANCE"
	UnitAvailable   UnitOccupancyStatus = "AVAILABLE"
)

// UnitOccupancy is the per-unit line of a building occupancy report
type UnitOccupancy struct {
	UnitID           uuid.UUID           `json:"unit_id"`
	UnitName         string              `json:"unit_name"`
	Status           UnitOccupancyStatus `json:"status"`
	ListedRent       decimal.Decimal     `json:"listed_rent"`
	CurrentRent      decimal.Decimal     `json:"current_rent"` // Zero unless occupied
	CurrentTenancyID *uuid.UUID          `json:"current_tenancy_id,omitempty"`
	UpcomingStart    *time.Time          `json:"upcoming_start,omitempty"`
	VacantDays       int                 `json:"vacant_days"` // 0 unless vacancy age is known
	LongTermVacant   bool                `json:"long_term_vacant"`
}

// BuildingOccupancyReport aggregates occupancy, vacancy and revenue metrics
// for one building. Rates are percentages rounded to two decimal places;
// an empty building reports zero rates, never NaN.
type BuildingOccupancyReport struct {
	BuildingID         uuid.UUID       `json:"building_id"`
	AsOf               time.Time       `json:"as_of"`
	TotalUnits         int             `json:"total_units"`
	Occupied           int             `json:"occupied"`
	Upcoming           int             `json:"upcoming"`
	Maintenance        int             `json:"maintenance"`
	Available          int             `json:"available"`
	LongTermVacant     int             `json:"long_term_vacant"`
	OccupancyRate      decimal.Decimal `json:"occupancy_rate"`
	UtilizationRate    decimal.Decimal `json:"utilization_rate"`
	PotentialRevenue   decimal.Decimal `json:"potential_revenue"`
	CurrentRevenue     decimal.Decimal `json:"current_revenue"`
	RevenueUtilization decimal.Decimal `json:"revenue_utilization"`
	LongestVacantUnit  *uuid.UUID      `json:"longest_vacant_unit,omitempty"`
	LongestVacantDays  int             `json:"longest_vacant_days"`
	Units              []UnitOccupancy `json:"units"`
}

// IntegrityWarning flags a tenancy whose stored record contradicts the
// executed-tenancy invariants. Aggregation degrades these to pending and
// reports them so callers can log; it never fails the report.
type IntegrityWarning struct {
	TenancyID uuid.UUID
	UnitID    uuid.UUID
	Reason    string
}

// AggregateOccupancy classifies every unit of a building into exactly one
// occupancy bucket and derives the building-level rates.
//
// Bucket rules, in priority order:
//   - a unit flagged for maintenance is MAINTENANCE regardless of tenancies
//   - any tenancy classifying CURRENT makes the unit OCCUPIED
//   - otherwise a FUTURE tenancy starting within horizonDays makes it UPCOMING
//   - otherwise the unit is AVAILABLE
//
// For available units, vacancy age is measured from the latest past
// tenancy's end date; units vacant beyond LongTermVacancyDays are flagged.
// A horizonDays of zero or less falls back to the 30-day default.
func AggregateOccupancy(buildingID uuid.UUID, units []UnitWithTenancies, today time.Time, horizonDays int) (BuildingOccupancyReport, []IntegrityWarning) {
	if horizonDays <= 0 {
		horizonDays = DefaultUpcomingHorizonDays
	}

	day := shared.Midnight(today)
	horizon := day.AddDate(0, 0, horizonDays)

	report := BuildingOccupancyReport{
		BuildingID:         buildingID,
		AsOf:               day,
		TotalUnits:         len(units),
		OccupancyRate:      decimal.Zero,
		UtilizationRate:    decimal.Zero,
		PotentialRevenue:   decimal.Zero,
		CurrentRevenue:     decimal.Zero,
		RevenueUtilization: decimal.Zero,
		Units:              make([]UnitOccupancy, 0, len(units)),
	}
	var warnings []IntegrityWarning

	for i := range units {
		unit := &units[i].Unit
		line := UnitOccupancy{
			UnitID:      unit.ID,
			UnitName:    unit.Name,
			ListedRent:  unit.RentAmount,
			CurrentRent: decimal.Zero,
		}
		report.PotentialRevenue = report.PotentialRevenue.Add(unit.RentAmount)

		var (
			current       *Tenancy
			upcomingStart *time.Time
			lastEnded     *time.Time
		)
		for j := range units[i].Tenancies {
			tenancy := &units[i].Tenancies[j]
			if tenancy.HasIntegrityViolation() {
				warnings = append(warnings, IntegrityWarning{
					TenancyID: tenancy.ID,
					UnitID:    unit.ID,
					Reason:    "executed tenancy with missing or inverted date window",
				})
			}
			switch Classify(tenancy, day) {
			case TenancyStateCurrent:
				if current == nil {
					current = tenancy
				}
			case TenancyStateFuture:
				if !tenancy.StartDate.After(horizon) {
					if upcomingStart == nil || tenancy.StartDate.Before(*upcomingStart) {
						start := tenancy.StartDate
						upcomingStart = &start
					}
				}
			case TenancyStatePast:
				if tenancy.EndDate != nil && tenancy.EndDate.Before(day) {
					if lastEnded == nil || tenancy.EndDate.After(*lastEnded) {
						end := *tenancy.EndDate
						lastEnded = &end
					}
				}
			}
		}

		switch {
		case unit.UnderMaintenance():
			line.Status = UnitMaintenance
			report.Maintenance++
		case current != nil:
			line.Status = UnitOccupied
			line.CurrentRent = current.RentAmount
			id := current.ID
			line.CurrentTenancyID = &id
			report.Occupied++
			report.CurrentRevenue = report.CurrentRevenue.Add(current.RentAmount)
		case upcomingStart != nil:
			line.Status = UnitUpcoming
			line.UpcomingStart = upcomingStart
			report.Upcoming++
		default:
			line.Status = UnitAvailable
			report.Available++
			if lastEnded != nil {
				line.VacantDays = shared.DaysBetween(*lastEnded, day)
				if line.VacantDays > LongTermVacancyDays {
					line.LongTermVacant = true
					report.LongTermVacant++
				}
				if line.VacantDays > report.LongestVacantDays {
					id := unit.ID
					report.LongestVacantUnit = &id
					report.LongestVacantDays = line.VacantDays
				}
			}
		}

		report.Units = append(report.Units, line)
	}

	if report.TotalUnits > 0 {
		total := decimal.NewFromInt(int64(report.TotalUnits))
		hundred := decimal.NewFromInt(100)
		report.OccupancyRate = decimal.NewFromInt(int64(report.Occupied)).Div(total).Mul(hundred).Round(2)
		report.UtilizationRate = decimal.NewFromInt(int64(report.Occupied + report.Upcoming)).Div(total).Mul(hundred).Round(2)
	}
	if report.PotentialRevenue.IsPositive() {
		report.RevenueUtilization = report.CurrentRevenue.Div(report.PotentialRevenue).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return report, warnings
}
