package leasing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUnit(t *testing.T, buildingID uuid.UUID, name string, rent float64) Unit {
	t.Helper()
	unit, err := NewUnit(buildingID, name, valueobject.NewMoneyUSDFromFloat(rent), valueobject.NewMoneyUSDFromFloat(rent))
	require.NoError(t, err)
	return *unit
}

func tenancyFor(t *testing.T, unit Unit, start time.Time, end *time.Time, rent float64, execute bool) Tenancy {
	t.Helper()
	tenancy, err := NewTenancy(unit.ID, uuid.New(), unit.BuildingID, start, end, valueobject.NewMoneyUSDFromFloat(rent))
	require.NoError(t, err)
	if execute {
		require.NoError(t, tenancy.Execute(time.Now()))
	}
	return *tenancy
}

func TestAggregateOccupancy_BucketsAndRates(t *testing.T) {
	buildingID := uuid.New()
	today := date(2024, 6, 15)

	// 10 units: 7 current, 1 future within horizon, 1 maintenance, 1 empty
	units := make([]UnitWithTenancies, 0, 10)
	for i := 0; i < 7; i++ {
		unit := newUnit(t, buildingID, "occupied", 1000)
		units = append(units, UnitWithTenancies{
			Unit:      unit,
			Tenancies: []Tenancy{tenancyFor(t, unit, date(2024, 1, 1), datePtr(2024, 12, 31), 950, true)},
		})
	}
	upcomingUnit := newUnit(t, buildingID, "upcoming", 1000)
	units = append(units, UnitWithTenancies{
		Unit:      upcomingUnit,
		Tenancies: []Tenancy{tenancyFor(t, upcomingUnit, date(2024, 7, 1), datePtr(2025, 6, 30), 1100, true)},
	})
	maintUnit := newUnit(t, buildingID, "maintenance", 1000)
	maintUnit.StartMaintenance()
	units = append(units, UnitWithTenancies{Unit: maintUnit})
	units = append(units, UnitWithTenancies{Unit: newUnit(t, buildingID, "empty", 1000)})

	report, warnings := AggregateOccupancy(buildingID, units, today, 0)

	assert.Empty(t, warnings)
	assert.Equal(t, 10, report.TotalUnits)
	assert.Equal(t, 7, report.Occupied)
	assert.Equal(t, 1, report.Upcoming)
	assert.Equal(t, 1, report.Maintenance)
	assert.Equal(t, 1, report.Available)

	assert.Equal(t, "70", report.OccupancyRate.String())
	assert.Equal(t, "80", report.UtilizationRate.String())

	// Current revenue uses the tenancy's own rate, not the listed rent
	assert.True(t, report.CurrentRevenue.Equal(decimal.NewFromInt(6650)), "got %s", report.CurrentRevenue)
	assert.True(t, report.PotentialRevenue.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, "66.5", report.RevenueUtilization.String())
}

func TestAggregateOccupancy_Conservation(t *testing.T) {
	buildingID := uuid.New()
	today := date(2024, 6, 15)

	unitA := newUnit(t, buildingID, "A", 800)
	unitB := newUnit(t, buildingID, "B", 800)
	unitB.StartMaintenance()
	unitC := newUnit(t, buildingID, "C", 800)
	unitD := newUnit(t, buildingID, "D", 800)

	units := []UnitWithTenancies{
		// Occupied and also has an upcoming tenancy: counted once, as occupied
		{Unit: unitA, Tenancies: []Tenancy{
			tenancyFor(t, unitA, date(2024, 1, 1), datePtr(2024, 6, 30), 800, true),
			tenancyFor(t, unitA, date(2024, 7, 1), datePtr(2025, 6, 30), 820, true),
		}},
		// Maintenance with a current tenancy: maintenance takes priority
		{Unit: unitB, Tenancies: []Tenancy{
			tenancyFor(t, unitB, date(2024, 1, 1), datePtr(2024, 12, 31), 800, true),
		}},
		// Future tenancy beyond the horizon: available, not upcoming
		{Unit: unitC, Tenancies: []Tenancy{
			tenancyFor(t, unitC, date(2024, 9, 1), datePtr(2025, 8, 31), 800, true),
		}},
		{Unit: unitD},
	}

	report, _ := AggregateOccupancy(buildingID, units, today, DefaultUpcomingHorizonDays)

	assert.Equal(t, report.TotalUnits, report.Occupied+report.Upcoming+report.Maintenance+report.Available)
	assert.Equal(t, 1, report.Occupied)
	assert.Equal(t, 1, report.Maintenance)
	assert.Equal(t, 0, report.Upcoming)
	assert.Equal(t, 2, report.Available)

	// Every unit appears on exactly one report line
	assert.Len(t, report.Units, 4)
}

func TestAggregateOccupancy_UpcomingHorizonBoundary(t *testing.T) {
	buildingID := uuid.New()
	today := date(2024, 6, 1)

	onBoundary := newUnit(t, buildingID, "boundary", 1000)
	pastBoundary := newUnit(t, buildingID, "beyond", 1000)

	units := []UnitWithTenancies{
		// Starts exactly today+30: still upcoming
		{Unit: onBoundary, Tenancies: []Tenancy{
			tenancyFor(t, onBoundary, date(2024, 7, 1), datePtr(2025, 6, 30), 1000, true),
		}},
		// Starts today+31: available
		{Unit: pastBoundary, Tenancies: []Tenancy{
			tenancyFor(t, pastBoundary, date(2024, 7, 2), datePtr(2025, 6, 30), 1000, true),
		}},
	}

	report, _ := AggregateOccupancy(buildingID, units, today, 30)

	assert.Equal(t, 1, report.Upcoming)
	assert.Equal(t, 1, report.Available)
	assert.Equal(t, UnitUpcoming, report.Units[0].Status)
	assert.Equal(t, UnitAvailable, report.Units[1].Status)
}

func TestAggregateOccupancy_VacancyAge(t *testing.T) {
	buildingID := uuid.New()
	today := date(2024, 6, 15)

	shortVacant := newUnit(t, buildingID, "short", 900)
	longVacant := newUnit(t, buildingID, "long", 900)

	shortPast := tenancyFor(t, shortVacant, date(2023, 6, 1), datePtr(2024, 5, 31), 900, true)
	require.NoError(t, shortPast.Expire(today))
	longPast := tenancyFor(t, longVacant, date(2023, 1, 1), datePtr(2024, 3, 31), 900, true)
	require.NoError(t, longPast.Expire(today))

	units := []UnitWithTenancies{
		{Unit: shortVacant, Tenancies: []Tenancy{shortPast}},
		{Unit: longVacant, Tenancies: []Tenancy{longPast}},
	}

	report, _ := AggregateOccupancy(buildingID, units, today, 30)

	assert.Equal(t, 15, report.Units[0].VacantDays)
	assert.False(t, report.Units[0].LongTermVacant)

	assert.Equal(t, 76, report.Units[1].VacantDays)
	assert.True(t, report.Units[1].LongTermVacant)
	assert.Equal(t, 1, report.LongTermVacant)

	require.NotNil(t, report.LongestVacantUnit)
	assert.Equal(t, longVacant.ID, *report.LongestVacantUnit)
	assert.Equal(t, 76, report.LongestVacantDays)
}

func TestAggregateOccupancy_EmptyBuilding(t *testing.T) {
	report, warnings := AggregateOccupancy(uuid.New(), nil, date(2024, 6, 15), 30)

	assert.Empty(t, warnings)
	assert.Equal(t, 0, report.TotalUnits)
	assert.True(t, report.OccupancyRate.IsZero())
	assert.True(t, report.UtilizationRate.IsZero())
	assert.True(t, report.RevenueUtilization.IsZero())
}

func TestAggregateOccupancy_IntegrityWarnings(t *testing.T) {
	buildingID := uuid.New()
	unit := newUnit(t, buildingID, "broken", 1000)

	broken := tenancyFor(t, unit, date(2024, 1, 1), datePtr(2024, 12, 31), 1000, true)
	broken.EndDate = nil // stored record drifted out of shape

	report, warnings := AggregateOccupancy(buildingID, []UnitWithTenancies{{Unit: unit, Tenancies: []Tenancy{broken}}}, date(2024, 6, 15), 30)

	require.Len(t, warnings, 1)
	assert.Equal(t, broken.ID, warnings[0].TenancyID)
	// Degraded to pending: the unit reads as available, not occupied
	assert.Equal(t, 1, report.Available)
	assert.Equal(t, 0, report.Occupied)
}
