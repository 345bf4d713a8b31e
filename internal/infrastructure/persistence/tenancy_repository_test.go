package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/leasing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/domain/shared/valueobject"
	"github.com/propertyhub/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLeasingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.UnitModel{}, &models.TenancyModel{})
	require.NoError(t, err)

	return db
}

func testDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newExecutedTenancy(t *testing.T, unitID uuid.UUID, start, end time.Time) *leasing.Tenancy {
	t.Helper()
	tenancy, err := leasing.NewTenancy(unitID, uuid.New(), uuid.New(), start, &end, valueobject.NewMoneyUSDFromFloat(1200))
	require.NoError(t, err)
	require.NoError(t, tenancy.Execute(time.Now()))
	return tenancy
}

func TestTenancyRepository_SaveAndFind(t *testing.T) {
	db := setupLeasingTestDB(t)
	repo := NewGormTenancyRepository(db)
	ctx := context.Background()

	t.Run("round-trips a tenancy", func(t *testing.T) {
		tenancy := newExecutedTenancy(t, uuid.New(), testDate(2024, time.January, 1), testDate(2024, time.December, 31))
		require.NoError(t, repo.Save(ctx, tenancy))

		found, err := repo.FindByID(ctx, tenancy.ID)
		require.NoError(t, err)
		assert.Equal(t, tenancy.ID, found.ID)
		assert.Equal(t, tenancy.UnitID, found.UnitID)
		assert.Equal(t, leasing.AgreementStatusExecuted, found.AgreementStatus)
		require.NotNil(t, found.EndDate)
		assert.True(t, found.EndDate.Equal(testDate(2024, time.December, 31)))
		assert.True(t, tenancy.RentAmount.Equal(found.RentAmount))
	})

	t.Run("unknown id returns not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestTenancyRepository_FindActiveOn(t *testing.T) {
	db := setupLeasingTestDB(t)
	repo := NewGormTenancyRepository(db)
	ctx := context.Background()

	covering := newExecutedTenancy(t, uuid.New(), testDate(2024, time.January, 1), testDate(2024, time.December, 31))
	endsOnDay := newExecutedTenancy(t, uuid.New(), testDate(2024, time.January, 1), testDate(2024, time.June, 1))
	ended := newExecutedTenancy(t, uuid.New(), testDate(2023, time.January, 1), testDate(2023, time.December, 31))
	future := newExecutedTenancy(t, uuid.New(), testDate(2025, time.January, 1), testDate(2025, time.December, 31))

	end := testDate(2024, time.October, 31)
	pending, err := leasing.NewTenancy(uuid.New(), uuid.New(), uuid.New(), testDate(2024, time.January, 1), &end, valueobject.NewMoneyUSDFromFloat(900))
	require.NoError(t, err)

	// executed with no end date: integrity violation, still returned
	broken := newExecutedTenancy(t, uuid.New(), testDate(2024, time.January, 1), testDate(2024, time.December, 31))
	broken.EndDate = nil

	for _, tenancy := range []*leasing.Tenancy{covering, endsOnDay, ended, future, pending, broken} {
		require.NoError(t, repo.Save(ctx, tenancy))
	}

	active, err := repo.FindActiveOn(ctx, testDate(2024, time.June, 1))
	require.NoError(t, err)

	ids := make(map[uuid.UUID]bool)
	for _, tenancy := range active {
		ids[tenancy.ID] = true
	}
	assert.Len(t, active, 3)
	assert.True(t, ids[covering.ID])
	assert.True(t, ids[endsOnDay.ID], "tenancy ending on the reference day is still active")
	assert.True(t, ids[broken.ID], "open end date counts as covering the day")
	assert.False(t, ids[ended.ID])
	assert.False(t, ids[future.ID])
	assert.False(t, ids[pending.ID])
}

func TestTenancyRepository_FindExecutedOverlapping(t *testing.T) {
	db := setupLeasingTestDB(t)
	repo := NewGormTenancyRepository(db)
	ctx := context.Background()
	unitID := uuid.New()

	existing := newExecutedTenancy(t, unitID, testDate(2024, time.March, 1), testDate(2024, time.August, 31))
	otherUnit := newExecutedTenancy(t, uuid.New(), testDate(2024, time.March, 1), testDate(2024, time.August, 31))
	require.NoError(t, repo.Save(ctx, existing))
	require.NoError(t, repo.Save(ctx, otherUnit))

	t.Run("intersecting window is returned", func(t *testing.T) {
		overlaps, err := repo.FindExecutedOverlapping(ctx, unitID, testDate(2024, time.August, 31), testDate(2025, time.February, 28))
		require.NoError(t, err)
		require.Len(t, overlaps, 1)
		assert.Equal(t, existing.ID, overlaps[0].ID)
	})

	t.Run("adjacent window does not overlap", func(t *testing.T) {
		overlaps, err := repo.FindExecutedOverlapping(ctx, unitID, testDate(2024, time.September, 1), testDate(2025, time.February, 28))
		require.NoError(t, err)
		assert.Empty(t, overlaps)
	})
}

func TestTenancyRepository_FindExpiredCandidates(t *testing.T) {
	db := setupLeasingTestDB(t)
	repo := NewGormTenancyRepository(db)
	ctx := context.Background()

	past := newExecutedTenancy(t, uuid.New(), testDate(2023, time.January, 1), testDate(2023, time.December, 31))
	endsToday := newExecutedTenancy(t, uuid.New(), testDate(2024, time.January, 1), testDate(2024, time.June, 15))
	running := newExecutedTenancy(t, uuid.New(), testDate(2024, time.January, 1), testDate(2024, time.December, 31))
	require.NoError(t, repo.Save(ctx, past))
	require.NoError(t, repo.Save(ctx, endsToday))
	require.NoError(t, repo.Save(ctx, running))

	candidates, err := repo.FindExpiredCandidates(ctx, testDate(2024, time.June, 15))
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, past.ID, candidates[0].ID, "a tenancy ending today has not expired yet")
}

func TestUnitRepository_ListWithTenancies(t *testing.T) {
	db := setupLeasingTestDB(t)
	unitRepo := NewGormUnitRepository(db)
	tenancyRepo := NewGormTenancyRepository(db)
	ctx := context.Background()
	buildingID := uuid.New()

	unitA, err := leasing.NewUnit(buildingID, "A-101", valueobject.NewMoneyUSDFromFloat(1000), valueobject.NewMoneyUSDFromFloat(2000))
	require.NoError(t, err)
	unitB, err := leasing.NewUnit(buildingID, "A-102", valueobject.NewMoneyUSDFromFloat(1100), valueobject.NewMoneyUSDFromFloat(2200))
	require.NoError(t, err)
	elsewhere, err := leasing.NewUnit(uuid.New(), "B-201", valueobject.NewMoneyUSDFromFloat(800), valueobject.NewMoneyUSDFromFloat(1600))
	require.NoError(t, err)
	for _, unit := range []*leasing.Unit{unitA, unitB, elsewhere} {
		require.NoError(t, unitRepo.Save(ctx, unit))
	}

	tenancy := newExecutedTenancy(t, unitA.ID, testDate(2024, time.January, 1), testDate(2024, time.December, 31))
	require.NoError(t, tenancyRepo.Save(ctx, tenancy))

	result, err := unitRepo.ListWithTenancies(ctx, buildingID)
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "A-101", result[0].Unit.Name)
	require.Len(t, result[0].Tenancies, 1)
	assert.Equal(t, tenancy.ID, result[0].Tenancies[0].ID)

	assert.Equal(t, "A-102", result[1].Unit.Name)
	assert.Empty(t, result[1].Tenancies)
}
