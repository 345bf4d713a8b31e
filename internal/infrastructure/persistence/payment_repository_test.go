package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/domain/shared/valueobject"
	"github.com/propertyhub/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBillingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.PaymentModel{}, &models.RentCycleModel{}, &models.JobRunModel{})
	require.NoError(t, err)

	return db
}

func newRentPayment(t *testing.T, tenancyID, buildingID uuid.UUID, amount float64, dueDate time.Time) *billing.Payment {
	t.Helper()
	payment, err := billing.NewRentPayment(tenancyID, buildingID, valueobject.NewMoneyUSDFromFloat(amount), dueDate)
	require.NoError(t, err)
	return payment
}

func TestPaymentRepository_CreateAndFind(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormPaymentRepository(db, time.UTC)
	ctx := context.Background()

	payment := newRentPayment(t, uuid.New(), uuid.New(), 1500, testDate(2024, time.June, 1))
	require.NoError(t, repo.Create(ctx, payment))

	found, err := repo.FindByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, found.ID)
	assert.Equal(t, billing.PaymentTypeRent, found.PaymentType)
	assert.Equal(t, billing.PaymentStatusPending, found.Status)
	assert.True(t, payment.Amount.Equal(found.Amount))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPaymentRepository_ExistsRentForPeriod(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormPaymentRepository(db, time.UTC)
	ctx := context.Background()
	tenancyID := uuid.New()

	payment := newRentPayment(t, tenancyID, uuid.New(), 1500, testDate(2024, time.June, 15))
	require.NoError(t, repo.Create(ctx, payment))

	exists, err := repo.ExistsRentForPeriod(ctx, tenancyID, 6, 2024)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsRentForPeriod(ctx, tenancyID, 7, 2024)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsRentForPeriod(ctx, uuid.New(), 6, 2024)
	require.NoError(t, err)
	assert.False(t, exists)

	t.Run("non-rent payments do not count", func(t *testing.T) {
		deposit, err := billing.NewPayment(tenancyID, uuid.New(), billing.PaymentTypeDeposit, valueobject.NewMoneyUSDFromFloat(3000), testDate(2024, time.July, 1))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, deposit))

		exists, err := repo.ExistsRentForPeriod(ctx, tenancyID, 7, 2024)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestPaymentRepository_FindUnsettledDueBefore(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormPaymentRepository(db, time.UTC)
	ctx := context.Background()

	overdue := newRentPayment(t, uuid.New(), uuid.New(), 1500, testDate(2024, time.May, 1))
	dueToday := newRentPayment(t, uuid.New(), uuid.New(), 1500, testDate(2024, time.June, 1))
	paid := newRentPayment(t, uuid.New(), uuid.New(), 1500, testDate(2024, time.April, 1))
	require.NoError(t, paid.MarkPaid(testDate(2024, time.April, 2)))

	for _, payment := range []*billing.Payment{overdue, dueToday, paid} {
		require.NoError(t, repo.Create(ctx, payment))
	}

	unsettled, err := repo.FindUnsettledDueBefore(ctx, testDate(2024, time.June, 1))
	require.NoError(t, err)
	require.Len(t, unsettled, 1)
	assert.Equal(t, overdue.ID, unsettled[0].ID, "a payment due today is not yet overdue")
}

func TestPaymentRepository_ListFilters(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormPaymentRepository(db, time.UTC)
	ctx := context.Background()
	buildingID := uuid.New()
	tenancyID := uuid.New()

	may := newRentPayment(t, tenancyID, buildingID, 1500, testDate(2024, time.May, 1))
	june := newRentPayment(t, tenancyID, buildingID, 1500, testDate(2024, time.June, 1))
	other := newRentPayment(t, uuid.New(), uuid.New(), 900, testDate(2024, time.June, 1))
	for _, payment := range []*billing.Payment{may, june, other} {
		require.NoError(t, repo.Create(ctx, payment))
	}

	t.Run("filters by building", func(t *testing.T) {
		payments, err := repo.List(ctx, billing.PaymentFilter{BuildingID: &buildingID})
		require.NoError(t, err)
		assert.Len(t, payments, 2)
	})

	t.Run("filters by due date range", func(t *testing.T) {
		from := testDate(2024, time.June, 1)
		to := testDate(2024, time.June, 30)
		payments, err := repo.List(ctx, billing.PaymentFilter{TenancyID: &tenancyID, DueFrom: &from, DueTo: &to})
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, june.ID, payments[0].ID)
	})

	t.Run("orders by due date ascending", func(t *testing.T) {
		payments, err := repo.List(ctx, billing.PaymentFilter{TenancyID: &tenancyID})
		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.Equal(t, may.ID, payments[0].ID)
		assert.Equal(t, june.ID, payments[1].ID)
	})
}

func TestPaymentRepository_SaveUpdatesStatus(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormPaymentRepository(db, time.UTC)
	ctx := context.Background()

	payment := newRentPayment(t, uuid.New(), uuid.New(), 1500, testDate(2024, time.June, 1))
	require.NoError(t, repo.Create(ctx, payment))

	require.NoError(t, payment.MarkPaid(testDate(2024, time.June, 1)))
	require.NoError(t, repo.Save(ctx, payment))

	found, err := repo.FindByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentStatusPaid, found.Status)
	require.NotNil(t, found.PaymentDate)
}
