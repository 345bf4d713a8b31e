package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type paymentFixture struct {
	service     *PaymentService
	paymentRepo *memPaymentRepo
	cycleRepo   *memCycleRepo
	runRepo     *memJobRunRepo
	lock        *memLock
}

func newPaymentFixture(t *testing.T, today time.Time) *paymentFixture {
	t.Helper()

	f := &paymentFixture{
		paymentRepo: &memPaymentRepo{},
		cycleRepo:   &memCycleRepo{},
		runRepo:     &memJobRunRepo{},
		lock:        newMemLock(),
	}
	f.service = NewPaymentService(f.paymentRepo, f.cycleRepo, f.runRepo, f.lock,
		shared.NewFixedClock(today), time.UTC, zap.NewNop())
	return f
}

func (f *paymentFixture) addRentPayment(t *testing.T, dueDate time.Time, amount float64) *billing.Payment {
	t.Helper()

	tenancyID := uuid.New()
	payment, err := billing.NewRentPayment(tenancyID, uuid.New(),
		valueobject.NewMoneyUSDFromFloat(amount), dueDate)
	require.NoError(t, err)
	f.paymentRepo.payments = append(f.paymentRepo.payments, payment)

	cycle, err := billing.NewRentCycle(tenancyID, int(dueDate.Month()), dueDate.Year(),
		valueobject.NewMoneyUSDFromFloat(amount), dueDate)
	require.NoError(t, err)
	f.cycleRepo.cycles = append(f.cycleRepo.cycles, cycle)

	return payment
}

func TestCreateCharge(t *testing.T) {
	f := newPaymentFixture(t, date(2024, 6, 10))

	payment, err := f.service.CreateCharge(context.Background(), CreateChargeInput{
		TenancyID:   uuid.New(),
		BuildingID:  uuid.New(),
		PaymentType: billing.PaymentTypeDeposit,
		Amount:      decimal.NewFromInt(3000),
		DueDate:     date(2024, 6, 15),
		Remark:      "security deposit",
	})
	require.NoError(t, err)

	assert.Equal(t, billing.PaymentStatusPending, payment.Status)
	assert.Equal(t, "security deposit", payment.Remark)
	assert.Len(t, f.paymentRepo.payments, 1)
}

func TestCreateCharge_RejectsRentType(t *testing.T) {
	f := newPaymentFixture(t, date(2024, 6, 10))

	_, err := f.service.CreateCharge(context.Background(), CreateChargeInput{
		TenancyID:   uuid.New(),
		BuildingID:  uuid.New(),
		PaymentType: billing.PaymentTypeRent,
		Amount:      decimal.NewFromInt(1500),
		DueDate:     date(2024, 6, 1),
	})
	require.Error(t, err)
	assert.Empty(t, f.paymentRepo.payments)
}

func TestMarkPaid_SyncsCycleStatus(t *testing.T) {
	f := newPaymentFixture(t, date(2024, 6, 10))
	payment := f.addRentPayment(t, date(2024, 6, 1), 1500)

	updated, err := f.service.MarkPaid(context.Background(), payment.ID, date(2024, 6, 10))
	require.NoError(t, err)

	assert.Equal(t, billing.PaymentStatusPaid, updated.Status)
	require.NotNil(t, updated.PaymentDate)
	assert.Equal(t, billing.PaymentStatusPaid, f.cycleRepo.cycles[0].PaymentStatus)
}

func TestMarkPaid_UnknownPayment(t *testing.T) {
	f := newPaymentFixture(t, date(2024, 6, 10))

	_, err := f.service.MarkPaid(context.Background(), uuid.New(), time.Time{})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestApplyLateFee(t *testing.T) {
	f := newPaymentFixture(t, date(2024, 6, 10))
	payment := f.addRentPayment(t, date(2024, 6, 1), 1500)

	updated, err := f.service.ApplyLateFee(context.Background(), payment.ID, decimal.NewFromInt(50))
	require.NoError(t, err)

	assert.Equal(t, "50", updated.LateFee.String())
	assert.Equal(t, "1550", updated.TotalDue().String())
}

func TestSweepOverdue(t *testing.T) {
	today := date(2024, 6, 10)
	f := newPaymentFixture(t, today)

	pastDue := f.addRentPayment(t, date(2024, 6, 1), 1500)
	dueToday := f.addRentPayment(t, today, 1200)
	future := f.addRentPayment(t, date(2024, 7, 1), 1800)

	result, err := f.service.SweepOverdue(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, 1, result.Examined)
	assert.Equal(t, 1, result.MarkedOver)

	got, _ := f.paymentRepo.FindByID(context.Background(), pastDue.ID)
	assert.Equal(t, billing.PaymentStatusOverdue, got.Status)
	got, _ = f.paymentRepo.FindByID(context.Background(), dueToday.ID)
	assert.Equal(t, billing.PaymentStatusPending, got.Status)
	got, _ = f.paymentRepo.FindByID(context.Background(), future.ID)
	assert.Equal(t, billing.PaymentStatusPending, got.Status)

	// Overdue status mirrored onto the cycle
	cycle, _ := f.cycleRepo.FindByTenancyAndPeriod(context.Background(), pastDue.TenancyID, 6, 2024)
	assert.Equal(t, billing.PaymentStatusOverdue, cycle.PaymentStatus)

	// Audit trail closed
	require.Len(t, f.runRepo.runs, 1)
	assert.Equal(t, billing.JobRunStatusCompleted, f.runRepo.runs[0].Status)

	// A second sweep finds nothing new
	again, err := f.service.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.MarkedOver)
}

func TestSweepOverdue_LockHeldReturnsNoOp(t *testing.T) {
	f := newPaymentFixture(t, date(2024, 6, 10))
	f.addRentPayment(t, date(2024, 6, 1), 1500)
	f.lock.held[billing.SweepLockKey] = "other-holder"

	result, err := f.service.SweepOverdue(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Equal(t, 0, result.Examined)
}
