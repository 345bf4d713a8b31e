package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RentCycle is the monthly billing period record paired one-to-one with a
// rent Payment. It exists to make "already billed this month" efficiently
// checkable and to support collection reporting independent of Payment
// status churn.
type RentCycle struct {
	shared.BaseAggregateRoot
	TenancyID     uuid.UUID       `json:"tenancy_id"`
	CycleMonth    int             `json:"cycle_month"`
	CycleYear     int             `json:"cycle_year"`
	RentAmount    decimal.Decimal `json:"rent_amount"`
	DueDate       time.Time       `json:"due_date"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewRentCycle creates the cycle record for a tenancy and period
func NewRentCycle(tenancyID uuid.UUID, month, year int, rentAmount valueobject.Money, dueDate time.Time) (*RentCycle, error) {
	if tenancyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANCY", "Tenancy ID cannot be empty")
	}
	if month < 1 || month > 12 {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Cycle month must be 1-12")
	}
	if year < 2000 || year > 2200 {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Cycle year is out of range")
	}
	if !rentAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_RENT", "Rent amount must be positive")
	}

	return &RentCycle{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenancyID:         tenancyID,
		CycleMonth:        month,
		CycleYear:         year,
		RentAmount:        rentAmount.Amount(),
		DueDate:           shared.Midnight(dueDate),
		PaymentStatus:     PaymentStatusPending,
	}, nil
}

// SyncPaymentStatus mirrors the companion payment's status onto the cycle
func (rc *RentCycle) SyncPaymentStatus(status PaymentStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Payment status is not valid")
	}
	rc.PaymentStatus = status
	rc.Touch(time.Now())
	rc.IncrementVersion()
	return nil
}

// CycleDueDate computes the due date for a billing period: the configured
// day of targetMonth/targetYear in the given timezone, clamped to the last
// day of short months (dueDay 31 in February yields the 28th/29th).
// A dueDay of zero or less defaults to the 1st.
func CycleDueDate(month, year, dueDay int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if dueDay <= 0 {
		dueDay = 1
	}
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, loc).Day()
	if dueDay > lastDay {
		dueDay = lastDay
	}
	return time.Date(year, time.Month(month), dueDay, 0, 0, 0, 0, loc)
}

// PeriodWindow returns the half-open [from, to) interval covering the
// billing period in the given timezone. Due dates are minted in the billing
// timezone, so period queries must use the same one: a 1st-of-month due
// date in UTC+8 is still the previous month as a UTC instant, and a window
// computed in UTC would miss it.
func PeriodWindow(month, year int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}
