package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentType represents what a payment is for
type PaymentType string

const (
	PaymentTypeRent        PaymentType = "RENT"
	PaymentTypeDeposit     PaymentType = "DEPOSIT"
	PaymentTypeMaintenance PaymentType = "MAINTENANCE"
	PaymentTypeLateFee     PaymentType = "LATE_FEE"
	PaymentTypeOther       PaymentType = "OTHER"
)

// IsValid checks if the payment type is valid
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeRent, PaymentTypeDeposit, PaymentTypeMaintenance, PaymentTypeLateFee, PaymentTypeOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentType
func (t PaymentType) String() string {
	return string(t)
}

// PaymentStatus represents the settlement status of a payment
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusOverdue PaymentStatus = "OVERDUE"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusOverdue, PaymentStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsSettled returns true once no further collection is expected
func (s PaymentStatus) IsSettled() bool {
	return s == PaymentStatusPaid
}

// Payment represents a single money obligation of a tenancy. Rent payments
// are created exclusively by the rent cycle generator and are never
// regenerated for a (tenancy, period) pair once they exist.
type Payment struct {
	shared.BaseAggregateRoot
	TenancyID   uuid.UUID       `json:"tenancy_id"`
	BuildingID  uuid.UUID       `json:"building_id"`
	PaymentType PaymentType     `json:"payment_type"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	PaymentDate *time.Time      `json:"payment_date"`
	Status      PaymentStatus   `json:"status"`
	LateFee     decimal.Decimal `json:"late_fee"`
	Remark      string          `json:"remark"`
}

// NewPayment creates a payment in PENDING status
func NewPayment(tenancyID, buildingID uuid.UUID, paymentType PaymentType, amount valueobject.Money, dueDate time.Time) (*Payment, error) {
	if tenancyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANCY", "Tenancy ID cannot be empty")
	}
	if buildingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUILDING", "Building ID cannot be empty")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Payment type is not valid")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date is required")
	}

	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenancyID:         tenancyID,
		BuildingID:        buildingID,
		PaymentType:       paymentType,
		Amount:            amount.Amount(),
		DueDate:           shared.Midnight(dueDate),
		Status:            PaymentStatusPending,
		LateFee:           decimal.Zero,
	}, nil
}

// NewRentPayment creates the rent payment for one billing cycle
func NewRentPayment(tenancyID, buildingID uuid.UUID, amount valueobject.Money, dueDate time.Time) (*Payment, error) {
	return NewPayment(tenancyID, buildingID, PaymentTypeRent, amount, dueDate)
}

// MarkPaid settles the payment in full
func (p *Payment) MarkPaid(on time.Time) error {
	if p.Status == PaymentStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Payment is already settled")
	}
	if p.Status == PaymentStatusFailed {
		return shared.NewDomainError("INVALID_STATE", "Cannot settle a failed payment")
	}

	p.Status = PaymentStatusPaid
	p.PaymentDate = &on
	p.Touch(on)
	p.IncrementVersion()
	return nil
}

// MarkPartial records that part of the amount has been received.
// Reconciliation beyond the status flag is out of scope.
func (p *Payment) MarkPartial(on time.Time) error {
	if p.Status.IsSettled() || p.Status == PaymentStatusFailed {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark %s payment partial", p.Status))
	}

	p.Status = PaymentStatusPartial
	p.Touch(on)
	p.IncrementVersion()
	return nil
}

// MarkOverdue flips an unsettled payment past its due date to overdue.
// A payment due exactly today is not overdue; the boundary is inclusive,
// mirroring the tenancy classifier.
func (p *Payment) MarkOverdue(today time.Time) error {
	if p.Status != PaymentStatusPending && p.Status != PaymentStatusPartial {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark %s payment overdue", p.Status))
	}
	if p.DaysPastDue(today) <= 0 {
		return shared.NewDomainError("NOT_PAST_DUE", "Payment due date has not passed")
	}

	p.Status = PaymentStatusOverdue
	p.Touch(today)
	p.IncrementVersion()
	return nil
}

// Fail marks the payment as failed (e.g. charge rejected upstream)
func (p *Payment) Fail(reason string) error {
	if p.Status.IsSettled() {
		return shared.NewDomainError("INVALID_STATE", "Cannot fail a settled payment")
	}

	p.Status = PaymentStatusFailed
	p.Remark = reason
	p.Touch(time.Now())
	p.IncrementVersion()
	return nil
}

// ApplyLateFee adds a late fee on top of the amount due
func (p *Payment) ApplyLateFee(fee valueobject.Money) error {
	if !fee.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Late fee must be positive")
	}
	if p.Status.IsSettled() || p.Status == PaymentStatusFailed {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add late fee to %s payment", p.Status))
	}

	p.LateFee = p.LateFee.Add(fee.Amount())
	p.Touch(time.Now())
	p.IncrementVersion()
	return nil
}

// DaysPastDue returns how many whole days the payment is past its due date
// relative to today; zero or negative means not yet due.
func (p *Payment) DaysPastDue(today time.Time) int {
	return shared.DaysBetween(p.DueDate, today)
}

// IsOutstanding returns true while the payment still awaits collection
func (p *Payment) IsOutstanding() bool {
	return !p.Status.IsSettled()
}

// GetAmountMoney returns the amount due as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(p.Amount)
}

// TotalDue returns amount plus accumulated late fees
func (p *Payment) TotalDue() decimal.Decimal {
	return p.Amount.Add(p.LateFee)
}

// DueInPeriod reports whether the payment's due date falls in the given
// calendar month and year
func (p *Payment) DueInPeriod(month time.Month, year int) bool {
	return p.DueDate.Month() == month && p.DueDate.Year() == year
}
