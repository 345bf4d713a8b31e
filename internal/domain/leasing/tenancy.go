package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AgreementStatus represents the contractual status of a tenancy agreement
type AgreementStatus string

const (
	AgreementStatusPending    AgreementStatus = "PENDING"    // Signed intent, not yet executed
	AgreementStatusExecuted   AgreementStatus = "EXECUTED"   // In force for its date window
	AgreementStatusExpired    AgreementStatus = "EXPIRED"    // Ran to its natural end date
	AgreementStatusTerminated AgreementStatus = "TERMINATED" // Ended early
)

// IsValid checks if the status is a valid AgreementStatus
func (s AgreementStatus) IsValid() bool {
	switch s {
	case AgreementStatusPending, AgreementStatusExecuted, AgreementStatusExpired, AgreementStatusTerminated:
		return true
	}
	return false
}

// String returns the string representation of AgreementStatus
func (s AgreementStatus) String() string {
	return string(s)
}

// IsEnded returns true if the agreement has been closed out
func (s AgreementStatus) IsEnded() bool {
	return s == AgreementStatusExpired || s == AgreementStatusTerminated
}

// TenancyState is the temporal classification of a tenancy relative to a
// reference date. It is derived, never stored.
type TenancyState string

const (
	TenancyStateCurrent TenancyState = "CURRENT"
	TenancyStateFuture  TenancyState = "FUTURE"
	TenancyStatePast    TenancyState = "PAST"
	TenancyStatePending TenancyState = "PENDING"
)

// String returns the string representation of TenancyState
func (s TenancyState) String() string {
	return string(s)
}

// Tenancy represents a lease agreement between a tenant and a unit for a
// date range. Executed tenancies are never hard-deleted; they are closed out
// through the expired/terminated statuses.
type Tenancy struct {
	shared.BaseAggregateRoot
	UnitID          uuid.UUID       `json:"unit_id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	BuildingID      uuid.UUID       `json:"building_id"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         *time.Time      `json:"end_date"` // Nullable only before execution
	RentAmount      decimal.Decimal `json:"rent_amount"`
	AgreementStatus AgreementStatus `json:"agreement_status"`
	MoveInDate      *time.Time      `json:"move_in_date"`
	MoveOutDate     *time.Time      `json:"move_out_date"`
	ExecutedAt      *time.Time      `json:"executed_at"`
	TerminatedAt    *time.Time      `json:"terminated_at"`
	TerminateReason string          `json:"terminate_reason"`
}

// NewTenancy creates a tenancy in PENDING status, as written at lease signing.
// The end date may still be open at this point.
func NewTenancy(unitID, tenantID, buildingID uuid.UUID, startDate time.Time, endDate *time.Time, rentAmount valueobject.Money) (*Tenancy, error) {
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if buildingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUILDING", "Building ID cannot be empty")
	}
	if startDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_START_DATE", "Start date is required")
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, shared.NewDomainError("INVALID_DATE_WINDOW", "End date cannot be before start date")
	}
	if !rentAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_RENT", "Rent amount must be positive")
	}

	start := shared.Midnight(startDate)
	var end *time.Time
	if endDate != nil {
		e := shared.Midnight(*endDate)
		end = &e
	}

	return &Tenancy{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UnitID:            unitID,
		TenantID:          tenantID,
		BuildingID:        buildingID,
		StartDate:         start,
		EndDate:           end,
		RentAmount:        rentAmount.Amount(),
		AgreementStatus:   AgreementStatusPending,
	}, nil
}

// Execute puts the agreement in force. The date window must be fully
// specified by this point; an executed tenancy without an end date is a
// data-integrity violation the classifier downgrades to pending.
func (t *Tenancy) Execute(at time.Time) error {
	if t.AgreementStatus != AgreementStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only a pending tenancy can be executed")
	}
	if t.EndDate == nil {
		return shared.NewDomainError("MISSING_END_DATE", "End date must be set before execution")
	}
	if t.EndDate.Before(t.StartDate) {
		return shared.NewDomainError("INVALID_DATE_WINDOW", "End date cannot be before start date")
	}

	t.AgreementStatus = AgreementStatusExecuted
	t.ExecutedAt = &at
	t.Touch(at)
	t.IncrementVersion()
	return nil
}

// Terminate ends the agreement early
func (t *Tenancy) Terminate(at time.Time, reason string) error {
	if t.AgreementStatus != AgreementStatusExecuted {
		return shared.NewDomainError("INVALID_STATE", "Only an executed tenancy can be terminated")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Termination reason is required")
	}

	end := shared.Midnight(at)
	t.AgreementStatus = AgreementStatusTerminated
	t.EndDate = &end
	t.TerminatedAt = &at
	t.TerminateReason = reason
	t.Touch(at)
	t.IncrementVersion()
	return nil
}

// Expire closes out an executed tenancy whose end date has passed
func (t *Tenancy) Expire(at time.Time) error {
	if t.AgreementStatus != AgreementStatusExecuted {
		return shared.NewDomainError("INVALID_STATE", "Only an executed tenancy can expire")
	}
	if t.EndDate == nil || !t.EndDate.Before(shared.Midnight(at)) {
		return shared.NewDomainError("INVALID_STATE", "Tenancy end date has not passed")
	}

	t.AgreementStatus = AgreementStatusExpired
	t.Touch(at)
	t.IncrementVersion()
	return nil
}

// RecordMoveIn stamps the physical move-in date
func (t *Tenancy) RecordMoveIn(date time.Time) error {
	if t.AgreementStatus != AgreementStatusExecuted {
		return shared.NewDomainError("INVALID_STATE", "Move-in requires an executed tenancy")
	}
	d := shared.Midnight(date)
	t.MoveInDate = &d
	t.Touch(time.Now())
	t.IncrementVersion()
	return nil
}

// RecordMoveOut stamps the physical move-out date
func (t *Tenancy) RecordMoveOut(date time.Time) error {
	if t.MoveInDate == nil {
		return shared.NewDomainError("INVALID_STATE", "Move-out requires a recorded move-in")
	}
	d := shared.Midnight(date)
	t.MoveOutDate = &d
	t.Touch(time.Now())
	t.IncrementVersion()
	return nil
}

// GetRentAmountMoney returns the agreed rent as Money
func (t *Tenancy) GetRentAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(t.RentAmount)
}

// HasIntegrityViolation returns true when the stored record contradicts the
// executed-tenancy invariants (missing or inverted date window). The
// classifier treats such tenancies as pending; callers log a warning.
func (t *Tenancy) HasIntegrityViolation() bool {
	if t.AgreementStatus != AgreementStatusExecuted {
		return false
	}
	return t.EndDate == nil || t.EndDate.Before(t.StartDate)
}

// ActiveOn reports whether the executed tenancy covers the given date,
// end date inclusive. An open end date counts as covering every future date;
// the billing gap check guards the integrity-violation case separately.
func (t *Tenancy) ActiveOn(date time.Time) bool {
	if t.AgreementStatus != AgreementStatusExecuted {
		return false
	}
	day := shared.Midnight(date)
	if t.StartDate.After(day) {
		return false
	}
	return t.EndDate == nil || !t.EndDate.Before(day)
}

// Classify returns the temporal state of a tenancy relative to today.
// It is a pure function: no side effects, fully deterministic given today.
//
// Rules, in order:
//   - expired/terminated agreements are always PAST
//   - an executed agreement with a broken date window is PENDING
//     (data-integrity violation, degraded rather than fatal)
//   - an executed agreement is FUTURE before its start date, PAST after its
//     end date, and CURRENT in between - both boundary days inclusive
//   - everything else (notably pending agreements) is PENDING
func Classify(t *Tenancy, today time.Time) TenancyState {
	day := shared.Midnight(today)

	switch t.AgreementStatus {
	case AgreementStatusExpired, AgreementStatusTerminated:
		return TenancyStatePast
	case AgreementStatusExecuted:
		if t.HasIntegrityViolation() {
			return TenancyStatePending
		}
		if t.StartDate.After(day) {
			return TenancyStateFuture
		}
		if t.EndDate.Before(day) {
			return TenancyStatePast
		}
		return TenancyStateCurrent
	default:
		return TenancyStatePending
	}
}
