package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PaymentFilter narrows payment listings for reporting
type PaymentFilter struct {
	BuildingID *uuid.UUID
	TenancyID  *uuid.UUID
	Status     *PaymentStatus
	Type       *PaymentType
	DueFrom    *time.Time
	DueTo      *time.Time
}

// PaymentRepository is the persistence contract for payments
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]Payment, error)
	// ExistsRentForPeriod reports whether a rent-type payment already
	// exists for the tenancy with a due date in the given month/year.
	// One half of the dual idempotency check.
	ExistsRentForPeriod(ctx context.Context, tenancyID uuid.UUID, month, year int) (bool, error)
	// FindUnsettledDueBefore returns pending/partial payments whose due
	// date is strictly before the given day, for the overdue sweep
	FindUnsettledDueBefore(ctx context.Context, day time.Time) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error
}

// RentCycleRepository is the persistence contract for rent cycles
type RentCycleRepository interface {
	Create(ctx context.Context, cycle *RentCycle) error
	FindByID(ctx context.Context, id uuid.UUID) (*RentCycle, error)
	FindByTenancyAndPeriod(ctx context.Context, tenancyID uuid.UUID, month, year int) (*RentCycle, error)
	// ExistsForPeriod reports whether a cycle record already exists for
	// (tenancy, month, year). The other half of the dual idempotency check.
	ExistsForPeriod(ctx context.Context, tenancyID uuid.UUID, month, year int) (bool, error)
	ListByPeriod(ctx context.Context, month, year int) ([]RentCycle, error)
	Save(ctx context.Context, cycle *RentCycle) error
}

// JobRunRepository is the persistence contract for the job run audit trail.
// Records are append-then-finalize: Save inserts the STARTED row and
// updates it in place when the run closes.
type JobRunRepository interface {
	Save(ctx context.Context, run *JobRun) error
	FindByID(ctx context.Context, id uuid.UUID) (*JobRun, error)
	ListByType(ctx context.Context, jobType JobType, limit int) ([]JobRun, error)
}
