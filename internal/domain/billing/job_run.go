package billing

import (
	"strings"
	"time"

	"github.com/propertyhub/backend/internal/domain/shared"
)

// JobType identifies which scheduled job a run record belongs to
type JobType string

const (
	JobTypeRentCycleGeneration JobType = "RENT_CYCLE_GENERATION"
	JobTypeOverdueSweep        JobType = "OVERDUE_SWEEP"
	JobTypeTenancyExpiry       JobType = "TENANCY_EXPIRY"
)

// JobRunStatus is the lifecycle of one job execution.
// Transitions: STARTED -> COMPLETED or STARTED -> FAILED; nothing else.
type JobRunStatus string

const (
	JobRunStatusStarted   JobRunStatus = "STARTED"
	JobRunStatusCompleted JobRunStatus = "COMPLETED"
	JobRunStatusFailed    JobRunStatus = "FAILED"
)

// MaxRecordedErrors bounds how many per-item error messages a run record
// keeps; the rest are counted but not stored.
const MaxRecordedErrors = 10

// JobRun is the append-only audit record of one batch job execution
type JobRun struct {
	shared.BaseEntity
	JobType      JobType      `json:"job_type"`
	PeriodMonth  int          `json:"period_month"`
	PeriodYear   int          `json:"period_year"`
	Status       JobRunStatus `json:"status"`
	Processed    int          `json:"processed"`
	Created      int          `json:"created"`
	Failed       int          `json:"failed"`
	ErrorMessage string       `json:"error_message"`
	StartedAt    time.Time    `json:"started_at"`
	FinishedAt   *time.Time   `json:"finished_at"`
}

// NewJobRun opens a run record in STARTED status
func NewJobRun(jobType JobType, month, year int, startedAt time.Time) *JobRun {
	return &JobRun{
		BaseEntity:  shared.NewBaseEntity(),
		JobType:     jobType,
		PeriodMonth: month,
		PeriodYear:  year,
		Status:      JobRunStatusStarted,
		StartedAt:   startedAt,
	}
}

// Complete closes the run with its counters and the first
// MaxRecordedErrors error messages
func (j *JobRun) Complete(processed, created, failed int, errs []string, at time.Time) {
	j.Status = JobRunStatusCompleted
	j.Processed = processed
	j.Created = created
	j.Failed = failed
	j.ErrorMessage = joinErrors(errs)
	j.FinishedAt = &at
	j.Touch(at)
}

// Fail closes the run as failed with the run-level error
func (j *JobRun) Fail(message string, at time.Time) {
	j.Status = JobRunStatusFailed
	j.ErrorMessage = message
	j.FinishedAt = &at
	j.Touch(at)
}

func joinErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) > MaxRecordedErrors {
		errs = errs[:MaxRecordedErrors]
	}
	return strings.Join(errs, "; ")
}
