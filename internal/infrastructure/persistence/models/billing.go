package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentModel is the GORM model for payments
type PaymentModel struct {
	AggregateModel
	TenancyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	BuildingID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentType string          `gorm:"type:varchar(20);not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DueDate     time.Time       `gorm:"not null;index"`
	PaymentDate *time.Time
	Status      string          `gorm:"type:varchar(20);not null;index"`
	LateFee     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Remark      string          `gorm:"type:varchar(500)"`
}

// TableName specifies the table name for PaymentModel
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts PaymentModel to domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TenancyID:         m.TenancyID,
		BuildingID:        m.BuildingID,
		PaymentType:       billing.PaymentType(m.PaymentType),
		Amount:            m.Amount,
		DueDate:           m.DueDate,
		PaymentDate:       m.PaymentDate,
		Status:            billing.PaymentStatus(m.Status),
		LateFee:           m.LateFee,
		Remark:            m.Remark,
	}
}

// FromDomain populates PaymentModel from domain Payment
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.TenancyID = p.TenancyID
	m.BuildingID = p.BuildingID
	m.PaymentType = p.PaymentType.String()
	m.Amount = p.Amount
	m.DueDate = p.DueDate
	m.PaymentDate = p.PaymentDate
	m.Status = p.Status.String()
	m.LateFee = p.LateFee
	m.Remark = p.Remark
}

// RentCycleModel is the GORM model for monthly billing cycle records.
// The unique index on (tenancy_id, cycle_month, cycle_year) is the hard
// backstop for billing idempotency.
type RentCycleModel struct {
	AggregateModel
	TenancyID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_rent_cycles_tenancy_period"`
	CycleMonth    int             `gorm:"not null;uniqueIndex:idx_rent_cycles_tenancy_period"`
	CycleYear     int             `gorm:"not null;uniqueIndex:idx_rent_cycles_tenancy_period"`
	RentAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DueDate       time.Time       `gorm:"not null"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;index"`
}

// TableName specifies the table name for RentCycleModel
func (RentCycleModel) TableName() string {
	return "rent_cycles"
}

// ToDomain converts RentCycleModel to domain RentCycle
func (m *RentCycleModel) ToDomain() *billing.RentCycle {
	return &billing.RentCycle{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TenancyID:         m.TenancyID,
		CycleMonth:        m.CycleMonth,
		CycleYear:         m.CycleYear,
		RentAmount:        m.RentAmount,
		DueDate:           m.DueDate,
		PaymentStatus:     billing.PaymentStatus(m.PaymentStatus),
	}
}

// FromDomain populates RentCycleModel from domain RentCycle
func (m *RentCycleModel) FromDomain(rc *billing.RentCycle) {
	m.FromDomainAggregateRoot(rc.BaseAggregateRoot)
	m.TenancyID = rc.TenancyID
	m.CycleMonth = rc.CycleMonth
	m.CycleYear = rc.CycleYear
	m.RentAmount = rc.RentAmount
	m.DueDate = rc.DueDate
	m.PaymentStatus = rc.PaymentStatus.String()
}

// JobRunModel is the GORM model for the batch job audit trail
type JobRunModel struct {
	BaseModel
	JobType      string `gorm:"type:varchar(40);not null;index"`
	PeriodMonth  int    `gorm:"not null"`
	PeriodYear   int    `gorm:"not null"`
	Status       string `gorm:"type:varchar(20);not null;index"`
	Processed    int    `gorm:"not null;default:0"`
	Created      int    `gorm:"not null;default:0"`
	Failed       int    `gorm:"not null;default:0"`
	ErrorMessage string `gorm:"type:text"`
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// TableName specifies the table name for JobRunModel
func (JobRunModel) TableName() string {
	return "job_runs"
}

// ToDomain converts JobRunModel to domain JobRun
func (m *JobRunModel) ToDomain() *billing.JobRun {
	return &billing.JobRun{
		BaseEntity:   shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		JobType:      billing.JobType(m.JobType),
		PeriodMonth:  m.PeriodMonth,
		PeriodYear:   m.PeriodYear,
		Status:       billing.JobRunStatus(m.Status),
		Processed:    m.Processed,
		Created:      m.Created,
		Failed:       m.Failed,
		ErrorMessage: m.ErrorMessage,
		StartedAt:    m.StartedAt,
		FinishedAt:   m.FinishedAt,
	}
}

// FromDomain populates JobRunModel from domain JobRun
func (m *JobRunModel) FromDomain(j *billing.JobRun) {
	m.FromDomainBaseEntity(j.BaseEntity)
	m.JobType = string(j.JobType)
	m.PeriodMonth = j.PeriodMonth
	m.PeriodYear = j.PeriodYear
	m.Status = string(j.Status)
	m.Processed = j.Processed
	m.Created = j.Created
	m.Failed = j.Failed
	m.ErrorMessage = j.ErrorMessage
	m.StartedAt = j.StartedAt
	m.FinishedAt = j.FinishedAt
}

// PaymentModelFromDomain creates a PaymentModel from domain Payment
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	var m PaymentModel
	m.FromDomain(p)
	return &m
}

// RentCycleModelFromDomain creates a RentCycleModel from domain RentCycle
func RentCycleModelFromDomain(rc *billing.RentCycle) *RentCycleModel {
	var m RentCycleModel
	m.FromDomain(rc)
	return &m
}

// JobRunModelFromDomain creates a JobRunModel from domain JobRun
func JobRunModelFromDomain(j *billing.JobRun) *JobRunModel {
	var m JobRunModel
	m.FromDomain(j)
	return &m
}
