package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/leasing"
	"github.com/shopspring/decimal"
)

// UnitModel is the GORM model for rentable units
type UnitModel struct {
	AggregateModel
	BuildingID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name            string          `gorm:"type:varchar(100);not null"`
	RentAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SecurityDeposit decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status          string          `gorm:"type:varchar(20);not null;index"`

	Tenancies []TenancyModel `gorm:"foreignKey:UnitID"`
}

// TableName specifies the table name for UnitModel
func (UnitModel) TableName() string {
	return "units"
}

// ToDomain converts UnitModel to domain Unit
func (m *UnitModel) ToDomain() *leasing.Unit {
	return &leasing.Unit{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BuildingID:        m.BuildingID,
		Name:              m.Name,
		RentAmount:        m.RentAmount,
		SecurityDeposit:   m.SecurityDeposit,
		Status:            leasing.UnitStatus(m.Status),
	}
}

// FromDomain populates UnitModel from domain Unit
func (m *UnitModel) FromDomain(u *leasing.Unit) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.BuildingID = u.BuildingID
	m.Name = u.Name
	m.RentAmount = u.RentAmount
	m.SecurityDeposit = u.SecurityDeposit
	m.Status = u.Status.String()
}

// UnitModelFromDomain creates a UnitModel from domain Unit
func UnitModelFromDomain(u *leasing.Unit) *UnitModel {
	var m UnitModel
	m.FromDomain(u)
	return &m
}

// TenancyModel is the GORM model for tenancy agreements
type TenancyModel struct {
	AggregateModel
	UnitID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	BuildingID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	StartDate       time.Time       `gorm:"not null;index"`
	EndDate         *time.Time      `gorm:"index"`
	RentAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AgreementStatus string          `gorm:"type:varchar(20);not null;index"`
	MoveInDate      *time.Time
	MoveOutDate     *time.Time
	ExecutedAt      *time.Time
	TerminatedAt    *time.Time
	TerminateReason string `gorm:"type:varchar(500)"`
}

// TableName specifies the table name for TenancyModel
func (TenancyModel) TableName() string {
	return "tenancies"
}

// ToDomain converts TenancyModel to domain Tenancy
func (m *TenancyModel) ToDomain() *leasing.Tenancy {
	return &leasing.Tenancy{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UnitID:            m.UnitID,
		TenantID:          m.TenantID,
		BuildingID:        m.BuildingID,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		RentAmount:        m.RentAmount,
		AgreementStatus:   leasing.AgreementStatus(m.AgreementStatus),
		MoveInDate:        m.MoveInDate,
		MoveOutDate:       m.MoveOutDate,
		ExecutedAt:        m.ExecutedAt,
		TerminatedAt:      m.TerminatedAt,
		TerminateReason:   m.TerminateReason,
	}
}

// FromDomain populates TenancyModel from domain Tenancy
func (m *TenancyModel) FromDomain(t *leasing.Tenancy) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.UnitID = t.UnitID
	m.TenantID = t.TenantID
	m.BuildingID = t.BuildingID
	m.StartDate = t.StartDate
	m.EndDate = t.EndDate
	m.RentAmount = t.RentAmount
	m.AgreementStatus = t.AgreementStatus.String()
	m.MoveInDate = t.MoveInDate
	m.MoveOutDate = t.MoveOutDate
	m.ExecutedAt = t.ExecutedAt
	m.TerminatedAt = t.TerminatedAt
	m.TerminateReason = t.TerminateReason
}

// TenancyModelFromDomain creates a TenancyModel from domain Tenancy
func TenancyModelFromDomain(t *leasing.Tenancy) *TenancyModel {
	var m TenancyModel
	m.FromDomain(t)
	return &m
}
