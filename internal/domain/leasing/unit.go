package leasing

import (
	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// UnitStatus represents the operational status of a unit.
// Occupancy is never stored on the unit; it is always inferred from the
// unit's tenancies at read time.
type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "AVAILABLE"
	UnitStatusMaintenance UnitStatus = "MAINTENANCE"
)

// IsValid checks if the status is a valid UnitStatus
func (s UnitStatus) IsValid() bool {
	return s == UnitStatusAvailable || s == UnitStatusMaintenance
}

// String returns the string representation of UnitStatus
func (s UnitStatus) String() string {
	return string(s)
}

// Unit represents a rentable unit within a building.
// The building/room hierarchy above it is reference data to this engine;
// only the building id and the listed rent matter here.
type Unit struct {
	shared.BaseAggregateRoot
	BuildingID      uuid.UUID       `json:"building_id"`
	Name            string          `json:"name"`
	RentAmount      decimal.Decimal `json:"rent_amount"`
	SecurityDeposit decimal.Decimal `json:"security_deposit"`
	Status          UnitStatus      `json:"status"`
}

// NewUnit creates a new unit in AVAILABLE status
func NewUnit(buildingID uuid.UUID, name string, rentAmount, securityDeposit valueobject.Money) (*Unit, error) {
	if buildingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUILDING", "Building ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_UNIT_NAME", "Unit name cannot be empty")
	}
	if rentAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RENT", "Rent amount cannot be negative")
	}
	if securityDeposit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DEPOSIT", "Security deposit cannot be negative")
	}

	return &Unit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BuildingID:        buildingID,
		Name:              name,
		RentAmount:        rentAmount.Amount(),
		SecurityDeposit:   securityDeposit.Amount(),
		Status:            UnitStatusAvailable,
	}, nil
}

// StartMaintenance flags the unit as under maintenance. A maintenance unit
// is excluded from occupancy-derived states until released.
func (u *Unit) StartMaintenance() {
	u.Status = UnitStatusMaintenance
	u.IncrementVersion()
}

// EndMaintenance returns the unit to the available pool
func (u *Unit) EndMaintenance() {
	u.Status = UnitStatusAvailable
	u.IncrementVersion()
}

// UnderMaintenance returns true if the unit is flagged for maintenance
func (u *Unit) UnderMaintenance() bool {
	return u.Status == UnitStatusMaintenance
}

// GetRentAmountMoney returns the listed rent as Money
func (u *Unit) GetRentAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(u.RentAmount)
}

// UnitWithTenancies pairs a unit with its full tenancy history, as returned
// by the record store for occupancy reporting.
type UnitWithTenancies struct {
	Unit      Unit
	Tenancies []Tenancy
}
