package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRentCycleRepository implements billing.RentCycleRepository using GORM
type GormRentCycleRepository struct {
	db *gorm.DB
}

// NewGormRentCycleRepository creates a new GormRentCycleRepository
func NewGormRentCycleRepository(db *gorm.DB) *GormRentCycleRepository {
	return &GormRentCycleRepository{db: db}
}

// Create inserts a new cycle record. The unique index on
// (tenancy_id, cycle_month, cycle_year) turns a concurrent double insert
// into shared.ErrAlreadyExists.
func (r *GormRentCycleRepository) Create(ctx context.Context, cycle *billing.RentCycle) error {
	model := models.RentCycleModelFromDomain(cycle)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds a cycle record by its ID
func (r *GormRentCycleRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RentCycle, error) {
	var model models.RentCycleModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTenancyAndPeriod finds the cycle record for (tenancy, month, year)
func (r *GormRentCycleRepository) FindByTenancyAndPeriod(ctx context.Context, tenancyID uuid.UUID, month, year int) (*billing.RentCycle, error) {
	var model models.RentCycleModel
	if err := r.db.WithContext(ctx).
		Where("tenancy_id = ? AND cycle_month = ? AND cycle_year = ?", tenancyID, month, year).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsForPeriod reports whether a cycle record already exists for
// (tenancy, month, year)
func (r *GormRentCycleRepository) ExistsForPeriod(ctx context.Context, tenancyID uuid.UUID, month, year int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.RentCycleModel{}).
		Where("tenancy_id = ? AND cycle_month = ? AND cycle_year = ?", tenancyID, month, year).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByPeriod returns every cycle record of a billing period
func (r *GormRentCycleRepository) ListByPeriod(ctx context.Context, month, year int) ([]billing.RentCycle, error) {
	var cycleModels []models.RentCycleModel
	if err := r.db.WithContext(ctx).
		Where("cycle_month = ? AND cycle_year = ?", month, year).
		Order("created_at ASC").
		Find(&cycleModels).Error; err != nil {
		return nil, err
	}
	cycles := make([]billing.RentCycle, len(cycleModels))
	for i, model := range cycleModels {
		cycles[i] = *model.ToDomain()
	}
	return cycles, nil
}

// Save creates or updates a cycle record
func (r *GormRentCycleRepository) Save(ctx context.Context, cycle *billing.RentCycle) error {
	model := models.RentCycleModelFromDomain(cycle)
	return r.db.WithContext(ctx).Save(model).Error
}

// isDuplicateKey reports whether the error is a unique constraint violation.
// Covers GORM's translated error, the raw Postgres error code, and SQLite's
// message in tests.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
