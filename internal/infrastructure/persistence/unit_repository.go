package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/leasing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUnitRepository implements leasing.UnitRepository using GORM
type GormUnitRepository struct {
	db *gorm.DB
}

// NewGormUnitRepository creates a new GormUnitRepository
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{db: db}
}

// FindByID finds a unit by its ID
func (r *GormUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Unit, error) {
	var model models.UnitModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBuilding finds all units of a building
func (r *GormUnitRepository) FindByBuilding(ctx context.Context, buildingID uuid.UUID) ([]leasing.Unit, error) {
	var unitModels []models.UnitModel
	if err := r.db.WithContext(ctx).
		Where("building_id = ?", buildingID).
		Order("name ASC").
		Find(&unitModels).Error; err != nil {
		return nil, err
	}
	units := make([]leasing.Unit, len(unitModels))
	for i, model := range unitModels {
		units[i] = *model.ToDomain()
	}
	return units, nil
}

// ListWithTenancies returns every unit of a building with its full tenancy
// history attached
func (r *GormUnitRepository) ListWithTenancies(ctx context.Context, buildingID uuid.UUID) ([]leasing.UnitWithTenancies, error) {
	var unitModels []models.UnitModel
	if err := r.db.WithContext(ctx).
		Preload("Tenancies").
		Where("building_id = ?", buildingID).
		Order("name ASC").
		Find(&unitModels).Error; err != nil {
		return nil, err
	}
	result := make([]leasing.UnitWithTenancies, len(unitModels))
	for i, model := range unitModels {
		tenancies := make([]leasing.Tenancy, len(model.Tenancies))
		for j, tm := range model.Tenancies {
			tenancies[j] = *tm.ToDomain()
		}
		result[i] = leasing.UnitWithTenancies{
			Unit:      *model.ToDomain(),
			Tenancies: tenancies,
		}
	}
	return result, nil
}

// Save creates or updates a unit
func (r *GormUnitRepository) Save(ctx context.Context, unit *leasing.Unit) error {
	model := models.UnitModelFromDomain(unit)
	return r.db.WithContext(ctx).Omit("Tenancies").Save(model).Error
}
