package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/leasing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTenancyRepository implements leasing.TenancyRepository using GORM
type GormTenancyRepository struct {
	db *gorm.DB
}

// NewGormTenancyRepository creates a new GormTenancyRepository
func NewGormTenancyRepository(db *gorm.DB) *GormTenancyRepository {
	return &GormTenancyRepository{db: db}
}

// FindByID finds a tenancy by its ID
func (r *GormTenancyRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Tenancy, error) {
	var model models.TenancyModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUnit finds all tenancies of a unit, newest start date first
func (r *GormTenancyRepository) FindByUnit(ctx context.Context, unitID uuid.UUID) ([]leasing.Tenancy, error) {
	var tenancyModels []models.TenancyModel
	if err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("start_date DESC").
		Find(&tenancyModels).Error; err != nil {
		return nil, err
	}
	return toDomainTenancies(tenancyModels), nil
}

// FindActiveOn returns every executed tenancy whose date window covers the
// given date. An open end date counts as covering every future date; such
// rows are integrity violations the caller degrades rather than drops, so
// they are still returned here.
func (r *GormTenancyRepository) FindActiveOn(ctx context.Context, date time.Time) ([]leasing.Tenancy, error) {
	day := shared.Midnight(date)
	var tenancyModels []models.TenancyModel
	if err := r.db.WithContext(ctx).
		Where("agreement_status = ?", leasing.AgreementStatusExecuted).
		Where("start_date <= ?", day).
		Where("end_date IS NULL OR end_date >= ?", day).
		Order("start_date ASC").
		Find(&tenancyModels).Error; err != nil {
		return nil, err
	}
	return toDomainTenancies(tenancyModels), nil
}

// FindExecutedOverlapping returns executed tenancies on the unit whose date
// window intersects [start, end], both boundaries inclusive
func (r *GormTenancyRepository) FindExecutedOverlapping(ctx context.Context, unitID uuid.UUID, start, end time.Time) ([]leasing.Tenancy, error) {
	from := shared.Midnight(start)
	to := shared.Midnight(end)
	var tenancyModels []models.TenancyModel
	if err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Where("agreement_status = ?", leasing.AgreementStatusExecuted).
		Where("start_date <= ?", to).
		Where("end_date IS NULL OR end_date >= ?", from).
		Find(&tenancyModels).Error; err != nil {
		return nil, err
	}
	return toDomainTenancies(tenancyModels), nil
}

// FindExpiredCandidates returns executed tenancies whose end date is strictly
// before the given date
func (r *GormTenancyRepository) FindExpiredCandidates(ctx context.Context, before time.Time) ([]leasing.Tenancy, error) {
	day := shared.Midnight(before)
	var tenancyModels []models.TenancyModel
	if err := r.db.WithContext(ctx).
		Where("agreement_status = ?", leasing.AgreementStatusExecuted).
		Where("end_date IS NOT NULL AND end_date < ?", day).
		Order("end_date ASC").
		Find(&tenancyModels).Error; err != nil {
		return nil, err
	}
	return toDomainTenancies(tenancyModels), nil
}

// Save creates or updates a tenancy
func (r *GormTenancyRepository) Save(ctx context.Context, tenancy *leasing.Tenancy) error {
	model := models.TenancyModelFromDomain(tenancy)
	return r.db.WithContext(ctx).Save(model).Error
}

func toDomainTenancies(tenancyModels []models.TenancyModel) []leasing.Tenancy {
	tenancies := make([]leasing.Tenancy, len(tenancyModels))
	for i, model := range tenancyModels {
		tenancies[i] = *model.ToDomain()
	}
	return tenancies
}
