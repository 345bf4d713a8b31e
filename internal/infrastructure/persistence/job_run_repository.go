package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormJobRunRepository implements billing.JobRunRepository using GORM
type GormJobRunRepository struct {
	db *gorm.DB
}

// NewGormJobRunRepository creates a new GormJobRunRepository
func NewGormJobRunRepository(db *gorm.DB) *GormJobRunRepository {
	return &GormJobRunRepository{db: db}
}

// Save inserts the run record or updates it in place when it closes
func (r *GormJobRunRepository) Save(ctx context.Context, run *billing.JobRun) error {
	model := models.JobRunModelFromDomain(run)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a run record by its ID
func (r *GormJobRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.JobRun, error) {
	var model models.JobRunModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByType returns the most recent runs of a job type, newest first
func (r *GormJobRunRepository) ListByType(ctx context.Context, jobType billing.JobType, limit int) ([]billing.JobRun, error) {
	var runModels []models.JobRunModel
	if err := r.db.WithContext(ctx).
		Where("job_type = ?", jobType).
		Order("started_at DESC").
		Limit(limit).
		Find(&runModels).Error; err != nil {
		return nil, err
	}
	runs := make([]billing.JobRun, len(runModels))
	for i, model := range runModels {
		runs[i] = *model.ToDomain()
	}
	return runs, nil
}
