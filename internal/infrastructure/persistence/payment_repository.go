package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/billing"
	"github.com/propertyhub/backend/internal/domain/shared"
	"github.com/propertyhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository implements billing.PaymentRepository using GORM.
// Period queries are evaluated in loc, the billing timezone the due dates
// were minted in.
type GormPaymentRepository struct {
	db  *gorm.DB
	loc *time.Location
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB, loc *time.Location) *GormPaymentRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &GormPaymentRepository{db: db, loc: loc}
}

// Create inserts a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns payments matching the filter, oldest due date first
func (r *GormPaymentRepository) List(ctx context.Context, filter billing.PaymentFilter) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{})
	query = r.applyFilter(query, filter)

	if err := query.Order("due_date ASC").Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// ExistsRentForPeriod reports whether a rent payment already exists for the
// tenancy with a due date inside the given month/year
func (r *GormPaymentRepository) ExistsRentForPeriod(ctx context.Context, tenancyID uuid.UUID, month, year int) (bool, error) {
	from, to := billing.PeriodWindow(month, year, r.loc)

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("tenancy_id = ? AND payment_type = ?", tenancyID, billing.PaymentTypeRent).
		Where("due_date >= ? AND due_date < ?", from, to).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindUnsettledDueBefore returns pending and partial payments whose due date
// is strictly before the given day
func (r *GormPaymentRepository) FindUnsettledDueBefore(ctx context.Context, day time.Time) ([]billing.Payment, error) {
	cutoff := shared.Midnight(day)
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []billing.PaymentStatus{billing.PaymentStatusPending, billing.PaymentStatusPartial}).
		Where("due_date < ?", cutoff).
		Order("due_date ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Save(model).Error
}

// applyFilter applies payment filter criteria to a query
func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter billing.PaymentFilter) *gorm.DB {
	if filter.BuildingID != nil {
		query = query.Where("building_id = ?", *filter.BuildingID)
	}
	if filter.TenancyID != nil {
		query = query.Where("tenancy_id = ?", *filter.TenancyID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Type != nil {
		query = query.Where("payment_type = ?", *filter.Type)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", shared.Midnight(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", shared.Midnight(*filter.DueTo))
	}
	return query
}
