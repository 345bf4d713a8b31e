package persistence

import (
	"context"
	"time"

	appbilling "github.com/propertyhub/backend/internal/application/billing"
	"gorm.io/gorm"
)

// GormBillingTransactionScope implements appbilling.TransactionScope on top
// of a GORM transaction. The callback receives repositories bound to the
// transaction connection, so the payment and its cycle record commit or roll
// back together.
type GormBillingTransactionScope struct {
	db  *Database
	loc *time.Location
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope
func NewGormBillingTransactionScope(db *Database, loc *time.Location) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db, loc: loc}
}

// Execute runs fn inside a database transaction
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(ctx context.Context, repos appbilling.BillingRepos) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		repos := appbilling.BillingRepos{
			Payments: NewGormPaymentRepository(tx, s.loc),
			Cycles:   NewGormRentCycleRepository(tx),
		}
		return fn(ctx, repos)
	})
}
