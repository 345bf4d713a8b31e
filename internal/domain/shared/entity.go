package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity carries the identity and audit timestamps shared by every
// entity. Lifecycle mutators stamp UpdatedAt through Touch so the audit
// trail follows the clock the caller operates on.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// Touch stamps the entity as modified at the given time. A zero time
// falls back to the wall clock.
func (e *BaseEntity) Touch(at time.Time) {
	if at.IsZero() {
		at = time.Now()
	}
	e.UpdatedAt = at
}

// NewBaseEntity creates a base entity with a fresh ID and both audit
// timestamps set to now
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
