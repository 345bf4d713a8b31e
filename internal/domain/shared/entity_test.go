package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewBaseEntity(t *testing.T) {
	e := NewBaseEntity()

	assert.NotEqual(t, [16]byte{}, [16]byte(e.ID))
	assert.False(t, e.CreatedAt.IsZero())
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
}

func TestBaseEntity_Touch(t *testing.T) {
	e := NewBaseEntity()
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	e.Touch(stamp)
	assert.Equal(t, stamp, e.UpdatedAt)

	// zero time falls back to the wall clock
	e.Touch(time.Time{})
	assert.False(t, e.UpdatedAt.IsZero())
	assert.True(t, e.UpdatedAt.After(stamp))
}
