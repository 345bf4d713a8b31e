package leasing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propertyhub/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func executedTenancy(t *testing.T, start time.Time, end *time.Time) *Tenancy {
	t.Helper()
	tenancy, err := NewTenancy(uuid.New(), uuid.New(), uuid.New(), start, end, valueobject.NewMoneyUSDFromFloat(1500))
	require.NoError(t, err)
	if end != nil {
		require.NoError(t, tenancy.Execute(time.Now()))
	} else {
		// Force the broken state the classifier must degrade gracefully:
		// executed without an end date cannot be reached through Execute.
		tenancy.AgreementStatus = AgreementStatusExecuted
	}
	return tenancy
}

func TestNewTenancy_Validation(t *testing.T) {
	rent := valueobject.NewMoneyUSDFromFloat(1200)

	t.Run("rejects end before start", func(t *testing.T) {
		_, err := NewTenancy(uuid.New(), uuid.New(), uuid.New(), date(2024, 5, 10), datePtr(2024, 5, 1), rent)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive rent", func(t *testing.T) {
		_, err := NewTenancy(uuid.New(), uuid.New(), uuid.New(), date(2024, 5, 1), datePtr(2024, 12, 31), valueobject.ZeroUSD())
		assert.Error(t, err)
	})

	t.Run("allows open end date before execution", func(t *testing.T) {
		tenancy, err := NewTenancy(uuid.New(), uuid.New(), uuid.New(), date(2024, 5, 1), nil, rent)
		require.NoError(t, err)
		assert.Equal(t, AgreementStatusPending, tenancy.AgreementStatus)
		assert.Nil(t, tenancy.EndDate)
	})

	t.Run("normalizes dates to midnight", func(t *testing.T) {
		start := time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC)
		tenancy, err := NewTenancy(uuid.New(), uuid.New(), uuid.New(), start, nil, rent)
		require.NoError(t, err)
		assert.Equal(t, date(2024, 5, 1), tenancy.StartDate)
	})
}

func TestTenancy_Execute(t *testing.T) {
	rent := valueobject.NewMoneyUSDFromFloat(1200)

	t.Run("requires end date", func(t *testing.T) {
		tenancy, err := NewTenancy(uuid.New(), uuid.New(), uuid.New(), date(2024, 5, 1), nil, rent)
		require.NoError(t, err)
		assert.Error(t, tenancy.Execute(time.Now()))
	})

	t.Run("executes pending tenancy", func(t *testing.T) {
		tenancy, err := NewTenancy(uuid.New(), uuid.New(), uuid.New(), date(2024, 5, 1), datePtr(2024, 12, 31), rent)
		require.NoError(t, err)
		require.NoError(t, tenancy.Execute(time.Now()))
		assert.Equal(t, AgreementStatusExecuted, tenancy.AgreementStatus)
		assert.NotNil(t, tenancy.ExecutedAt)
	})

	t.Run("cannot execute twice", func(t *testing.T) {
		tenancy := executedTenancy(t, date(2024, 5, 1), datePtr(2024, 12, 31))
		assert.Error(t, tenancy.Execute(time.Now()))
	})
}

func TestTenancy_Terminate(t *testing.T) {
	tenancy := executedTenancy(t, date(2024, 1, 1), datePtr(2024, 12, 31))

	err := tenancy.Terminate(time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC), "tenant relocated")
	require.NoError(t, err)
	assert.Equal(t, AgreementStatusTerminated, tenancy.AgreementStatus)
	assert.Equal(t, date(2024, 6, 10), *tenancy.EndDate)

	t.Run("requires reason", func(t *testing.T) {
		other := executedTenancy(t, date(2024, 1, 1), datePtr(2024, 12, 31))
		assert.Error(t, other.Terminate(time.Now(), ""))
	})
}

func TestTenancy_Expire(t *testing.T) {
	tenancy := executedTenancy(t, date(2024, 1, 1), datePtr(2024, 6, 30))

	t.Run("rejects before end date", func(t *testing.T) {
		assert.Error(t, tenancy.Expire(date(2024, 6, 30)))
	})

	t.Run("expires after end date", func(t *testing.T) {
		require.NoError(t, tenancy.Expire(date(2024, 7, 1)))
		assert.Equal(t, AgreementStatusExpired, tenancy.AgreementStatus)
	})
}

func TestTenancy_MoveInMoveOut(t *testing.T) {
	tenancy := executedTenancy(t, date(2024, 1, 1), datePtr(2024, 12, 31))

	t.Run("move-out requires move-in", func(t *testing.T) {
		assert.Error(t, tenancy.RecordMoveOut(date(2024, 6, 1)))
	})

	require.NoError(t, tenancy.RecordMoveIn(date(2024, 1, 3)))
	require.NoError(t, tenancy.RecordMoveOut(date(2024, 12, 28)))
	assert.Equal(t, date(2024, 1, 3), *tenancy.MoveInDate)
	assert.Equal(t, date(2024, 12, 28), *tenancy.MoveOutDate)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) *Tenancy
		today time.Time
		want  TenancyState
	}{
		{
			name: "executed within window is current",
			setup: func(t *testing.T) *Tenancy {
				return executedTenancy(t, date(2024, 1, 1), datePtr(2024, 12, 31))
			},
			today: date(2024, 6, 15),
			want:  TenancyStateCurrent,
		},
		{
			name: "executed after window is past",
			setup: func(t *testing.T) *Tenancy {
				return executedTenancy(t, date(2024, 1, 1), datePtr(2024, 12, 31))
			},
			today: date(2025, 1, 1),
			want:  TenancyStatePast,
		},
		{
			name: "start date today is current",
			setup: func(t *testing.T) *Tenancy {
				return executedTenancy(t, date(2024, 6, 15), datePtr(2024, 12, 31))
			},
			today: date(2024, 6, 15),
			want:  TenancyStateCurrent,
		},
		{
			name: "end date today is current, last day counts as occupied",
			setup: func(t *testing.T) *Tenancy {
				return executedTenancy(t, date(2024, 1, 1), datePtr(2024, 6, 15))
			},
			today: date(2024, 6, 15),
			want:  TenancyStateCurrent,
		},
		{
			name: "single day window on its day is current",
			setup: func(t *testing.T) *Tenancy {
				return executedTenancy(t, date(2024, 6, 15), datePtr(2024, 6, 15))
			},
			today: date(2024, 6, 15),
			want:  TenancyStateCurrent,
		},
		{
			name: "day after end date is past",
			setup: func(t *testing.T) *Tenancy {
				return executedTenancy(t, date(2024, 1, 1), datePtr(2024, 6, 15))
			},
			today: date(2024, 6, 16),
			want:  TenancyStatePast,
		},
		{
			name: "executed before start date is future",
			setup: func(t *testing.T) *Tenancy {
				return executedTenancy(t, date(2024, 9, 1), datePtr(2025, 8, 31))
			},
			today: date(2024, 6, 15),
			want:  TenancyStateFuture,
		},
		{
			name: "pending agreement is pending regardless of window",
			setup: func(t *testing.T) *Tenancy {
				tenancy, err := NewTenancy(uuid.New(), uuid.New(), uuid.New(), date(2024, 1, 1), datePtr(2024, 12, 31), valueobject.NewMoneyUSDFromFloat(1500))
				require.NoError(t, err)
				return tenancy
			},
			today: date(2024, 6, 15),
			want:  TenancyStatePending,
		},
		{
			name: "terminated is past even before end date",
			setup: func(t *testing.T) *Tenancy {
				tenancy := executedTenancy(t, date(2024, 1, 1), datePtr(2024, 12, 31))
				require.NoError(t, tenancy.Terminate(date(2024, 6, 1), "moved"))
				return tenancy
			},
			today: date(2024, 3, 1),
			want:  TenancyStatePast,
		},
		{
			name: "expired is past",
			setup: func(t *testing.T) *Tenancy {
				tenancy := executedTenancy(t, date(2024, 1, 1), datePtr(2024, 3, 31))
				require.NoError(t, tenancy.Expire(date(2024, 4, 1)))
				return tenancy
			},
			today: date(2024, 4, 2),
			want:  TenancyStatePast,
		},
		{
			name: "executed with nil end date degrades to pending",
			setup: func(t *testing.T) *Tenancy {
				return executedTenancy(t, date(2024, 1, 1), nil)
			},
			today: date(2024, 6, 15),
			want:  TenancyStatePending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenancy := tt.setup(t)
			assert.Equal(t, tt.want, Classify(tenancy, tt.today))
		})
	}
}

func TestTenancy_ActiveOn(t *testing.T) {
	tenancy := executedTenancy(t, date(2024, 1, 1), datePtr(2024, 12, 31))

	assert.True(t, tenancy.ActiveOn(date(2024, 1, 1)))
	assert.True(t, tenancy.ActiveOn(date(2024, 12, 31)))
	assert.False(t, tenancy.ActiveOn(date(2023, 12, 31)))
	assert.False(t, tenancy.ActiveOn(date(2025, 1, 1)))

	t.Run("pending tenancy is never active", func(t *testing.T) {
		pending, err := NewTenancy(uuid.New(), uuid.New(), uuid.New(), date(2024, 1, 1), datePtr(2024, 12, 31), valueobject.NewMoneyUSDFromFloat(900))
		require.NoError(t, err)
		assert.False(t, pending.ActiveOn(date(2024, 6, 1)))
	})
}

func TestTenancy_HasIntegrityViolation(t *testing.T) {
	assert.True(t, executedTenancy(t, date(2024, 1, 1), nil).HasIntegrityViolation())
	assert.False(t, executedTenancy(t, date(2024, 1, 1), datePtr(2024, 12, 31)).HasIntegrityViolation())
}
