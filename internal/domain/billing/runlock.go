package billing

import (
	"context"
	"fmt"
	"time"
)

// RunLock is the mutual-exclusion guard for batch runs. At most one
// generation run may execute at a time system-wide; in a multi-instance
// deployment the lock must be shared (e.g. a Redis lease), not an
// in-process flag.
type RunLock interface {
	// TryAcquire attempts to take the named lock for at most ttl. On
	// success it returns an ownership token; it returns false, without
	// error, when the lock is already held.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	// Release gives the lock back if token still owns it. A holder whose
	// lease expired and was re-acquired by another run must not release
	// the new holder's lock, so release is compare-and-delete.
	Release(ctx context.Context, key, token string) error
}

// RentCycleLockKey names the lock guarding rent cycle generation.
// One key for all periods: overlapping runs for different months still
// contend for the same tenancy rows.
const RentCycleLockKey = "billing:rent-cycle-run"

// SweepLockKey names the lock guarding the overdue sweep
const SweepLockKey = "billing:overdue-sweep"

// PeriodKey renders a (month, year) pair for log fields and lock metadata
func PeriodKey(month, year int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
