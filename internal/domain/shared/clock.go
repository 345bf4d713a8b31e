package shared

import "time"

// Clock supplies the current time to the engine. Every component that
// compares dates takes a Clock (or an explicit "today") so that behavior
// is deterministic and testable without wall-clock dependence.
type Clock interface {
	// Now returns the current instant
	Now() time.Time
	// Today returns the current calendar day truncated to midnight
	// in the clock's timezone
	Today() time.Time
}

// SystemClock is a Clock backed by the system wall clock in a fixed timezone
type SystemClock struct {
	loc *time.Location
}

// NewSystemClock creates a SystemClock in the given timezone.
// A nil location defaults to UTC.
func NewSystemClock(loc *time.Location) *SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return &SystemClock{loc: loc}
}

// Now returns the current instant in the clock's timezone
func (c *SystemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Today returns the current day at midnight in the clock's timezone
func (c *SystemClock) Today() time.Time {
	return Midnight(c.Now())
}

// FixedClock is a Clock pinned to a single instant, for tests
type FixedClock struct {
	Instant time.Time
}

// NewFixedClock creates a FixedClock at the given instant
func NewFixedClock(instant time.Time) *FixedClock {
	return &FixedClock{Instant: instant}
}

// Now returns the pinned instant
func (c *FixedClock) Now() time.Time {
	return c.Instant
}

// Today returns the pinned instant truncated to midnight
func (c *FixedClock) Today() time.Time {
	return Midnight(c.Instant)
}

// Midnight truncates t to the start of its calendar day, preserving location
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of whole calendar days from a to b
// (positive when b is after a). Only the calendar date of each argument is
// considered, so intra-day time components never shift the count.
func DaysBetween(a, b time.Time) int {
	from := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// SameDay reports whether a and b fall on the same calendar date
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
