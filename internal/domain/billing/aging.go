package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgingBucket is one days-past-due range of the aging report
type AgingBucket struct {
	Label   string          `json:"label"`
	MinDays int             `json:"min_days"`
	MaxDays int             `json:"max_days"` // -1 means unbounded
	Count   int             `json:"count"`
	Amount  decimal.Decimal `json:"amount"`
}

// AgingReport buckets outstanding payments by how far past due they are.
// Every unsettled payment lands in exactly one bucket, so bucket counts and
// amounts always sum to the outstanding totals.
type AgingReport struct {
	AsOf              time.Time       `json:"as_of"`
	Buckets           []AgingBucket   `json:"buckets"`
	OutstandingCount  int             `json:"outstanding_count"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
}

// agingRanges defines the collection-risk buckets. MaxDays -1 is unbounded.
var agingRanges = []struct {
	label    string
	min, max int
}{
	{"current", 0, 0}, // due today or in the future
	{"1-7", 1, 7},
	{"8-15", 8, 15},
	{"16-30", 16, 30},
	{"31-60", 31, 60},
	{"60+", 61, -1},
}

// BuildAgingReport buckets every unsettled payment by days past due as of
// today. A payment due exactly today is current, not 1-7: the due-date
// boundary is inclusive, mirroring the tenancy classifier. Settled payments
// are skipped entirely.
func BuildAgingReport(payments []Payment, today time.Time) AgingReport {
	report := AgingReport{
		AsOf:              today,
		Buckets:           make([]AgingBucket, len(agingRanges)),
		OutstandingAmount: decimal.Zero,
	}
	for i, r := range agingRanges {
		report.Buckets[i] = AgingBucket{
			Label:   r.label,
			MinDays: r.min,
			MaxDays: r.max,
			Amount:  decimal.Zero,
		}
	}

	for i := range payments {
		p := &payments[i]
		if p.Status.IsSettled() {
			continue
		}

		idx := bucketIndex(p.DaysPastDue(today))
		report.Buckets[idx].Count++
		report.Buckets[idx].Amount = report.Buckets[idx].Amount.Add(p.Amount)
		report.OutstandingCount++
		report.OutstandingAmount = report.OutstandingAmount.Add(p.Amount)
	}

	return report
}

func bucketIndex(daysPastDue int) int {
	if daysPastDue <= 0 {
		return 0
	}
	for i := 1; i < len(agingRanges); i++ {
		r := agingRanges[i]
		if r.max == -1 || daysPastDue <= r.max {
			return i
		}
	}
	return len(agingRanges) - 1
}

// CollectionRate returns settled amount over total amount due as a
// percentage rounded to two decimals, for the payments passed in (the
// caller scopes them to a due-date period). A zero denominator reports 0.
func CollectionRate(payments []Payment) decimal.Decimal {
	due := decimal.Zero
	collected := decimal.Zero
	for i := range payments {
		p := &payments[i]
		due = due.Add(p.Amount)
		if p.Status.IsSettled() {
			collected = collected.Add(p.Amount)
		}
	}
	if !due.IsPositive() {
		return decimal.Zero
	}
	return collected.Div(due).Mul(decimal.NewFromInt(100)).Round(2)
}
