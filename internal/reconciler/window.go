package reconciler

import "time"

// Order snapshot slack around the billing cycle: notes can reference orders
// placed up to fifteen days before the transaction, and clock skew between
// store terminals makes a one-day lookahead cheap to keep.
const (
	OrderLookback  = 15 * 24 * time.Hour
	OrderLookahead = 24 * time.Hour
)

// BillingCycle returns the ms-epoch bounds of the monthly reconciliation
// window anchored on anchorDay: from the beginning of that day in the
// previous month through the end of that day in the current month.
func BillingCycle(now time.Time, anchorDay int) (startMs, endMs int64) {
	anchor := time.Date(now.Year(), now.Month(), anchorDay, 0, 0, 0, 0, now.Location())
	start := anchor.AddDate(0, -1, 0)
	endExclusive := anchor.AddDate(0, 0, 1)
	return start.UnixMilli(), endExclusive.UnixMilli() - 1
}

// SnapshotWindow widens the run window by the lookback/lookahead slack. The
// order snapshot is loaded over this range so the fallback suffix scan can
// see orders outside the strict billing cycle.
func SnapshotWindow(startMs, endMs int64) (int64, int64) {
	return startMs - OrderLookback.Milliseconds(), endMs + OrderLookahead.Milliseconds()
}

// DayBounds returns the ms-epoch bounds of the calendar day containing t.
// The daily order crawl fetches exactly one day per run.
func DayBounds(t time.Time) (startMs, endMs int64) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start.UnixMilli(), start.AddDate(0, 0, 1).UnixMilli() - 1
}
