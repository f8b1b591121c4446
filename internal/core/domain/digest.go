package domain

import "time"

// Digest is a dated summary of corpus changes and outstanding tasks.
// A digest is written once per scheduled run and never mutated; the
// next run supersedes it with a new record.
type Digest struct {
	// ID uniquely identifies the record.
	ID string

	// Date is the local calendar day the digest covers.
	Date time.Time

	// SummaryText is the generated natural-language summary.
	SummaryText string

	// PendingTaskIDs enumerates the tasks still pending at digest time.
	PendingTaskIDs []string

	// CreatedAt is when the digest was produced.
	CreatedAt time.Time
}

// Day truncates t to its local calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
