package model

import "time"

// Event is a normalized calendar event as produced by the feed parser
// (after recurrence expansion). Attendees holds lower-cased email
// addresses in document order, with any "mailto:" prefix stripped.
type Event struct {
	UID     string
	Summary string

	Start time.Time
	End   time.Time

	Attendees []string
}

// ClassificationKind tags the outcome of attendee resolution.
type ClassificationKind int

const (
	// KindBillable marks an event with exactly one non-teacher attendee.
	KindBillable ClassificationKind = iota
	// KindAmbiguous marks an event with zero or multiple non-teacher
	// attendees; those are routed to manual review, never guessed at.
	KindAmbiguous
)

// Classification is the per-event outcome within a billing window.
type Classification struct {
	Kind ClassificationKind

	// Billable fields.
	StudentEmail  string
	DurationHours float64

	// Ambiguous fields.
	EventStart time.Time
}

// RosterEntry describes one student in the fee roster.
type RosterEntry struct {
	DisplayName string
	HourlyFee   float64
}

// Roster maps lower-cased, trimmed student email to the roster entry.
type Roster map[string]RosterEntry

// Lookup returns the entry for email. Absence is an expected outcome,
// reported via ok rather than an error.
func (r Roster) Lookup(email string) (RosterEntry, bool) {
	entry, ok := r[email]
	return entry, ok
}

// BillingLine is one student's monthly total joined against the roster.
// Hours and Fee are each independently rounded to 2 decimal places.
type BillingLine struct {
	Email       string
	DisplayName string
	Hours       float64
	Fee         float64
}

// AggregationResult is the outcome of one billing run, immutable after
// construction. Lines preserve first-appearance order of students in the
// event sequence; AmbiguousEvents preserve encounter order.
type AggregationResult struct {
	Lines            []BillingLine
	UnresolvedEmails []string
	AmbiguousEvents  []time.Time
}

// Registration is a teacher's stored configuration, keyed by the
// messaging recipient ID.
type Registration struct {
	Recipient    string
	FeedURL      string
	RosterURL    string
	TeacherEmail string

	CreatedAt time.Time
	UpdatedAt time.Time
}
