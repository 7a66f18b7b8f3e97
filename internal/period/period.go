package period

import (
	"time"

	apperrors "tutorbill/internal/errors"
)

// Zone is the fixed civil calendar zone billing is computed in. Using an
// explicit fixed offset keeps the window independent of the host timezone.
var Zone = time.FixedZone("UTC+8", 8*60*60)

// Window is the inclusive billing period for one calendar month.
// Start is the first instant of the month at UTC+8, End the last
// (23:59:59.999) of the same month.
type Window struct {
	Start time.Time
	End   time.Time
}

// MonthWindow returns the billing window for the given civil year and
// month. Month values outside 1..12 are a caller contract violation.
func MonthWindow(year, month int) (Window, error) {
	if month < 1 || month > 12 {
		return Window{}, apperrors.NewInvalidArgumentError("month must be in 1..12")
	}
	if year < 1 {
		return Window{}, apperrors.NewInvalidArgumentError("year must be positive")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, Zone)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)

	return Window{Start: start, End: end}, nil
}

// Contains reports whether [start, end] lies strictly inside the window.
// Partial overlap is excluded, not clipped.
func (w Window) Contains(start, end time.Time) bool {
	if start.Before(w.Start) {
		return false
	}
	if end.After(w.End) {
		return false
	}
	return true
}

// Previous returns the civil year and month immediately before the given
// instant in the billing zone, rolling the year back across January.
func Previous(t time.Time) (int, int) {
	local := t.In(Zone)
	year, month := local.Year(), int(local.Month())
	month--
	if month < 1 {
		month = 12
		year--
	}
	return year, month
}
