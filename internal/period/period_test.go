package period

import (
	"testing"
	"time"

	apperrors "tutorbill/internal/errors"
)

func TestMonthWindowBounds(t *testing.T) {
	w, err := MonthWindow(2025, 3)
	if err != nil {
		t.Fatalf("month window: %v", err)
	}

	if got := w.Start.In(Zone); got.Year() != 2025 || got.Month() != time.March || got.Day() != 1 ||
		got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Errorf("start = %v, want 2025-03-01 00:00:00 UTC+8", got)
	}
	if got := w.End.In(Zone); got.Month() != time.March || got.Day() != 31 ||
		got.Hour() != 23 || got.Minute() != 59 || got.Second() != 59 {
		t.Errorf("end = %v, want last instant of March at UTC+8", got)
	}
	if w.End.Before(w.Start) {
		t.Errorf("end %v before start %v", w.End, w.Start)
	}
}

func TestMonthWindowAdjacency(t *testing.T) {
	// The end of every month must sit exactly one millisecond before the
	// start of the next, including across the year boundary.
	for _, tc := range []struct {
		year, month         int
		nextYear, nextMonth int
	}{
		{2024, 1, 2024, 2},
		{2024, 2, 2024, 3}, // leap-year February
		{2025, 2, 2025, 3},
		{2024, 12, 2025, 1}, // year rollover
	} {
		w, err := MonthWindow(tc.year, tc.month)
		if err != nil {
			t.Fatalf("month window %d-%d: %v", tc.year, tc.month, err)
		}
		next, err := MonthWindow(tc.nextYear, tc.nextMonth)
		if err != nil {
			t.Fatalf("month window %d-%d: %v", tc.nextYear, tc.nextMonth, err)
		}
		if got := next.Start.Sub(w.End); got != time.Millisecond {
			t.Errorf("%d-%02d: gap to next month start = %v, want 1ms", tc.year, tc.month, got)
		}
	}
}

func TestMonthWindowLeapFebruary(t *testing.T) {
	w, err := MonthWindow(2024, 2)
	if err != nil {
		t.Fatalf("month window: %v", err)
	}
	if got := w.End.In(Zone).Day(); got != 29 {
		t.Errorf("2024-02 end day = %d, want 29", got)
	}

	w, err = MonthWindow(2025, 2)
	if err != nil {
		t.Fatalf("month window: %v", err)
	}
	if got := w.End.In(Zone).Day(); got != 28 {
		t.Errorf("2025-02 end day = %d, want 28", got)
	}
}

func TestMonthWindowHostTimezoneIndependent(t *testing.T) {
	w, err := MonthWindow(2025, 1)
	if err != nil {
		t.Fatalf("month window: %v", err)
	}
	// 2025-01-01 00:00 at UTC+8 is 2024-12-31 16:00 UTC regardless of
	// the executing process's local zone.
	want := time.Date(2024, 12, 31, 16, 0, 0, 0, time.UTC)
	if !w.Start.Equal(want) {
		t.Errorf("start = %v, want %v", w.Start.UTC(), want)
	}
}

func TestMonthWindowInvalidMonth(t *testing.T) {
	for _, month := range []int{0, 13, -1} {
		_, err := MonthWindow(2025, month)
		if err == nil {
			t.Fatalf("month %d: expected error", month)
		}
		if code := apperrors.CodeOf(err); code != apperrors.CodeInvalidArgument {
			t.Errorf("month %d: code = %s, want %s", month, code, apperrors.CodeInvalidArgument)
		}
	}
}

func TestContainsStrict(t *testing.T) {
	w, _ := MonthWindow(2025, 4)

	inside := time.Date(2025, 4, 10, 14, 0, 0, 0, Zone)
	if !w.Contains(inside, inside.Add(90*time.Minute)) {
		t.Errorf("fully contained event excluded")
	}
	// Starts before the window: partial overlap is excluded, not clipped.
	if w.Contains(w.Start.Add(-time.Hour), w.Start.Add(time.Hour)) {
		t.Errorf("event straddling window start accepted")
	}
	if w.Contains(w.End.Add(-time.Hour), w.End.Add(time.Hour)) {
		t.Errorf("event straddling window end accepted")
	}
	// Endpoints are inclusive.
	if !w.Contains(w.Start, w.Start.Add(time.Hour)) {
		t.Errorf("event starting exactly at window start excluded")
	}
}

func TestPreviousRollsYearBack(t *testing.T) {
	year, month := Previous(time.Date(2025, 1, 15, 12, 0, 0, 0, Zone))
	if year != 2024 || month != 12 {
		t.Errorf("previous of 2025-01 = %d-%d, want 2024-12", year, month)
	}

	year, month = Previous(time.Date(2025, 7, 1, 0, 0, 0, 0, Zone))
	if year != 2025 || month != 6 {
		t.Errorf("previous of 2025-07 = %d-%d, want 2025-06", year, month)
	}
}

func TestPreviousUsesBillingZone(t *testing.T) {
	// 2025-06-30 20:00 UTC is already 2025-07-01 04:00 at UTC+8, so the
	// previous month is June, not May.
	year, month := Previous(time.Date(2025, 6, 30, 20, 0, 0, 0, time.UTC))
	if year != 2025 || month != 6 {
		t.Errorf("previous = %d-%d, want 2025-06", year, month)
	}
}
