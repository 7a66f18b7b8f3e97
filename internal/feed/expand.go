package feed

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "tutorbill/internal/log"
	"tutorbill/internal/model"
	"tutorbill/internal/period"
)

// maxOccurrencesPerEvent caps recurrence expansion so a runaway RRULE
// cannot blow up a run. A month of even daily lessons stays far below it.
const maxOccurrencesPerEvent = 1000

// Expand turns raw parsed events into concrete events within the billing
// window. Non-recurring events pass through unchanged; RRULE-based events
// are expanded into per-occurrence copies with the original duration and
// attendee list. EXDATEs remove cancelled occurrences.
//
// Expansion only pre-filters by overlap; strict window containment is
// enforced later by the classifier.
func Expand(raws []RawEvent, win period.Window) []model.Event {
	out := make([]model.Event, 0, len(raws))

	for _, raw := range raws {
		if raw.RawRRule == "" {
			if overlaps(raw.Event.Start, raw.Event.End, win) {
				out = append(out, raw.Event)
			}
			continue
		}
		out = append(out, expandRecurring(raw, win)...)
	}

	return out
}

func expandRecurring(raw RawEvent, win period.Window) []model.Event {
	r, err := rrule.StrToRRule(raw.RawRRule)
	if err != nil {
		// Lenient-skip: a bad RRULE drops the event, not the run.
		appLog.Warn("dropping event with unparseable RRULE",
			"uid", raw.Event.UID, "rrule", raw.RawRRule, "err", err.Error())
		return nil
	}
	r.DTStart(raw.Event.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range raw.ExDates {
		set.ExDate(ex.In(raw.Event.Start.Location()))
	}

	// Between operates in the event's own location.
	loc := raw.Event.Start.Location()
	starts := set.Between(win.Start.In(loc), win.End.In(loc), true)

	if len(starts) > maxOccurrencesPerEvent {
		appLog.Warn("truncating recurrence expansion",
			"uid", raw.Event.UID, "cap", maxOccurrencesPerEvent)
		starts = starts[:maxOccurrencesPerEvent]
	}

	duration := raw.Event.End.Sub(raw.Event.Start)

	out := make([]model.Event, 0, len(starts))
	for _, start := range starts {
		occ := raw.Event
		occ.Start = start
		occ.End = start.Add(duration)
		out = append(out, occ)
	}
	return out
}

func overlaps(start, end time.Time, win period.Window) bool {
	if end.Before(win.Start) {
		return false
	}
	if win.End.Before(start) {
		return false
	}
	return true
}
