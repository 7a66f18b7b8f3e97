package billing

import (
	"strings"

	"tutorbill/internal/model"
	"tutorbill/internal/period"
)

// Classify resolves one event to exactly one billing outcome.
//
// Events not strictly contained in the window are dropped (ok=false)
// before any classification. After excluding the teacher's own email,
// exactly one attendee makes the event billable for that student; zero
// or several attendees make it ambiguous. Co-taught or unassigned
// sessions are never guessed at.
func Classify(ev model.Event, win period.Window, teacherEmail string) (model.Classification, bool) {
	if !win.Contains(ev.Start, ev.End) {
		return model.Classification{}, false
	}

	// Fractional hours are permitted; zero or negative duration flows
	// through arithmetically.
	durationHours := ev.End.Sub(ev.Start).Hours()

	var student string
	students := 0
	for _, attendee := range ev.Attendees {
		if strings.EqualFold(attendee, teacherEmail) {
			continue
		}
		student = attendee
		students++
	}

	if students == 1 {
		return model.Classification{
			Kind:          model.KindBillable,
			StudentEmail:  student,
			DurationHours: durationHours,
		}, true
	}

	return model.Classification{
		Kind:       model.KindAmbiguous,
		EventStart: ev.Start,
	}, true
}

// ClassifyAll classifies every event inside the window, preserving the
// input encounter order.
func ClassifyAll(events []model.Event, win period.Window, teacherEmail string) []model.Classification {
	out := make([]model.Classification, 0, len(events))
	for _, ev := range events {
		if c, ok := Classify(ev, win, teacherEmail); ok {
			out = append(out, c)
		}
	}
	return out
}
