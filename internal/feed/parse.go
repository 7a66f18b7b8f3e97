package feed

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	apperrors "tutorbill/internal/errors"
	appLog "tutorbill/internal/log"
	"tutorbill/internal/metrics"
	"tutorbill/internal/model"
)

// RawEvent is a parsed VEVENT before recurrence expansion.
type RawEvent struct {
	Event model.Event

	RawRRule string
	ExDates  []time.Time
}

// ParseFeed parses a single ICS payload into a list of RawEvent.
//
// A payload that is not valid iCalendar at all is a PARSE_ERROR and
// fails the whole run. Individual VEVENTs that are malformed — missing
// a start, missing an explicit end — are skipped silently; partial
// results are preferred over total failure at the event level.
func ParseFeed(body []byte) ([]RawEvent, error) {
	if len(body) == 0 {
		return nil, apperrors.NewParseError("calendar feed", errors.New("empty ICS body"))
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewParseError("calendar feed", err)
	}

	events := make([]RawEvent, 0)
	skipped := 0

	for _, ve := range cal.Events() {
		ev, ok := parseVEvent(ve)
		if !ok {
			skipped++
			metrics.EventsSkipped.Inc()
			continue
		}
		events = append(events, ev)
		metrics.EventsParsed.Inc()
	}

	appLog.Debug("feed parse completed", "event_count", len(events), "skipped", skipped)
	return events, nil
}

// parseVEvent normalizes one VEVENT. ok is false when the event lacks
// the fields billing needs and should be skipped.
func parseVEvent(ve *ical.VEvent) (RawEvent, bool) {
	var out RawEvent

	start, err := ve.GetStartAt()
	if err != nil {
		return out, false
	}

	// Events without an explicit DTEND carry no billable duration.
	if ve.GetProperty(ical.ComponentPropertyDtEnd) == nil {
		return out, false
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return out, false
	}

	out.Event.Start = start
	out.Event.End = end

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.Event.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Event.Summary = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyAttendee) {
		if email := normalizeAttendee(p.Value); email != "" {
			out.Event.Attendees = append(out.Event.Attendees, email)
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	// EXDATE can appear multiple times, each with a comma-separated list.
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, start.Location()); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	return out, true
}

// normalizeAttendee strips the mailto: scheme and lower-cases the
// address. Returns "" for values that are not usable identifiers.
func normalizeAttendee(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 7 && strings.EqualFold(v[:7], "mailto:") {
		v = v[7:]
	}
	return strings.ToLower(strings.TrimSpace(v))
}

// parseICSTime parses a basic ICS date/date-time string. Non-UTC values
// are interpreted in loc, the event's own location, rather than the
// host timezone.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	if strings.HasSuffix(v, "Z") {
		const layout = "20060102T150405Z"
		return time.Parse(layout, v)
	}
	if strings.Contains(v, "T") {
		const layout = "20060102T150405"
		return time.ParseInLocation(layout, v, loc)
	}
	const layoutDate = "20060102"
	return time.ParseInLocation(layoutDate, v, loc)
}
