package feed

import (
	"strings"
	"testing"
	"time"

	apperrors "tutorbill/internal/errors"
)

func icsDoc(events ...string) []byte {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
	}
	lines = append(lines, events...)
	lines = append(lines, "END:VCALENDAR", "")
	return []byte(strings.Join(lines, "\r\n"))
}

func TestParseFeedNormalizesAttendees(t *testing.T) {
	body := icsDoc(
		"BEGIN:VEVENT",
		"UID:ev-1",
		"SUMMARY:Math lesson",
		"DTSTART:20250310T100000Z",
		"DTEND:20250310T113000Z",
		"ATTENDEE;CN=Teacher:mailto:Teacher@School.example",
		"ATTENDEE;CN=Alice:MAILTO:Alice@X.com",
		"END:VEVENT",
	)

	events, err := ParseFeed(body)
	if err != nil {
		t.Fatalf("parse feed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	ev := events[0].Event
	if ev.UID != "ev-1" {
		t.Errorf("uid = %q", ev.UID)
	}
	want := []string{"teacher@school.example", "alice@x.com"}
	if len(ev.Attendees) != len(want) {
		t.Fatalf("attendees = %v, want %v", ev.Attendees, want)
	}
	for i := range want {
		if ev.Attendees[i] != want[i] {
			t.Errorf("attendee[%d] = %q, want %q", i, ev.Attendees[i], want[i])
		}
	}
	if got := ev.End.Sub(ev.Start); got != 90*time.Minute {
		t.Errorf("duration = %v, want 1h30m", got)
	}
}

func TestParseFeedSkipsEventWithoutEnd(t *testing.T) {
	body := icsDoc(
		"BEGIN:VEVENT",
		"UID:no-end",
		"DTSTART:20250310T100000Z",
		"ATTENDEE:mailto:alice@x.com",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:ok",
		"DTSTART:20250311T100000Z",
		"DTEND:20250311T110000Z",
		"END:VEVENT",
	)

	events, err := ParseFeed(body)
	if err != nil {
		t.Fatalf("parse feed: %v", err)
	}
	if len(events) != 1 || events[0].Event.UID != "ok" {
		t.Fatalf("got %+v, want only event %q", events, "ok")
	}
}

func TestParseFeedCapturesRecurrence(t *testing.T) {
	body := icsDoc(
		"BEGIN:VEVENT",
		"UID:weekly",
		"DTSTART:20250303T100000Z",
		"DTEND:20250303T110000Z",
		"RRULE:FREQ=WEEKLY;COUNT=4",
		"EXDATE:20250317T100000Z",
		"ATTENDEE:mailto:alice@x.com",
		"END:VEVENT",
	)

	events, err := ParseFeed(body)
	if err != nil {
		t.Fatalf("parse feed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].RawRRule != "FREQ=WEEKLY;COUNT=4" {
		t.Errorf("rrule = %q", events[0].RawRRule)
	}
	if len(events[0].ExDates) != 1 {
		t.Fatalf("exdates = %v, want one entry", events[0].ExDates)
	}
	want := time.Date(2025, 3, 17, 10, 0, 0, 0, time.UTC)
	if !events[0].ExDates[0].Equal(want) {
		t.Errorf("exdate = %v, want %v", events[0].ExDates[0], want)
	}
}

func TestParseFeedUnparseableDocument(t *testing.T) {
	_, err := ParseFeed([]byte("this is not an ICS document"))
	if err == nil {
		t.Fatal("expected error")
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeParse {
		t.Errorf("code = %s, want %s", code, apperrors.CodeParse)
	}
}

func TestParseFeedEmptyBody(t *testing.T) {
	_, err := ParseFeed(nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeParse {
		t.Errorf("code = %s, want %s", code, apperrors.CodeParse)
	}
}

func TestNormalizeAttendee(t *testing.T) {
	for _, tc := range []struct {
		in, want string
	}{
		{"mailto:Alice@X.com", "alice@x.com"},
		{"MAILTO:bob@y.com", "bob@y.com"},
		{"  carol@z.com  ", "carol@z.com"},
		{"mailto:", ""},
		{"", ""},
	} {
		if got := normalizeAttendee(tc.in); got != tc.want {
			t.Errorf("normalizeAttendee(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
