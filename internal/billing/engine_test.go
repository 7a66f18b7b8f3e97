package billing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "tutorbill/internal/errors"
	"tutorbill/internal/fetch"
)

func icsBody(events ...string) string {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//EN"}
	lines = append(lines, events...)
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

func serveBody(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(fetch.NewClient(t.TempDir()))
}

func TestComputeSingleBillableStudent(t *testing.T) {
	feedSrv := serveBody(t, icsBody(
		"BEGIN:VEVENT",
		"UID:lesson-1",
		"DTSTART:20250310T020000Z", // 10:00 at UTC+8
		"DTEND:20250310T033000Z",
		"ATTENDEE:mailto:teacher@school.example",
		"ATTENDEE:mailto:student@x.com",
		"END:VEVENT",
	))
	rosterSrv := serveBody(t, "name,email,fee\nAlice,student@x.com,500\n")

	engine := newTestEngine(t)
	payloads, err := engine.Compute(context.Background(), feedSrv.URL, rosterSrv.URL, "teacher@school.example", 2025, 3)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if len(payloads) != 1 {
		t.Fatalf("got %d payloads, want 1: %q", len(payloads), payloads)
	}
	if !strings.Contains(payloads[0], "Alice") || !strings.Contains(payloads[0], "1.5") || !strings.Contains(payloads[0], "750") {
		t.Errorf("payload = %q, want Alice / 1.5 / 750", payloads[0])
	}
}

func TestComputeMultiAttendeeIsAmbiguous(t *testing.T) {
	feedSrv := serveBody(t, icsBody(
		"BEGIN:VEVENT",
		"UID:lesson-2",
		"DTSTART:20250312T020000Z",
		"DTEND:20250312T030000Z",
		"ATTENDEE:mailto:teacher@school.example",
		"ATTENDEE:mailto:a@x.com",
		"ATTENDEE:mailto:b@x.com",
		"END:VEVENT",
	))
	rosterSrv := serveBody(t, "name,email,fee\nA,a@x.com,500\nB,b@x.com,500\n")

	engine := newTestEngine(t)
	payloads, err := engine.Compute(context.Background(), feedSrv.URL, rosterSrv.URL, "teacher@school.example", 2025, 3)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if len(payloads) != 1 {
		t.Fatalf("got %d payloads, want one consolidated ambiguous payload: %q", len(payloads), payloads)
	}
	if strings.Contains(payloads[0], "繳費通知") {
		t.Errorf("ambiguous event produced a billing payload: %q", payloads[0])
	}
	// 02:00 UTC is 10:00 at UTC+8.
	if !strings.Contains(payloads[0], "2025-03-12 10:00") {
		t.Errorf("payload = %q, want the event start in UTC+8", payloads[0])
	}
}

func TestComputeUnknownStudentIsUnresolved(t *testing.T) {
	feedSrv := serveBody(t, icsBody(
		"BEGIN:VEVENT",
		"UID:lesson-3",
		"DTSTART:20250315T020000Z",
		"DTEND:20250315T030000Z",
		"ATTENDEE:mailto:teacher@school.example",
		"ATTENDEE:mailto:student@y.com",
		"END:VEVENT",
	))
	rosterSrv := serveBody(t, "name,email,fee\nAlice,student@x.com,500\n")

	engine := newTestEngine(t)
	payloads, err := engine.Compute(context.Background(), feedSrv.URL, rosterSrv.URL, "teacher@school.example", 2025, 3)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if len(payloads) != 1 {
		t.Fatalf("got %d payloads, want 1: %q", len(payloads), payloads)
	}
	if !strings.Contains(payloads[0], "student@y.com") {
		t.Errorf("payload = %q, want unresolved student@y.com", payloads[0])
	}
	if strings.Contains(payloads[0], "繳費通知") {
		t.Errorf("unresolved student produced a billing payload: %q", payloads[0])
	}
}

func TestComputeNoActivity(t *testing.T) {
	feedSrv := serveBody(t, icsBody())
	rosterSrv := serveBody(t, "name,email,fee\nAlice,student@x.com,500\n")

	engine := newTestEngine(t)
	payloads, err := engine.Compute(context.Background(), feedSrv.URL, rosterSrv.URL, "teacher@school.example", 2025, 3)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if len(payloads) != 1 {
		t.Fatalf("got %d payloads, want exactly one no-activity payload", len(payloads))
	}
	if !strings.Contains(payloads[0], "沒有上課紀錄") {
		t.Errorf("payload = %q", payloads[0])
	}
}

func TestComputeFeedFetchFailureAbortsRun(t *testing.T) {
	feedSrv := serveBody(t, "unused")
	feedSrv.Close() // connection refused
	rosterSrv := serveBody(t, "name,email,fee\nAlice,student@x.com,500\n")

	engine := newTestEngine(t)
	payloads, err := engine.Compute(context.Background(), feedSrv.URL, rosterSrv.URL, "teacher@school.example", 2025, 3)
	if err == nil {
		t.Fatal("expected error")
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeNetwork {
		t.Errorf("code = %s, want %s", code, apperrors.CodeNetwork)
	}
	if len(payloads) != 0 {
		t.Errorf("got %d payloads on aborted run, want 0", len(payloads))
	}
}

func TestComputeRosterParseFailureAbortsRun(t *testing.T) {
	feedSrv := serveBody(t, icsBody(
		"BEGIN:VEVENT",
		"UID:lesson-4",
		"DTSTART:20250315T020000Z",
		"DTEND:20250315T030000Z",
		"ATTENDEE:mailto:student@x.com",
		"END:VEVENT",
	))
	rosterSrv := serveBody(t, "")

	engine := newTestEngine(t)
	payloads, err := engine.Compute(context.Background(), feedSrv.URL, rosterSrv.URL, "teacher@school.example", 2025, 3)
	if err == nil {
		t.Fatal("expected error")
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeParse {
		t.Errorf("code = %s, want %s", code, apperrors.CodeParse)
	}
	if len(payloads) != 0 {
		t.Errorf("got %d payloads on aborted run, want 0", len(payloads))
	}
}

func TestComputeInvalidMonth(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Compute(context.Background(), "http://unused", "http://unused", "t@x.com", 2025, 13)
	if err == nil {
		t.Fatal("expected error")
	}
	if code := apperrors.CodeOf(err); code != apperrors.CodeInvalidArgument {
		t.Errorf("code = %s, want %s", code, apperrors.CodeInvalidArgument)
	}
}

func TestComputeRecurringLessons(t *testing.T) {
	// Weekly lesson, four Mondays in March; totals 4 hours at 450/h.
	feedSrv := serveBody(t, icsBody(
		"BEGIN:VEVENT",
		"UID:weekly-lesson",
		"DTSTART:20250303T020000Z",
		"DTEND:20250303T030000Z",
		"RRULE:FREQ=WEEKLY;COUNT=4",
		"ATTENDEE:mailto:teacher@school.example",
		"ATTENDEE:mailto:student@x.com",
		"END:VEVENT",
	))
	rosterSrv := serveBody(t, "name,email,fee\nAlice,student@x.com,450\n")

	engine := newTestEngine(t)
	payloads, err := engine.Compute(context.Background(), feedSrv.URL, rosterSrv.URL, "teacher@school.example", 2025, 3)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	if len(payloads) != 1 {
		t.Fatalf("got %d payloads, want 1: %q", len(payloads), payloads)
	}
	if !strings.Contains(payloads[0], "為4小時") || !strings.Contains(payloads[0], "是1800元") {
		t.Errorf("payload = %q, want 4h / 1800", payloads[0])
	}
}
