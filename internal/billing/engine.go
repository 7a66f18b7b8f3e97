// Package billing implements the monthly billing calculation engine:
// window derivation, event classification, per-student aggregation and
// notification composition.
package billing

import (
	"context"
	"strings"

	"tutorbill/internal/feed"
	"tutorbill/internal/fetch"
	appLog "tutorbill/internal/log"
	"tutorbill/internal/model"
	"tutorbill/internal/period"
	"tutorbill/internal/roster"
)

// Engine runs one billing calculation per invocation. It owns no state
// across runs; same inputs produce the same payloads, modulo the source
// documents changing between calls.
type Engine struct {
	feed   *feed.Parser
	roster *roster.Lookup
}

// NewEngine creates an engine whose feed and roster fetches share the
// given fetch client.
func NewEngine(fetcher *fetch.Client) *Engine {
	return &Engine{
		feed:   feed.NewParser(fetcher),
		roster: roster.NewLookup(fetcher),
	}
}

// Compute derives the billing window for (year, month), fetches the feed
// and roster concurrently, classifies and aggregates events, and returns
// the ordered payload sequence for delivery.
//
// Any NETWORK_ERROR or PARSE_ERROR aborts the whole run with no payloads:
// billing is all-or-nothing per run so incomplete financial information
// is never sent.
func (e *Engine) Compute(ctx context.Context, feedURL, rosterURL, teacherEmail string, year, month int) ([]string, error) {
	win, err := period.MonthWindow(year, month)
	if err != nil {
		return nil, err
	}
	teacherEmail = strings.ToLower(strings.TrimSpace(teacherEmail))

	// Feed and roster are independent; fetch them concurrently. Both
	// must succeed before aggregation.
	var (
		events    []model.Event
		rosterMap model.Roster
	)
	errCh := make(chan error, 2)
	go func() {
		var ferr error
		events, ferr = e.feed.Events(ctx, feedURL, win)
		errCh <- ferr
	}()
	go func() {
		var rerr error
		rosterMap, rerr = e.roster.Roster(ctx, rosterURL)
		errCh <- rerr
	}()
	for i := 0; i < 2; i++ {
		if ferr := <-errCh; ferr != nil && err == nil {
			err = ferr
		}
	}
	if err != nil {
		return nil, err
	}

	classifications := ClassifyAll(events, win, teacherEmail)
	result := Aggregate(classifications, rosterMap)

	appLog.Info("billing computed",
		"year", year,
		"month", month,
		"events", len(events),
		"billed_students", len(result.Lines),
		"ambiguous", len(result.AmbiguousEvents),
		"unresolved", len(result.UnresolvedEmails),
	)

	return Compose(result, year, month), nil
}
