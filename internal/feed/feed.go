// Package feed fetches a teacher's calendar feed and turns it into
// normalized events ready for billing classification.
package feed

import (
	"context"

	"tutorbill/internal/fetch"
	"tutorbill/internal/model"
	"tutorbill/internal/period"
)

// Parser fetches and parses a calendar feed. One fetch per call; the
// result is not restartable.
type Parser struct {
	fetcher *fetch.Client
}

// NewParser creates a feed parser on top of the given fetch client.
func NewParser(fetcher *fetch.Client) *Parser {
	return &Parser{fetcher: fetcher}
}

// Events fetches the feed at url and returns its events expanded into
// the billing window. Fetch failures surface as NETWORK_ERROR, an
// unparseable document as PARSE_ERROR; either aborts the caller's run.
func (p *Parser) Events(ctx context.Context, url string, win period.Window) ([]model.Event, error) {
	body, err := p.fetcher.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	raws, err := ParseFeed(body)
	if err != nil {
		return nil, err
	}

	return Expand(raws, win), nil
}
