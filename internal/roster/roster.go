// Package roster fetches and parses the student fee roster: a CSV
// document with columns (display name, email, fee per hour).
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"strconv"
	"strings"

	apperrors "tutorbill/internal/errors"
	"tutorbill/internal/fetch"
	appLog "tutorbill/internal/log"
	"tutorbill/internal/metrics"
	"tutorbill/internal/model"
)

// Lookup fetches and parses the roster document.
type Lookup struct {
	fetcher *fetch.Client
}

// NewLookup creates a roster lookup on top of the given fetch client.
func NewLookup(fetcher *fetch.Client) *Lookup {
	return &Lookup{fetcher: fetcher}
}

// Roster fetches the roster at url and parses it. Fetch failures surface
// as NETWORK_ERROR; a document that is not tabular at all as PARSE_ERROR.
func (l *Lookup) Roster(ctx context.Context, url string) (model.Roster, error) {
	body, err := l.fetcher.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseRoster(body)
}

// ParseRoster parses a CSV roster body into the email-keyed roster map.
//
// The first row is a header and is skipped unconditionally. Each
// subsequent row is parsed permissively: rows missing any of the three
// fields, or whose fee fails numeric parsing or is negative, are skipped.
// Quoted fields are honored within a row, so display names may contain
// the delimiter.
//
// Each physical line is decoded with its own reader. A stream-wide
// csv.Reader would chase an unterminated quote across line boundaries
// and swallow every row after the malformed one; per-line decoding
// confines a quoting error to exactly that row.
func ParseRoster(body []byte) (model.Roster, error) {
	roster := make(model.Roster)
	row := 0

	for _, line := range strings.Split(string(body), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		row++
		if row == 1 {
			// Header row.
			continue
		}

		record, err := readRow(line)
		if err != nil {
			metrics.RosterRowsSkipped.Inc()
			appLog.Debug("skipping malformed roster row", "row", row)
			continue
		}

		entry, email, ok := parseRow(record)
		if !ok {
			metrics.RosterRowsSkipped.Inc()
			appLog.Debug("skipping incomplete roster row", "row", row)
			continue
		}
		roster[email] = entry
	}

	if row == 0 {
		return nil, apperrors.NewParseError("roster document", errors.New("empty roster body"))
	}

	return roster, nil
}

// readRow decodes one physical line as a single CSV record.
func readRow(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimRight(line, "\r")))
	r.FieldsPerRecord = -1
	return r.Read()
}

func parseRow(record []string) (model.RosterEntry, string, bool) {
	if len(record) < 3 {
		return model.RosterEntry{}, "", false
	}

	name := strings.TrimSpace(record[0])
	email := strings.ToLower(strings.TrimSpace(record[1]))
	feeField := strings.TrimSpace(record[2])
	if name == "" || email == "" || feeField == "" {
		return model.RosterEntry{}, "", false
	}

	fee, err := strconv.ParseFloat(feeField, 64)
	if err != nil || fee < 0 {
		return model.RosterEntry{}, "", false
	}

	return model.RosterEntry{DisplayName: name, HourlyFee: fee}, email, true
}
