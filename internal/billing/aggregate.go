package billing

import (
	"math"
	"time"

	"tutorbill/internal/model"
)

// Round2 rounds half away from zero to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Aggregate sums billable durations per student and joins them against
// the roster.
//
// Per-student totals are keyed by email with first-appearance order
// preserved, so output ordering is deterministic while the sums
// themselves are order-independent. Hours are rounded to 2 decimals
// before the fee multiplication, and the fee is rounded again after —
// two independent rounding steps, so the displayed hours and fee are
// each exactly the value the student sees.
//
// Students with billable hours but no roster entry are reported as
// unresolved, never dropped. Ambiguous events carry through in their
// original encounter order.
func Aggregate(classifications []model.Classification, roster model.Roster) model.AggregationResult {
	order := make([]string, 0)
	hours := make(map[string]float64)
	ambiguous := make([]time.Time, 0)

	for _, c := range classifications {
		switch c.Kind {
		case model.KindBillable:
			if _, seen := hours[c.StudentEmail]; !seen {
				order = append(order, c.StudentEmail)
			}
			hours[c.StudentEmail] += c.DurationHours
		case model.KindAmbiguous:
			ambiguous = append(ambiguous, c.EventStart)
		}
	}

	result := model.AggregationResult{AmbiguousEvents: ambiguous}

	for _, email := range order {
		entry, ok := roster.Lookup(email)
		if !ok {
			result.UnresolvedEmails = append(result.UnresolvedEmails, email)
			continue
		}

		roundedHours := Round2(hours[email])
		fee := Round2(roundedHours * entry.HourlyFee)

		result.Lines = append(result.Lines, model.BillingLine{
			Email:       email,
			DisplayName: entry.DisplayName,
			Hours:       roundedHours,
			Fee:         fee,
		})
	}

	return result
}
