package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Billing run metrics
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorbill_runs_total",
			Help: "Total billing runs by outcome",
		},
		[]string{"outcome"},
	)

	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tutorbill_run_duration_seconds",
			Help:    "Billing run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Document metrics
	FetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorbill_fetches_total",
			Help: "Document fetches by result",
		},
		[]string{"result"},
	)

	EventsParsed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tutorbill_feed_events_parsed_total",
			Help: "Calendar events successfully parsed",
		},
	)

	EventsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tutorbill_feed_events_skipped_total",
			Help: "Calendar events skipped as malformed",
		},
	)

	RosterRowsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tutorbill_roster_rows_skipped_total",
			Help: "Roster rows skipped as malformed",
		},
	)

	// Delivery metrics
	PayloadsPushed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tutorbill_payloads_pushed_total",
			Help: "Notification payloads pushed to the messaging channel",
		},
	)
)

// Register registers all collectors with the given registry.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		RunsTotal,
		RunDuration,
		FetchesTotal,
		EventsParsed,
		EventsSkipped,
		RosterRowsSkipped,
		PayloadsPushed,
	)
}
