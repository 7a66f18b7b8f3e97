// Package runner wires the billing engine, the registration store and
// the messaging channel into per-teacher billing runs.
package runner

import (
	"context"
	"errors"
	"time"

	apperrors "tutorbill/internal/errors"
	appLog "tutorbill/internal/log"
	"tutorbill/internal/metrics"
	"tutorbill/internal/notify"
	"tutorbill/internal/store"
)

// failureNotice is sent when a run aborts, so the teacher knows no bill
// went out. The aborted run itself never produces partial payloads.
const failureNotice = "帳單計算失敗，請稍後再試"

// Engine computes one month of billing payloads.
type Engine interface {
	Compute(ctx context.Context, feedURL, rosterURL, teacherEmail string, year, month int) ([]string, error)
}

// Runner executes billing runs for registered teachers.
type Runner struct {
	store   store.Store
	engine  Engine
	channel notify.Channel
}

// New constructs a runner.
func New(st store.Store, engine Engine, channel notify.Channel) *Runner {
	return &Runner{store: st, engine: engine, channel: channel}
}

// Run executes the billing run for one recipient and delivers the
// resulting payloads. An engine failure aborts the run with no billing
// payloads sent; the recipient gets a single failure notice instead and
// the error propagates to the caller.
func (r *Runner) Run(ctx context.Context, recipient string, year, month int) error {
	started := time.Now()

	reg, ok, err := r.store.Get(ctx, recipient)
	if err != nil {
		return apperrors.NewInternalError("loading registration", err)
	}
	if !ok {
		return apperrors.NewNotRegisteredError(recipient)
	}

	payloads, err := r.engine.Compute(ctx, reg.FeedURL, reg.RosterURL, reg.TeacherEmail, year, month)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("error").Inc()
		appLog.Error("billing run failed", err, "recipient", recipient, "year", year, "month", month)
		if perr := r.channel.Push(ctx, recipient, []string{failureNotice}); perr != nil {
			appLog.Error("failure notice delivery failed", perr, "recipient", recipient)
		}
		return err
	}

	if err := r.channel.Push(ctx, recipient, payloads); err != nil {
		metrics.RunsTotal.WithLabelValues("push_error").Inc()
		appLog.Error("payload delivery failed", err, "recipient", recipient)
		return err
	}

	metrics.RunsTotal.WithLabelValues("ok").Inc()
	metrics.RunDuration.Observe(time.Since(started).Seconds())
	appLog.Info("billing run delivered",
		"recipient", recipient, "year", year, "month", month, "payloads", len(payloads))
	return nil
}

// RunAll executes the billing run for every registered teacher. Each
// teacher's calculation is independent and isolated: one failure never
// blocks the others. The joined error reports all failures.
func (r *Runner) RunAll(ctx context.Context, year, month int) error {
	regs, err := r.store.List(ctx)
	if err != nil {
		return apperrors.NewInternalError("listing registrations", err)
	}

	var errs []error
	for _, reg := range regs {
		if err := r.Run(ctx, reg.Recipient, year, month); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
