package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"tutorbill/internal/billing"
	"tutorbill/internal/config"
	"tutorbill/internal/fetch"
	appLog "tutorbill/internal/log"
	"tutorbill/internal/metrics"
	"tutorbill/internal/notify"
	"tutorbill/internal/period"
	"tutorbill/internal/runner"
	"tutorbill/internal/store"
	"tutorbill/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the billing daemon (webhook, API and monthly schedule)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	conf, err := config.Load(configPath)
	if err != nil {
		return err
	}
	appLog.SetLevel(conf.LogLevel)

	if conf.Push.Endpoint == "" {
		return errors.New("push.endpoint must be configured")
	}

	appLog.Info("tutorbill starting",
		"version", version,
		"listen", conf.Listen,
		"store_path", conf.StorePath,
		"billing_cron", conf.BillingCron,
	)

	metrics.Register(prometheus.DefaultRegisterer)

	st, err := store.NewSQLiteStore(conf.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	channel, err := notify.NewPushChannel(conf.Push.Endpoint, conf.Push.Token)
	if err != nil {
		return err
	}

	engine := billing.NewEngine(fetch.NewClient(conf.CacheDir))
	run := runner.New(st, engine, channel)

	// Monthly billing schedule, evaluated in the billing timezone so
	// "1st of the month" means the 1st at UTC+8 everywhere.
	sched := cron.New(cron.WithLocation(period.Zone))
	if _, err := sched.AddFunc(conf.BillingCron, func() {
		year, month := period.Previous(time.Now())
		appLog.Info("scheduled billing run", "year", year, "month", month)
		if err := run.RunAll(context.Background(), year, month); err != nil {
			appLog.Error("scheduled billing run had failures", err)
		}
	}); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	server := web.NewServer(st, run)
	httpServer := &http.Server{
		Addr:    conf.Listen,
		Handler: server.Router(),
	}

	// Shut down on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP shutdown failed", err)
	}

	appLog.Info("tutorbill exiting")
	return nil
}
