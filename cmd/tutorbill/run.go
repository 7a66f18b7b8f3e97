package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"tutorbill/internal/billing"
	"tutorbill/internal/config"
	"tutorbill/internal/fetch"
	appLog "tutorbill/internal/log"
	"tutorbill/internal/notify"
	"tutorbill/internal/period"
	"tutorbill/internal/runner"
	"tutorbill/internal/store"
)

var (
	runRecipient string
	runYear      int
	runMonth     int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run billing once for a registered teacher and deliver the result",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if runRecipient == "" {
			return errors.New("--recipient is required")
		}

		conf, err := config.Load(configPath)
		if err != nil {
			return err
		}
		appLog.SetLevel(conf.LogLevel)
		appLog.SetConsole()

		if conf.Push.Endpoint == "" {
			return errors.New("push.endpoint must be configured")
		}

		st, err := store.NewSQLiteStore(conf.StorePath)
		if err != nil {
			return err
		}
		defer st.Close()

		channel, err := notify.NewPushChannel(conf.Push.Endpoint, conf.Push.Token)
		if err != nil {
			return err
		}

		year, month := runYear, runMonth
		if year == 0 && month == 0 {
			year, month = period.Previous(time.Now())
		}

		engine := billing.NewEngine(fetch.NewClient(conf.CacheDir))
		return runner.New(st, engine, channel).Run(cmd.Context(), runRecipient, year, month)
	},
}

func init() {
	runCmd.Flags().StringVar(&runRecipient, "recipient", "", "Messaging recipient ID of the teacher")
	runCmd.Flags().IntVar(&runYear, "year", 0, "Billing year (defaults to previous month)")
	runCmd.Flags().IntVar(&runMonth, "month", 0, "Billing month 1-12 (defaults to previous month)")
}
