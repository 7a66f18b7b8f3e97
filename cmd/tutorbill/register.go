package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tutorbill/internal/config"
	appLog "tutorbill/internal/log"
	"tutorbill/internal/model"
	"tutorbill/internal/store"
)

var (
	regRecipient string
	regFeedURL   string
	regRosterURL string
	regEmail     string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register or update a teacher's feed, roster and email",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if regRecipient == "" || regFeedURL == "" || regRosterURL == "" || regEmail == "" {
			return errors.New("--recipient, --feed, --roster and --email are all required")
		}

		conf, err := config.Load(configPath)
		if err != nil {
			return err
		}
		appLog.SetConsole()

		st, err := store.NewSQLiteStore(conf.StorePath)
		if err != nil {
			return err
		}
		defer st.Close()

		reg := model.Registration{
			Recipient:    regRecipient,
			FeedURL:      regFeedURL,
			RosterURL:    regRosterURL,
			TeacherEmail: strings.ToLower(strings.TrimSpace(regEmail)),
		}
		if err := st.Upsert(cmd.Context(), reg); err != nil {
			return err
		}

		appLog.Info("registration saved", "recipient", regRecipient)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&regRecipient, "recipient", "", "Messaging recipient ID of the teacher")
	registerCmd.Flags().StringVar(&regFeedURL, "feed", "", "Calendar feed (ICS) URL")
	registerCmd.Flags().StringVar(&regRosterURL, "roster", "", "Roster (CSV) URL")
	registerCmd.Flags().StringVar(&regEmail, "email", "", "Teacher's own email address")
}
