package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tutorbill",
	Short: "tutorbill - monthly tutoring billing from a calendar feed",
	Long: `tutorbill computes monthly tutoring bills from a teacher's calendar
feed and a student fee roster, and delivers the results over a messaging
push channel. It runs as a daemon with a monthly schedule and a webhook,
or as one-shot commands.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to the serve command when no subcommand is provided
		return runServe(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yaml", "Path to configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(registerCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
