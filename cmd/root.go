package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/brk3/habitboard/internal/apiclient"
	"github.com/brk3/habitboard/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "habitboard",
	Short: "Track daily habits and keep streaks alive",
	Long: `
	Habitboard tracks daily habits: create them, check them off day by day, and watch
	your streaks and weekly success rates. It runs as an HTTP server and doubles as a
	CLI client against one.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadClient builds an API client from the config file. Commands that
// talk to a running server go through this.
func loadClient() (*apiclient.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return apiclient.New(cfg.APIBaseURL, cfg.AuthToken), nil
}
