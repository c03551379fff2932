package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/brk3/habitboard/internal/apiclient"
	"github.com/brk3/habitboard/internal/config"
	"github.com/brk3/habitboard/internal/logger"
	"github.com/brk3/habitboard/internal/nudge"
	"github.com/brk3/habitboard/internal/nudge/resend"
)

var nudgeSchedule string

var nudgeCmd = &cobra.Command{
	Use:   "nudge",
	Short: "Send a reminder for habit streaks expiring within a certain window",
	Long: `The "nudge" command emails you when streaks are about to lapse. It runs once
and exits, or keeps running on a cron schedule with --schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.Init(cfg.LogFormat, cfg.LogLevel)

		apiKey := os.Getenv("HABITBOARD_RESEND_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("HABITBOARD_RESEND_API_KEY environment variable is not set")
		}
		if cfg.Nudge.Email == "" {
			return fmt.Errorf("nudge.email is not set in config")
		}

		client := apiclient.New(cfg.APIBaseURL, cfg.AuthToken)
		notifier := &resend.ResendNotifier{
			ApiKey: apiKey,
			Email:  cfg.Nudge.Email,
		}
		window := time.Duration(cfg.Nudge.ThresholdHours) * time.Hour

		schedule := nudgeSchedule
		if schedule == "" {
			schedule = cfg.Nudge.Schedule
		}
		if schedule == "" {
			return nudge.Run(cmd.Context(), client, notifier, time.Now(), window)
		}

		c := cron.New()
		_, err = c.AddFunc(schedule, func() {
			if err := nudge.Run(context.Background(), client, notifier, time.Now(), window); err != nil {
				logger.Error("Nudge run failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("bad schedule %q: %w", schedule, err)
		}

		logger.Info("Running nudge on schedule", "schedule", schedule)
		c.Run()
		return nil
	},
}

func init() {
	nudgeCmd.Flags().StringVar(&nudgeSchedule, "schedule", "",
		`cron spec to keep running, e.g. "0 18 * * *"`)
	rootCmd.AddCommand(nudgeCmd)
}
