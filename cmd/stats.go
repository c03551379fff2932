package cmd

import (
	"github.com/spf13/cobra"

	"github.com/brk3/habitboard/internal/apiclient"
)

var statsCmd = &cobra.Command{
	Use:   "stats [habit-id]",
	Short: "Show the dashboard, or one habit's summary",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := loadClient()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			return habitStats(cmd, client, args[0])
		}
		return dashboard(cmd, client)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func dashboard(cmd *cobra.Command, client *apiclient.Client) error {
	d, err := client.GetDashboard(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("Current streak:  %d days\n", d.CurrentStreak)
	cmd.Printf("Longest streak:  %d days\n", d.LongestStreak)
	cmd.Printf("Login streak:    %d days\n", d.LoginStreak)
	cmd.Printf("This week:       %d%% (%+d%% vs last week)\n", d.Weekly.Rate, d.Weekly.Delta)
	cmd.Printf("Best weekday:    %s\n", d.Weekly.BestWeekday)
	return nil
}

func habitStats(cmd *cobra.Command, client *apiclient.Client, habitID string) error {
	s, err := client.GetHabitSummary(cmd.Context(), habitID)
	if err != nil {
		return err
	}
	cmd.Printf("%s\n", s.Name)
	cmd.Printf("  Current streak: %d days\n", s.CurrentStreak)
	cmd.Printf("  Longest streak: %d days\n", s.LongestStreak)
	cmd.Printf("  Total days:     %d\n", s.TotalDaysDone)
	cmd.Printf("  This month:     %d\n", s.ThisMonth)
	cmd.Printf("  Best month:     %d\n", s.BestMonth)
	if s.FirstLogged != "" {
		cmd.Printf("  First logged:   %s\n", s.FirstLogged)
	}
	return nil
}
