package cmd

import (
	"github.com/spf13/cobra"

	"github.com/brk3/habitboard/internal/apiclient"
)

var doneDate string

var doneCmd = &cobra.Command{
	Use:   "done <habit-id>",
	Short: "Toggle a habit's check-in for a day",
	Long: `The "done" command marks a habit complete for today, or for --date. Running
it again on the same day takes the check-in back.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := loadClient()
		if err != nil {
			return err
		}
		return toggleDone(cmd, client, args[0])
	},
}

func init() {
	doneCmd.Flags().StringVar(&doneDate, "date", "", "day to toggle, YYYY-MM-DD (default today)")
	rootCmd.AddCommand(doneCmd)
}

func toggleDone(cmd *cobra.Command, client *apiclient.Client, habitID string) error {
	resp, err := client.ToggleCheckin(cmd.Context(), habitID, doneDate)
	if err != nil {
		return err
	}
	if resp.Completed {
		cmd.Printf("Checked in for %s\n", resp.Date)
	} else {
		cmd.Printf("Check-in removed for %s\n", resp.Date)
	}
	return nil
}
