package cmd

import (
	"github.com/spf13/cobra"

	"github.com/brk3/habitboard/internal/apiclient"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits",
	Long:  `The "list" command lets you list your tracked habits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := loadClient()
		if err != nil {
			return err
		}
		return listHabits(cmd, client)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func listHabits(cmd *cobra.Command, client *apiclient.Client) error {
	habits, err := client.ListHabits(cmd.Context())
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		cmd.Println("No habits yet. Start one with \"habitboard add\".")
		return nil
	}
	for _, h := range habits {
		cmd.Printf("%s  %s (%s)\n", h.ID, h.Name, h.Frequency)
	}
	return nil
}
