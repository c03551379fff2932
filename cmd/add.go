package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/brk3/habitboard/internal/apiclient"
	"github.com/brk3/habitboard/pkg/habit"
)

var (
	addDescription string
	addFrequency   string
	addDays        []string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a new habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := loadClient()
		if err != nil {
			return err
		}
		return addHabit(cmd, client, args[0])
	},
}

func init() {
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "optional description")
	addCmd.Flags().StringVarP(&addFrequency, "frequency", "f", "daily",
		"daily, weekdays, weekends or custom")
	addCmd.Flags().StringSliceVar(&addDays, "days", nil,
		"weekdays for a custom frequency, e.g. --days mon,wed,fri")
	rootCmd.AddCommand(addCmd)
}

func addHabit(cmd *cobra.Command, client *apiclient.Client, name string) error {
	h := habit.Habit{
		Name:        name,
		Description: addDescription,
		Frequency:   habit.Frequency(addFrequency),
	}
	for _, d := range addDays {
		wd, err := parseWeekday(d)
		if err != nil {
			return err
		}
		h.CustomDays = append(h.CustomDays, wd)
	}

	created, err := client.CreateHabit(cmd.Context(), h)
	if err != nil {
		return err
	}
	cmd.Printf("Created %q (%s)\n", created.Name, created.ID)
	return nil
}

func parseWeekday(s string) (time.Weekday, error) {
	names := map[string]time.Weekday{
		"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
		"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
	}
	if len(s) >= 3 {
		if wd, ok := names[strings.ToLower(s)[:3]]; ok {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("bad weekday %q, want e.g. mon", s)
}
