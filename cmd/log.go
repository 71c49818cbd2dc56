package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/clockme/internal/duration"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:     "log",
	Aliases: []string{"history"},
	Short:   "List closed sessions, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return logRun(cmd)
	},
}

func init() {
	logCmd.Flags().IntVar(&logLimit, "limit", 10, "Maximum number of sessions to show (0 for all)")
	rootCmd.AddCommand(logCmd)
}

func logRun(cmd *cobra.Command) error {
	if logLimit < 0 {
		return errors.New("--limit must not be negative")
	}

	svc, err := getService()
	if err != nil {
		return err
	}
	sessions, err := svc.History(cmdContext(cmd), logLimit)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		ui.Info("No sessions recorded yet. Use 'clock-me start' to begin.")
		return nil
	}

	table := ui.Table([]string{"Date", "Start", "End", "Work", "Break", "Breaks"})
	for i := range sessions {
		s := &sessions[i]
		end := "-"
		if s.End != nil {
			end = s.End.Local().Format("15:04")
		}
		work, _ := s.WorkTime()
		table.Append([]string{
			s.Start.Local().Format("2006-01-02"),
			s.Start.Local().Format("15:04"),
			end,
			duration.Format(work),
			duration.Format(s.TotalBreakTime()),
			fmt.Sprintf("%d", len(s.Breaks)),
		})
	}
	table.Render()
	return nil
}
