package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/clockme/internal/duration"
	"github.com/joescharf/clockme/internal/output"
	"github.com/joescharf/clockme/internal/tracker"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current tracking status",
	Long: `Show whether you are clocked in, on a break or clocked out, together
with the current or last session and today's and all-time totals.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun(cmd)
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(statusCmd)
}

const (
	clockLayout    = "15:04:05"
	dateTimeLayout = "2006-01-02 15:04:05"
)

func statusRun(cmd *cobra.Command) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	st, err := svc.Status(cmdContext(cmd))
	if err != nil {
		return err
	}

	if statusJSON {
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(tracker.NewStatusView(st))
	}

	printStatus(st)
	return nil
}

func printStatus(st *tracker.Status) {
	ui.Line(output.Rule)
	ui.Line("Project: %s", output.Cyan(st.ProjectName))
	ui.Line("Status: %s", output.StateColor(string(st.State)))

	switch {
	case st.CurrentBreakStart != nil:
		ui.Line("Break started at: %s", st.CurrentBreakStart.Local().Format(clockLayout))
		ui.Line("Current break duration: %s", duration.Format(st.BreakElapsed()))
		if prior := st.CurrentSession.TotalBreakTime(); prior >= time.Minute {
			ui.Line("Previous breaks this session: %s", duration.Format(prior))
		}
	case st.CurrentSession != nil:
		ui.Line("Started at: %s", st.CurrentSession.Start.Local().Format(dateTimeLayout))
		ui.Line("Working for: %s", duration.Format(st.SessionWork()))
		if brk := st.CurrentSession.TotalBreakTime(); brk >= time.Minute {
			ui.Line("Break time this session: %s (%d breaks)", duration.Format(brk), len(st.CurrentSession.Breaks))
		}
	case st.LastSession != nil:
		last := st.LastSession
		ui.Heading("Last session:")
		ui.Field("Started", last.Start.Local().Format(dateTimeLayout))
		if last.End != nil {
			ui.Field("Ended", last.End.Local().Format(dateTimeLayout))
		}
		if work, ok := last.WorkTime(); ok {
			ui.Field("Work time", duration.Format(work))
		}
		if brk := last.TotalBreakTime(); brk >= time.Minute {
			ui.Field("Break time", fmt.Sprintf("%s (%d breaks)", duration.Format(brk), len(last.Breaks)))
		}
	}

	ui.Heading("Today's Summary:")
	printTotals(st.Today, true)
	if st.Target > 0 {
		label := fmt.Sprintf("%s left of %s", duration.Format(st.Remaining), duration.Format(st.Target))
		if st.Remaining == 0 {
			label = fmt.Sprintf("reached (%s)", duration.Format(st.Target))
		}
		ui.Field("Target", output.ProgressColor(label, st.Remaining == 0))
	}

	ui.Heading("Total (all time):")
	printTotals(st.AllTime, false)
	ui.Line(output.Rule)
}

func printTotals(t tracker.Totals, showBreaks bool) {
	ui.Field("Work time", duration.Format(t.Work))
	if t.Break >= time.Minute {
		ui.Field("Break time", duration.Format(t.Break))
	}
	ui.Field("Sessions", t.Sessions)
	if showBreaks && t.Breaks > 0 {
		ui.Field("Breaks", t.Breaks)
	}
}
