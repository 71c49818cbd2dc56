package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/clockme/internal/duration"
	"github.com/joescharf/clockme/internal/models"
	"github.com/joescharf/clockme/internal/tracker"
)

var startCmd = &cobra.Command{
	Use:     "start",
	Aliases: []string{"now", "in"},
	Short:   "Clock in (or continue from break)",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startRun(cmd)
	},
}

var stopCmd = &cobra.Command{
	Use:     "stop",
	Aliases: []string{"out"},
	Short:   "Clock out",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopRun(cmd)
	},
}

var breakCmd = &cobra.Command{
	Use:   "break",
	Short: "Take a break",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return breakRun(cmd)
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "End the current break and continue working",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return resumeRun(cmd)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(breakCmd)
	rootCmd.AddCommand(resumeCmd)
}

func startRun(cmd *cobra.Command) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	if dryRun {
		return previewClock(cmd, svc, clockStart)
	}
	res, err := svc.StartSession(cmdContext(cmd))
	if err != nil {
		return err
	}
	printClockIn(res)
	return nil
}

func resumeRun(cmd *cobra.Command) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	if dryRun {
		return previewClock(cmd, svc, clockResume)
	}
	res, err := svc.Resume(cmdContext(cmd))
	if err != nil {
		return err
	}
	printClockIn(res)
	return nil
}

func printClockIn(res *tracker.ClockInResult) {
	if !res.Resumed {
		ui.Success("Clocked in to project: %s", res.Project.Name)
		ui.Line("Started tracking time at %s", res.At.Local().Format("15:04:05"))
		return
	}

	ui.Success("Break ended, continuing work on: %s", res.Project.Name)
	ui.Line("Break duration: %s", duration.Format(res.BreakDuration))
	if cur := res.Project.CurrentSession; cur != nil {
		if total := cur.TotalBreakTime(); total >= time.Minute {
			ui.Line("Total break time this session: %s", duration.Format(total))
		}
	}
}

func stopRun(cmd *cobra.Command) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	if dryRun {
		return previewClock(cmd, svc, clockStop)
	}
	res, err := svc.EndSession(cmdContext(cmd))
	if err != nil {
		return err
	}

	ui.Success("Clocked out from project: %s", res.Project.Name)
	ui.Line("Session work time: %s", duration.Format(res.WorkTime))
	ui.Line("  (%.2f hours)", duration.Hours(res.WorkTime))

	if brk := res.Session.TotalBreakTime(); brk >= time.Minute {
		ui.Line("Break time: %s", duration.Format(brk))
		ui.Line("  (Breaks taken: %d)", len(res.Session.Breaks))
	}
	return nil
}

func breakRun(cmd *cobra.Command) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	if dryRun {
		return previewClock(cmd, svc, clockBreak)
	}
	res, err := svc.StartBreak(cmdContext(cmd))
	if err != nil {
		return err
	}

	ui.Success("Break started for project: %s", res.Project.Name)
	ui.Line("Work time before break: %s", duration.Format(res.WorkBeforeBreak))
	if res.PriorBreaks >= time.Minute {
		ui.Line("Previous breaks this session: %s", duration.Format(res.PriorBreaks))
	}
	ui.Line("")
	ui.Line("Use 'clock-me start' or 'clock-me resume' to continue working")
	return nil
}

type clockAction int

const (
	clockStart clockAction = iota
	clockStop
	clockBreak
	clockResume
)

// previewClock reports what a clock command would do from the current state
// without saving. Forbidden transitions fail as they would for real.
func previewClock(cmd *cobra.Command, svc *tracker.Service, action clockAction) error {
	p, err := svc.Project(cmdContext(cmd))
	if err != nil {
		return err
	}
	state := p.State()

	switch action {
	case clockStart:
		switch state {
		case models.StateWorking:
			return models.ErrAlreadyClockedIn
		case models.StateOnBreak:
			ui.DryRunMsg("Would end the break and continue work on: %s", p.Name)
		default:
			ui.DryRunMsg("Would clock in to project: %s", p.Name)
		}
	case clockResume:
		if state != models.StateOnBreak {
			return models.ErrNotOnBreak
		}
		ui.DryRunMsg("Would end the break and continue work on: %s", p.Name)
	case clockStop:
		switch state {
		case models.StateIdle:
			return models.ErrNotClockedIn
		case models.StateOnBreak:
			ui.DryRunMsg("Would end the break and clock out from project: %s", p.Name)
		default:
			ui.DryRunMsg("Would clock out from project: %s", p.Name)
		}
	case clockBreak:
		switch state {
		case models.StateIdle:
			return models.ErrNotClockedIn
		case models.StateOnBreak:
			return models.ErrAlreadyOnBreak
		default:
			ui.DryRunMsg("Would start a break for project: %s", p.Name)
		}
	}
	return nil
}
