package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// UI provides colored output and respects verbose/dry-run modes.
type UI struct {
	Verbose bool
	DryRun  bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New creates a UI with default stdout/stderr writers.
func New() *UI {
	return &UI{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
}

var (
	infoPrefix    = color.New(color.FgHiBlue).Sprint("i")
	successPrefix = color.New(color.FgHiGreen).Sprint("\u2713")
	warningPrefix = color.New(color.FgHiYellow).Sprint("\u26a0")
	verbosePrefix = color.New(color.FgHiBlue).Sprint("  \u2192")
	cyan          = color.New(color.FgHiCyan).SprintFunc()
	green         = color.New(color.FgHiGreen).SprintFunc()
	yellow        = color.New(color.FgHiYellow).SprintFunc()
	bold          = color.New(color.Bold).SprintFunc()
)

// SetColor forces colored output on or off.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// Cyan returns a cyan-colored string.
func Cyan(s string) string { return cyan(s) }

// StateColor returns the tracking state colored for display.
func StateColor(state string) string {
	switch strings.ToLower(state) {
	case "working":
		return green("Clocked IN")
	case "on_break":
		return yellow("On BREAK")
	case "idle":
		return cyan("Clocked OUT")
	default:
		return state
	}
}

// ProgressColor colors a remaining-time label: green once the daily target
// is met, yellow while under way.
func ProgressColor(label string, met bool) string {
	if met {
		return green(label)
	}
	return yellow(label)
}

// Rule is the horizontal separator framing the status dashboard.
const Rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// Line prints an unprefixed line.
func (u *UI) Line(format string, a ...any) {
	fmt.Fprintf(u.Out, format+"\n", a...)
}

// Field prints an indented "label: value" line.
func (u *UI) Field(label string, value any) {
	fmt.Fprintf(u.Out, "  %-12s %v\n", label+":", value)
}

// Heading prints a bold section title preceded by a blank line.
func (u *UI) Heading(title string) {
	fmt.Fprintf(u.Out, "\n%s\n", bold(title))
}

func (u *UI) Info(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", infoPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Success(format string, a ...any) {
	fmt.Fprintf(u.Out, "%s %s\n", successPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) Warning(format string, a ...any) {
	fmt.Fprintf(u.ErrOut, "%s %s\n", warningPrefix, fmt.Sprintf(format, a...))
}

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		fmt.Fprintf(u.Out, "%s %s\n", verbosePrefix, fmt.Sprintf(format, a...))
	}
}

func (u *UI) DryRunMsg(format string, a ...any) {
	if u.DryRun {
		u.Warning("[DRY-RUN] "+format, a...)
	}
}

// Table creates a new tablewriter configured with consistent styling.
func (u *UI) Table(headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(u.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}
