package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/clockme/internal/duration"
	"github.com/joescharf/clockme/internal/models"
	"github.com/joescharf/clockme/internal/store"
	"github.com/joescharf/clockme/internal/tracker"
)

var (
	exportFormat string
	exportOutput string
)

// archiveFileName is the default SQLite export inside the data directory.
const archiveFileName = "archive.db"

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export session history as JSON, CSV, Markdown or SQLite",
	Long: `Export the project's closed sessions.

json, csv and markdown are written to stdout unless --output is given.
sqlite writes an archive database, by default <data_dir>/archive.db next to
the project data; re-exporting replaces the archived sessions.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun(cmd)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, csv, markdown, sqlite")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file")
	rootCmd.AddCommand(exportCmd)
}

func exportRun(cmd *cobra.Command) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	ctx := cmdContext(cmd)

	p, err := svc.Project(ctx)
	if err != nil {
		return err
	}

	if exportFormat == "sqlite" {
		return exportSQLite(ctx, p)
	}

	var write func(io.Writer, *models.Project) error
	switch exportFormat {
	case "json":
		write = exportJSON
	case "csv":
		write = exportCSV
	case "markdown", "md":
		write = exportMarkdown
	default:
		return fmt.Errorf("unknown format: %s (use: json, csv, markdown, sqlite)", exportFormat)
	}

	if exportOutput == "" {
		return write(ui.Out, p)
	}
	if dryRun {
		ui.DryRunMsg("Would write %s export to %s", exportFormat, exportOutput)
		return nil
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("create %s: %w", exportOutput, err)
	}
	if err := write(f, p); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", exportOutput, err)
	}
	ui.Success("Exported %d sessions to %s", len(p.Sessions), exportOutput)
	return nil
}

type exportDoc struct {
	Project   string                `json:"project"`
	CreatedAt *time.Time            `json:"created_at,omitempty"`
	Sessions  []tracker.SessionView `json:"sessions"`
	Work      tracker.TotalsView    `json:"total"`
}

func exportJSON(w io.Writer, p *models.Project) error {
	doc := exportDoc{
		Project:  p.Name,
		Sessions: make([]tracker.SessionView, len(p.Sessions)),
		Work: tracker.NewTotalsView(tracker.Totals{
			Work:     p.TotalWorkTime(),
			Break:    p.TotalBreakTime(),
			Sessions: len(p.Sessions),
			Breaks:   countBreaks(p.Sessions),
		}),
	}
	if !p.CreatedAt.IsZero() {
		created := p.CreatedAt
		doc.CreatedAt = &created
	}
	for i := range p.Sessions {
		doc.Sessions[i] = tracker.NewSessionView(&p.Sessions[i])
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func exportCSV(w io.Writer, p *models.Project) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"ID", "Start", "End", "WorkMinutes", "BreakMinutes", "Breaks"})
	for i := range p.Sessions {
		s := &p.Sessions[i]
		end := ""
		if s.End != nil {
			end = s.End.Format(time.RFC3339)
		}
		work, _ := s.WorkTime()
		cw.Write([]string{
			s.ID,
			s.Start.Format(time.RFC3339),
			end,
			strconv.FormatInt(int64(work/time.Minute), 10),
			strconv.FormatInt(int64(s.TotalBreakTime()/time.Minute), 10),
			strconv.Itoa(len(s.Breaks)),
		})
	}
	cw.Flush()
	return cw.Error()
}

func exportMarkdown(w io.Writer, p *models.Project) error {
	fmt.Fprintf(w, "# %s\n\n", p.Name)
	fmt.Fprintln(w, "| Date | Start | End | Work | Break | Breaks |")
	fmt.Fprintln(w, "|------|-------|-----|------|-------|--------|")
	for i := range p.Sessions {
		s := &p.Sessions[i]
		end := "-"
		if s.End != nil {
			end = s.End.Local().Format("15:04")
		}
		work, _ := s.WorkTime()
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %d |\n",
			s.Start.Local().Format("2006-01-02"),
			s.Start.Local().Format("15:04"),
			end,
			duration.Format(work),
			duration.Format(s.TotalBreakTime()),
			len(s.Breaks))
	}
	fmt.Fprintf(w, "\n**Total work:** %s\n", duration.Format(p.TotalWorkTime()))
	return nil
}

func exportSQLite(ctx context.Context, p *models.Project) error {
	path := exportOutput
	if path == "" {
		root, err := resolveRoot(true)
		if err != nil {
			return err
		}
		path = filepath.Join(root, viper.GetString("data_dir"), archiveFileName)
	}

	if dryRun {
		ui.DryRunMsg("Would archive %d sessions to %s", len(p.Sessions), path)
		return nil
	}

	archive, err := store.OpenArchive(path)
	if err != nil {
		return err
	}
	defer archive.Close()

	if err := archive.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate archive: %w", err)
	}
	stats, err := archive.WriteProject(ctx, p)
	if err != nil {
		return err
	}

	ui.Success("Archived %d sessions (%d breaks) to %s", stats.Sessions, stats.Breaks, path)
	return nil
}

func countBreaks(sessions []models.Session) int {
	n := 0
	for i := range sessions {
		n += len(sessions[i].Breaks)
	}
	return n
}
