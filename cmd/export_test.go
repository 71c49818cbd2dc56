package cmd

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/clockme/internal/store"
)

// recordedProject sets up a project with two closed sessions.
func recordedProject(t *testing.T) string {
	t.Helper()
	root := projectEnv(t)
	for range 2 {
		require.NoError(t, startRun(startCmd))
		require.NoError(t, breakRun(breakCmd))
		require.NoError(t, stopRun(stopCmd))
	}
	resetOut()
	return root
}

func TestExport_JSON(t *testing.T) {
	recordedProject(t)

	require.NoError(t, exportRun(exportCmd))

	var doc exportDoc
	require.NoError(t, json.Unmarshal([]byte(stdout(t)), &doc))
	assert.Equal(t, "demo", doc.Project)
	assert.Len(t, doc.Sessions, 2)
	assert.Equal(t, 2, doc.Work.Sessions)
	assert.Equal(t, 2, doc.Work.Breaks)
	assert.NotEmpty(t, doc.Sessions[0].ID)
}

func TestExport_CSV(t *testing.T) {
	recordedProject(t)
	exportFormat = "csv"

	require.NoError(t, exportRun(exportCmd))

	rows, err := csv.NewReader(strings.NewReader(stdout(t))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "1", rows[1][5])
}

func TestExport_Markdown(t *testing.T) {
	recordedProject(t)
	exportFormat = "markdown"

	require.NoError(t, exportRun(exportCmd))
	out := stdout(t)
	assert.Contains(t, out, "# demo")
	assert.Contains(t, out, "| Date | Start | End |")
	assert.Contains(t, out, "**Total work:**")
}

func TestExport_ToFile(t *testing.T) {
	recordedProject(t)
	path := filepath.Join(t.TempDir(), "sessions.json")
	exportOutput = path

	require.NoError(t, exportRun(exportCmd))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"project": "demo"`)
	assert.Contains(t, stdout(t), "Exported 2 sessions")
}

func TestExport_UnknownFormat(t *testing.T) {
	recordedProject(t)
	exportFormat = "xml"

	err := exportRun(exportCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestExport_SQLite(t *testing.T) {
	root := recordedProject(t)
	exportFormat = "sqlite"

	require.NoError(t, exportRun(exportCmd))
	// Re-export replaces the archived rows.
	require.NoError(t, exportRun(exportCmd))
	assert.Contains(t, stdout(t), "Archived 2 sessions (2 breaks)")

	archive, err := store.OpenArchive(filepath.Join(root, store.DefaultDirName, archiveFileName))
	require.NoError(t, err)
	defer archive.Close()

	sessions, err := archive.ListSessions(t.Context(), "demo")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestExport_SQLiteDryRun(t *testing.T) {
	root := recordedProject(t)
	exportFormat = "sqlite"
	dryRun = true
	ui.DryRun = true

	require.NoError(t, exportRun(exportCmd))

	_, err := os.Stat(filepath.Join(root, store.DefaultDirName, archiveFileName))
	assert.True(t, os.IsNotExist(err))
}
