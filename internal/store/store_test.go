package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/clockme/internal/models"
)

func at(day, hour, min int) time.Time {
	return time.Date(2025, 10, day, hour, min, 0, 0, time.UTC)
}

// sampleProject builds a project with two closed sessions, an open session
// and an open break.
func sampleProject(t *testing.T) *models.Project {
	t.Helper()
	p := models.NewProject("demo", at(12, 8, 0))

	p.StartSession(at(12, 9, 0))
	require.NoError(t, p.StartBreak(at(12, 12, 0)))
	_, err := p.EndBreak(at(12, 12, 30))
	require.NoError(t, err)
	require.NoError(t, p.StartBreak(at(12, 15, 0)))
	_, err = p.EndBreak(at(12, 15, 10))
	require.NoError(t, err)
	_, err = p.EndSession(at(12, 17, 0))
	require.NoError(t, err)

	p.StartSession(at(13, 9, 0))
	_, err = p.EndSession(at(13, 10, 0))
	require.NoError(t, err)

	p.StartSession(at(14, 9, 0))
	require.NoError(t, p.StartBreak(at(14, 10, 0)))
	return p
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(t.TempDir(), "")
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	p := sampleProject(t)
	require.NoError(t, s.Save(ctx, p))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, models.StateOnBreak, got.State())
	require.Len(t, got.Sessions, 2)
	assert.Len(t, got.Sessions[0].Breaks, 2)
	assert.Equal(t, at(12, 12, 0), got.Sessions[0].Breaks[0].Start, "history order preserved")
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	p := sampleProject(t)

	data, err := Encode(p)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	again, err := Encode(got)
	require.NoError(t, err)

	assert.Equal(t, p, got)
	assert.JSONEq(t, string(data), string(again))
}

func TestFileStore_LoadMissing(t *testing.T) {
	s := newTestFileStore(t)

	exists, err := s.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0644))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileStore_LoadRejectsBreakWithoutSession(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	raw := `{"name":"x","current_session":null,"current_break":{"start":"2025-10-13T12:00:00Z","end":null},"sessions":[]}`
	require.NoError(t, os.WriteFile(s.Path(), []byte(raw), 0644))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestFileStore_LoadLegacyRecord(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	// Written before breaks, IDs and created_at existed.
	raw := `{
  "name": "old",
  "current_session": {"start": "2025-10-13T09:00:00+02:00", "end": null},
  "sessions": [
    {"start": "2025-10-12T09:00:00+02:00", "end": "2025-10-12T17:00:00+02:00"}
  ]
}`
	require.NoError(t, os.WriteFile(s.Path(), []byte(raw), 0644))

	p, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old", p.Name)
	assert.Nil(t, p.CurrentBreak)
	assert.True(t, p.CreatedAt.IsZero())
	require.NotNil(t, p.CurrentSession)
	assert.NotNil(t, p.CurrentSession.Breaks)
	require.Len(t, p.Sessions, 1)
	assert.Empty(t, p.Sessions[0].Breaks)
	assert.Equal(t, 8*time.Hour, p.TotalWorkTime())
}

func TestFileStore_SaveCreatesDirectoryAndReplaces(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root, ".tracker")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, models.NewProject("first", at(13, 8, 0))))
	require.NoError(t, s.Save(ctx, models.NewProject("second", at(13, 8, 0))))

	assert.Equal(t, filepath.Join(root, ".tracker", "data.json"), s.Path())
	entries, err := os.ReadDir(filepath.Join(root, ".tracker"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, DefaultDirName), 0755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	got, err := Discover(nested, "")
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotResolved, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, want, gotResolved)
}

func TestDiscover_NoMarkerReturnsStart(t *testing.T) {
	start := t.TempDir()
	got, err := Discover(start, ".clockme-test-marker-absent")
	require.NoError(t, err)
	assert.Equal(t, start, got)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	_, err := m.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	p := sampleProject(t)
	require.NoError(t, m.Save(ctx, p))
	assert.Equal(t, 1, m.Saves)

	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	got.Name = "mutated"
	again, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "demo", again.Name, "loads return independent copies")
}
