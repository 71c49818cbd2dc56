package tracker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/clockme/internal/models"
)

// workDay clocks in and out on one day with an optional break.
func workDay(t *testing.T, svc *Service, set func(time.Time), day int, breakMin int) {
	t.Helper()
	ctx := context.Background()
	set(at(day, 9, 0))
	_, err := svc.StartSession(ctx)
	require.NoError(t, err)
	if breakMin > 0 {
		set(at(day, 12, 0))
		_, err = svc.StartBreak(ctx)
		require.NoError(t, err)
		set(at(day, 12, breakMin))
		_, err = svc.Resume(ctx)
		require.NoError(t, err)
	}
	set(at(day, 17, 0))
	_, err = svc.EndSession(ctx)
	require.NoError(t, err)
}

func TestStatus_Idle(t *testing.T) {
	svc, _, _ := newTestService(t, at(13, 8, 0))
	initDemo(t, svc)

	st, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "demo", st.ProjectName)
	assert.Equal(t, models.StateIdle, st.State)
	assert.Nil(t, st.CurrentSession)
	assert.Nil(t, st.LastSession)
	assert.Zero(t, st.Today)
	assert.Zero(t, st.AllTime)
}

// Yesterday's session is the latest one but not part of today.
func TestStatus_TodayExcludesEarlierDays(t *testing.T) {
	svc, _, clk := newTestService(t, at(12, 8, 0))
	initDemo(t, svc)
	workDay(t, svc, clk.Set, 12, 30)

	clk.Set(at(13, 10, 0))
	st, err := svc.Status(context.Background())
	require.NoError(t, err)

	require.NotNil(t, st.LastSession)
	assert.Equal(t, at(12, 9, 0), st.LastSession.Start)
	assert.Equal(t, 1, st.TotalSessions)

	assert.Zero(t, st.Today.Work)
	assert.Zero(t, st.Today.Sessions)
	assert.Zero(t, st.Today.Breaks)

	assert.Equal(t, 7*time.Hour+30*time.Minute, st.AllTime.Work)
	assert.Equal(t, 30*time.Minute, st.AllTime.Break)
	assert.Equal(t, 1, st.AllTime.Sessions)
}

func TestStatus_LiveSessionOnBreak(t *testing.T) {
	svc, _, clk := newTestService(t, at(13, 8, 0))
	ctx := context.Background()
	initDemo(t, svc)
	workDay(t, svc, clk.Set, 12, 0)

	clk.Set(at(13, 9, 0))
	_, err := svc.StartSession(ctx)
	require.NoError(t, err)
	clk.Set(at(13, 10, 0))
	_, err = svc.StartBreak(ctx)
	require.NoError(t, err)
	clk.Set(at(13, 10, 10))
	_, err = svc.Resume(ctx)
	require.NoError(t, err)
	clk.Set(at(13, 12, 0))
	_, err = svc.StartBreak(ctx)
	require.NoError(t, err)

	clk.Set(at(13, 12, 45))
	st, err := svc.Status(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.StateOnBreak, st.State)
	require.NotNil(t, st.CurrentBreakStart)
	assert.Equal(t, 45*time.Minute, st.BreakElapsed())

	// 3h45m elapsed minus 10m closed break minus 45m open break.
	wantWork := 2*time.Hour + 50*time.Minute
	assert.Equal(t, wantWork, st.SessionWork())
	assert.Equal(t, wantWork, st.Today.Work)
	assert.Equal(t, 55*time.Minute, st.Today.Break)
	assert.Equal(t, 1, st.Today.Sessions)
	assert.Equal(t, 2, st.Today.Breaks, "closed break plus the open one")

	assert.Equal(t, 8*time.Hour+wantWork, st.AllTime.Work)
	assert.Equal(t, 2, st.AllTime.Sessions)
	assert.Equal(t, 1, st.TotalSessions, "only closed sessions")
}

func TestStatus_OpenSessionFromYesterday(t *testing.T) {
	svc, _, clk := newTestService(t, at(12, 8, 0))
	ctx := context.Background()
	initDemo(t, svc)

	clk.Set(at(12, 22, 0))
	_, err := svc.StartSession(ctx)
	require.NoError(t, err)

	clk.Set(at(13, 1, 0))
	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Today.Work, "session started before midnight")
	assert.Equal(t, 3*time.Hour, st.AllTime.Work)
	assert.Equal(t, 3*time.Hour, st.SessionWork())
}

func TestStatus_DailyTarget(t *testing.T) {
	svc, _, clk := newTestService(t, at(13, 8, 0), WithDailyTarget(8*time.Hour))
	ctx := context.Background()
	initDemo(t, svc)

	clk.Set(at(13, 9, 0))
	_, err := svc.StartSession(ctx)
	require.NoError(t, err)

	clk.Set(at(13, 15, 30))
	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, st.Target)
	assert.Equal(t, 90*time.Minute, st.Remaining)

	clk.Set(at(13, 18, 0))
	st, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Remaining, "clamped once the target is met")
}

func TestStatus_SnapshotIsDetached(t *testing.T) {
	svc, _, clk := newTestService(t, at(13, 9, 0))
	ctx := context.Background()
	initDemo(t, svc)
	_, err := svc.StartSession(ctx)
	require.NoError(t, err)

	clk.Set(at(13, 10, 0))
	st, err := svc.Status(ctx)
	require.NoError(t, err)
	st.CurrentSession.Start = at(1, 0, 0)

	again, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, at(13, 9, 0), again.CurrentSession.Start)
}

func TestNewStatusView(t *testing.T) {
	svc, _, clk := newTestService(t, at(13, 8, 0), WithDailyTarget(8*time.Hour))
	initDemo(t, svc)
	workDay(t, svc, clk.Set, 13, 30)

	clk.Set(at(13, 18, 0))
	st, err := svc.Status(context.Background())
	require.NoError(t, err)

	v := NewStatusView(st)
	assert.Equal(t, "demo", v.Project)
	assert.Equal(t, int64(450), v.Today.WorkMinutes)
	assert.Equal(t, "7h 30m", v.Today.Work)
	assert.Equal(t, "30m", v.Remaining)
	require.NotNil(t, v.LastSession)
	assert.Equal(t, 1, v.LastSession.Breaks)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state":"idle"`)
	assert.NotContains(t, string(data), "session_start")
}
