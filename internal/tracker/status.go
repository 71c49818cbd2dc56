package tracker

import (
	"context"
	"time"

	"github.com/joescharf/clockme/internal/duration"
	"github.com/joescharf/clockme/internal/models"
)

// Totals aggregates work and break time over a window.
type Totals struct {
	Work     time.Duration
	Break    time.Duration
	Sessions int
	Breaks   int
}

// Status is a read-only snapshot for display.
type Status struct {
	ProjectName       string
	State             models.State
	Now               time.Time
	CurrentSession    *models.Session
	CurrentBreakStart *time.Time
	LastSession       *models.Session
	// TotalSessions counts closed sessions only.
	TotalSessions int

	Today   Totals
	AllTime Totals

	Target    time.Duration
	Remaining time.Duration
}

// SessionWork is the live work time of the open session.
func (st *Status) SessionWork() time.Duration {
	if st.CurrentSession == nil {
		return 0
	}
	work, _ := live(st.CurrentSession, st.CurrentBreakStart, st.Now)
	return work
}

// BreakElapsed is how long the open break has run.
func (st *Status) BreakElapsed() time.Duration {
	if st.CurrentBreakStart == nil {
		return 0
	}
	return st.Now.Sub(*st.CurrentBreakStart)
}

// Status computes the snapshot at a single instant.
func (s *Service) Status(ctx context.Context) (st *Status, err error) {
	started := time.Now()
	defer func() {
		fields := map[string]any{}
		if st != nil {
			fields["state"] = string(st.State)
		}
		s.observe(ctx, "status", started, err, fields)
	}()

	p, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return computeStatus(p, s.clock.Now(), s.dailyTarget), nil
}

func computeStatus(p *models.Project, now time.Time, target time.Duration) *Status {
	st := &Status{
		ProjectName:   p.Name,
		State:         p.State(),
		Now:           now,
		TotalSessions: len(p.Sessions),
		Target:        target,
	}

	if p.CurrentSession != nil {
		cur := *p.CurrentSession
		cur.Breaks = append([]models.Break(nil), p.CurrentSession.Breaks...)
		st.CurrentSession = &cur
	}
	if p.CurrentBreak != nil {
		start := p.CurrentBreak.Start
		st.CurrentBreakStart = &start
	}
	if last, ok := p.LastSession(); ok {
		cp := *last
		st.LastSession = &cp
	}

	st.Today = windowTotals(p, startOfDay(now), now, true)
	st.AllTime = windowTotals(p, time.Time{}, now, false)

	if target > 0 && st.Today.Work < target {
		st.Remaining = target - st.Today.Work
	}
	return st
}

// startOfDay is local midnight in now's location.
func startOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// windowTotals sums closed sessions plus the live open session. When
// bounded, only sessions starting at or after since are counted.
func windowTotals(p *models.Project, since, now time.Time, bounded bool) Totals {
	var t Totals
	for i := range p.Sessions {
		s := &p.Sessions[i]
		if bounded && s.Start.Before(since) {
			continue
		}
		t.Sessions++
		if wt, ok := s.WorkTime(); ok {
			t.Work += wt
		}
		t.Break += s.TotalBreakTime()
		t.Breaks += len(s.Breaks)
	}

	cur := p.CurrentSession
	if cur == nil || (bounded && cur.Start.Before(since)) {
		return t
	}

	var breakStart *time.Time
	if p.CurrentBreak != nil {
		breakStart = &p.CurrentBreak.Start
	}
	work, brk := live(cur, breakStart, now)
	t.Sessions++
	t.Work += work
	t.Break += brk
	t.Breaks += len(cur.Breaks)
	if breakStart != nil {
		t.Breaks++
	}
	return t
}

// live returns the work and break time of an open session at now. Work
// accrues from the session start and pauses during breaks.
func live(s *models.Session, breakStart *time.Time, now time.Time) (work, brk time.Duration) {
	elapsed := now.Sub(s.Start)
	brk = s.TotalBreakTime()
	if breakStart != nil {
		brk += now.Sub(*breakStart)
	}
	return elapsed - brk, brk
}

// StatusView is the JSON shape of a Status used by `status --json` and the
// MCP server.
type StatusView struct {
	Project       string       `json:"project"`
	State         models.State `json:"state"`
	Now           time.Time    `json:"now"`
	SessionStart  *time.Time   `json:"session_start,omitempty"`
	BreakStart    *time.Time   `json:"break_start,omitempty"`
	SessionWork   string       `json:"session_work,omitempty"`
	LastSession   *SessionView `json:"last_session,omitempty"`
	TotalSessions int          `json:"total_sessions"`
	Today         TotalsView   `json:"today"`
	AllTime       TotalsView   `json:"all_time"`
	Target        string       `json:"daily_target,omitempty"`
	Remaining     string       `json:"remaining,omitempty"`
}

// TotalsView renders Totals with whole minutes and formatted strings.
type TotalsView struct {
	WorkMinutes  int64  `json:"work_minutes"`
	Work         string `json:"work"`
	BreakMinutes int64  `json:"break_minutes"`
	Break        string `json:"break"`
	Sessions     int    `json:"sessions"`
	Breaks       int    `json:"breaks"`
}

// SessionView renders a closed session.
type SessionView struct {
	ID          string     `json:"id,omitempty"`
	Start       time.Time  `json:"start"`
	End         *time.Time `json:"end,omitempty"`
	WorkMinutes int64      `json:"work_minutes"`
	Work        string     `json:"work"`
	Break       string     `json:"break"`
	Breaks      int        `json:"breaks"`
}

func NewTotalsView(t Totals) TotalsView {
	return TotalsView{
		WorkMinutes:  int64(t.Work / time.Minute),
		Work:         duration.Format(t.Work),
		BreakMinutes: int64(t.Break / time.Minute),
		Break:        duration.Format(t.Break),
		Sessions:     t.Sessions,
		Breaks:       t.Breaks,
	}
}

func NewSessionView(s *models.Session) SessionView {
	wt, _ := s.WorkTime()
	return SessionView{
		ID:          s.ID,
		Start:       s.Start,
		End:         s.End,
		WorkMinutes: int64(wt / time.Minute),
		Work:        duration.Format(wt),
		Break:       duration.Format(s.TotalBreakTime()),
		Breaks:      len(s.Breaks),
	}
}

func NewStatusView(st *Status) StatusView {
	v := StatusView{
		Project:       st.ProjectName,
		State:         st.State,
		Now:           st.Now,
		BreakStart:    st.CurrentBreakStart,
		TotalSessions: st.TotalSessions,
		Today:         NewTotalsView(st.Today),
		AllTime:       NewTotalsView(st.AllTime),
	}
	if st.CurrentSession != nil {
		start := st.CurrentSession.Start
		v.SessionStart = &start
		v.SessionWork = duration.Format(st.SessionWork())
	}
	if st.LastSession != nil {
		sv := NewSessionView(st.LastSession)
		v.LastSession = &sv
	}
	if st.Target > 0 {
		v.Target = duration.Format(st.Target)
		v.Remaining = duration.Format(st.Remaining)
	}
	return v
}
