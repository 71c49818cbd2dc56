// Package tracker sequences clock-in, break and clock-out operations over a
// single persisted Project. Each operation is one load, mutate, save cycle.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joescharf/clockme/internal/clock"
	"github.com/joescharf/clockme/internal/models"
	"github.com/joescharf/clockme/internal/store"
)

// Service is stateless between calls; the store holds everything.
type Service struct {
	store       store.Store
	clock       clock.Clock
	observer    UseCaseObserver
	dailyTarget time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithObserver routes use-case telemetry to obs.
func WithObserver(obs UseCaseObserver) Option {
	return func(s *Service) {
		if obs != nil {
			s.observer = obs
		}
	}
}

// WithDailyTarget sets the work time Status measures today against.
func WithDailyTarget(d time.Duration) Option {
	return func(s *Service) { s.dailyTarget = d }
}

func New(st store.Store, clk clock.Clock, opts ...Option) *Service {
	s := &Service{
		store:    st,
		clock:    clk,
		observer: NoopUseCaseObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClockInResult is returned by StartSession and Resume.
type ClockInResult struct {
	Project *models.Project
	// Resumed is true when the call ended a break instead of opening a session.
	Resumed       bool
	BreakDuration time.Duration
	At            time.Time
}

// ClockOutResult is returned by EndSession.
type ClockOutResult struct {
	Project  *models.Project
	Session  models.Session
	WorkTime time.Duration
}

// BreakResult is returned by StartBreak.
type BreakResult struct {
	Project *models.Project
	// WorkBeforeBreak is the work accrued in the current session up to the
	// break. It is computed for display and never persisted.
	WorkBeforeBreak time.Duration
	PriorBreaks     time.Duration
	At              time.Time
}

func (s *Service) observe(ctx context.Context, name string, started time.Time, err error, fields map[string]any) {
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		Duration:  time.Since(started),
		Success:   err == nil,
		Err:       err,
		Fields:    fields,
		StartedAt: started,
	})
}

func (s *Service) load(ctx context.Context) (*models.Project, error) {
	p, err := s.store.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return p, nil
}

func (s *Service) save(ctx context.Context, p *models.Project) error {
	if err := s.store.Save(ctx, p); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// InitProject creates and saves a fresh project. It refuses to overwrite an
// existing record, corrupt or not.
func (s *Service) InitProject(ctx context.Context, name string) (p *models.Project, err error) {
	started := time.Now()
	defer func() { s.observe(ctx, "init_project", started, err, map[string]any{"name": name}) }()

	if err := models.ValidateName(name); err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if exists {
		return nil, ErrAlreadyInitialized
	}

	p = models.NewProject(name, s.clock.Now())
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// StartSession clocks in. While on break it resumes work instead of opening
// a second session; while already working it fails.
func (s *Service) StartSession(ctx context.Context) (res *ClockInResult, err error) {
	started := time.Now()
	defer func() { s.observe(ctx, "start_session", started, err, resultFields(res)) }()

	p, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	switch p.State() {
	case models.StateOnBreak:
		return s.resume(ctx, p)
	case models.StateWorking:
		return nil, models.ErrAlreadyClockedIn
	}

	now := s.clock.Now()
	p.StartSession(now)
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return &ClockInResult{Project: p, At: now}, nil
}

// Resume ends the current break. Unlike StartSession it never opens a session.
func (s *Service) Resume(ctx context.Context) (res *ClockInResult, err error) {
	started := time.Now()
	defer func() { s.observe(ctx, "resume", started, err, resultFields(res)) }()

	p, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if p.State() != models.StateOnBreak {
		return nil, models.ErrNotOnBreak
	}
	return s.resume(ctx, p)
}

func (s *Service) resume(ctx context.Context, p *models.Project) (*ClockInResult, error) {
	now := s.clock.Now()
	d, err := p.EndBreak(now)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return &ClockInResult{Project: p, Resumed: true, BreakDuration: d, At: now}, nil
}

// EndSession clocks out, closing an open break first.
func (s *Service) EndSession(ctx context.Context) (res *ClockOutResult, err error) {
	started := time.Now()
	defer func() {
		fields := map[string]any{}
		if res != nil {
			fields["work_min"] = int64(res.WorkTime / time.Minute)
			fields["breaks"] = len(res.Session.Breaks)
		}
		s.observe(ctx, "end_session", started, err, fields)
	}()

	p, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if p.State() == models.StateIdle {
		return nil, models.ErrNotClockedIn
	}

	workTime, err := p.EndSession(s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}

	last, _ := p.LastSession()
	return &ClockOutResult{Project: p, Session: *last, WorkTime: workTime}, nil
}

// StartBreak pauses the current session.
func (s *Service) StartBreak(ctx context.Context) (res *BreakResult, err error) {
	started := time.Now()
	defer func() {
		fields := map[string]any{}
		if res != nil {
			fields["work_before_break_min"] = int64(res.WorkBeforeBreak / time.Minute)
		}
		s.observe(ctx, "start_break", started, err, fields)
	}()

	p, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := p.StartBreak(now); err != nil {
		return nil, err
	}

	prior := p.CurrentSession.TotalBreakTime()
	res = &BreakResult{
		Project:         p,
		WorkBeforeBreak: now.Sub(p.CurrentSession.Start) - prior,
		PriorBreaks:     prior,
		At:              now,
	}
	if err := s.save(ctx, p); err != nil {
		return nil, err
	}
	return res, nil
}

// History returns closed sessions newest first. A limit of zero returns all.
func (s *Service) History(ctx context.Context, limit int) (out []models.Session, err error) {
	started := time.Now()
	defer func() { s.observe(ctx, "history", started, err, map[string]any{"count": len(out)}) }()

	p, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	n := len(p.Sessions)
	if limit > 0 && limit < n {
		n = limit
	}
	out = make([]models.Session, 0, n)
	for i := len(p.Sessions) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, p.Sessions[i])
	}
	return out, nil
}

// Project loads the record without mutating it.
func (s *Service) Project(ctx context.Context) (*models.Project, error) {
	return s.load(ctx)
}

func resultFields(res *ClockInResult) map[string]any {
	if res == nil {
		return nil
	}
	return map[string]any{
		"resumed":      res.Resumed,
		"break_min":    int64(res.BreakDuration / time.Minute),
		"project_name": res.Project.Name,
	}
}
