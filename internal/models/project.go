package models

import (
	"errors"
	"fmt"
	"time"
)

// Project is the aggregate root: one per state file. It owns the open
// session, the open break and the append-only history of closed sessions.
type Project struct {
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
	CurrentSession *Session  `json:"current_session"`
	CurrentBreak   *Break    `json:"current_break"`
	Sessions       []Session `json:"sessions"`
}

// NewProject returns an idle project with empty history.
func NewProject(name string, now time.Time) *Project {
	return &Project{
		Name:      name,
		CreatedAt: now,
		Sessions:  []Session{},
	}
}

// State derives Idle, Working or OnBreak from the open session and break.
func (p *Project) State() State {
	switch {
	case p.CurrentSession == nil:
		return StateIdle
	case p.CurrentBreak != nil:
		return StateOnBreak
	default:
		return StateWorking
	}
}

// StartSession opens a new session at now and clears any open break.
// Callers enforce that the project is idle.
func (p *Project) StartSession(now time.Time) {
	p.CurrentSession = NewSession(now)
	p.CurrentBreak = nil
}

// EndSession closes the open session and moves it into history. An open
// break is closed first and folded into the session. It returns the
// session's work time.
func (p *Project) EndSession(now time.Time) (time.Duration, error) {
	if p.CurrentSession == nil {
		return 0, ErrNoActiveSession
	}
	if p.CurrentBreak != nil {
		if _, err := p.EndBreak(now); err != nil {
			return 0, err
		}
	}

	session := p.CurrentSession
	session.Finish(now)
	workTime, ok := session.WorkTime()
	if !ok {
		return 0, errors.New("session has no duration")
	}

	p.Sessions = append(p.Sessions, *session)
	p.CurrentSession = nil
	return workTime, nil
}

func (p *Project) StartBreak(now time.Time) error {
	if p.CurrentSession == nil {
		return ErrNotClockedIn
	}
	if p.CurrentBreak != nil {
		return ErrAlreadyOnBreak
	}
	p.CurrentBreak = NewBreak(now)
	return nil
}

// EndBreak closes the open break, appends it to the current session and
// returns its duration.
func (p *Project) EndBreak(now time.Time) (time.Duration, error) {
	if p.CurrentBreak == nil {
		return 0, ErrNotOnBreak
	}

	b := p.CurrentBreak
	b.Finish(now)
	d, ok := b.Duration()
	if !ok {
		return 0, errors.New("break has no duration")
	}

	if p.CurrentSession != nil {
		p.CurrentSession.AddBreak(*b)
	}
	p.CurrentBreak = nil
	return d, nil
}

func (p *Project) IsOnBreak() bool {
	return p.CurrentBreak != nil
}

// TotalWorkTime sums work time over closed sessions only.
func (p *Project) TotalWorkTime() time.Duration {
	var total time.Duration
	for i := range p.Sessions {
		if wt, ok := p.Sessions[i].WorkTime(); ok {
			total += wt
		}
	}
	return total
}

// TotalBreakTime sums break time over closed sessions only.
func (p *Project) TotalBreakTime() time.Duration {
	var total time.Duration
	for i := range p.Sessions {
		total += p.Sessions[i].TotalBreakTime()
	}
	return total
}

// LastSession returns the most recently closed session.
func (p *Project) LastSession() (*Session, bool) {
	if len(p.Sessions) == 0 {
		return nil, false
	}
	return &p.Sessions[len(p.Sessions)-1], true
}

// Normalize fills in collections that older records omit.
func (p *Project) Normalize() {
	if p.Sessions == nil {
		p.Sessions = []Session{}
	}
	if p.CurrentSession != nil && p.CurrentSession.Breaks == nil {
		p.CurrentSession.Breaks = []Break{}
	}
	for i := range p.Sessions {
		if p.Sessions[i].Breaks == nil {
			p.Sessions[i].Breaks = []Break{}
		}
	}
}

// Validate rejects records the state machine can never produce.
func (p *Project) Validate() error {
	if p.CurrentBreak != nil && p.CurrentSession == nil {
		return errors.New("current break set without a current session")
	}
	if p.CurrentSession != nil && !p.CurrentSession.IsActive() {
		return errors.New("current session is already closed")
	}
	if p.CurrentBreak != nil && !p.CurrentBreak.IsActive() {
		return errors.New("current break is already closed")
	}
	for i := range p.Sessions {
		s := &p.Sessions[i]
		if s.IsActive() {
			return fmt.Errorf("session %d in history is still open", i)
		}
		if s.End.Before(s.Start) {
			return fmt.Errorf("session %d ends before it starts", i)
		}
		for j := range s.Breaks {
			if err := validateClosedBreak(&s.Breaks[j]); err != nil {
				return fmt.Errorf("session %d break %d: %w", i, j, err)
			}
		}
	}
	if p.CurrentSession != nil {
		for j := range p.CurrentSession.Breaks {
			if err := validateClosedBreak(&p.CurrentSession.Breaks[j]); err != nil {
				return fmt.Errorf("current session break %d: %w", j, err)
			}
		}
	}
	return nil
}

func validateClosedBreak(b *Break) error {
	if b.IsActive() {
		return errors.New("break is still open")
	}
	if b.End.Before(b.Start) {
		return errors.New("break ends before it starts")
	}
	return nil
}
