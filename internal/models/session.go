package models

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Session is one clock-in to clock-out interval. It only ever holds closed
// breaks; the open break lives on the Project.
type Session struct {
	ID     string     `json:"id,omitempty"`
	Start  time.Time  `json:"start"`
	End    *time.Time `json:"end"`
	Breaks []Break    `json:"breaks"`
}

// NewSession opens a session at start with no breaks.
func NewSession(start time.Time) *Session {
	return &Session{
		ID:     newULID(start),
		Start:  start,
		Breaks: []Break{},
	}
}

// newULID generates a ULID whose timestamp is the session start.
func newULID(t time.Time) string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(t), ulid.Monotonic(entropy, 0)).String()
}

func (s *Session) Finish(end time.Time) {
	s.End = &end
}

// AddBreak appends a closed break.
func (s *Session) AddBreak(b Break) {
	s.Breaks = append(s.Breaks, b)
}

// Duration returns end minus start, or false while the session is open.
func (s *Session) Duration() (time.Duration, bool) {
	if s.End == nil {
		return 0, false
	}
	return s.End.Sub(s.Start), true
}

// TotalBreakTime sums the durations of all closed breaks.
func (s *Session) TotalBreakTime() time.Duration {
	var total time.Duration
	for i := range s.Breaks {
		if d, ok := s.Breaks[i].Duration(); ok {
			total += d
		}
	}
	return total
}

// WorkTime is the session duration minus break time. It is undefined while
// the session is open.
func (s *Session) WorkTime() (time.Duration, bool) {
	d, ok := s.Duration()
	if !ok {
		return 0, false
	}
	return d - s.TotalBreakTime(), true
}

func (s *Session) IsActive() bool {
	return s.End == nil
}
