package models

import "time"

// Break is a pause inside an open session. It stays on the Project while
// open and moves into the session's break list once finished.
type Break struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end"`
}

// NewBreak opens a break at start.
func NewBreak(start time.Time) *Break {
	return &Break{Start: start}
}

// Finish closes the break. Only the Project calls this, once per break.
func (b *Break) Finish(end time.Time) {
	b.End = &end
}

// Duration returns end minus start, or false while the break is open.
func (b *Break) Duration() (time.Duration, bool) {
	if b.End == nil {
		return 0, false
	}
	return b.End.Sub(b.Start), true
}

func (b *Break) IsActive() bool {
	return b.End == nil
}
