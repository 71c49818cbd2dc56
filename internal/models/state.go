package models

import "errors"

// State is the tracking state derived from a Project's open session and break.
type State string

const (
	StateIdle    State = "idle"
	StateWorking State = "working"
	StateOnBreak State = "on_break"
)

// ErrInvalidState is matched by every state-machine error via errors.Is.
var ErrInvalidState = errors.New("invalid state")

// StateError reports a transition the current state forbids.
type StateError struct {
	msg string
}

func (e *StateError) Error() string { return e.msg }

// Is reports StateErrors as ErrInvalidState.
func (e *StateError) Is(target error) bool { return target == ErrInvalidState }

var (
	ErrNoActiveSession  = &StateError{msg: "no active session"}
	ErrNotClockedIn     = &StateError{msg: "not clocked in. Use 'clock-me start' first"}
	ErrAlreadyClockedIn = &StateError{msg: "already clocked in. Use 'clock-me stop' first"}
	ErrAlreadyOnBreak   = &StateError{msg: "already on break. Use 'clock-me start' to continue working"}
	ErrNotOnBreak       = &StateError{msg: "not on break"}
)
