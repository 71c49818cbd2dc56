package tracker

import (
	"errors"

	"github.com/joescharf/clockme/internal/models"
)

var (
	// ErrNotInitialized means no project record exists in the tracking directory.
	ErrNotInitialized = errors.New("no project found. Run 'clock-me init' first")
	// ErrAlreadyInitialized means init found an existing record.
	ErrAlreadyInitialized = errors.New("project already initialized in this directory. Use a different directory or delete the state folder")
	// ErrPersistence wraps read, write and parse failures of the record.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvalidState matches every forbidden state transition.
	ErrInvalidState = models.ErrInvalidState
	// ErrValidation matches project name failures.
	ErrValidation = models.ErrValidation
)
