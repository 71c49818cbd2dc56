package models

import (
	"errors"
	"regexp"
)

// MaxNameLength is the longest accepted project name.
const MaxNameLength = 50

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// ErrValidation is matched by every ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports user input that fails its pattern rules.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ValidateName checks that a project name is 1-50 characters, starts with a
// letter or digit, and otherwise contains only letters, digits, hyphens and
// underscores.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Msg: "project name cannot be empty"}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Field: "name", Msg: "project name must be 50 characters or less"}
	}
	if !namePattern.MatchString(name) {
		return &ValidationError{
			Field: "name",
			Msg:   "project name must start with a letter or number and can only contain letters, numbers, hyphens, and underscores",
		}
	}
	return nil
}
