// Package duration parses and formats the hour/minute strings used on the
// command line, such as "2h 30m", "1.5h" or "45m".
package duration

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joescharf/clockme/internal/models"
)

// ErrInvalid is matched by every Parse error.
var ErrInvalid = errors.New("invalid duration")

// maxMinutes is the largest minute count a time.Duration holds.
const maxMinutes = math.MaxInt64 / int64(time.Minute)

// ParseError reports input Parse rejects. It matches both ErrInvalid and
// models.ErrValidation.
type ParseError struct {
	Input string
	Msg   string
}

func (e *ParseError) Error() string { return "invalid duration: " + e.Msg }

func (e *ParseError) Is(target error) bool {
	return target == ErrInvalid || target == models.ErrValidation
}

func invalid(input, format string, a ...any) error {
	return &ParseError{Input: input, Msg: fmt.Sprintf(format, a...)}
}

var pattern = regexp.MustCompile(`^(?:(\d+(?:\.\d+)?)h)?\s*(?:(\d+)m)?$`)

// Parse reads "<num>[.<frac>]h", "<int>m" or both, optionally separated by
// whitespace, case-insensitively. Fractional hours are truncated to whole
// minutes. Zero durations are rejected.
func Parse(input string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return 0, invalid(input, "duration cannot be empty")
	}

	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return 0, invalid(input, "use a format like '2h 30m', '1.5h', '1h', or '45m'")
	}

	var hours float64
	if m[1] != "" {
		h, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, invalid(input, "%q: %v", m[1], err)
		}
		if h*60 > float64(maxMinutes) {
			return 0, invalid(input, "%q is too large", m[1])
		}
		hours = h
	}

	var minutes int64
	if m[2] != "" {
		n, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return 0, invalid(input, "%q: %v", m[2], err)
		}
		minutes = n
	}

	hourMinutes := int64(hours * 60)
	if minutes > maxMinutes-hourMinutes {
		return 0, invalid(input, "duration is too large")
	}
	total := hourMinutes + minutes
	if total <= 0 {
		return 0, invalid(input, "duration must be positive")
	}
	return time.Duration(total) * time.Minute, nil
}

// Format renders whole minutes as "Xh Ym", "Xh" or "Ym".
func Format(d time.Duration) string {
	total := int64(d / time.Minute)
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}

	hours, minutes := total/60, total%60
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%s%dh %dm", sign, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%s%dh", sign, hours)
	default:
		return fmt.Sprintf("%s%dm", sign, minutes)
	}
}

// Hours returns d in fractional hours.
func Hours(d time.Duration) float64 {
	return float64(d/time.Minute) / 60
}
