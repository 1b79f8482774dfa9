package reminder

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidTimeFormat is returned when a time spec matches neither the
	// clock-time nor the relative-offset grammar.
	ErrInvalidTimeFormat = errors.New("invalid time format, use 30m, 2h, 1d, or a specific time like 18:30")

	// ErrPastSchedulingTime is returned when a reminder would be scheduled at
	// or before the current instant.
	ErrPastSchedulingTime = errors.New("cannot set a reminder for a past time")
)

// Resolve parses a user-supplied time spec into an absolute instant.
//
// Two formats are accepted:
//   - "HH:MM": today at that wall-clock time; if that has already passed,
//     tomorrow at the same time.
//   - "<int><unit>": a relative offset from now, unit one of m, h, d.
func Resolve(spec string, now time.Time) (time.Time, error) {
	spec = strings.TrimSpace(spec)

	if strings.Contains(spec, ":") {
		return resolveClockTime(spec, now)
	}
	return resolveOffset(spec, now)
}

func resolveClockTime(spec string, now time.Time) (time.Time, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 2 {
		return time.Time{}, ErrInvalidTimeFormat
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, ErrInvalidTimeFormat
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, ErrInvalidTimeFormat
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return time.Time{}, ErrInvalidTimeFormat
	}

	t := time.Date(now.Year(), now.Month(), now.Day(), hours, minutes, 0, 0, now.Location())

	// Already passed today, roll forward to tomorrow
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

func resolveOffset(spec string, now time.Time) (time.Time, error) {
	if len(spec) < 2 {
		return time.Time{}, ErrInvalidTimeFormat
	}

	value, err := strconv.Atoi(spec[:len(spec)-1])
	if err != nil {
		return time.Time{}, ErrInvalidTimeFormat
	}

	switch spec[len(spec)-1] {
	case 'm':
		return now.Add(time.Duration(value) * time.Minute), nil
	case 'h':
		return now.Add(time.Duration(value) * time.Hour), nil
	case 'd':
		return now.Add(time.Duration(value) * 24 * time.Hour), nil
	default:
		return time.Time{}, ErrInvalidTimeFormat
	}
}
