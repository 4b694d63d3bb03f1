package commands

import (
	"fmt"
	"strings"
	"time"
)

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02 15:04"
)

// DefaultDeadline is tomorrow at 09:00 local time.
func DefaultDeadline(now time.Time) time.Time {
	y, m, d := now.AddDate(0, 0, 1).Date()
	return time.Date(y, m, d, 9, 0, 0, 0, now.Location())
}

// ParseDeadline understands "+90m" style offsets, "15:04" (today),
// "tomorrow [15:04]" and "2006-01-02 15:04". Empty input means
// DefaultDeadline. Times in the past are returned as is.
func ParseDeadline(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return DefaultDeadline(now), nil
	case strings.HasPrefix(raw, "+"):
		d, err := time.ParseDuration(strings.TrimPrefix(raw, "+"))
		if err != nil || d <= 0 {
			return time.Time{}, invalidWhen(raw)
		}
		return now.Add(d), nil
	case strings.EqualFold(raw, "tomorrow"):
		return DefaultDeadline(now), nil
	}

	if rest, ok := cutFoldPrefix(raw, "tomorrow "); ok {
		return atClock(strings.TrimSpace(rest), now.AddDate(0, 0, 1))
	}
	if t, err := time.ParseInLocation(dateLayout, raw, now.Location()); err == nil {
		return t, nil
	}
	return atClock(raw, now)
}

func atClock(raw string, day time.Time) (time.Time, error) {
	clock, err := time.Parse(clockLayout, raw)
	if err != nil {
		return time.Time{}, invalidWhen(raw)
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, day.Location()), nil
}

func cutFoldPrefix(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

func invalidWhen(raw string) error {
	return &CommandError{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("cannot read deadline %q (use +90m, 15:04, tomorrow 15:04 or 2006-01-02 15:04)", raw),
	}
}
