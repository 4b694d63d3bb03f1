package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"
)

// MaxNameLength is measured in UTF-16 code units.
const MaxNameLength = 100

var (
	ErrInvalidPriority = errors.New("model: invalid task priority")
	ErrEmptyName       = errors.New("model: task name is required")
	ErrNameTooLong     = errors.New("model: task name is too long")
	ErrMissingDeadline = errors.New("model: task deadline is required")
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
	}
	return p, nil
}

func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	default:
		return "Low"
	}
}

func (p Priority) Color() string {
	switch p {
	case PriorityHigh:
		return "#EF4444"
	case PriorityMedium:
		return "#F59E0B"
	case PriorityLow:
		return "#10B981"
	default:
		return "#6B7280"
	}
}

// Task is one persisted record of the collection. NotificationHandles are
// written by the scheduling path only.
type Task struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Deadline            time.Time `json:"deadline"`
	Priority            Priority  `json:"priority"`
	CreatedAt           time.Time `json:"createdAt"`
	NotificationHandles []string  `json:"notificationHandles"`
}

// Scheduled reports whether the task still owns armed alarms.
func (t Task) Scheduled() bool {
	return len(t.NotificationHandles) > 0
}

func (t Task) IsOverdue(now time.Time) bool {
	return t.Deadline.Before(now)
}

// IsNearDeadline is true when the deadline is in the future but at most 24h away.
func (t Task) IsNearDeadline(now time.Time) bool {
	remaining := t.Deadline.Sub(now)
	return remaining > 0 && remaining <= 24*time.Hour
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if err := validateName(t.Name); err != nil {
		return err
	}
	if t.Deadline.IsZero() {
		return ErrMissingDeadline
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	if len(t.NotificationHandles) > 2 {
		return errors.New("model: task carries more than two notification handles")
	}
	return nil
}

// TaskForm is what the user submits when creating a task.
type TaskForm struct {
	Name     string
	Deadline time.Time
	Priority Priority
}

// ValidationError rejects a submission before anything is scheduled or stored.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (f TaskForm) Validate() error {
	if err := validateName(f.Name); err != nil {
		return &ValidationError{Field: "name", Err: err}
	}
	if f.Deadline.IsZero() {
		return &ValidationError{Field: "deadline", Err: ErrMissingDeadline}
	}
	if !f.Priority.IsValid() {
		return &ValidationError{Field: "priority", Err: fmt.Errorf("%w: %q", ErrInvalidPriority, f.Priority)}
	}
	return nil
}

// NewTask builds an unscheduled record from a validated form.
func NewTask(f TaskForm, id string, now time.Time) Task {
	return Task{
		ID:                  id,
		Name:                strings.TrimSpace(f.Name),
		Deadline:            f.Deadline,
		Priority:            f.Priority,
		CreatedAt:           now,
		NotificationHandles: []string{},
	}
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrEmptyName
	}
	if n := len(utf16.Encode([]rune(trimmed))); n > MaxNameLength {
		return fmt.Errorf("%w: %d code units", ErrNameTooLong, n)
	}
	return nil
}
