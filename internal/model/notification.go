package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTriggerKind = errors.New("model: invalid trigger kind")

type TriggerKind string

const (
	TriggerKindReminder TriggerKind = "reminder"
	TriggerKindDeadline TriggerKind = "deadline"
	TriggerKindTest     TriggerKind = "test"
)

func (k TriggerKind) IsValid() bool {
	switch k {
	case TriggerKindReminder, TriggerKindDeadline, TriggerKindTest:
		return true
	default:
		return false
	}
}

// Payload is the content delivered when an alarm fires.
type Payload struct {
	TaskID  string      `json:"taskId,omitempty"`
	Kind    TriggerKind `json:"kind"`
	Title   string      `json:"title"`
	Body    string      `json:"body"`
	Sound   bool        `json:"sound"`
	Urgent  bool        `json:"urgent"`
	Channel string      `json:"channel,omitempty"`
}

// Trigger is a computed, not yet armed, notification instant.
type Trigger struct {
	Kind    TriggerKind
	FireAt  time.Time
	Payload Payload
}

func (t Trigger) Validate() error {
	if !t.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTriggerKind, t.Kind)
	}
	if t.FireAt.IsZero() {
		return errors.New("model: trigger fire_at is required")
	}
	if strings.TrimSpace(t.Payload.Title) == "" {
		return errors.New("model: trigger title is required")
	}
	return nil
}

type Importance string

const (
	ImportanceDefault Importance = "default"
	ImportanceHigh    Importance = "high"
	ImportanceMax     Importance = "max"
)

// ChannelConfig describes how alarms posted to a channel are presented.
type ChannelConfig struct {
	ID               string
	Name             string
	Importance       Importance
	VibrationPattern []time.Duration
	LightColor       string
}

// DefaultChannelID is the channel alarms are posted to unless the payload
// names another one.
const DefaultChannelID = "default"
