// Package notify decides when a task's alerts fire and keeps the external
// dispatcher in step with the task collection.
package notify

import (
	"context"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/scheduler"
)

// Dispatcher is the delayed-delivery capability alerts are armed in.
// Disarm reports an unknown or already fired handle with
// scheduler.ErrUnknownHandle.
type Dispatcher interface {
	PermissionStatus(ctx context.Context) (bool, error)
	RequestPermission(ctx context.Context) (bool, error)
	EnsureChannel(ctx context.Context, cfg model.ChannelConfig) error
	Arm(ctx context.Context, fireAt time.Time, p model.Payload) (string, error)
	Disarm(ctx context.Context, handle string) error
}

var _ Dispatcher = (*scheduler.Engine)(nil)

// DefaultChannel is where task alerts are posted.
var DefaultChannel = model.ChannelConfig{
	ID:               model.DefaultChannelID,
	Name:             "Task reminders",
	Importance:       model.ImportanceMax,
	VibrationPattern: []time.Duration{0, 250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond},
	LightColor:       "#3B82F6",
}
