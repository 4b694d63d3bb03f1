package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/remindd/internal/logging"
	"github.com/sandeepkv93/remindd/internal/metrics"
	"github.com/sandeepkv93/remindd/internal/model"
)

// TestDelay is how far ahead a test notification is armed.
const TestDelay = 5 * time.Second

var ErrPermissionDenied = errors.New("notify: notification permission denied")

type Option func(*options)

type options struct {
	now     func() time.Time
	metrics metrics.Recorder
	logger  *log.Logger
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(o *options) { o.metrics = metrics.OrNoop(r) }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = logging.OrDiscard(l) }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, metrics: metrics.Noop{}, logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Scheduler arms a task's triggers, one at a time and best effort.
type Scheduler struct {
	gate       *Gate
	dispatcher Dispatcher
	options
}

func NewScheduler(d Dispatcher, gate *Gate, opts ...Option) *Scheduler {
	return &Scheduler{gate: gate, dispatcher: d, options: buildOptions(opts)}
}

// Schedule returns the handles that were armed, in trigger order. Without
// permission nothing is armed; a trigger that fails to arm is skipped.
func (s *Scheduler) Schedule(ctx context.Context, task model.Task) []string {
	if !s.gate.EnsurePermission(ctx) {
		return []string{}
	}

	triggers := ComputeTriggers(task, s.now())
	handles := make([]string, 0, len(triggers))
	for _, tr := range triggers {
		handle, err := s.dispatcher.Arm(ctx, tr.FireAt, tr.Payload)
		if err != nil {
			s.metrics.AlarmArmFailed(string(tr.Kind))
			s.logger.Error("arm alarm", "task", task.ID, "kind", tr.Kind, "fire_at", tr.FireAt, "err", err)
			continue
		}
		s.metrics.AlarmArmed(string(tr.Kind))
		s.logger.Debug("alarm armed", "task", task.ID, "kind", tr.Kind, "fire_at", tr.FireAt.Local().Format(time.DateTime), "handle", handle)
		handles = append(handles, handle)
	}
	return handles
}

// ScheduleTest arms a one-off alert a few seconds out so the user can check
// delivery end to end.
func (s *Scheduler) ScheduleTest(ctx context.Context) (string, error) {
	if !s.gate.EnsurePermission(ctx) {
		return "", ErrPermissionDenied
	}
	fireAt := s.now().Add(TestDelay)
	handle, err := s.dispatcher.Arm(ctx, fireAt, testPayload())
	if err != nil {
		s.metrics.AlarmArmFailed(string(model.TriggerKindTest))
		return "", fmt.Errorf("arm test alarm: %w", err)
	}
	s.metrics.AlarmArmed(string(model.TriggerKindTest))
	return handle, nil
}
