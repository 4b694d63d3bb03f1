// Package tasks coordinates the task collection with the alarms armed for it.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sandeepkv93/remindd/internal/logging"
	"github.com/sandeepkv93/remindd/internal/metrics"
	"github.com/sandeepkv93/remindd/internal/model"
)

// Store is the durable home of the whole collection.
type Store interface {
	ReadAll(ctx context.Context) ([]model.Task, error)
	WriteAll(ctx context.Context, tasks []model.Task) error
}

// Scheduler arms alarms for a task and reports the handles it got.
type Scheduler interface {
	Schedule(ctx context.Context, task model.Task) []string
}

// Canceller disarms handles; it never fails.
type Canceller interface {
	Cancel(ctx context.Context, handles []string)
}

// OperationError is returned when a create or delete could not be completed.
// Message is suitable for showing to the user.
type OperationError struct {
	Op      string
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(next func() (string, error)) Option {
	return func(s *Service) { s.newID = next }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = logging.OrDiscard(l) }
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *Service) { s.metrics = metrics.OrNoop(r) }
}

// Service is the only writer of the collection. Calls are not serialized:
// two concurrent mutations race on the read-modify-write and the last
// write wins.
type Service struct {
	store     Store
	scheduler Scheduler
	canceller Canceller
	now       func() time.Time
	newID     func() (string, error)
	logger    *log.Logger
	metrics   metrics.Recorder

	mu      sync.Mutex
	loadErr error
}

func NewService(store Store, sched Scheduler, canceller Canceller, opts ...Option) *Service {
	s := &Service{
		store:     store,
		scheduler: sched,
		canceller: canceller,
		now:       time.Now,
		newID:     newTaskID,
		logger:    logging.Discard(),
		metrics:   metrics.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newTaskID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Create validates the form, arms the task's alarms and appends it to the
// collection. Alarm failures only shorten the handle list; a failed write
// disarms what was armed and is returned as an *OperationError.
func (s *Service) Create(ctx context.Context, form model.TaskForm) ([]model.Task, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	current, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, &OperationError{Op: "create", Message: "failed to load tasks", Err: err}
	}
	id, err := s.newID()
	if err != nil {
		return nil, &OperationError{Op: "create", Message: "failed to add task", Err: fmt.Errorf("generate id: %w", err)}
	}

	task := model.NewTask(form, id, s.now())
	task.NotificationHandles = s.scheduler.Schedule(ctx, task)
	if task.NotificationHandles == nil {
		task.NotificationHandles = []string{}
	}

	next := append(append(make([]model.Task, 0, len(current)+1), current...), task)
	if err := s.store.WriteAll(ctx, next); err != nil {
		s.metrics.StoreWriteFailed()
		s.logger.Error("save tasks", "op", "create", "task", task.ID, "err", err)
		if len(task.NotificationHandles) > 0 {
			s.logger.Warn("disarming alarms of unsaved task", "task", task.ID, "handles", task.NotificationHandles)
			s.canceller.Cancel(ctx, task.NotificationHandles)
		}
		return nil, &OperationError{Op: "create", Message: "failed to add task", Err: err}
	}
	s.logger.Info("task created", "task", task.ID, "deadline", task.Deadline.Format(time.DateTime), "alarms", len(task.NotificationHandles))
	return model.SortByDeadline(next), nil
}

// Delete disarms the task's alarms and drops it from the collection. An
// unknown id leaves the collection untouched and is not an error.
func (s *Service) Delete(ctx context.Context, id string) ([]model.Task, error) {
	current, err := s.store.ReadAll(ctx)
	if err != nil {
		return nil, &OperationError{Op: "delete", Message: "failed to load tasks", Err: err}
	}
	idx := model.FindTask(current, id)
	if idx < 0 {
		s.logger.Debug("delete of unknown task", "task", id)
		return model.SortByDeadline(current), nil
	}
	if handles := current[idx].NotificationHandles; len(handles) > 0 {
		s.canceller.Cancel(ctx, handles)
	}

	next := model.WithoutTask(current, id)
	if err := s.store.WriteAll(ctx, next); err != nil {
		s.metrics.StoreWriteFailed()
		s.logger.Error("save tasks", "op", "delete", "task", id, "err", err)
		return nil, &OperationError{Op: "delete", Message: "failed to delete task", Err: err}
	}
	s.logger.Info("task deleted", "task", id)
	return model.SortByDeadline(next), nil
}

// Load never fails. When the collection cannot be read it returns an empty
// one and LoadErr reports why.
func (s *Service) Load(ctx context.Context) []model.Task {
	tasks, err := s.store.ReadAll(ctx)
	s.mu.Lock()
	s.loadErr = err
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("load tasks", "err", err)
		return []model.Task{}
	}
	return model.SortByDeadline(tasks)
}

// LoadErr is the failure of the most recent Load, or nil.
func (s *Service) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// UserMessage extracts the text to show for err.
func UserMessage(err error) string {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Message
	}
	var valErr *model.ValidationError
	if errors.As(err, &valErr) {
		switch {
		case errors.Is(valErr, model.ErrEmptyName):
			return "Please enter a task name"
		case errors.Is(valErr, model.ErrNameTooLong):
			return fmt.Sprintf("Task name must be at most %d characters", model.MaxNameLength)
		}
		return valErr.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
