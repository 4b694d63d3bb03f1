package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/storage"
	"github.com/sandeepkv93/remindd/internal/tasks"
)

// TaskService is the part of tasks.Service the commands drive.
type TaskService interface {
	Create(ctx context.Context, form model.TaskForm) ([]model.Task, error)
	Delete(ctx context.Context, id string) ([]model.Task, error)
	Load(ctx context.Context) []model.Task
	LoadErr() error
}

type TestScheduler interface {
	ScheduleTest(ctx context.Context) (string, error)
}

type AlarmPurger interface {
	CancelAll(ctx context.Context) int
}

// Bind wires every command to the task service and the alarm helpers.
func Bind(svc TaskService, tester TestScheduler, purger AlarmPurger) Handlers {
	return Handlers{
		Add: func(ctx context.Context, a AddArgs) (Result, error) {
			list, err := svc.Create(ctx, model.TaskForm{Name: a.Name, Deadline: a.Deadline, Priority: a.Priority})
			if err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("added %q", strings.TrimSpace(a.Name)), Tasks: list}, nil
		},
		Delete: func(ctx context.Context, a DeleteArgs) (Result, error) {
			before := svc.Load(ctx)
			if err := svc.LoadErr(); err != nil {
				return Result{}, &tasks.OperationError{Op: "delete", Message: "failed to load tasks", Err: err}
			}
			id, err := ResolveID(before, a.ID)
			if err != nil {
				return Result{}, err
			}
			list, err := svc.Delete(ctx, id)
			if err != nil {
				return Result{}, err
			}
			if model.FindTask(before, id) < 0 {
				return Result{Message: fmt.Sprintf("no task %s", a.ID), Tasks: list}, nil
			}
			return Result{Message: fmt.Sprintf("deleted %s", ShortID(id)), Tasks: list}, nil
		},
		List: func(ctx context.Context) (Result, error) {
			list := svc.Load(ctx)
			if err := svc.LoadErr(); err != nil {
				return Result{Tasks: list}, &tasks.OperationError{Op: "list", Message: "failed to load tasks", Err: err}
			}
			return Result{Message: fmt.Sprintf("%d task(s)", len(list)), Tasks: list}, nil
		},
		Test: func(ctx context.Context) (Result, error) {
			handle, err := tester.ScheduleTest(ctx)
			if err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("test notification armed (%s)", ShortID(handle))}, nil
		},
		Export: func(ctx context.Context, a ExportArgs) (Result, error) {
			list := svc.Load(ctx)
			if err := svc.LoadErr(); err != nil {
				return Result{}, &tasks.OperationError{Op: "export", Message: "failed to load tasks", Err: err}
			}
			if err := storage.ExportJSON(a.Path, list); err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("exported %d task(s) to %s", len(list), a.Path), Tasks: list}, nil
		},
		PurgeAlarms: func(ctx context.Context) (Result, error) {
			n := purger.CancelAll(ctx)
			return Result{Message: fmt.Sprintf("disarmed %d alarm(s)", n)}, nil
		},
	}
}

// ResolveID expands a unique short id to the full id. Task ids are uuid v7,
// whose leading digits are a timestamp, so short ids are taken from the end.
// A short id matching no task is returned unchanged so deleting it is a no-op.
func ResolveID(list []model.Task, short string) (string, error) {
	match := ""
	for _, t := range list {
		if t.ID == short {
			return t.ID, nil
		}
		if short != "" && strings.HasSuffix(t.ID, short) {
			if match != "" {
				return "", &CommandError{Code: ErrCodeAmbiguousID, Message: fmt.Sprintf("id %q matches several tasks", short)}
			}
			match = t.ID
		}
	}
	if match == "" {
		return short, nil
	}
	return match, nil
}

// ShortID is the trailing part of an id shown in lists.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
