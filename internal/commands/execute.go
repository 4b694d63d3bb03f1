package commands

import (
	"context"
	"fmt"

	"github.com/sandeepkv93/remindd/internal/model"
)

type Result struct {
	Message string
	Tasks   []model.Task
}

type Handlers struct {
	Add         func(context.Context, AddArgs) (Result, error)
	Delete      func(context.Context, DeleteArgs) (Result, error)
	List        func(context.Context) (Result, error)
	Test        func(context.Context) (Result, error)
	Export      func(context.Context, ExportArgs) (Result, error)
	PurgeAlarms func(context.Context) (Result, error)
}

func Execute(ctx context.Context, cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(ctx, *cmd.Add)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Delete(ctx, *cmd.Delete)
	case TypeList:
		if handlers.List == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.List(ctx)
	case TypeTest:
		if handlers.Test == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Test(ctx)
	case TypeExport:
		if handlers.Export == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Export(ctx, *cmd.Export)
	case TypePurgeAlarms:
		if handlers.PurgeAlarms == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.PurgeAlarms(ctx)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
