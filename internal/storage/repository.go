package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("storage: not found")
	ErrUnknownDriver = errors.New("storage: unknown driver")
)

// KV is an opaque string store addressed by key, the shape the task
// collection is persisted in.
type KV interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
