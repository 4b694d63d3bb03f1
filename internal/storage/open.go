package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandeepkv93/remindd/internal/scheduler"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Options struct {
	Driver      string
	SQLitePath  string
	PostgresURL string
}

// Backend is a store able to hold both the task collection and armed alarms.
type Backend interface {
	KV
	scheduler.AlarmStore
	Close() error
}

func Open(ctx context.Context, opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverSQLite:
		if dir := filepath.Dir(opts.SQLitePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		return OpenSQLite(opts.SQLitePath)
	case DriverPostgres:
		if strings.TrimSpace(opts.PostgresURL) == "" {
			return nil, fmt.Errorf("storage: postgres driver needs a connection url")
		}
		return OpenPostgres(ctx, opts.PostgresURL)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
