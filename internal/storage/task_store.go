package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sandeepkv93/remindd/internal/model"
)

// DefaultTaskKey is the key the whole collection lives under.
const DefaultTaskKey = "@tasks"

// TaskStore persists the task collection as one JSON document in a KV.
type TaskStore struct {
	kv  KV
	key string
}

func NewTaskStore(kv KV, key string) *TaskStore {
	if key == "" {
		key = DefaultTaskKey
	}
	return &TaskStore{kv: kv, key: key}
}

// ReadAll returns the stored collection; a missing key is an empty one.
func (s *TaskStore) ReadAll(ctx context.Context) ([]model.Task, error) {
	raw, err := s.kv.GetItem(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []model.Task{}, nil
		}
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (s *TaskStore) WriteAll(ctx context.Context, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.kv.SetItem(ctx, s.key, string(raw)); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	return nil
}
