package storage

import (
	"context"
	"sync"

	"github.com/sandeepkv93/remindd/internal/scheduler"
)

// MemoryStore keeps items and alarms in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[string]string
	alarms map[string]scheduler.Alarm
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:  make(map[string]string),
		alarms: make(map[string]scheduler.Alarm),
	}
}

func (m *MemoryStore) GetItem(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStore) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryStore) SaveAlarm(_ context.Context, a scheduler.Alarm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alarms[a.Handle] = a
	return nil
}

func (m *MemoryStore) DeleteAlarm(_ context.Context, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.alarms, handle)
	return nil
}

func (m *MemoryStore) ListAlarms(context.Context) ([]scheduler.Alarm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]scheduler.Alarm, 0, len(m.alarms))
	for _, a := range m.alarms {
		out = append(out, a)
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
