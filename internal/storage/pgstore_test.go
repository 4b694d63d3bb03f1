package storage

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/scheduler"
)

func setupPg(t *testing.T) *PgStore {
	t.Helper()
	url := os.Getenv("REMINDD_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("REMINDD_TEST_POSTGRES_URL not set")
	}
	s, err := OpenPostgres(t.Context(), url)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPgStoreKVAndAlarms(t *testing.T) {
	s := setupPg(t)
	ctx := t.Context()
	key := "test-" + uuid.NewString()
	t.Cleanup(func() { _ = s.RemoveItem(ctx, key) })

	if _, err := s.GetItem(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	store := NewTaskStore(s, key)
	if err := store.WriteAll(ctx, sampleTasks()); err != nil {
		t.Fatalf("write tasks: %v", err)
	}
	got, err := store.ReadAll(ctx)
	if err != nil || len(got) != 2 {
		t.Fatalf("read tasks: %v %+v", err, got)
	}

	a := scheduler.Alarm{
		Handle:  uuid.NewString(),
		FireAt:  time.Now().Add(time.Hour).Truncate(time.Microsecond),
		ArmedAt: time.Now().Truncate(time.Microsecond),
		Payload: model.Payload{Kind: model.TriggerKindReminder, Title: "pg", Channel: "default"},
	}
	if err := s.SaveAlarm(ctx, a); err != nil {
		t.Fatalf("save alarm: %v", err)
	}
	list, err := s.ListAlarms(ctx)
	if err != nil {
		t.Fatalf("list alarms: %v", err)
	}
	found := false
	for _, item := range list {
		if item.Handle == a.Handle {
			found = item.FireAt.Equal(a.FireAt)
		}
	}
	if !found {
		t.Fatalf("alarm %s not listed intact", a.Handle)
	}
	if err := s.DeleteAlarm(ctx, a.Handle); err != nil {
		t.Fatalf("delete alarm: %v", err)
	}
}
