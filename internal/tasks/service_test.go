package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/notify"
	"github.com/sandeepkv93/remindd/internal/scheduler"
	"github.com/sandeepkv93/remindd/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedAuth bool

func (a fixedAuth) Status(context.Context) (bool, error)  { return bool(a), nil }
func (a fixedAuth) Request(context.Context) (bool, error) { return bool(a), nil }

// flakyKV fails writes or reads on demand and otherwise behaves like memory.
type flakyKV struct {
	*storage.MemoryStore
	failWrites bool
	failReads  bool
}

func (f *flakyKV) SetItem(ctx context.Context, key, value string) error {
	if f.failWrites {
		return errors.New("disk full")
	}
	return f.MemoryStore.SetItem(ctx, key, value)
}

func (f *flakyKV) GetItem(ctx context.Context, key string) (string, error) {
	if f.failReads {
		return "", errors.New("io error")
	}
	return f.MemoryStore.GetItem(ctx, key)
}

type fixture struct {
	svc    *Service
	engine *scheduler.Engine
	kv     *flakyKV
	store  *storage.TaskStore
}

func newFixture(t *testing.T, granted bool) fixture {
	t.Helper()
	engine := scheduler.NewEngine(8, scheduler.WithAuthorizer(fixedAuth(granted)))
	kv := &flakyKV{MemoryStore: storage.NewMemoryStore()}
	store := storage.NewTaskStore(kv, "")
	gate := notify.NewGate(engine, notify.DefaultChannel, nil)
	svc := NewService(store, notify.NewScheduler(engine, gate), notify.NewCanceller(engine))
	return fixture{svc: svc, engine: engine, kv: kv, store: store}
}

func form(name string, deadline time.Time) model.TaskForm {
	return model.TaskForm{Name: name, Deadline: deadline, Priority: model.PriorityMedium}
}

func TestCreateArmsBothAlarmsAndSortsByDeadline(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	now := time.Now()

	_, err := f.svc.Create(ctx, form("Later", now.Add(48*time.Hour)))
	require.NoError(t, err)
	tasks, err := f.svc.Create(ctx, form("Buy milk", now.Add(2*time.Hour)))
	require.NoError(t, err)

	require.Len(t, tasks, 2)
	assert.Equal(t, "Buy milk", tasks[0].Name)
	assert.Len(t, tasks[0].NotificationHandles, 2)
	assert.True(t, tasks[0].Scheduled())

	loaded := f.svc.Load(ctx)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Buy milk", loaded[0].Name)
	assert.Equal(t, tasks[0].NotificationHandles, loaded[0].NotificationHandles)
	assert.NoError(t, f.svc.LoadErr())
	assert.Len(t, f.engine.Pending(), 4)
}

func TestCreateOverdueTaskIsStoredUnscheduled(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	tasks, err := f.svc.Create(ctx, form("Already late", time.Now().Add(-10*time.Minute)))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Empty(t, tasks[0].NotificationHandles)
	assert.False(t, tasks[0].Scheduled())

	loaded := f.svc.Load(ctx)
	require.Len(t, loaded, 1)
	assert.Equal(t, tasks[0].ID, loaded[0].ID)
}

func TestCreateWithinLastHourArmsDeadlineOnly(t *testing.T) {
	f := newFixture(t, true)
	tasks, err := f.svc.Create(context.Background(), form("Soon", time.Now().Add(30*time.Minute)))
	require.NoError(t, err)
	require.Len(t, tasks[0].NotificationHandles, 1)

	pending := f.engine.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, model.TriggerKindDeadline, pending[0].Payload.Kind)
	assert.Equal(t, tasks[0].ID, pending[0].Payload.TaskID)
}

func TestDeleteUnknownIDReturnsCollectionUnchanged(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	before, err := f.svc.Create(ctx, form("Keep me", time.Now().Add(3*time.Hour)))
	require.NoError(t, err)
	raw, err := f.kv.GetItem(ctx, storage.DefaultTaskKey)
	require.NoError(t, err)

	f.kv.failWrites = true
	after, err := f.svc.Delete(ctx, "does-not-exist")
	require.NoError(t, err)
	require.Len(t, after, len(before))
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, before[0].NotificationHandles, after[0].NotificationHandles)

	rawAfter, err := f.kv.GetItem(ctx, storage.DefaultTaskKey)
	require.NoError(t, err)
	assert.Equal(t, raw, rawAfter)
}

func TestPermissionDeniedStillPersists(t *testing.T) {
	f := newFixture(t, false)
	tasks, err := f.svc.Create(context.Background(), form("No alerts", time.Now().Add(5*time.Hour)))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.NotNil(t, tasks[0].NotificationHandles)
	assert.Empty(t, tasks[0].NotificationHandles)
	assert.Empty(t, f.engine.Pending())

	loaded := f.svc.Load(context.Background())
	require.Len(t, loaded, 1)
	assert.Equal(t, "No alerts", loaded[0].Name)
}

func TestCreateWriteFailureLeavesStoreAndAlarmsUntouched(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, form("Existing", time.Now().Add(4*time.Hour)))
	require.NoError(t, err)
	raw, err := f.kv.GetItem(ctx, storage.DefaultTaskKey)
	require.NoError(t, err)
	pendingBefore := len(f.engine.Pending())

	f.kv.failWrites = true
	tasks, err := f.svc.Create(ctx, form("Unsaved", time.Now().Add(6*time.Hour)))
	require.Error(t, err)
	assert.Nil(t, tasks)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "create", opErr.Op)
	assert.Equal(t, "failed to add task", UserMessage(err))

	rawAfter, err := f.kv.GetItem(ctx, storage.DefaultTaskKey)
	require.NoError(t, err)
	assert.Equal(t, raw, rawAfter)
	assert.Len(t, f.engine.Pending(), pendingBefore, "alarms of the unsaved task must be disarmed")
}

func TestCreateRejectsInvalidFormBeforeAnyIO(t *testing.T) {
	f := newFixture(t, true)
	f.kv.failReads = true

	_, err := f.svc.Create(context.Background(), form("   ", time.Now().Add(time.Hour)))
	var valErr *model.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.ErrorIs(t, err, model.ErrEmptyName)
	assert.Equal(t, "Please enter a task name", UserMessage(err))

	_, err = f.svc.Create(context.Background(), form(strings.Repeat("x", model.MaxNameLength+1), time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, model.ErrNameTooLong)
	assert.Empty(t, f.engine.Pending())
}

func TestDeleteCancelsAlarmsAndRemovesRecord(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	tasks, err := f.svc.Create(ctx, form("Doomed", time.Now().Add(2*time.Hour)))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, form("Survivor", time.Now().Add(3*time.Hour)))
	require.NoError(t, err)

	remaining, err := f.svc.Delete(ctx, tasks[0].ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Survivor", remaining[0].Name)
	for _, a := range f.engine.Pending() {
		assert.NotEqual(t, tasks[0].ID, a.Payload.TaskID)
	}
	assert.Len(t, f.svc.Load(ctx), 1)
}

func TestDeleteWriteFailureIsSurfaced(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	tasks, err := f.svc.Create(ctx, form("Sticky", time.Now().Add(2*time.Hour)))
	require.NoError(t, err)

	f.kv.failWrites = true
	_, err = f.svc.Delete(ctx, tasks[0].ID)
	require.Error(t, err)
	assert.Equal(t, "failed to delete task", UserMessage(err))

	f.kv.failWrites = false
	assert.Len(t, f.svc.Load(ctx), 1)
}

func TestLoadDegradesToEmptyAndReportsCause(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, form("Hidden", time.Now().Add(2*time.Hour)))
	require.NoError(t, err)

	f.kv.failReads = true
	assert.Empty(t, f.svc.Load(ctx))
	assert.Error(t, f.svc.LoadErr())

	f.kv.failReads = false
	assert.Len(t, f.svc.Load(ctx), 1)
	assert.NoError(t, f.svc.LoadErr())
}

func TestCreateReadFailureIsSurfaced(t *testing.T) {
	f := newFixture(t, true)
	f.kv.failReads = true
	_, err := f.svc.Create(context.Background(), form("Blind", time.Now().Add(2*time.Hour)))
	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Empty(t, f.engine.Pending())
}

func TestCustomIDAndClock(t *testing.T) {
	created := time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local)
	kv := storage.NewMemoryStore()
	svc := NewService(storage.NewTaskStore(kv, ""), noopScheduler{}, noopCanceller{},
		WithClock(func() time.Time { return created }),
		WithIDGenerator(func() (string, error) { return "task-42", nil }),
	)
	tasks, err := svc.Create(context.Background(), form("  Padded  ", created.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "task-42", tasks[0].ID)
	assert.Equal(t, "Padded", tasks[0].Name)
	assert.True(t, tasks[0].CreatedAt.Equal(created))
	assert.NotNil(t, tasks[0].NotificationHandles)
}

type noopScheduler struct{}

func (noopScheduler) Schedule(context.Context, model.Task) []string { return nil }

type noopCanceller struct{}

func (noopCanceller) Cancel(context.Context, []string) {}
