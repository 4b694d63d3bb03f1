package update

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/remindd/internal/desktop"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/scheduler"
	"github.com/sandeepkv93/remindd/internal/tasks"
)

var fixedNow = time.Date(2026, 10, 19, 14, 0, 0, 0, time.Local)

type fakeService struct {
	tasks     []model.Task
	created   []model.TaskForm
	deleted   []string
	createErr error
	loadErr   error
}

func (f *fakeService) Create(_ context.Context, form model.TaskForm) ([]model.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, form)
	task := model.NewTask(form, "task-"+string(rune('a'+len(f.created))), fixedNow)
	task.NotificationHandles = []string{"h1", "h2"}
	f.tasks = model.SortByDeadline(append(f.tasks, task))
	return f.tasks, nil
}

func (f *fakeService) Delete(_ context.Context, id string) ([]model.Task, error) {
	f.deleted = append(f.deleted, id)
	f.tasks = model.WithoutTask(f.tasks, id)
	return f.tasks, nil
}

func (f *fakeService) Load(context.Context) []model.Task {
	if f.loadErr != nil {
		return []model.Task{}
	}
	return f.tasks
}

func (f *fakeService) LoadErr() error { return f.loadErr }

type fakeTester struct{}

func (fakeTester) ScheduleTest(context.Context) (string, error) { return "test-handle", nil }

type fakePurger struct{}

func (fakePurger) CancelAll(context.Context) int { return 0 }

type recordingNotifier struct {
	sent []desktop.Notification
	err  error
}

func (r *recordingNotifier) Send(_ context.Context, n desktop.Notification) error {
	r.sent = append(r.sent, n)
	return r.err
}

func newTestModel(svc *fakeService, notifier desktop.Notifier) Model {
	return NewModel(Deps{
		Service:  svc,
		Tester:   fakeTester{},
		Purger:   fakePurger{},
		Notifier: notifier,
		Now:      func() time.Time { return fixedNow },
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(Model)
	}
	return m, cmd
}

// drain runs cmd and feeds every resulting message except spinner ticks back
// into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(&fakeService{}, nil)
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected default view %q, got %q", ViewTasks, m.CurrentView)
	}
	if m.Keys.Quit != "q" || m.Keys.Add != "a" {
		t.Fatalf("unexpected keys: %+v", m.Keys)
	}
	if m.Form.Priority != model.PriorityMedium {
		t.Fatalf("expected medium default priority, got %q", m.Form.Priority)
	}
	if !strings.Contains(m.View(), "No tasks yet") {
		t.Fatalf("expected empty list hint in view:\n%s", m.View())
	}
}

func TestLoadFailureShowsStatus(t *testing.T) {
	m := newTestModel(&fakeService{}, nil)
	next, _ := m.Update(TasksLoadedMsg{Tasks: []model.Task{}, Err: errors.New("corrupt json")})
	got := next.(Model)
	if !got.Status.IsError || !strings.Contains(got.Status.Text, "corrupt json") {
		t.Fatalf("expected load error in status, got %+v", got.Status)
	}
	if got.LastError == nil {
		t.Fatal("expected last error to be recorded")
	}
}

func TestAddFormCreatesTask(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc, nil)

	m, _ = press(t, m, "a")
	if m.CurrentView != ViewAdd {
		t.Fatalf("expected add view, got %q", m.CurrentView)
	}
	m, _ = press(t, m, "Buy milk", "tab", "+2h", "tab", "right")
	if m.Form.Priority != model.PriorityHigh {
		t.Fatalf("expected high priority after cycling, got %q", m.Form.Priority)
	}
	m, cmd := press(t, m, "enter")
	if !m.Busy || cmd == nil {
		t.Fatal("expected busy state with a pending create command")
	}
	m = drain(t, m, cmd)

	if len(svc.created) != 1 {
		t.Fatalf("expected one create call, got %d", len(svc.created))
	}
	form := svc.created[0]
	if form.Name != "Buy milk" || !form.Deadline.Equal(fixedNow.Add(2*time.Hour)) || form.Priority != model.PriorityHigh {
		t.Fatalf("unexpected submitted form: %+v", form)
	}
	if m.CurrentView != ViewTasks || m.Busy || len(m.Tasks) != 1 {
		t.Fatalf("expected list view with the new task, got view=%q busy=%v tasks=%d", m.CurrentView, m.Busy, len(m.Tasks))
	}
	if !strings.Contains(m.View(), "Buy milk") {
		t.Fatalf("expected task in view:\n%s", m.View())
	}
}

func TestAddFormRejectsEmptyName(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc, nil)
	m, cmd := press(t, m, "a", "enter")
	if cmd != nil {
		t.Fatal("expected no command for invalid form")
	}
	if m.Form.Err != "Please enter a task name" || m.CurrentView != ViewAdd {
		t.Fatalf("expected validation alert, got %+v view=%q", m.Form, m.CurrentView)
	}

	m, _ = press(t, m, "Walk dog", "tab", "someday", "enter")
	if !strings.Contains(m.Form.Err, "cannot read deadline") {
		t.Fatalf("expected deadline alert, got %q", m.Form.Err)
	}
	if len(svc.created) != 0 {
		t.Fatal("service must not be called for invalid input")
	}
}

func TestAddFormSurfacesStoreFailure(t *testing.T) {
	svc := &fakeService{createErr: &tasks.OperationError{Op: "create", Message: "failed to add task", Err: errors.New("disk full")}}
	m := newTestModel(svc, nil)
	m, cmd := press(t, m, "a", "Pay rent", "enter")
	m = drain(t, m, cmd)

	if m.CurrentView != ViewAdd || m.Form.Err != "failed to add task" {
		t.Fatalf("expected form to stay open with alert, got view=%q err=%q", m.CurrentView, m.Form.Err)
	}
	if !m.Status.IsError {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc, nil)
	_, _ = svc.Create(context.Background(), model.TaskForm{Name: "First", Deadline: fixedNow.Add(time.Hour), Priority: model.PriorityLow})
	_, _ = svc.Create(context.Background(), model.TaskForm{Name: "Second", Deadline: fixedNow.Add(2 * time.Hour), Priority: model.PriorityLow})
	next, _ := m.Update(TasksLoadedMsg{Tasks: svc.tasks})
	m = next.(Model)

	m, _ = press(t, m, "j", "d")
	if m.PendingDelete != svc.tasks[1].ID {
		t.Fatalf("expected pending delete of second task, got %q", m.PendingDelete)
	}
	m, _ = press(t, m, "n")
	if m.PendingDelete != "" || len(svc.deleted) != 0 {
		t.Fatal("expected delete to be cancelled")
	}

	m, cmd := press(t, m, "d", "y")
	m = drain(t, m, cmd)
	if len(svc.deleted) != 1 || len(m.Tasks) != 1 || m.Tasks[0].Name != "First" {
		t.Fatalf("unexpected state after delete: deleted=%v tasks=%+v", svc.deleted, m.Tasks)
	}
}

func TestPaletteRunsCommands(t *testing.T) {
	svc := &fakeService{}
	m := newTestModel(svc, nil)

	m, _ = press(t, m, "/")
	if !m.Palette.Active {
		t.Fatal("expected palette to open")
	}
	m, cmd := press(t, m, "add Call mum @ 18:30 priority:low", "enter")
	m = drain(t, m, cmd)
	if m.Palette.Active || len(m.Tasks) != 1 || m.Status.IsError {
		t.Fatalf("unexpected state after palette add: %+v", m.Status)
	}
	if !svc.tasks[0].Deadline.Equal(time.Date(2026, 10, 19, 18, 30, 0, 0, time.Local)) {
		t.Fatalf("unexpected deadline: %v", svc.tasks[0].Deadline)
	}

	m, _ = press(t, m, "/", "bogus", "enter")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "unsupported command") {
		t.Fatalf("expected unknown command status, got %+v", m.Status)
	}
}

func TestTestKeyArmsTestNotification(t *testing.T) {
	m := newTestModel(&fakeService{}, nil)
	m, cmd := press(t, m, "t")
	m = drain(t, m, cmd)
	if !strings.Contains(m.Status.Text, "test notification armed") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestAlarmFiredFeedsDesktop(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("notify-send missing")}
	m := newTestModel(&fakeService{}, notifier)

	alarm := scheduler.Alarm{Handle: "h-9", Payload: model.Payload{TaskID: "task-a", Kind: model.TriggerKindDeadline, Title: "🚨 DEADLINE REACHED!", Body: `Task "x" has reached its deadline!`, Urgent: true}}
	next, cmd := m.Update(AlarmFiredMsg{Alarm: alarm})
	m = next.(Model)
	if len(m.Feed) != 1 || m.Feed[0].TaskID != "task-a" {
		t.Fatalf("expected feed entry, got %+v", m.Feed)
	}
	m = drain(t, m, cmd)
	if len(notifier.sent) != 1 || !notifier.sent[0].Urgent {
		t.Fatalf("expected urgent desktop notification, got %+v", notifier.sent)
	}
	if m.Feed[0].Shown || m.Feed[0].ShowErr == "" {
		t.Fatalf("expected failed delivery to be recorded, got %+v", m.Feed[0])
	}
	if !strings.Contains(m.View(), "DEADLINE REACHED") {
		t.Fatalf("expected feed in view:\n%s", m.View())
	}
}

func TestOverdueBadgeRendered(t *testing.T) {
	m := newTestModel(&fakeService{}, nil)
	next, _ := m.Update(TasksLoadedMsg{Tasks: []model.Task{
		{ID: "late", Name: "Late one", Deadline: fixedNow.Add(-time.Hour), Priority: model.PriorityHigh, CreatedAt: fixedNow},
		{ID: "soon", Name: "Soon one", Deadline: fixedNow.Add(3 * time.Hour), Priority: model.PriorityLow, CreatedAt: fixedNow},
	}})
	view := next.(Model).View()
	if !strings.Contains(view, "OVERDUE") || !strings.Contains(view, "DUE SOON") {
		t.Fatalf("expected both badges:\n%s", view)
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(&fakeService{}, nil)
	m, cmd := press(t, m, "q")
	if !m.Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
}
