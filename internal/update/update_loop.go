package update

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/remindd/internal/commands"
	"github.com/sandeepkv93/remindd/internal/tasks"
	"github.com/sandeepkv93/remindd/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadTasksCmd(m.deps.Service),
		waitForAlarmCmd(m.deps.Alarms),
		clockTickCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.Palette.Active {
			return m.handlePaletteKey(typed)
		}
		if m.CurrentView == ViewAdd {
			return m.handleFormKey(typed)
		}
		if m.PendingDelete != "" {
			return m.handleConfirmKey(typed)
		}
		return m.handleTasksKey(typed)
	case spinner.TickMsg:
		if m.Busy {
			var cmd tea.Cmd
			m.busySpinner, cmd = m.busySpinner.Update(typed)
			return m, cmd
		}
	case TasksLoadedMsg:
		m.Busy = false
		m.setTasks(typed.Tasks)
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: fmt.Sprintf("could not read saved tasks: %v", typed.Err), IsError: true}
			m.deps.Logger.Error("load tasks", "err", typed.Err)
		}
		return m, nil
	case TasksChangedMsg:
		m.Busy = false
		m.setTasks(typed.Tasks)
		m.Status = StatusBar{Text: typed.Message}
		if m.CurrentView == ViewAdd {
			m.closeForm()
		}
		return m, nil
	case OperationFailedMsg:
		m.Busy = false
		m.LastError = typed.Err
		text := tasks.UserMessage(typed.Err)
		m.Status = StatusBar{Text: text, IsError: true}
		if m.CurrentView == ViewAdd {
			m.Form.Err = text
		}
		m.deps.Logger.Error("task operation", "err", typed.Err)
		return m, nil
	case CommandResultMsg:
		m.Busy = false
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: tasks.UserMessage(typed.Err), IsError: true}
			return m, nil
		}
		if typed.Result.Tasks != nil {
			m.setTasks(typed.Result.Tasks)
		}
		m.Status = StatusBar{Text: typed.Result.Message}
		return m, nil
	case AlarmFiredMsg:
		m.recordAlarm(typed.Alarm)
		return m, tea.Batch(
			showNotificationCmd(m.deps.Notifier, m.deps.Channels, typed.Alarm),
			waitForAlarmCmd(m.deps.Alarms),
		)
	case NotificationShownMsg:
		m.markShown(typed.Handle, typed.Err)
		return m, nil
	case ClockTickMsg:
		return m, clockTickCmd()
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	}
	return m, nil
}

func (m Model) handleTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	case "/":
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Add:
		m.openForm()
		return m, nil
	case m.Keys.Delete, "x":
		if t, ok := m.selectedTask(); ok {
			m.PendingDelete = t.ID
		}
		return m, nil
	case m.Keys.Test:
		return m.startCommand(commands.Command{Type: commands.TypeTest})
	case m.Keys.Reload:
		m.Busy = true
		return m, tea.Batch(loadTasksCmd(m.deps.Service), m.busySpinner.Tick)
	case "j", "down":
		if m.Cursor < len(m.Tasks)-1 {
			m.Cursor++
		}
		return m, nil
	case "k", "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		id := m.PendingDelete
		m.PendingDelete = ""
		m.Busy = true
		return m, tea.Batch(deleteTaskCmd(m.deps.Service, id), m.busySpinner.Tick)
	case "n", "N", "esc":
		m.PendingDelete = ""
		m.Status = StatusBar{Text: "delete cancelled"}
	}
	return m, nil
}

func (m Model) startCommand(cmd commands.Command) (tea.Model, tea.Cmd) {
	if m.deps.Service == nil {
		m.Status = StatusBar{Text: "no task service configured", IsError: true}
		return m, nil
	}
	m.Busy = true
	return m, tea.Batch(runCommandCmd(m.handlers, cmd), m.busySpinner.Tick)
}

func (m Model) View() string {
	left := ""
	switch m.CurrentView {
	case ViewAdd:
		left = m.renderAddForm()
	default:
		left = m.renderTaskList()
	}
	right := m.renderCommandPalette() + m.renderHelpIfVisible()

	status := m.Status.Text
	if m.Busy {
		status = m.busySpinner.View() + " " + status
	}
	scheduled := 0
	for _, t := range m.Tasks {
		if t.Scheduled() {
			scheduled++
		}
	}
	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("remindd | %d task(s) | %d with reminders | %s", len(m.Tasks), scheduled, m.now().Format("Mon 15:04")),
		LeftPane:   left,
		RightPane:  right,
		StatusLine: status,
		IsError:    m.Status.IsError,
		Feed:       m.renderFeed(),
		Footer: fmt.Sprintf("keys: %s add | %s delete | %s test | %s reload | / cmd | %s help | %s quit",
			m.Keys.Add, m.Keys.Delete, m.Keys.Test, m.Keys.Reload, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderTaskList() string {
	now := m.now()
	rows := make([]views.TaskRowData, 0, len(m.Tasks))
	pending := ""
	for i, t := range m.Tasks {
		rows = append(rows, views.TaskRowData{
			ShortID:       commands.ShortID(t.ID),
			Name:          t.Name,
			Deadline:      t.Deadline.Local().Format("Jan 2, 2006 3:04 PM"),
			Priority:      t.Priority.Label(),
			PriorityColor: t.Priority.Color(),
			Overdue:       t.IsOverdue(now),
			DueSoon:       t.IsNearDeadline(now),
			Scheduled:     t.Scheduled(),
			Selected:      i == m.Cursor,
		})
		if t.ID == m.PendingDelete {
			pending = t.Name
		}
	}
	return views.RenderTaskList(views.TaskListData{Rows: rows, PendingDelete: pending})
}

func formatFeedTime(t time.Time) string {
	return t.Local().Format("15:04:05")
}
