package update

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/remindd/internal/commands"
	"github.com/sandeepkv93/remindd/internal/desktop"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/scheduler"
)

func loadTasksCmd(svc commands.TaskService) tea.Cmd {
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		tasks := svc.Load(context.Background())
		return TasksLoadedMsg{Tasks: tasks, Err: svc.LoadErr()}
	}
}

func createTaskCmd(svc commands.TaskService, form model.TaskForm) tea.Cmd {
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		tasks, err := svc.Create(context.Background(), form)
		if err != nil {
			return OperationFailedMsg{Err: err}
		}
		return TasksChangedMsg{Tasks: tasks, Message: "task added"}
	}
}

func deleteTaskCmd(svc commands.TaskService, id string) tea.Cmd {
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		tasks, err := svc.Delete(context.Background(), id)
		if err != nil {
			return OperationFailedMsg{Err: err}
		}
		return TasksChangedMsg{Tasks: tasks, Message: "task deleted"}
	}
}

func runCommandCmd(handlers commands.Handlers, cmd commands.Command) tea.Cmd {
	return func() tea.Msg {
		res, err := commands.Execute(context.Background(), cmd, handlers)
		return CommandResultMsg{Result: res, Err: err}
	}
}

func waitForAlarmCmd(ch <-chan scheduler.Alarm) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		a, ok := <-ch
		if !ok {
			return nil
		}
		return AlarmFiredMsg{Alarm: a}
	}
}

func showNotificationCmd(n desktop.Notifier, channels desktop.ChannelLookup, a scheduler.Alarm) tea.Cmd {
	return func() tea.Msg {
		err := desktop.Show(context.Background(), a, n, channels)
		return NotificationShownMsg{Handle: a.Handle, Err: err}
	}
}

// clockTickCmd re-renders once a minute so overdue and due-soon badges move.
func clockTickCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(at time.Time) tea.Msg { return ClockTickMsg{At: at} })
}
