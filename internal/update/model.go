package update

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/remindd/internal/commands"
	"github.com/sandeepkv93/remindd/internal/desktop"
	"github.com/sandeepkv93/remindd/internal/logging"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/scheduler"
)

type View string

const (
	ViewTasks View = "Tasks"
	ViewAdd   View = "Add"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Add    string
	Delete string
	Test   string
	Reload string
	Help   string
	Quit   string
}

// FeedEntry is a fired alarm as shown in the in-app notification feed.
type FeedEntry struct {
	At      time.Time
	TaskID  string
	Kind    model.TriggerKind
	Title   string
	Body    string
	Shown   bool
	ShowErr string
	handle  string
}

type FormState struct {
	Focus    int
	Priority model.Priority
	Err      string
}

type PaletteState struct {
	Active bool
	Input  string
}

// Deps are the collaborators the TUI drives. Alarms and Notifier may be nil.
type Deps struct {
	Service  commands.TaskService
	Tester   commands.TestScheduler
	Purger   commands.AlarmPurger
	Alarms   <-chan scheduler.Alarm
	Notifier desktop.Notifier
	Channels desktop.ChannelLookup
	Logger   *log.Logger
	Now      func() time.Time
}

type Model struct {
	CurrentView   View
	Tasks         []model.Task
	Cursor        int
	PendingDelete string
	Form          FormState
	Palette       PaletteState
	HelpVisible   bool
	Feed          []FeedEntry
	Status        StatusBar
	Keys          GlobalKeyMap
	Busy          bool
	Quitting      bool
	LastError     error

	deps     Deps
	handlers commands.Handlers

	nameInput     textinput.Model
	deadlineInput textinput.Model
	commandInput  textinput.Model
	busySpinner   spinner.Model
	helpModel     help.Model
}

const feedLimit = 20

type TasksLoadedMsg struct {
	Tasks []model.Task
	Err   error
}

type TasksChangedMsg struct {
	Tasks   []model.Task
	Message string
}

type OperationFailedMsg struct {
	Err error
}

type CommandResultMsg struct {
	Result commands.Result
	Err    error
}

type AlarmFiredMsg struct {
	Alarm scheduler.Alarm
}

type NotificationShownMsg struct {
	Handle string
	Err    error
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type ClockTickMsg struct {
	At time.Time
}

func NewModel(deps Deps) Model {
	if deps.Notifier == nil {
		deps.Notifier = desktop.Noop{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	deps.Logger = logging.OrDiscard(deps.Logger)

	m := Model{
		CurrentView: ViewTasks,
		Tasks:       []model.Task{},
		Form:        FormState{Priority: model.PriorityMedium},
		Keys: GlobalKeyMap{
			Add:    "a",
			Delete: "d",
			Test:   "t",
			Reload: "r",
			Help:   "?",
			Quit:   "q",
		},
		deps: deps,
	}
	if deps.Service != nil {
		m.handlers = commands.Bind(deps.Service, deps.Tester, deps.Purger)
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.nameInput = textinput.New()
	m.nameInput.Prompt = "name> "
	m.nameInput.Placeholder = "Buy milk"
	m.nameInput.CharLimit = model.MaxNameLength
	m.nameInput.Width = 48

	m.deadlineInput = textinput.New()
	m.deadlineInput.Prompt = "due>  "
	m.deadlineInput.Placeholder = "+2h, 17:30, tomorrow 09:00, 2026-10-20 18:00"
	m.deadlineInput.CharLimit = 32
	m.deadlineInput.Width = 48

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.busySpinner = spinner.New()
	m.busySpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

func (m Model) now() time.Time {
	return m.deps.Now()
}

func (m Model) selectedTask() (model.Task, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Tasks) {
		return model.Task{}, false
	}
	return m.Tasks[m.Cursor], true
}

func (m *Model) setTasks(tasks []model.Task) {
	selectedID := ""
	if t, ok := m.selectedTask(); ok {
		selectedID = t.ID
	}
	m.Tasks = tasks
	m.Cursor = 0
	if idx := model.FindTask(tasks, selectedID); idx >= 0 {
		m.Cursor = idx
	}
}
