package update

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/remindd/internal/commands"
	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/tasks"
	"github.com/sandeepkv93/remindd/internal/views"
)

const (
	fieldName = iota
	fieldDeadline
	fieldPriority
	fieldCount
)

var priorityCycle = []model.Priority{model.PriorityLow, model.PriorityMedium, model.PriorityHigh}

func (m *Model) openForm() {
	m.CurrentView = ViewAdd
	m.Form = FormState{Focus: fieldName, Priority: model.PriorityMedium}
	m.nameInput.SetValue("")
	m.deadlineInput.SetValue("")
	m.focusField()
}

func (m *Model) closeForm() {
	m.CurrentView = ViewTasks
	m.Form.Err = ""
	m.nameInput.Blur()
	m.deadlineInput.Blur()
}

func (m *Model) focusField() {
	m.nameInput.Blur()
	m.deadlineInput.Blur()
	switch m.Form.Focus {
	case fieldName:
		m.nameInput.Focus()
	case fieldDeadline:
		m.deadlineInput.Focus()
	}
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeForm()
		m.Status = StatusBar{Text: "add cancelled"}
		return m, nil
	case "tab", "down":
		m.Form.Focus = (m.Form.Focus + 1) % fieldCount
		m.focusField()
		return m, nil
	case "shift+tab", "up":
		m.Form.Focus = (m.Form.Focus + fieldCount - 1) % fieldCount
		m.focusField()
		return m, nil
	case "enter":
		return m.submitForm()
	}

	if m.Form.Focus == fieldPriority {
		switch msg.String() {
		case "left", "h":
			m.Form.Priority = shiftPriority(m.Form.Priority, -1)
		case "right", "l", " ":
			m.Form.Priority = shiftPriority(m.Form.Priority, 1)
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.Form.Focus {
	case fieldName:
		if msg.Type == tea.KeyRunes {
			m.nameInput.SetValue(m.nameInput.Value() + string(msg.Runes))
		} else {
			m.nameInput, cmd = m.nameInput.Update(msg)
		}
	case fieldDeadline:
		if msg.Type == tea.KeyRunes {
			m.deadlineInput.SetValue(m.deadlineInput.Value() + string(msg.Runes))
		} else {
			m.deadlineInput, cmd = m.deadlineInput.Update(msg)
		}
	}
	m.Form.Err = ""
	return m, cmd
}

// submitForm validates locally so bad input never reaches the service.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	deadline, err := commands.ParseDeadline(m.deadlineInput.Value(), m.now())
	if err != nil {
		var ce *commands.CommandError
		if errors.As(err, &ce) {
			m.Form.Err = ce.Message
		} else {
			m.Form.Err = err.Error()
		}
		return m, nil
	}
	form := model.TaskForm{Name: m.nameInput.Value(), Deadline: deadline, Priority: m.Form.Priority}
	if err := form.Validate(); err != nil {
		m.Form.Err = tasks.UserMessage(err)
		return m, nil
	}
	if m.deps.Service == nil {
		m.Form.Err = "no task service configured"
		return m, nil
	}
	m.Form.Err = ""
	m.Busy = true
	return m, tea.Batch(createTaskCmd(m.deps.Service, form), m.busySpinner.Tick)
}

func shiftPriority(p model.Priority, step int) model.Priority {
	idx := 1
	for i, candidate := range priorityCycle {
		if candidate == p {
			idx = i
		}
	}
	idx = (idx + step + len(priorityCycle)) % len(priorityCycle)
	return priorityCycle[idx]
}

func (m Model) renderAddForm() string {
	preview := ""
	if deadline, err := commands.ParseDeadline(m.deadlineInput.Value(), m.now()); err == nil {
		preview = deadline.Format("Mon Jan 2, 2006 3:04 PM")
	}
	return views.RenderAddForm(views.FormData{
		NameView:      m.nameInput.View(),
		DeadlineView:  m.deadlineInput.View(),
		Priority:      m.Form.Priority.Label(),
		PriorityColor: m.Form.Priority.Color(),
		Focus:         m.Form.Focus,
		Preview:       preview,
		ErrorText:     m.Form.Err,
	})
}
