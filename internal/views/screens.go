package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type TaskRowData struct {
	ShortID       string
	Name          string
	Deadline      string
	Priority      string
	PriorityColor string
	Overdue       bool
	DueSoon       bool
	Scheduled     bool
	Selected      bool
}

type TaskListData struct {
	Rows          []TaskRowData
	PendingDelete string
}

type FormData struct {
	NameView      string
	DeadlineView  string
	Priority      string
	PriorityColor string
	Focus         int
	Preview       string
	ErrorText     string
}

type FeedEntryData struct {
	At    string
	Title string
	Body  string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
	Markdown    string
}

var (
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	overdueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	dueSoonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	alertStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("9")).Padding(0, 1)
)

func RenderTaskList(data TaskListData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	b.WriteString("actions: [j/k]move [a]add [d]delete [t]test [r]reload\n\n")
	if len(data.Rows) == 0 {
		b.WriteString(mutedStyle.Render("No tasks yet. Press a to add one."))
		return b.String()
	}
	for _, row := range data.Rows {
		b.WriteString(renderTaskRow(row))
		b.WriteString("\n")
	}
	if data.PendingDelete != "" {
		b.WriteString("\n")
		b.WriteString(alertStyle.Render(fmt.Sprintf("Delete %q? Its reminders are cancelled too. [y]es / [n]o", data.PendingDelete)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTaskRow(row TaskRowData) string {
	cursor := "  "
	if row.Selected {
		cursor = "> "
	}
	bell := " "
	if row.Scheduled {
		bell = "🔔"
	}
	priority := lipgloss.NewStyle().Foreground(lipgloss.Color(row.PriorityColor)).Render(fmt.Sprintf("%-6s", row.Priority))
	name := row.Name
	if row.Selected {
		name = selectedStyle.Render(name)
	}
	badge := ""
	switch {
	case row.Overdue:
		badge = " " + overdueStyle.Render("OVERDUE")
	case row.DueSoon:
		badge = " " + dueSoonStyle.Render("DUE SOON")
	}
	return fmt.Sprintf("%s%s %s %s %s %s%s", cursor, mutedStyle.Render(row.ShortID), bell, priority, row.Deadline, name, badge)
}

func RenderAddForm(data FormData) string {
	marker := func(i int) string {
		if data.Focus == i {
			return "> "
		}
		return "  "
	}
	priority := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(data.PriorityColor)).Render(data.Priority)

	var b strings.Builder
	b.WriteString("new task:\n")
	b.WriteString("actions: [tab]next field [←/→]priority [enter]save [esc]cancel\n\n")
	b.WriteString(marker(0) + data.NameView + "\n")
	b.WriteString(marker(1) + data.DeadlineView + "\n")
	b.WriteString(marker(2) + "priority: " + priority + "\n")
	if data.Preview != "" {
		b.WriteString(mutedStyle.Render("  due: "+data.Preview) + "\n")
	}
	if data.ErrorText != "" {
		b.WriteString("\n" + alertStyle.Render(data.ErrorText))
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderFeed(entries []FeedEntryData) string {
	if len(entries) == 0 {
		return ""
	}
	lines := []string{"notifications:"}
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s %s %s", mutedStyle.Render(e.At), e.Title, e.Body))
	}
	return strings.Join(lines, "\n")
}

func RenderHelpPanel(data HelpPanelData) string {
	parts := []string{
		fmt.Sprintf("help (%s):", strings.ToLower(data.CurrentView)),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	}
	if data.Markdown != "" {
		parts = append(parts, data.Markdown)
	}
	return strings.Join(parts, "\n")
}
