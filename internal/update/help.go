package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/remindd/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

const commandHelp = `## Commands

- ` + "`add <name> @ <when> priority:<low|medium|high>`" + `
- ` + "`delete <id>`" + `, ` + "`list`" + `, ` + "`test`" + `
- ` + "`export <path>`" + `, ` + "`purge-alarms`" + `

*when*: ` + "`+90m`" + `, ` + "`17:30`" + `, ` + "`tomorrow 09:00`" + `, ` + "`2026-10-20 18:00`" + `
`

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
		Markdown: views.RenderMarkdown(commandHelp),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: "/", Action: "open command palette"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	switch m.CurrentView {
	case ViewAdd:
		return []KeyBinding{
			{Key: "tab", Action: "next field"},
			{Key: "←/→", Action: "change priority"},
			{Key: "enter", Action: "save task"},
			{Key: "esc", Action: "cancel"},
		}
	default:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: m.Keys.Add, Action: "add task"},
			{Key: m.Keys.Delete, Action: "delete selected task"},
			{Key: m.Keys.Test, Action: "send a test notification"},
			{Key: m.Keys.Reload, Action: "reload tasks"},
		}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
