// Package desktop shows fired alarms as operating system notifications.
package desktop

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/sandeepkv93/remindd/internal/model"
	"github.com/sandeepkv93/remindd/internal/scheduler"
)

const appName = "remindd"

// Notification is what a Notifier puts on screen.
type Notification struct {
	Title      string
	Body       string
	Sound      bool
	Urgent     bool
	Importance model.Importance
}

// FromAlarm combines an alarm with the settings of the channel it was posted to.
func FromAlarm(a scheduler.Alarm, ch model.ChannelConfig) Notification {
	importance := ch.Importance
	if importance == "" {
		importance = model.ImportanceDefault
	}
	return Notification{
		Title:      a.Payload.Title,
		Body:       a.Payload.Body,
		Sound:      a.Payload.Sound,
		Urgent:     a.Payload.Urgent,
		Importance: importance,
	}
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

type Noop struct{}

func (Noop) Send(context.Context, Notification) error { return nil }

// ExecNotifier shells out to notify-send on linux and osascript on darwin.
// Other platforms silently drop notifications.
type ExecNotifier struct {
	GOOS string
	Run  func(ctx context.Context, name string, args ...string) error
}

func NewExecNotifier() ExecNotifier {
	return ExecNotifier{GOOS: runtime.GOOS, Run: runCommand}
}

func (e ExecNotifier) Send(ctx context.Context, n Notification) error {
	p := CurrentPresentation()
	if !p.ShowAlert {
		return nil
	}
	name, args := e.command(n, p)
	if name == "" {
		return nil
	}
	run := e.Run
	if run == nil {
		run = runCommand
	}
	if err := run(ctx, name, args...); err != nil {
		return fmt.Errorf("desktop: %s: %w", name, err)
	}
	return nil
}

func (e ExecNotifier) command(n Notification, p Presentation) (string, []string) {
	switch e.goos() {
	case "linux":
		args := []string{"-a", appName, "-u", urgency(n)}
		if p.PlaySound && n.Sound {
			args = append(args, "-h", "string:sound-name:message-new-instant")
		}
		return "notify-send", append(args, n.Title, n.Body)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		if p.PlaySound && n.Sound {
			script += ` sound name "default"`
		}
		return "osascript", []string{"-e", script}
	default:
		return "", nil
	}
}

func (e ExecNotifier) goos() string {
	if e.GOOS == "" {
		return runtime.GOOS
	}
	return e.GOOS
}

func urgency(n Notification) string {
	switch {
	case n.Urgent:
		return "critical"
	case n.Importance == model.ImportanceMax || n.Importance == model.ImportanceHigh:
		return "normal"
	default:
		return "low"
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
