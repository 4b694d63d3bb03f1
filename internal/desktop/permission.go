package desktop

import (
	"context"
	"os/exec"
	"runtime"
)

// Permission grants alerts when desktop notifications are enabled and the
// platform tool used by ExecNotifier is installed. There is nothing to
// prompt for, so Request answers the same way Status does.
type Permission struct {
	Enabled  bool
	GOOS     string
	LookPath func(file string) (string, error)
}

func NewPermission(enabled bool) Permission {
	return Permission{Enabled: enabled, GOOS: runtime.GOOS, LookPath: exec.LookPath}
}

func (p Permission) Status(context.Context) (bool, error) {
	if !p.Enabled {
		return false, nil
	}
	tool := toolFor(p.GOOS)
	if tool == "" {
		return false, nil
	}
	lookPath := p.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(tool); err != nil {
		return false, nil
	}
	return true, nil
}

func (p Permission) Request(ctx context.Context) (bool, error) {
	return p.Status(ctx)
}

func toolFor(goos string) string {
	if goos == "" {
		goos = runtime.GOOS
	}
	switch goos {
	case "linux":
		return "notify-send"
	case "darwin":
		return "osascript"
	default:
		return ""
	}
}
