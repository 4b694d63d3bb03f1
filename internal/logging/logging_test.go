package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "remindd.log")
	logger, closer, err := New("debug", path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("arm failed", "task", "task-1")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), "arm failed") || !strings.Contains(string(raw), "task-1") {
		t.Fatalf("unexpected log content: %q", raw)
	}
}

func TestNewFallsBackToInfoLevel(t *testing.T) {
	logger, closer, err := New("loud", "")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	defer closer.Close()
	if logger.GetLevel() != log.InfoLevel {
		t.Fatalf("expected info level, got %v", logger.GetLevel())
	}
}
