package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandeepkv93/remindd/internal/model"
)

// ExportJSON writes the collection to path through a temp file and rename so
// a crash never leaves a half-written backup.
func ExportJSON(path string, tasks []model.Task) error {
	path = strings.TrimSpace(path)
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	payload, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
