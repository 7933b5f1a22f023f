package events

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ratchet-run/ratchet/internal/app"
)

// LogPath returns the JSONL file for one (provider, project, session)
// stream: ~/.config/ratchet/events/<provider>/<slug>/<sessionId>.jsonl.
func LogPath(provider, cwd, sessionID string) (string, error) {
	dir, err := app.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "events",
		sanitizeComponent(provider),
		app.ProjectSlug(cwd),
		sanitizeComponent(sessionID)+".jsonl",
	), nil
}

// EnsureLogDir creates the parent directory for path. Failure here is a
// hard startup error; an event stream that cannot be written is useless.
func EnsureLogDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create event log dir: %w", err)
	}
	return nil
}

// sanitizeComponent strips path separators from host-supplied identifiers
// so a hostile session id cannot escape the events tree.
func sanitizeComponent(s string) string {
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, "..", "-")
	if s == "" {
		return "unknown"
	}
	return s
}
