// Package match selects the hooks that apply to a trigger.
package match

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ratchet-run/ratchet/internal/models"
)

// dirTestTimeout bounds the dir_test probe; a hung probe must not stall
// matching, which is otherwise a pure computation.
const dirTestTimeout = 5 * time.Second

// Matcher evaluates hook filters against triggers. The zero value is not
// usable; construct with New.
type Matcher struct {
	probe func(cwd, command string) bool
}

// New returns a Matcher using the real dir_test subprocess probe.
func New() *Matcher {
	return &Matcher{probe: runDirTest}
}

// NewWithProbe returns a Matcher with a custom dir_test evaluator, for tests.
func NewWithProbe(probe func(cwd, command string) bool) *Matcher {
	return &Matcher{probe: probe}
}

// Match returns the hooks whose filters are all satisfied by the trigger,
// in registry order. Absence of a filter means no constraint from that
// dimension; a hook with no filters at all matches every trigger of its
// event types (whole-project validators rely on this).
func (m *Matcher) Match(trigger *models.Trigger, defs []*models.HookDefinition) []*models.HookDefinition {
	var out []*models.HookDefinition
	for _, def := range defs {
		if m.matches(trigger, def) {
			out = append(out, def)
		}
	}
	return out
}

func (m *Matcher) matches(trigger *models.Trigger, def *models.HookDefinition) bool {
	if !def.HandlesEvent(trigger.EventType) {
		return false
	}
	if len(def.Tools) > 0 && !containsString(def.Tools, trigger.ToolName) {
		return false
	}
	if len(def.Files) > 0 && len(MatchedFiles(trigger, def)) == 0 {
		return false
	}
	for _, marker := range def.DirsWith {
		if _, err := os.Stat(filepath.Join(trigger.CWD, marker)); err != nil {
			return false
		}
	}
	if def.DirTest != "" && !m.probe(trigger.CWD, def.DirTest) {
		return false
	}
	return true
}

// MatchedFiles returns the subset of the trigger's changed files that match
// the definition's globs. With no file filter declared, every changed file
// is relevant. Patterns are matched against the CWD-relative path and, for
// convenience with flat patterns like "*.sh", against the basename.
func MatchedFiles(trigger *models.Trigger, def *models.HookDefinition) []string {
	if len(def.Files) == 0 {
		return trigger.Files
	}

	var out []string
	for _, file := range trigger.Files {
		rel := file
		if r, err := filepath.Rel(trigger.CWD, file); err == nil {
			rel = r
		}
		rel = filepath.ToSlash(rel)

		for _, pattern := range def.Files {
			match, err := doublestar.Match(pattern, rel)
			if err != nil {
				// Invalid glob: a configuration error, fail-closed.
				slog.Warn("invalid file filter pattern",
					"hook", def.Key(), "pattern", pattern, "error", err)
				continue
			}
			if !match {
				match, _ = doublestar.Match(pattern, filepath.Base(rel))
			}
			if match {
				out = append(out, file)
				break
			}
		}
	}
	return out
}

// runDirTest executes the probe command in cwd. Any error, including a
// timeout or launch failure, is treated as "does not match".
func runDirTest(cwd, command string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), dirTestTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = cwd
	if err := cmd.Run(); err != nil {
		return false
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
