package match

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ratchet-run/ratchet/internal/models"
)

func def(mutate func(*models.HookDefinition)) *models.HookDefinition {
	d := &models.HookDefinition{
		Name:       "check",
		PluginName: "languages/shell",
		Events:     []models.EventType{models.EventToolPost},
		Command:    "shellcheck ${RATCHET_FILES}",
	}
	if mutate != nil {
		mutate(d)
	}
	return d
}

func trigger(cwd string, files ...string) *models.Trigger {
	return &models.Trigger{
		EventType: models.EventToolPost,
		CWD:       cwd,
		ToolName:  "Edit",
		Files:     files,
	}
}

func TestMatch_EventTypeGates(t *testing.T) {
	m := New()
	tr := trigger(t.TempDir())
	tr.EventType = models.EventSessionStop

	require.Empty(t, m.Match(tr, []*models.HookDefinition{def(nil)}))

	stop := def(func(d *models.HookDefinition) {
		d.Events = []models.EventType{models.EventSessionStop}
	})
	require.Len(t, m.Match(tr, []*models.HookDefinition{stop}), 1)
}

func TestMatch_NoFiltersMatchesEveryTriggerOfItsEvent(t *testing.T) {
	// Whole-project validators declare nothing beyond the event type.
	m := New()
	got := m.Match(trigger(t.TempDir()), []*models.HookDefinition{def(nil)})
	require.Len(t, got, 1)
}

func TestMatch_ToolFilter(t *testing.T) {
	m := New()
	d := def(func(d *models.HookDefinition) { d.Tools = []string{"Write"} })

	tr := trigger(t.TempDir())
	require.Empty(t, m.Match(tr, []*models.HookDefinition{d}))

	tr.ToolName = "Write"
	require.Len(t, m.Match(tr, []*models.HookDefinition{d}), 1)
}

func TestMatch_FilterComposition(t *testing.T) {
	// fileFilter + dirsWith must BOTH hold.
	cwd := t.TempDir()
	script := filepath.Join(cwd, "deploy.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n"), 0o700))

	d := def(func(d *models.HookDefinition) {
		d.Files = []string{"*.sh"}
		d.DirsWith = []string{".shellcheckrc"}
	})
	m := New()

	// Marker missing: no match even though a *.sh file changed.
	require.Empty(t, m.Match(trigger(cwd, script), []*models.HookDefinition{d}))

	require.NoError(t, os.WriteFile(filepath.Join(cwd, ".shellcheckrc"), nil, 0o600))

	// Both hold.
	require.Len(t, m.Match(trigger(cwd, script), []*models.HookDefinition{d}), 1)

	// No matching file: no match even with the marker present.
	doc := filepath.Join(cwd, "README.md")
	require.NoError(t, os.WriteFile(doc, nil, 0o600))
	require.Empty(t, m.Match(trigger(cwd, doc), []*models.HookDefinition{d}))
}

func TestMatch_DirsWithRequiresEveryMarker(t *testing.T) {
	cwd := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cwd, "go.mod"), nil, 0o600))

	d := def(func(d *models.HookDefinition) { d.DirsWith = []string{"go.mod", "go.sum"} })
	m := New()
	require.Empty(t, m.Match(trigger(cwd), []*models.HookDefinition{d}))

	require.NoError(t, os.WriteFile(filepath.Join(cwd, "go.sum"), nil, 0o600))
	require.Len(t, m.Match(trigger(cwd), []*models.HookDefinition{d}), 1)
}

func TestMatch_DirTestFailsClosed(t *testing.T) {
	var probed string
	m := NewWithProbe(func(cwd, command string) bool {
		probed = command
		return false
	})

	d := def(func(d *models.HookDefinition) { d.DirTest = "test -f package.json" })
	require.Empty(t, m.Match(trigger(t.TempDir()), []*models.HookDefinition{d}))
	require.Equal(t, "test -f package.json", probed)
}

func TestMatch_DirTestSubprocess(t *testing.T) {
	cwd := t.TempDir()
	d := def(func(d *models.HookDefinition) { d.DirTest = "test -f package.json" })
	m := New()

	require.Empty(t, m.Match(trigger(cwd), []*models.HookDefinition{d}))

	require.NoError(t, os.WriteFile(filepath.Join(cwd, "package.json"), []byte("{}"), 0o600))
	require.Len(t, m.Match(trigger(cwd), []*models.HookDefinition{d}), 1)
}

func TestMatchedFiles_GlobsRelativeToCWD(t *testing.T) {
	cwd := t.TempDir()
	ts := filepath.Join(cwd, "src", "app.ts")
	md := filepath.Join(cwd, "docs", "guide.md")

	d := def(func(d *models.HookDefinition) { d.Files = []string{"**/*.ts"} })
	got := MatchedFiles(trigger(cwd, ts, md), d)
	require.Equal(t, []string{ts}, got)
}

func TestMatchedFiles_NoFilterReturnsAllChangedFiles(t *testing.T) {
	cwd := t.TempDir()
	files := []string{filepath.Join(cwd, "a.go"), filepath.Join(cwd, "b.md")}
	require.Equal(t, files, MatchedFiles(trigger(cwd, files...), def(nil)))
}

func TestMatch_PreservesRegistryOrder(t *testing.T) {
	first := def(func(d *models.HookDefinition) { d.Name = "first" })
	second := def(func(d *models.HookDefinition) { d.Name = "second" })

	m := New()
	got := m.Match(trigger(t.TempDir()), []*models.HookDefinition{first, second})
	require.Len(t, got, 2)
	require.Equal(t, "first", got[0].Name)
	require.Equal(t, "second", got[1].Name)
}
