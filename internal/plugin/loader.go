package plugin

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ratchet-run/ratchet/internal/models"
)

// HooksFileName is the per-plugin declaration file consumed by the loader.
// It is generated/validated as a build artifact from the plugin's source
// format, so the loader only deals with one fixed schema.
const HooksFileName = "hooks.yaml"

// defaultHookTimeout applies when a declaration omits timeout.
const defaultHookTimeout = 60 * time.Second

// hooksFile is the on-disk schema of a plugin's hooks.yaml.
type hooksFile struct {
	Hooks []hookDecl `yaml:"hooks"`
}

type hookDecl struct {
	Name     string   `yaml:"name"`
	Events   []string `yaml:"events"`
	Command  string   `yaml:"command"`
	Tools    []string `yaml:"tools"`
	Files    []string `yaml:"files"`
	DirsWith []string `yaml:"dirs_with"`
	DirTest  string   `yaml:"dir_test"`
	Timeout  int      `yaml:"timeout"` // seconds
}

// ConfigError is the structured error reported for an unusable plugin
// declaration file. Individual malformed hook entries are not errors; they
// are excluded with a warning and the rest of the plugin proceeds.
type ConfigError struct {
	Plugin string
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("plugin %s: unusable declaration file: %s", e.Plugin, e.Reason)
}
func (e *ConfigError) ErrorCode() string { return "PLUGIN_CONFIG" }
func (e *ConfigError) Context() map[string]string {
	return map[string]string{"plugin": e.Plugin, "path": e.Path}
}
func (e *ConfigError) SuggestedAction() string {
	return fmt.Sprintf("fix or regenerate %s, or remove the plugin from config.yaml", e.Path)
}

var _ models.RecoverableError = (*ConfigError)(nil)

// Registry holds the loaded, immutable hook definitions in stable order:
// plugins in lexical discovery order, hooks in declaration order within a
// plugin. The ordering is part of the matching contract so that test suites
// and caching behave reproducibly.
type Registry struct {
	defs []*models.HookDefinition
}

// Definitions returns the registry's hooks in stable order. The returned
// slice is shared; callers must not mutate it.
func (r *Registry) Definitions() []*models.HookDefinition {
	return r.defs
}

// Len returns the number of loaded hook definitions.
func (r *Registry) Len() int { return len(r.defs) }

// Plugins returns the distinct plugin names in registry order.
func (r *Registry) Plugins() []string {
	var out []string
	seen := map[string]bool{}
	for _, d := range r.defs {
		if !seen[d.PluginName] {
			seen[d.PluginName] = true
			out = append(out, d.PluginName)
		}
	}
	return out
}

// Load scans the given plugin roots for {category}/{name}/hooks.yaml files
// and builds the registry. When enabled is non-empty, only the listed
// plugins (after alias resolution) are loaded.
//
// An unreadable or unparseable hooks.yaml skips that plugin with a warning;
// malformed individual hook entries are excluded the same way. Neither is
// fatal: matching proceeds with whatever loaded cleanly.
func Load(roots []string, enabled []string) (*Registry, error) {
	want := map[string]bool{}
	for _, name := range enabled {
		want[Resolve(name)] = true
	}

	reg := &Registry{}
	for _, root := range roots {
		dirs, err := discoverPluginDirs(root)
		if err != nil {
			// A missing root is normal on fresh installs.
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("scan plugin root %s: %w", root, err)
		}

		for _, dir := range dirs {
			pluginName, err := filepath.Rel(root, dir)
			if err != nil {
				continue
			}
			pluginName = filepath.ToSlash(pluginName)
			if len(want) > 0 && !want[pluginName] {
				continue
			}

			defs, err := loadPluginHooks(pluginName, dir)
			if err != nil {
				slog.Warn("skipping plugin with unusable declaration file",
					"plugin", pluginName, "error", err)
				continue
			}
			reg.defs = append(reg.defs, defs...)
		}
	}
	return reg, nil
}

// discoverPluginDirs returns {root}/{category}/{name} directories containing
// a hooks.yaml, sorted lexically for deterministic registry order.
func discoverPluginDirs(root string) ([]string, error) {
	categories, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, cat := range categories {
		if !cat.IsDir() {
			continue
		}
		names, err := os.ReadDir(filepath.Join(root, cat.Name()))
		if err != nil {
			continue
		}
		for _, name := range names {
			if !name.IsDir() {
				continue
			}
			dir := filepath.Join(root, cat.Name(), name.Name())
			if _, err := os.Stat(filepath.Join(dir, HooksFileName)); err == nil {
				dirs = append(dirs, dir)
			}
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

func loadPluginHooks(pluginName, dir string) ([]*models.HookDefinition, error) {
	path := filepath.Join(dir, HooksFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Plugin: pluginName, Path: path, Reason: err.Error()}
	}

	var file hooksFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &ConfigError{Plugin: pluginName, Path: path, Reason: err.Error()}
	}

	var defs []*models.HookDefinition
	for i, decl := range file.Hooks {
		def, err := buildDefinition(pluginName, dir, decl)
		if err != nil {
			slog.Warn("excluding malformed hook declaration",
				"plugin", pluginName, "index", i, "error", err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func buildDefinition(pluginName, dir string, decl hookDecl) (*models.HookDefinition, error) {
	if decl.Name == "" {
		return nil, fmt.Errorf("hook name is required")
	}
	if decl.Command == "" {
		return nil, fmt.Errorf("hook %q: command is required", decl.Name)
	}
	if len(decl.Events) == 0 {
		return nil, fmt.Errorf("hook %q: at least one event is required", decl.Name)
	}

	events := make([]models.EventType, 0, len(decl.Events))
	for _, raw := range decl.Events {
		et := models.EventType(raw)
		if !et.Valid() {
			return nil, fmt.Errorf("hook %q: unknown event %q", decl.Name, raw)
		}
		events = append(events, et)
	}

	timeout := defaultHookTimeout
	if decl.Timeout < 0 {
		return nil, fmt.Errorf("hook %q: negative timeout", decl.Name)
	}
	if decl.Timeout > 0 {
		timeout = time.Duration(decl.Timeout) * time.Second
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}

	return &models.HookDefinition{
		Name:       decl.Name,
		PluginName: pluginName,
		PluginRoot: abs,
		Events:     events,
		Command:    decl.Command,
		Tools:      decl.Tools,
		Files:      decl.Files,
		DirsWith:   decl.DirsWith,
		DirTest:    decl.DirTest,
		Timeout:    timeout,
	}, nil
}
