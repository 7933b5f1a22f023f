// Package hookcmd installs and removes the ratchet handler entries in each
// host's settings. It lives apart from the main commands package so hook
// lifecycle management can evolve independently.
package hookcmd

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const opencodeBridgePluginFilename = "ratchet-bridge.js"

//go:embed opencode_bridge_plugin.js
var opencodeBridgePluginSource string

const ratchetCommandFallback = "ratchet"

type hookHandler struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout"`
}

type hookEntry struct {
	Matcher string        `json:"matcher"`
	Hooks   []hookHandler `json:"hooks"`
}

func claudeSettingsPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".claude", "settings.json")
}

func opencodePluginPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "opencode", "plugins", opencodeBridgePluginFilename)
}

func projectClaudeSettingsPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".", ".claude", "settings.json")
	}
	return filepath.Join(wd, ".claude", "settings.json")
}

func resolveClaudeSettingsPath(projectScoped bool) string {
	if projectScoped {
		return projectClaudeSettingsPath()
	}
	return claudeSettingsPath()
}

func kiroHookPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".", ".kiro", "hooks", "ratchet.kiro.hook")
	}
	return filepath.Join(wd, ".kiro", "hooks", "ratchet.kiro.hook")
}

func ratchetExecutable() string {
	exe, err := os.Executable()
	if err != nil || strings.TrimSpace(exe) == "" {
		return ratchetCommandFallback
	}
	return exe
}

func buildRatchetHookCommand(provider string) string {
	exe := ratchetExecutable()
	if exe == ratchetCommandFallback {
		return fmt.Sprintf("ratchet run --provider %s", provider)
	}
	return fmt.Sprintf("%q run --provider %s", exe, provider)
}

// ratchetClaudeHooks maps Claude hook event names to the settings entry the
// installer writes. Every event routes to the same handler; the payload's
// hook_event_name selects the canonical trigger.
func ratchetClaudeHooks() map[string]hookEntry {
	handler := hookHandler{
		Type:    "command",
		Command: buildRatchetHookCommand("claude"),
		Timeout: 120,
	}
	return map[string]hookEntry{
		"PreToolUse": {
			Matcher: "Write|Edit|MultiEdit|NotebookEdit|Bash",
			Hooks:   []hookHandler{handler},
		},
		"PostToolUse": {
			Matcher: "Write|Edit|MultiEdit|NotebookEdit",
			Hooks:   []hookHandler{handler},
		},
		"Stop": {
			Matcher: "",
			Hooks:   []hookHandler{handler},
		},
	}
}

func claudeHookEventNames() []string {
	hooks := ratchetClaudeHooks()
	events := make([]string, 0, len(hooks))
	for name := range hooks {
		events = append(events, name)
	}
	sort.Strings(events)
	return events
}

func readSettings(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return settings, nil
}

func writeSettings(path string, settings map[string]any) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// IsRatchetHookCommand reports whether a settings command string invokes the
// ratchet run handler, regardless of which absolute path installed it.
func IsRatchetHookCommand(command string) bool {
	cmd := strings.TrimSpace(command)
	if cmd == "" {
		return false
	}
	parts := strings.Fields(cmd)
	if len(parts) < 2 {
		return false
	}

	execToken := strings.Trim(parts[0], "\"'")
	if filepath.Base(execToken) != "ratchet" {
		return false
	}
	return parts[1] == "run"
}

// HasRatchetHook checks if a hooks array already contains a ratchet entry.
func HasRatchetHook(entries []any) bool {
	for _, entry := range entries {
		entryMap, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		hooks, ok := entryMap["hooks"].([]any)
		if !ok {
			continue
		}
		for _, h := range hooks {
			hMap, ok := h.(map[string]any)
			if !ok {
				continue
			}
			cmd, _ := hMap["command"].(string)
			if IsRatchetHookCommand(cmd) {
				return true
			}
		}
	}
	return false
}

func hookEntryEqual(a, b map[string]any) bool {
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	return string(aj) == string(bj)
}

type installOutcome int

const (
	hookInstalled installOutcome = iota
	hookUpdated
	hookSkipped
)

// upsertRatchetHookEntry replaces any existing ratchet entry with newEntry,
// keeping foreign entries untouched. The outcome distinguishes fresh
// installs, updates, and no-ops so install stays idempotent.
func upsertRatchetHookEntry(existing []any, newEntry map[string]any) ([]any, installOutcome) {
	var kept []any
	hadRatchet := false
	matchingRatchet := false

	for _, currentEntry := range existing {
		entryObj, ok := currentEntry.(map[string]any)
		if !ok {
			kept = append(kept, currentEntry)
			continue
		}
		hooks, ok := entryObj["hooks"].([]any)
		if !ok {
			kept = append(kept, currentEntry)
			continue
		}
		isRatchet := false
		for _, h := range hooks {
			hMap, ok := h.(map[string]any)
			if !ok {
				continue
			}
			cmd, _ := hMap["command"].(string)
			if IsRatchetHookCommand(cmd) {
				isRatchet = true
				break
			}
		}
		if isRatchet {
			hadRatchet = true
			if hookEntryEqual(entryObj, newEntry) {
				matchingRatchet = true
			}
			continue
		}
		kept = append(kept, currentEntry)
	}

	kept = append(kept, newEntry)
	if matchingRatchet {
		return kept, hookSkipped
	}
	if hadRatchet {
		return kept, hookUpdated
	}
	return kept, hookInstalled
}

// removeRatchetHookEntries strips ratchet entries from a hooks array.
// Returns the kept entries and whether anything was removed.
func removeRatchetHookEntries(existing []any) ([]any, bool) {
	var kept []any
	removed := false
	for _, entry := range existing {
		entryMap, ok := entry.(map[string]any)
		if !ok {
			kept = append(kept, entry)
			continue
		}
		hooks, ok := entryMap["hooks"].([]any)
		if !ok {
			kept = append(kept, entry)
			continue
		}
		isRatchet := false
		for _, h := range hooks {
			hMap, ok := h.(map[string]any)
			if !ok {
				continue
			}
			cmd, _ := hMap["command"].(string)
			if IsRatchetHookCommand(cmd) {
				isRatchet = true
				break
			}
		}
		if isRatchet {
			removed = true
			continue
		}
		kept = append(kept, entry)
	}
	return kept, removed
}

// kiroHookDocument is the agent-hook file installed under .kiro/hooks/.
func kiroHookDocument() map[string]any {
	return map[string]any{
		"enabled": true,
		"name":    "ratchet",
		"version": "1",
		"when": map[string]any{
			"type":     "fileEdited",
			"patterns": []string{"**/*"},
		},
		"then": map[string]any{
			"type":    "runCommand",
			"command": buildRatchetHookCommand("kiro") + " fileSaved",
		},
	}
}
