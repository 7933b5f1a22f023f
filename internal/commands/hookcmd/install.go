package hookcmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ratchet-run/ratchet/internal/output"
)

// ResolveTargetFlags returns the selected hosts based on explicit flag
// usage. Default: Claude only when no host flags are given.
func ResolveTargetFlags(cmd *cobra.Command) (claude, opencode, kiro bool, err error) {
	claudeChanged := cmd.Flags().Changed("claude")
	opencodeChanged := cmd.Flags().Changed("opencode")
	kiroChanged := cmd.Flags().Changed("kiro")

	if !claudeChanged && !opencodeChanged && !kiroChanged {
		return true, false, false, nil
	}

	c, _ := cmd.Flags().GetBool("claude")
	o, _ := cmd.Flags().GetBool("opencode")
	k, _ := cmd.Flags().GetBool("kiro")

	if !c && !o && !k {
		return false, false, false, fmt.Errorf("nothing selected: use --claude, --opencode, and/or --kiro")
	}
	return c, o, k, nil
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("claude", false, "Target Claude Code settings.json")
	cmd.Flags().Bool("opencode", false, "Target the OpenCode bridge plugin")
	cmd.Flags().Bool("kiro", false, "Target the Kiro agent hook file")
	cmd.Flags().Bool("project", false, "Use ./.claude/settings.json instead of the user file")
}

type claudeInstallResult struct {
	Path      string   `json:"path"`
	Installed []string `json:"installed"`
	Updated   []string `json:"updated,omitempty"`
	Skipped   []string `json:"skipped"`
}

type fileInstallResult struct {
	Path   string `json:"path"`
	Status string `json:"status"`
}

// NewInstallCmd creates the hook install command.
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install ratchet handlers for Claude, OpenCode, and/or Kiro",
		RunE: func(cmd *cobra.Command, args []string) error {
			installClaude, installOpenCode, installKiro, err := ResolveTargetFlags(cmd)
			if err != nil {
				return err
			}

			type result struct {
				Message  string               `json:"message"`
				Claude   *claudeInstallResult `json:"claude,omitempty"`
				OpenCode *fileInstallResult   `json:"opencode,omitempty"`
				Kiro     *fileInstallResult   `json:"kiro,omitempty"`
			}

			resp := result{}
			projectScoped, _ := cmd.Flags().GetBool("project")

			if installClaude {
				r, err := installClaudeHooks(resolveClaudeSettingsPath(projectScoped))
				if err != nil {
					return err
				}
				resp.Claude = r
			}
			if installOpenCode {
				r, err := installManagedFile(opencodePluginPath(), []byte(opencodeBridgePluginSource))
				if err != nil {
					return err
				}
				resp.OpenCode = r
			}
			if installKiro {
				doc, err := json.MarshalIndent(kiroHookDocument(), "", "  ")
				if err != nil {
					return err
				}
				r, err := installManagedFile(kiroHookPath(), append(doc, '\n'))
				if err != nil {
					return err
				}
				resp.Kiro = r
			}

			resp.Message = installMessage(resp.Claude, resp.OpenCode, resp.Kiro)
			return output.PrintSuccess(resp)
		},
	}
	addTargetFlags(cmd)
	return cmd
}

func installClaudeHooks(path string) (*claudeInstallResult, error) {
	settings, err := readSettings(path)
	if err != nil {
		return nil, err
	}

	hooksObj, _ := settings["hooks"].(map[string]any)
	if hooksObj == nil {
		hooksObj = map[string]any{}
	}

	var installed, updated, skipped []string
	for eventName, entry := range ratchetClaudeHooks() {
		existing, _ := hooksObj[eventName].([]any)

		entryJSON, _ := json.Marshal(entry)
		var entryMap map[string]any
		_ = json.Unmarshal(entryJSON, &entryMap)

		entries, outcome := upsertRatchetHookEntry(existing, entryMap)
		hooksObj[eventName] = entries

		switch outcome {
		case hookInstalled:
			installed = append(installed, eventName)
		case hookUpdated:
			updated = append(updated, eventName)
		case hookSkipped:
			skipped = append(skipped, eventName)
		}
	}

	settings["hooks"] = hooksObj
	if err := writeSettings(path, settings); err != nil {
		return nil, err
	}

	sort.Strings(installed)
	sort.Strings(updated)
	sort.Strings(skipped)
	return &claudeInstallResult{Path: path, Installed: installed, Updated: updated, Skipped: skipped}, nil
}

// installManagedFile writes content to path unless it already matches.
func installManagedFile(path string, content []byte) (*fileInstallResult, error) {
	status := "installed"
	if existing, readErr := os.ReadFile(path); readErr == nil {
		if string(existing) == string(content) {
			status = "skipped"
		} else {
			status = "updated"
		}
	}

	if status != "skipped" {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("create directory for %s: %w", path, err)
		}
		if err := os.WriteFile(path, content, 0600); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
	}
	return &fileInstallResult{Path: path, Status: status}, nil
}

func installMessage(claude *claudeInstallResult, opencode, kiro *fileInstallResult) string {
	var parts []string
	if claude != nil {
		switch {
		case len(claude.Installed) > 0:
			parts = append(parts, fmt.Sprintf("Claude Code hooks installed (%s)", strings.Join(claude.Installed, ", ")))
		case len(claude.Updated) > 0:
			parts = append(parts, fmt.Sprintf("Claude Code hooks updated (%s)", strings.Join(claude.Updated, ", ")))
		default:
			parts = append(parts, "Claude Code hooks already installed")
		}
	}
	for host, r := range map[string]*fileInstallResult{"OpenCode bridge plugin": opencode, "Kiro agent hook": kiro} {
		if r == nil {
			continue
		}
		switch r.Status {
		case "installed":
			parts = append(parts, host+" installed")
		case "updated":
			parts = append(parts, host+" updated")
		default:
			parts = append(parts, host+" already installed")
		}
	}
	if len(parts) == 0 {
		return ""
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ") + ". Run 'ratchet hook status' to verify."
}
