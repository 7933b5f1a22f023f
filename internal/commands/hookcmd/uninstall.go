package hookcmd

import (
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ratchet-run/ratchet/internal/output"
)

// NewUninstallCmd creates the hook uninstall command.
func NewUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove ratchet handlers from Claude, OpenCode, and/or Kiro",
		RunE: func(cmd *cobra.Command, args []string) error {
			removeClaude, removeOpenCode, removeKiro, err := ResolveTargetFlags(cmd)
			if err != nil {
				return err
			}

			type claudeResult struct {
				Path    string   `json:"path"`
				Removed []string `json:"removed"`
			}
			type fileResult struct {
				Path    string `json:"path"`
				Removed bool   `json:"removed"`
			}
			type result struct {
				Claude   *claudeResult `json:"claude,omitempty"`
				OpenCode *fileResult   `json:"opencode,omitempty"`
				Kiro     *fileResult   `json:"kiro,omitempty"`
			}

			resp := result{}
			projectScoped, _ := cmd.Flags().GetBool("project")

			if removeClaude {
				path := resolveClaudeSettingsPath(projectScoped)
				settings, err := readSettings(path)
				if err != nil {
					return err
				}

				removed := []string{}
				if hooksObj, _ := settings["hooks"].(map[string]any); hooksObj != nil {
					for _, eventName := range claudeHookEventNames() {
						entries, ok := hooksObj[eventName].([]any)
						if !ok {
							continue
						}
						kept, didRemove := removeRatchetHookEntries(entries)
						if !didRemove {
							continue
						}
						removed = append(removed, eventName)
						if len(kept) == 0 {
							delete(hooksObj, eventName)
						} else {
							hooksObj[eventName] = kept
						}
					}
					settings["hooks"] = hooksObj
					if len(removed) > 0 {
						if err := writeSettings(path, settings); err != nil {
							return err
						}
					}
				}
				sort.Strings(removed)
				resp.Claude = &claudeResult{Path: path, Removed: removed}
			}

			if removeOpenCode {
				path := opencodePluginPath()
				resp.OpenCode = &fileResult{Path: path, Removed: removeFileIfExists(path)}
			}
			if removeKiro {
				path := kiroHookPath()
				resp.Kiro = &fileResult{Path: path, Removed: removeFileIfExists(path)}
			}

			return output.PrintSuccess(resp)
		},
	}
	addTargetFlags(cmd)
	return cmd
}

func removeFileIfExists(path string) bool {
	if err := os.Remove(path); err != nil {
		return false
	}
	return true
}
