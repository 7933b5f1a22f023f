package hookcmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ratchet-run/ratchet/internal/output"
)

// NewStatusCmd creates the hook status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which hosts have ratchet handlers installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			type hostStatus struct {
				Path      string   `json:"path"`
				Installed bool     `json:"installed"`
				Events    []string `json:"events,omitempty"`
			}
			type result struct {
				Claude   hostStatus `json:"claude"`
				OpenCode hostStatus `json:"opencode"`
				Kiro     hostStatus `json:"kiro"`
			}

			projectScoped, _ := cmd.Flags().GetBool("project")
			claudePath := resolveClaudeSettingsPath(projectScoped)

			resp := result{
				Claude:   hostStatus{Path: claudePath},
				OpenCode: hostStatus{Path: opencodePluginPath()},
				Kiro:     hostStatus{Path: kiroHookPath()},
			}

			if settings, err := readSettings(claudePath); err == nil {
				if hooksObj, _ := settings["hooks"].(map[string]any); hooksObj != nil {
					for _, eventName := range claudeHookEventNames() {
						entries, ok := hooksObj[eventName].([]any)
						if ok && HasRatchetHook(entries) {
							resp.Claude.Events = append(resp.Claude.Events, eventName)
						}
					}
				}
			}
			resp.Claude.Installed = len(resp.Claude.Events) > 0

			if _, err := os.Stat(resp.OpenCode.Path); err == nil {
				resp.OpenCode.Installed = true
			}
			if _, err := os.Stat(resp.Kiro.Path); err == nil {
				resp.Kiro.Installed = true
			}

			return output.PrintSuccess(resp)
		},
	}
	cmd.Flags().Bool("project", false, "Check ./.claude/settings.json instead of the user file")
	return cmd
}
