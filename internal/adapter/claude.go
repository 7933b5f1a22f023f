package adapter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ratchet-run/ratchet/internal/models"
)

// claudePayload is the hook stdin document Claude Code delivers.
type claudePayload struct {
	SessionID     string          `json:"session_id"`
	CWD           string          `json:"cwd"`
	HookEventName string          `json:"hook_event_name"`
	ToolName      string          `json:"tool_name"`
	ToolInput     json.RawMessage `json:"tool_input"`
}

// claudeToolInput covers the tool payload fields the matcher cares about.
// Write/Edit carry file_path; NotebookEdit carries notebook_path.
type claudeToolInput struct {
	FilePath     string `json:"file_path"`
	NotebookPath string `json:"notebook_path"`
}

// ClaudeAdapter handles Claude Code's hook protocol.
type ClaudeAdapter struct{}

func (a *ClaudeAdapter) Provider() string { return ProviderClaude }

// ParseTrigger maps a Claude hook payload onto the canonical trigger.
// PreToolUse becomes tool-pre, PostToolUse tool-post, and Stop/SessionEnd
// session-stop.
func (a *ClaudeAdapter) ParseTrigger(payload []byte) (*models.Trigger, error) {
	var p claudePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("parse claude payload: %w", err)
	}

	eventType, err := claudeEventType(p.HookEventName)
	if err != nil {
		return nil, err
	}

	cwd := p.CWD
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	trigger := &models.Trigger{
		EventType: eventType,
		Provider:  ProviderClaude,
		SessionID: p.SessionID,
		CWD:       cwd,
		ToolName:  p.ToolName,
		ToolInput: p.ToolInput,
	}

	if len(p.ToolInput) > 0 {
		var in claudeToolInput
		// Tool inputs we do not model are fine; files just stay empty.
		if err := json.Unmarshal(p.ToolInput, &in); err == nil {
			for _, path := range []string{in.FilePath, in.NotebookPath} {
				if path != "" {
					trigger.Files = append(trigger.Files, path)
				}
			}
		}
	}
	return trigger, nil
}

func claudeEventType(name string) (models.EventType, error) {
	switch name {
	case "PreToolUse":
		return models.EventToolPre, nil
	case "PostToolUse":
		return models.EventToolPost, nil
	case "Stop", "SessionEnd":
		return models.EventSessionStop, nil
	default:
		return "", fmt.Errorf("unsupported claude hook event %q", name)
	}
}
