package adapter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ratchet-run/ratchet/internal/models"
)

// kiroPayload is the Kiro agent-hook document.
type kiroPayload struct {
	SessionID string   `json:"session_id"`
	Workspace string   `json:"workspace_dir"`
	Action    string   `json:"action"`
	Tool      string   `json:"tool"`
	Paths     []string `json:"paths"`
}

// KiroAdapter handles Kiro agent hooks.
type KiroAdapter struct{}

func (a *KiroAdapter) Provider() string { return ProviderKiro }

// ParseTrigger maps a Kiro agent-hook payload onto the canonical trigger.
// Kiro's file-oriented action kinds (fileCreated, fileSaved, fileDeleted)
// all land on tool-post since the action has already happened.
func (a *KiroAdapter) ParseTrigger(payload []byte) (*models.Trigger, error) {
	var p kiroPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("parse kiro payload: %w", err)
	}

	eventType, err := kiroEventType(p.Action)
	if err != nil {
		return nil, err
	}

	cwd := p.Workspace
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	return &models.Trigger{
		EventType: eventType,
		Provider:  ProviderKiro,
		SessionID: p.SessionID,
		CWD:       cwd,
		ToolName:  p.Tool,
		Files:     p.Paths,
	}, nil
}

func kiroEventType(action string) (models.EventType, error) {
	switch action {
	case "preToolUse":
		return models.EventToolPre, nil
	case "postToolUse", "fileCreated", "fileSaved", "fileDeleted":
		return models.EventToolPost, nil
	case "agentStop", "sessionEnd":
		return models.EventSessionStop, nil
	default:
		return "", fmt.Errorf("unsupported kiro action %q", action)
	}
}
