package adapter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ratchet-run/ratchet/internal/models"
)

// opencodePayload is the document the OpenCode bridge plugin forwards.
// OpenCode uses camelCase throughout and spells it sessionID.
type opencodePayload struct {
	SessionID string          `json:"sessionID"`
	Directory string          `json:"directory"`
	Event     string          `json:"event"`
	Tool      string          `json:"tool"`
	Files     []string        `json:"files"`
	ToolInput json.RawMessage `json:"toolInput"`
}

// OpenCodeAdapter handles the OpenCode bridge plugin protocol.
type OpenCodeAdapter struct{}

func (a *OpenCodeAdapter) Provider() string { return ProviderOpenCode }

// ParseTrigger maps an OpenCode bridge payload onto the canonical trigger.
func (a *OpenCodeAdapter) ParseTrigger(payload []byte) (*models.Trigger, error) {
	var p opencodePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("parse opencode payload: %w", err)
	}

	eventType, err := opencodeEventType(p.Event)
	if err != nil {
		return nil, err
	}

	cwd := p.Directory
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	return &models.Trigger{
		EventType: eventType,
		Provider:  ProviderOpenCode,
		SessionID: p.SessionID,
		CWD:       cwd,
		ToolName:  p.Tool,
		Files:     p.Files,
		ToolInput: p.ToolInput,
	}, nil
}

func opencodeEventType(name string) (models.EventType, error) {
	switch name {
	case "tool.execute.before":
		return models.EventToolPre, nil
	case "tool.execute.after":
		return models.EventToolPost, nil
	case "session.idle", "session.end":
		return models.EventSessionStop, nil
	default:
		return "", fmt.Errorf("unsupported opencode event %q", name)
	}
}
