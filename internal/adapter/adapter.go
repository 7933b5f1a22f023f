// Package adapter translates host-native hook payloads into canonical
// triggers and engine reports back into each host's response convention.
// Host-specific field names stop here; nothing past this boundary sees them.
package adapter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ratchet-run/ratchet/internal/models"
)

// Adapter is one host integration.
type Adapter interface {
	// Provider returns the host identifier used in event log paths.
	Provider() string
	// ParseTrigger decodes the host's stdin payload into a canonical
	// Trigger. The payload alone names the event; hosts that pass the
	// event out of band get it pre-merged by the command layer.
	ParseTrigger(payload []byte) (*models.Trigger, error)
}

// ForProvider returns the adapter for a host name.
func ForProvider(name string) (Adapter, error) {
	switch name {
	case ProviderClaude:
		return &ClaudeAdapter{}, nil
	case ProviderOpenCode:
		return &OpenCodeAdapter{}, nil
	case ProviderKiro:
		return &KiroAdapter{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: %s, %s, %s)",
			name, ProviderClaude, ProviderOpenCode, ProviderKiro)
	}
}

// Provider identifiers.
const (
	ProviderClaude   = "claude"
	ProviderOpenCode = "opencode"
	ProviderKiro     = "kiro"
)

// HookSummary is one hook's line in the multi-hook response.
type HookSummary struct {
	Hook     string              `json:"hook"`
	Status   models.ResultStatus `json:"status"`
	ExitCode int                 `json:"exit_code"`
	Cached   bool                `json:"cached"`
	Stdout   string              `json:"stdout,omitempty"`
	Stderr   string              `json:"stderr,omitempty"`
}

// Summary aggregates a run's results for post-action and session-stop
// responses.
type Summary struct {
	Passed int           `json:"passed"`
	Failed int           `json:"failed"`
	Cached int           `json:"cached"`
	Hooks  []HookSummary `json:"hooks"`
}

// BuildSummary folds results into the response summary.
func BuildSummary(results []*models.HookResult) *Summary {
	s := &Summary{Hooks: make([]HookSummary, 0, len(results))}
	for _, res := range results {
		if res.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
		if res.Status == models.StatusCached {
			s.Cached++
		}
		s.Hooks = append(s.Hooks, HookSummary{
			Hook:     res.Hook.Key(),
			Status:   res.Status,
			ExitCode: res.ExitCode,
			Cached:   res.Status == models.StatusCached,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		})
	}
	return s
}

// Respond writes the host-facing response and returns the process exit
// code. The convention is shared by all three hosts: pre-action triggers
// block via the reserved exit code with the reason on stderr; everything
// else gets a JSON summary on stdout and exits zero.
func Respond(stdout, stderr io.Writer, trigger *models.Trigger, results []*models.HookResult) int {
	if trigger.EventType == models.EventToolPre {
		for _, res := range results {
			if res.Blocking() {
				fmt.Fprintln(stderr, blockMessage(res))
				return models.ExitCodeBlock
			}
		}
		return 0
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(BuildSummary(results)); err != nil {
		fmt.Fprintf(stderr, "encode summary: %v\n", err)
		return 1
	}
	return 0
}

func blockMessage(res *models.HookResult) string {
	if res.Stderr != "" {
		return res.Stderr
	}
	return fmt.Sprintf("blocked by hook %s", res.Hook.Key())
}
