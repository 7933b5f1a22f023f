package hookcmd

import (
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newTargetFlagCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addTargetFlags(cmd)
	return cmd
}

func TestResolveTargetFlags_DefaultsToClaudeOnly(t *testing.T) {
	cmd := newTargetFlagCmd()

	claude, opencode, kiro, err := ResolveTargetFlags(cmd)
	require.NoError(t, err)
	require.True(t, claude)
	require.False(t, opencode)
	require.False(t, kiro)
}

func TestResolveTargetFlags_ReturnsErrorWhenAllExplicitlyFalse(t *testing.T) {
	cmd := newTargetFlagCmd()
	require.NoError(t, cmd.Flags().Set("claude", "false"))
	require.NoError(t, cmd.Flags().Set("opencode", "false"))

	claude, opencode, kiro, err := ResolveTargetFlags(cmd)
	require.Error(t, err)
	require.False(t, claude)
	require.False(t, opencode)
	require.False(t, kiro)
}

func TestResolveTargetFlags_AllTrue(t *testing.T) {
	cmd := newTargetFlagCmd()
	require.NoError(t, cmd.Flags().Set("claude", "true"))
	require.NoError(t, cmd.Flags().Set("opencode", "true"))
	require.NoError(t, cmd.Flags().Set("kiro", "true"))

	claude, opencode, kiro, err := ResolveTargetFlags(cmd)
	require.NoError(t, err)
	require.True(t, claude)
	require.True(t, opencode)
	require.True(t, kiro)
}

func TestHasRatchetHook(t *testing.T) {
	require.False(t, HasRatchetHook(nil))

	entries := []any{
		map[string]any{
			"hooks": []any{
				map[string]any{"command": "ratchet run --provider claude"},
			},
		},
	}
	require.True(t, HasRatchetHook(entries))

	// Malformed entries should not panic.
	require.False(t, HasRatchetHook([]any{"not-a-map"}))
	require.False(t, HasRatchetHook([]any{map[string]any{"hooks": "not-a-slice"}}))
}

func TestIsRatchetHookCommand(t *testing.T) {
	require.True(t, IsRatchetHookCommand("ratchet run --provider claude"))
	require.True(t, IsRatchetHookCommand("/usr/local/bin/ratchet run --provider claude"))
	require.True(t, IsRatchetHookCommand(`"/Users/someone/go/bin/ratchet" run --provider opencode"`))

	require.False(t, IsRatchetHookCommand("echo ratchet run"))
	require.False(t, IsRatchetHookCommand("/usr/local/bin/not-ratchet run"))
	require.False(t, IsRatchetHookCommand("ratchet doctor"))
	require.False(t, IsRatchetHookCommand(""))
	require.False(t, IsRatchetHookCommand("ratchet"))
}

func TestUpsertRatchetHookEntry(t *testing.T) {
	newEntry := map[string]any{
		"matcher": "Write|Edit",
		"hooks":   []any{map[string]any{"command": "ratchet run --provider claude", "type": "command", "timeout": float64(120)}},
	}

	// Fresh install keeps foreign entries and appends ours.
	foreign := map[string]any{
		"hooks": []any{map[string]any{"command": "other-tool lint"}},
	}
	entries, outcome := upsertRatchetHookEntry([]any{foreign}, newEntry)
	require.Equal(t, hookInstalled, outcome)
	require.Len(t, entries, 2)
	require.Equal(t, foreign, entries[0])

	// Re-running with the same entry is a no-op.
	entries, outcome = upsertRatchetHookEntry(entries, newEntry)
	require.Equal(t, hookSkipped, outcome)
	require.Len(t, entries, 2)

	// A changed entry replaces the stale one.
	changed := map[string]any{
		"matcher": "Write",
		"hooks":   []any{map[string]any{"command": "ratchet run --provider claude", "type": "command", "timeout": float64(120)}},
	}
	entries, outcome = upsertRatchetHookEntry(entries, changed)
	require.Equal(t, hookUpdated, outcome)
	require.Len(t, entries, 2)
}

func TestRemoveRatchetHookEntries(t *testing.T) {
	foreign := map[string]any{
		"hooks": []any{map[string]any{"command": "other-tool lint"}},
	}
	ours := map[string]any{
		"hooks": []any{map[string]any{"command": "ratchet run --provider claude"}},
	}

	kept, removed := removeRatchetHookEntries([]any{foreign, ours})
	require.True(t, removed)
	require.Len(t, kept, 1)
	require.Equal(t, foreign, kept[0])

	kept, removed = removeRatchetHookEntries(kept)
	require.False(t, removed)
	require.Len(t, kept, 1)
}

func TestKiroHookDocumentShape(t *testing.T) {
	doc := kiroHookDocument()
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	require.Contains(t, string(b), "fileEdited")
	require.Contains(t, string(b), "run --provider kiro")
}
