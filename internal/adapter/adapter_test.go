package adapter

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ratchet-run/ratchet/internal/models"
)

func TestForProvider(t *testing.T) {
	for _, name := range []string{ProviderClaude, ProviderOpenCode, ProviderKiro} {
		a, err := ForProvider(name)
		require.NoError(t, err)
		require.Equal(t, name, a.Provider())
	}

	_, err := ForProvider("cursor")
	require.Error(t, err)
}

func TestClaudeParseTrigger(t *testing.T) {
	payload := `{
		"session_id": "abc-123",
		"cwd": "/home/dev/proj",
		"hook_event_name": "PostToolUse",
		"tool_name": "Write",
		"tool_input": {"file_path": "/home/dev/proj/main.go", "content": "..."}
	}`

	trigger, err := (&ClaudeAdapter{}).ParseTrigger([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, models.EventToolPost, trigger.EventType)
	require.Equal(t, ProviderClaude, trigger.Provider)
	require.Equal(t, "abc-123", trigger.SessionID)
	require.Equal(t, "/home/dev/proj", trigger.CWD)
	require.Equal(t, "Write", trigger.ToolName)
	require.Equal(t, []string{"/home/dev/proj/main.go"}, trigger.Files)
	require.NotEmpty(t, trigger.ToolInput)
}

func TestClaudeEventMapping(t *testing.T) {
	tests := []struct {
		host string
		want models.EventType
	}{
		{"PreToolUse", models.EventToolPre},
		{"PostToolUse", models.EventToolPost},
		{"Stop", models.EventSessionStop},
		{"SessionEnd", models.EventSessionStop},
	}
	for _, tt := range tests {
		got, err := claudeEventType(tt.host)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}

	_, err := claudeEventType("Notification")
	require.Error(t, err)
}

func TestClaudeParseTrigger_NotebookPath(t *testing.T) {
	payload := `{
		"session_id": "s",
		"cwd": "/p",
		"hook_event_name": "PostToolUse",
		"tool_name": "NotebookEdit",
		"tool_input": {"notebook_path": "/p/analysis.ipynb"}
	}`
	trigger, err := (&ClaudeAdapter{}).ParseTrigger([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, []string{"/p/analysis.ipynb"}, trigger.Files)
}

func TestClaudeParseTrigger_Malformed(t *testing.T) {
	_, err := (&ClaudeAdapter{}).ParseTrigger([]byte("not json"))
	require.Error(t, err)
}

func TestOpenCodeParseTrigger(t *testing.T) {
	payload := `{
		"sessionID": "oc-1",
		"directory": "/work",
		"event": "tool.execute.after",
		"tool": "edit",
		"files": ["src/a.ts", "src/b.ts"]
	}`

	trigger, err := (&OpenCodeAdapter{}).ParseTrigger([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, models.EventToolPost, trigger.EventType)
	require.Equal(t, "oc-1", trigger.SessionID)
	require.Equal(t, "/work", trigger.CWD)
	require.Equal(t, []string{"src/a.ts", "src/b.ts"}, trigger.Files)
}

func TestOpenCodeSessionIdle(t *testing.T) {
	trigger, err := (&OpenCodeAdapter{}).ParseTrigger([]byte(`{"sessionID":"s","directory":"/w","event":"session.idle"}`))
	require.NoError(t, err)
	require.Equal(t, models.EventSessionStop, trigger.EventType)
}

func TestKiroParseTrigger(t *testing.T) {
	payload := `{
		"session_id": "k-1",
		"workspace_dir": "/ws",
		"action": "fileSaved",
		"paths": ["src/main.rs"]
	}`

	trigger, err := (&KiroAdapter{}).ParseTrigger([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, models.EventToolPost, trigger.EventType)
	require.Equal(t, ProviderKiro, trigger.Provider)
	require.Equal(t, []string{"src/main.rs"}, trigger.Files)
}

func TestKiroAgentStop(t *testing.T) {
	trigger, err := (&KiroAdapter{}).ParseTrigger([]byte(`{"session_id":"k","workspace_dir":"/ws","action":"agentStop"}`))
	require.NoError(t, err)
	require.Equal(t, models.EventSessionStop, trigger.EventType)
}

func testResult(name string, exitCode int, status models.ResultStatus, stderr string) *models.HookResult {
	return &models.HookResult{
		Hook:     &models.HookDefinition{Name: name, PluginName: "tools/" + name},
		ExitCode: exitCode,
		Stderr:   stderr,
		Status:   status,
		Skipped:  status == models.StatusCached || status == models.StatusCancelled,
	}
}

func TestRespond_PreToolBlocks(t *testing.T) {
	trigger := &models.Trigger{EventType: models.EventToolPre}
	results := []*models.HookResult{
		testResult("ok", 0, models.StatusOK, ""),
		testResult("guard", models.ExitCodeBlock, models.StatusFailed, "write outside project"),
	}

	var stdout, stderr bytes.Buffer
	code := Respond(&stdout, &stderr, trigger, results)

	require.Equal(t, models.ExitCodeBlock, code)
	require.Contains(t, stderr.String(), "write outside project")
	require.Empty(t, stdout.String())
}

func TestRespond_PreToolAllows(t *testing.T) {
	trigger := &models.Trigger{EventType: models.EventToolPre}
	results := []*models.HookResult{testResult("ok", 0, models.StatusOK, "")}

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, Respond(&stdout, &stderr, trigger, results))
	require.Empty(t, stderr.String())
}

func TestRespond_PostToolSummary(t *testing.T) {
	trigger := &models.Trigger{EventType: models.EventToolPost}
	results := []*models.HookResult{
		testResult("fmt", 0, models.StatusOK, ""),
		testResult("lint", 1, models.StatusFailed, "3 issues"),
		testResult("vet", 0, models.StatusCached, ""),
	}

	var stdout, stderr bytes.Buffer
	code := Respond(&stdout, &stderr, trigger, results)
	require.Equal(t, 0, code)

	var s Summary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &s))
	require.Equal(t, 2, s.Passed)
	require.Equal(t, 1, s.Failed)
	require.Equal(t, 1, s.Cached)
	require.Len(t, s.Hooks, 3)
	require.Equal(t, "tools/lint:lint", s.Hooks[1].Hook)
}

func TestBuildSummary_CancelledCountsAsPassed(t *testing.T) {
	s := BuildSummary([]*models.HookResult{testResult("late", 0, models.StatusCancelled, "")})
	require.Equal(t, 1, s.Passed)
	require.Zero(t, s.Failed)
}
