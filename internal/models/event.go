package models

import (
	"encoding/json"
	"time"
)

// Event kinds written to the per-session log. The log is the sole interface
// to the downstream indexer; these strings are wire contract.
const (
	EventKindHookRun    = "hook_run"
	EventKindHookResult = "hook_result"
	EventKindFileChange = "hook_file_change"
)

// Event is one canonical, append-only log record. Records are never mutated
// or reordered after being written; a hook_run and its hook_result share a
// HookRunID for correlation.
type Event struct {
	UUID      string          `json:"uuid"`
	SessionID string          `json:"sessionId"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Provider  string          `json:"provider"`
	CWD       string          `json:"cwd"`
	HookRunID string          `json:"hookRunId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// HookRunData is the payload of a hook_run event.
type HookRunData struct {
	Plugin    string    `json:"plugin"`
	Hook      string    `json:"hook"`
	EventType EventType `json:"event_type"`
	Command   string    `json:"command"`
	Directory string    `json:"directory"`
}

// HookResultData is the payload of a hook_result event. It embeds the
// HookResult fields plus the rendered command and whether the result was
// served from cache.
type HookResultData struct {
	Plugin     string       `json:"plugin"`
	Hook       string       `json:"hook"`
	EventType  EventType    `json:"event_type"`
	Command    string       `json:"command"`
	ExitCode   int          `json:"exit_code"`
	Stdout     string       `json:"stdout"`
	Stderr     string       `json:"stderr"`
	DurationMS int64        `json:"duration_ms"`
	Status     ResultStatus `json:"status"`
	Cached     bool         `json:"cached"`
	// DroppedEvents counts non-result events discarded since the last
	// successful flush when the buffer cap was exceeded. Zero is omitted.
	DroppedEvents int `json:"dropped_events,omitempty"`
}

// FileChangeData is the payload of a hook_file_change event.
type FileChangeData struct {
	Tool string `json:"tool"`
	Path string `json:"path"`
}
