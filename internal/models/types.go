package models

import (
	"encoding/json"
	"time"
)

// EventType classifies the occurrence that caused hook evaluation.
type EventType string

// Canonical trigger event types. Host adapters map native event names
// (PreToolUse, PostToolUse, Stop, ...) onto these before anything else runs.
const (
	EventToolPre     EventType = "tool-pre"
	EventToolPost    EventType = "tool-post"
	EventSessionStop EventType = "session-stop"
)

// Valid reports whether t is one of the canonical event types.
func (t EventType) Valid() bool {
	switch t {
	case EventToolPre, EventToolPost, EventSessionStop:
		return true
	default:
		return false
	}
}

// ExitCodeBlock is the reserved exit code a pre-action hook uses to block
// the triggering action. It must survive the trip through the scheduler and
// back out the host adapter; every other non-zero code is report-only failure.
const ExitCodeBlock = 2

// ExitCodeTimeout is the synthetic exit code recorded for a hook that was
// terminated after exceeding its timeout.
const ExitCodeTimeout = 124

// HookDefinition is a validation/build command declared by a plugin.
// Definitions are immutable after load; the plugin registry owns them for
// the process lifetime.
type HookDefinition struct {
	Name       string      `json:"name"`
	PluginName string      `json:"plugin"`
	PluginRoot string      `json:"plugin_root"`
	Events     []EventType `json:"events"`
	// Command is a template; ${RATCHET_FILES} expands to the matched file list.
	Command string `json:"command"`
	// Tools restricts the hook to specific tool names. Empty = no constraint.
	Tools []string `json:"tools,omitempty"`
	// Files restricts the hook to triggers whose changed files match at
	// least one doublestar glob. Empty = no constraint.
	Files []string `json:"files,omitempty"`
	// DirsWith lists marker files/directories that must all exist relative
	// to the trigger's working directory.
	DirsWith []string `json:"dirs_with,omitempty"`
	// DirTest is an arbitrary probe command; the hook applies only when the
	// probe exits 0 in the trigger's working directory.
	DirTest string        `json:"dir_test,omitempty"`
	Timeout time.Duration `json:"timeout"`
}

// Key returns the plugin-qualified hook identifier used in logs and events.
func (h *HookDefinition) Key() string {
	return h.PluginName + ":" + h.Name
}

// HandlesEvent reports whether the definition declares the given event type.
func (h *HookDefinition) HandlesEvent(t EventType) bool {
	for _, e := range h.Events {
		if e == t {
			return true
		}
	}
	return false
}

// Trigger is the canonical representation of "something happened". One is
// built per host event, consumed once, and never persisted.
type Trigger struct {
	EventType EventType
	Provider  string
	SessionID string
	CWD       string
	ToolName  string
	// Files are the changed file paths implicated by the trigger, absolute
	// or CWD-relative as delivered by the host adapter.
	Files []string
	// ToolInput carries the raw tool-call payload for hosts that provide one.
	ToolInput json.RawMessage
}

// ResultStatus distinguishes how a HookResult was produced.
type ResultStatus string

// Result statuses.
const (
	StatusOK        ResultStatus = "ok"
	StatusFailed    ResultStatus = "failed"
	StatusTimeout   ResultStatus = "timeout"
	StatusCancelled ResultStatus = "cancelled"
	StatusCached    ResultStatus = "cached"
)

// HookResult is the outcome of one hook execution or cache lookup.
// Skipped=true means the result was served from the cache store (StatusCached)
// or the hook was never launched (StatusCancelled under fail-fast).
type HookResult struct {
	Hook       *HookDefinition `json:"hook"`
	Command    string          `json:"command"`
	ExitCode   int             `json:"exit_code"`
	Stdout     string          `json:"stdout"`
	Stderr     string          `json:"stderr"`
	DurationMS int64           `json:"duration_ms"`
	Skipped    bool            `json:"skipped"`
	Status     ResultStatus    `json:"status"`
}

// Passed reports success for aggregation purposes. Cancelled hooks never ran,
// so they neither pass nor fail; callers aggregating "did everything pass"
// treat them as non-failures.
func (r *HookResult) Passed() bool {
	return r.Status == StatusCancelled || r.ExitCode == 0
}

// Blocking reports whether the hook demanded the triggering action be
// blocked. Cache replays block too: same inputs, same verdict.
func (r *HookResult) Blocking() bool {
	return r.Status != StatusCancelled && r.ExitCode == ExitCodeBlock
}
