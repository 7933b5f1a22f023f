// Package events appends canonical hook lifecycle records to a per-session
// JSONL file. Writes are buffered and coalesced on a short timer; results
// force an immediate flush so a crash right after a hook still leaves its
// outcome on disk.
package events

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ratchet-run/ratchet/internal/app"
	"github.com/ratchet-run/ratchet/internal/models"
)

// DefaultMaxBuffer bounds the in-memory event buffer. Past it, the oldest
// non-result events are dropped and counted.
const DefaultMaxBuffer = 1024

type flushState int

const (
	stateIdle flushState = iota
	stateTimerScheduled
	stateFlushing
)

// Logger is an append-only JSONL event writer for one (provider, cwd,
// session) stream. Safe for concurrent use by scheduler workers.
type Logger struct {
	provider  string
	sessionID string
	cwd       string
	path      string
	delay     time.Duration
	maxBuffer int

	mu      sync.Mutex
	buf     []*models.Event
	dropped int
	state   flushState
	timer   *time.Timer
}

// NewLogger opens a stream for the session, creating the log directory.
// Directory creation failure is returned as a hard error.
func NewLogger(provider, cwd, sessionID string) (*Logger, error) {
	path, err := LogPath(provider, cwd, sessionID)
	if err != nil {
		return nil, err
	}
	delay := time.Duration(app.EffectiveFlushDelayMS()) * time.Millisecond
	return newLoggerAt(path, provider, cwd, sessionID, delay, DefaultMaxBuffer)
}

func newLoggerAt(path, provider, cwd, sessionID string, delay time.Duration, maxBuffer int) (*Logger, error) {
	if err := EnsureLogDir(path); err != nil {
		return nil, err
	}
	return &Logger{
		provider:  provider,
		sessionID: sessionID,
		cwd:       cwd,
		path:      path,
		delay:     delay,
		maxBuffer: maxBuffer,
	}, nil
}

// Path returns the JSONL file this logger appends to.
func (l *Logger) Path() string { return l.path }

// LogRun records a hook_run event and returns the hookRunId that its
// hook_result must carry. Coalesced on the flush timer.
func (l *Logger) LogRun(_ *models.Trigger, data *models.HookRunData) string {
	runID := uuid.NewString()
	l.append(l.newEvent(models.EventKindHookRun, runID, data), false)
	return runID
}

// LogResult records a hook_result event and flushes immediately.
func (l *Logger) LogResult(hookRunID string, _ *models.Trigger, data *models.HookResultData) {
	l.mu.Lock()
	if l.dropped > 0 {
		data.DroppedEvents = l.dropped
		l.dropped = 0
	}
	l.mu.Unlock()
	l.append(l.newEvent(models.EventKindHookResult, hookRunID, data), true)
}

// LogFileChange records a hook_file_change event. Coalesced on the timer.
func (l *Logger) LogFileChange(data *models.FileChangeData) {
	l.append(l.newEvent(models.EventKindFileChange, "", data), false)
}

func (l *Logger) newEvent(kind, hookRunID string, data any) *models.Event {
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Warn("event payload marshal failed", "type", kind, "error", err)
		payload = nil
	}
	return &models.Event{
		UUID:      uuid.NewString(),
		SessionID: l.sessionID,
		Type:      kind,
		Timestamp: time.Now().UTC(),
		Provider:  l.provider,
		CWD:       l.cwd,
		HookRunID: hookRunID,
		Data:      payload,
	}
}

func (l *Logger) append(ev *models.Event, immediate bool) {
	l.mu.Lock()
	// No dropping mid-flush: the flusher slices the handed-off prefix back
	// off the buffer and must find it intact.
	if len(l.buf) >= l.maxBuffer && l.state != stateFlushing {
		l.dropOldestLocked()
	}
	l.buf = append(l.buf, ev)
	l.mu.Unlock()

	if immediate {
		l.Flush()
		return
	}
	l.scheduleFlush()
}

// dropOldestLocked evicts the oldest non-result event. Results are the one
// record the downstream indexer cannot reconstruct, so they stay.
func (l *Logger) dropOldestLocked() {
	for i, ev := range l.buf {
		if ev.Type != models.EventKindHookResult {
			l.buf = append(l.buf[:i], l.buf[i+1:]...)
			l.dropped++
			return
		}
	}
}

// scheduleFlush arms the coalescing timer unless a flush is already
// scheduled or running.
func (l *Logger) scheduleFlush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != stateIdle {
		return
	}
	l.state = stateTimerScheduled
	l.timer = time.AfterFunc(l.delay, l.Flush)
}

// Flush writes all buffered events to the JSONL file. A flush already in
// progress is never started again; callers racing it return once the buffer
// is handed off. On write failure the buffer is retained for the next flush.
func (l *Logger) Flush() {
	l.mu.Lock()
	if l.state == stateFlushing {
		l.mu.Unlock()
		return
	}
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if len(l.buf) == 0 {
		l.state = stateIdle
		l.mu.Unlock()
		return
	}
	l.state = stateFlushing
	pending := make([]*models.Event, len(l.buf))
	copy(pending, l.buf)
	l.mu.Unlock()

	err := appendJSONL(l.path, pending)

	l.mu.Lock()
	if err != nil {
		slog.Warn("event flush failed, retaining buffer", "path", l.path, "count", len(pending), "error", err)
	} else {
		// Events appended during the write stay queued.
		l.buf = l.buf[len(pending):]
	}
	remaining := len(l.buf)
	l.state = stateIdle
	l.mu.Unlock()

	if remaining > 0 {
		l.scheduleFlush()
	}
}

// Close flushes whatever is buffered. Call before process exit.
func (l *Logger) Close() {
	l.Flush()
}

func appendJSONL(path string, events []*models.Event) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	return f.Sync()
}
