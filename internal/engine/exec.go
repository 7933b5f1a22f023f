package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ratchet-run/ratchet/internal/models"
)

// maxCaptureBytes bounds per-stream subprocess output. Hooks are linters and
// formatters; anything past this is noise the event log should not carry.
const maxCaptureBytes = 64 * 1024

// limitedWriter caps writes at maxBytes, silently discarding overflow.
// This prevents a runaway hook from ballooning the cache and event log.
type limitedWriter struct {
	buf      bytes.Buffer
	maxBytes int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	originalLen := len(p)
	remaining := w.maxBytes - w.buf.Len()
	if remaining <= 0 {
		return originalLen, nil // discard but report success
	}
	if len(p) > remaining {
		p = p[:remaining]
	}
	w.buf.Write(p)
	return originalLen, nil // always report original len to avoid short write errors
}

func (w *limitedWriter) text() string {
	s := w.buf.String()
	if w.buf.Len() >= w.maxBytes {
		s += " (truncated)"
	}
	return s
}

// runHook executes one rendered hook command via `sh -c` in dir, enforcing
// timeout through the exec context. Every failure mode, including launch
// failure, comes back as a result rather than an error.
func runHook(ctx context.Context, def *models.HookDefinition, command, dir string, timeout time.Duration) *models.HookResult {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	stdout := &limitedWriter{maxBytes: maxCaptureBytes}
	stderr := &limitedWriter{maxBytes: maxCaptureBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()

	res := &models.HookResult{
		Hook:       def,
		Command:    command,
		Stdout:     stdout.text(),
		Stderr:     stderr.text(),
		DurationMS: time.Since(start).Milliseconds(),
		Status:     models.StatusOK,
	}

	switch {
	case err == nil:
	case errors.Is(cctx.Err(), context.DeadlineExceeded):
		res.ExitCode = models.ExitCodeTimeout
		res.Status = models.StatusTimeout
		res.Stderr = appendLine(res.Stderr, fmt.Sprintf("hook %s timed out after %s", def.Key(), timeout))
	default:
		res.Status = models.StatusFailed
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			// Launch failure: `sh` missing, bad dir, etc. Never started.
			res.ExitCode = -1
			res.Stderr = appendLine(res.Stderr, err.Error())
		}
	}
	return res
}

func appendLine(base, line string) string {
	if base == "" {
		return line
	}
	return strings.TrimRight(base, "\n") + "\n" + line
}
