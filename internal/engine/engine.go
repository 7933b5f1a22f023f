// Package engine ties the pipeline together: matched hook definitions go
// through the cache partition, misses run on the scheduler, completions are
// recorded back to the cache, and every invocation emits a correlated
// hook_run/hook_result pair.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/ratchet-run/ratchet/internal/match"
	"github.com/ratchet-run/ratchet/internal/models"
	"github.com/ratchet-run/ratchet/internal/store"
	"github.com/ratchet-run/ratchet/pkg/hashcache"
)

// EventSink receives hook lifecycle events. LogRun returns the hookRunId
// that correlates the later result. The events logger implements this; tests
// substitute their own.
type EventSink interface {
	LogRun(trigger *models.Trigger, data *models.HookRunData) string
	LogResult(hookRunID string, trigger *models.Trigger, data *models.HookResultData)
}

// Engine runs the full hook pipeline for one trigger at a time.
type Engine struct {
	matcher   *match.Matcher
	scheduler *Scheduler
	db        *sql.DB // nil disables caching entirely
	hashes    *hashcache.Cache
	sink      EventSink // nil disables event logging
	policy    Policy
}

// Option configures an Engine.
type Option func(*Engine)

// WithCacheDB enables result caching against db.
func WithCacheDB(db *sql.DB) Option {
	return func(e *Engine) { e.db = db }
}

// WithEventSink routes hook_run/hook_result events to sink.
func WithEventSink(sink EventSink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithMatcher replaces the default matcher.
func WithMatcher(m *match.Matcher) Option {
	return func(e *Engine) { e.matcher = m }
}

// WithScheduler replaces the default subprocess scheduler.
func WithScheduler(s *Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// New builds an Engine with the given execution policy.
func New(policy Policy, opts ...Option) *Engine {
	e := &Engine{
		matcher:   match.New(),
		scheduler: NewScheduler(),
		hashes:    hashcache.New(hashcache.DefaultMaxEntries),
		policy:    policy,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Report is the aggregate outcome of one trigger.
type Report struct {
	// Results holds one entry per matched hook, in registry order.
	Results []*models.HookResult
	// Blocked is true when any executed hook exited with the blocking code.
	Blocked bool
	// BlockMessages are the stderr payloads of blocking hooks, for the host.
	BlockMessages []string
	// CacheHits counts results served without launching a subprocess.
	CacheHits int
}

// Failed reports whether any hook produced a non-passing result.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if !res.Passed() {
			return true
		}
	}
	return false
}

// Run evaluates trigger against defs end to end. Cache and log trouble
// degrade (miss, warn); the only errors surfaced are the caller's context.
func (e *Engine) Run(ctx context.Context, trigger *models.Trigger, defs []*models.HookDefinition) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := e.matcher.Match(trigger, defs)
	report := &Report{Results: make([]*models.HookResult, len(matched))}
	if len(matched) == 0 {
		return report, nil
	}

	runIDs := make([]string, len(matched))
	commands := make([]string, len(matched))
	fingerprints := make([]*store.Fingerprint, len(matched))

	var jobs []Job
	var jobIdx []int // position of each job in the matched slice

	for i, def := range matched {
		files := match.MatchedFiles(trigger, def)
		commands[i] = RenderCommand(def.Command, files)
		runIDs[i] = e.logRun(trigger, def, commands[i])

		entry, fp := e.cacheLookup(def, trigger.CWD, files)
		fingerprints[i] = fp
		if entry != nil {
			report.Results[i] = cachedResult(def, commands[i], entry)
			report.CacheHits++
			continue
		}
		jobs = append(jobs, Job{Hook: def, Command: commands[i], Dir: trigger.CWD})
		jobIdx = append(jobIdx, i)
	}

	executed := e.scheduler.Run(ctx, jobs, e.policy)
	for j, res := range executed {
		i := jobIdx[j]
		report.Results[i] = res
		e.cacheRecord(fingerprints[i], trigger.CWD, res)
	}

	for i, res := range report.Results {
		e.logResult(runIDs[i], trigger, res, res.Status == models.StatusCached)
		if res.Blocking() {
			report.Blocked = true
			if res.Stderr != "" {
				report.BlockMessages = append(report.BlockMessages, res.Stderr)
			}
		}
	}
	return report, nil
}

// cacheLookup returns the hit entry if any, plus the fingerprint for a
// later record. Any cache trouble degrades to a miss.
func (e *Engine) cacheLookup(def *models.HookDefinition, dir string, files []string) (*store.CacheEntry, *store.Fingerprint) {
	if e.db == nil {
		return nil, nil
	}
	fp, err := store.ComputeFingerprint(def, dir, files, e.hashes)
	if err != nil {
		slog.Warn("fingerprint failed, treating as cache miss", "hook", def.Key(), "error", err)
		return nil, nil
	}
	entry, err := store.Lookup(e.db, fp)
	if err != nil {
		if !errors.Is(err, store.ErrCacheMiss) {
			slog.Warn("cache lookup failed, treating as miss", "hook", def.Key(), "error", err)
		}
		return nil, fp
	}
	return entry, fp
}

// cacheRecord persists a completed execution. Timeouts and launch failures
// are environmental, not content-addressed, so they are never recorded.
func (e *Engine) cacheRecord(fp *store.Fingerprint, dir string, res *models.HookResult) {
	if e.db == nil || fp == nil {
		return
	}
	if res.Status != models.StatusOK && res.Status != models.StatusFailed {
		return
	}
	if res.ExitCode < 0 {
		return
	}
	if err := store.Record(e.db, fp, dir, res); err != nil {
		slog.Warn("cache record failed", "hook", res.Hook.Key(), "error", err)
	}
}

func (e *Engine) logRun(trigger *models.Trigger, def *models.HookDefinition, command string) string {
	if e.sink == nil {
		return ""
	}
	return e.sink.LogRun(trigger, &models.HookRunData{
		Plugin:    def.PluginName,
		Hook:      def.Name,
		EventType: trigger.EventType,
		Command:   command,
		Directory: trigger.CWD,
	})
}

func (e *Engine) logResult(runID string, trigger *models.Trigger, res *models.HookResult, cached bool) {
	if e.sink == nil {
		return
	}
	e.sink.LogResult(runID, trigger, &models.HookResultData{
		Plugin:     res.Hook.PluginName,
		Hook:       res.Hook.Name,
		EventType:  trigger.EventType,
		Command:    res.Command,
		ExitCode:   res.ExitCode,
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
		DurationMS: res.DurationMS,
		Status:     res.Status,
		Cached:     cached,
	})
}

func cachedResult(def *models.HookDefinition, command string, entry *store.CacheEntry) *models.HookResult {
	return &models.HookResult{
		Hook:       def,
		Command:    command,
		ExitCode:   entry.ExitCode,
		Stdout:     entry.Stdout,
		Stderr:     entry.Stderr,
		DurationMS: entry.DurationMS,
		Skipped:    true,
		Status:     models.StatusCached,
	}
}
