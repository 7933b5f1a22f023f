package engine

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ratchet-run/ratchet/internal/models"
)

const defaultHookTimeout = 60 * time.Second

// Policy controls how a batch of hooks is executed.
type Policy struct {
	// MaxConcurrency bounds the worker pool. Values below 1 mean 1.
	MaxConcurrency int
	// FailFast cancels queued hooks after the first failure. In-flight
	// hooks always run to completion and are reported normally.
	FailFast bool
	// PerHookTimeout applies to hooks that declare no timeout of their own.
	PerHookTimeout time.Duration
}

// Job is one cache-missed hook ready to execute: the definition plus its
// rendered command and working directory.
type Job struct {
	Hook    *models.HookDefinition
	Command string
	Dir     string
}

// Scheduler runs jobs on a bounded worker pool. The run function is
// swappable so tests can observe scheduling without spawning subprocesses.
type Scheduler struct {
	run func(ctx context.Context, def *models.HookDefinition, command, dir string, timeout time.Duration) *models.HookResult
}

// NewScheduler returns a Scheduler backed by real subprocess execution.
func NewScheduler() *Scheduler {
	return &Scheduler{run: runHook}
}

// Run executes jobs under policy and returns one result per job, in job
// order. It never returns an error: timeouts, non-zero exits, and launch
// failures are all results, and fail-fast cancellation produces results
// with StatusCancelled.
func (s *Scheduler) Run(ctx context.Context, jobs []Job, policy Policy) []*models.HookResult {
	results := make([]*models.HookResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	workers := policy.MaxConcurrency
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	queue := make(chan int, len(jobs))
	for i := range jobs {
		queue <- i
	}
	close(queue)

	var failed atomic.Bool
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for idx := range queue {
				job := jobs[idx]
				if gctx.Err() != nil || (policy.FailFast && failed.Load()) {
					results[idx] = cancelledResult(job)
					continue
				}
				res := s.run(gctx, job.Hook, job.Command, job.Dir, s.timeoutFor(job.Hook, policy))
				if res.ExitCode != 0 {
					failed.Store(true)
				}
				results[idx] = res
			}
			return nil
		})
	}
	// Workers never return errors; Wait is purely a join.
	_ = g.Wait()
	return results
}

func (s *Scheduler) timeoutFor(def *models.HookDefinition, policy Policy) time.Duration {
	if def.Timeout > 0 {
		return def.Timeout
	}
	if policy.PerHookTimeout > 0 {
		return policy.PerHookTimeout
	}
	return defaultHookTimeout
}

func cancelledResult(job Job) *models.HookResult {
	return &models.HookResult{
		Hook:    job.Hook,
		Command: job.Command,
		Skipped: true,
		Status:  models.StatusCancelled,
	}
}
