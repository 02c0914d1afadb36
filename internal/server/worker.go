package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/weberfit/internal/opt"
	"github.com/cwbudde/weberfit/internal/store"
	"github.com/cwbudde/weberfit/internal/weber"
)

// progressInterval throttles SSE progress events
var progressInterval = 250 * time.Millisecond

// jobEnv holds what a job needs besides the JobManager. Every field is optional.
type jobEnv struct {
	runs    store.Store
	dataDir string // root of trace files; empty disables tracing
	cache   *ResultCache
}

// runJob executes a solve job in the background.
// Finished results are cached and, if a store is configured, persisted.
func runJob(ctx context.Context, jm *JobManager, env jobEnv, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if jobCtx, ok := jm.jobContext(jobID); ok {
		stop := context.AfterFunc(jobCtx, cancel)
		defer stop()
	}
	defer jm.release(jobID)

	started := false
	err := jm.UpdateJob(jobID, func(j *Job) {
		if j.State == StatePending {
			j.State = StateRunning
			started = true
		}
	})
	if err != nil {
		return err
	}
	if !started {
		// Cancelled while pending
		return context.Canceled
	}

	slog.Info("Starting job",
		"job_id", jobID,
		"points", len(job.Config.Points),
		"method", job.Config.Method,
		"weighted", job.Config.Weighted,
	)

	// Check for cancellation before starting the search
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	key, err := cacheKey(job.Config)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	if env.cache != nil {
		if res, ok := env.cache.Get(key); ok {
			slog.Info("Job answered from cache", "job_id", jobID, "cost", res.Cost)
			return completeJob(jm, env, jobID, job.Config, &res, true)
		}
	}

	var trace *store.TraceWriter
	if job.Config.Trace && env.dataDir != "" {
		trace, err = store.NewTraceWriter(env.dataDir, jobID, false)
		if err != nil {
			slog.Warn("Tracing disabled", "job_id", jobID, "error", err)
		} else {
			defer trace.Close()
		}
	}

	history := weber.NewHistory()
	cfg := job.Config.Config
	cfg.Observer = weber.ChainObservers(
		history.Observer(),
		progressObserver(jm, jobID, trace),
	)

	start := time.Now()
	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, start, progressDone)

	res, err := weber.Solve(ctx, job.Config.Points, cfg)
	close(progressDone)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			markJobCancelled(jm, jobID)
			return err
		}

		// Keep the last simplex best so the failure is inspectable
		var dnc *opt.DidNotConvergeError
		if errors.As(err, &dnc) {
			best := weber.PointFromVector(dnc.X)
			jm.UpdateJob(jobID, func(j *Job) {
				j.BestPoint = &best
				j.BestCost = dnc.F
				j.Iterations = dnc.Iterations
			})
		}
		markJobFailed(jm, jobID, err)
		return err
	}

	slog.Info("Search finished",
		"job_id", jobID,
		"elapsed", time.Since(start),
		"iterations", res.Iterations,
		"monotone", history.Monotone(),
		"steps", history.StepCounts(),
	)

	if env.cache != nil {
		env.cache.Set(key, *res)
	}
	return completeJob(jm, env, jobID, job.Config, res, false)
}

// progressObserver mirrors each iteration into the job and, if set, the trace
func progressObserver(jm *JobManager, jobID string, trace *store.TraceWriter) opt.Observer {
	traceFailed := false

	return func(s opt.Snapshot) {
		entry := store.EntryFromSnapshot(s, trace != nil)

		jm.UpdateJob(jobID, func(j *Job) {
			j.Iterations = entry.Iteration
			j.BestCost = entry.Cost
			j.LastStep = entry.Step
		})

		if trace != nil && !traceFailed {
			if err := trace.Write(entry); err != nil {
				slog.Warn("Trace write failed, tracing stopped", "job_id", jobID, "error", err)
				traceFailed = true
			}
		}
	}
}

// completeJob records the result on the job, persists it and notifies subscribers
func completeJob(jm *JobManager, env jobEnv, jobID string, config JobConfig, res *weber.Result, cached bool) error {
	run, err := store.NewRunRecord(jobID, config.Points, config.Config, res)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		best := res.Point
		j.State = StateCompleted
		j.BestPoint = &best
		j.BestCost = res.Cost
		j.MassCenterCost = run.MassCenterCost
		j.Iterations = res.Iterations
		j.Evaluations = res.Evaluations
		j.Degenerate = res.Degenerate
		j.Cached = cached
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	if env.runs != nil {
		if err := env.runs.SaveRun(jobID, run); err != nil {
			// The job result stays available in memory
			slog.Error("Failed to persist run", "job_id", jobID, "error", err)
		}
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"point", res.Point,
		"cost", res.Cost,
		"mass_center_cost", run.MassCenterCost,
		"cached", cached,
	)

	broadcastJob(jm, jobID)
	return nil
}

// monitorProgress periodically broadcasts progress events during the search
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !broadcastJob(jm, jobID) {
				return
			}
		}
	}
}

// broadcastJob sends the job's current state to its subscribers
func broadcastJob(jm *JobManager, jobID string) bool {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return false
	}
	jm.broadcaster.Broadcast(newProgressEvent(job))
	return true
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
	broadcastJob(jm, jobID)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
	broadcastJob(jm, jobID)
}
