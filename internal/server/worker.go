package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/harmonysearch/internal/opt"
	"github.com/cwbudde/harmonysearch/internal/problem"
	"github.com/cwbudde/harmonysearch/internal/store"
)

// runJob executes an optimization job in the background. The context comes
// from the job manager and is cancelled through the cancel endpoint; the
// worker checks it before the search starts and again when the search
// returns, so a search already in flight runs to completion and its result
// is then discarded.
func (s *Server) runJob(ctx context.Context, jobID string) error {
	job, exists := s.jobManager.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Update state to running
	err := s.jobManager.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job",
		"job_id", jobID,
		"problem", job.Config.Problem,
		"optimizer", job.Config.Optimizer,
		"restarts", job.Config.Restarts,
	)

	// Resolve the problem and its domain
	p, err := problem.Get(job.Config.Problem)
	if err != nil {
		markJobFailed(s.jobManager, jobID, err)
		return err
	}
	domain := p.DomainFor(job.Config.Vars)

	// The observer keeps the job's live fields current; the progress
	// monitor broadcasts them at a throttled rate.
	observer := func(iteration int, bestCost float64) {
		s.jobManager.UpdateJob(jobID, func(j *Job) {
			j.Iterations = iteration
			j.BestCost = bestCost
		})
	}

	// Check for cancellation before starting the search
	select {
	case <-ctx.Done():
		markJobCancelled(s.jobManager, jobID)
		return ctx.Err()
	default:
	}

	// Start progress monitoring goroutine
	progressDone := make(chan struct{})
	go monitorProgress(ctx, s.jobManager, jobID, progressDone)

	start := time.Now()
	out, err := runSearch(job.Config, domain, p, observer)
	close(progressDone)
	elapsed := time.Since(start)

	// Check for cancellation after the search
	select {
	case <-ctx.Done():
		markJobCancelled(s.jobManager, jobID)
		return ctx.Err()
	default:
	}

	if err != nil {
		markJobFailed(s.jobManager, jobID, err)
		return err
	}

	// Persist the finished run before announcing completion
	if s.store != nil {
		record := store.NewRunRecord(jobID, job.Config, out)
		if err := s.store.SaveRun(record); err != nil {
			err = fmt.Errorf("persist run: %w", err)
			markJobFailed(s.jobManager, jobID, err)
			return err
		}
		if s.traceDir != "" && len(out.Trace) > 0 {
			if err := store.WriteTrace(s.traceDir, jobID, out.Trace, s.compressTraces); err != nil {
				err = fmt.Errorf("persist trace: %w", err)
				markJobFailed(s.jobManager, jobID, err)
				return err
			}
		}
	}

	// Update job with results
	endTime := time.Now()
	err = s.jobManager.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Best = out.Best
		j.BestCost = out.BestCost
		j.InitialCost = out.InitialCost
		j.Iterations = out.Iterations
		j.Solutions = out.Solutions
		j.Converged = out.Converged
		j.EndTime = &endTime
		jobDurationSeconds.Observe(endTime.Sub(j.StartTime).Seconds())
	})
	if err != nil {
		return err
	}
	jobsFinishedTotal.WithLabelValues(string(StateCompleted)).Inc()

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"initial_cost", out.InitialCost,
		"best_cost", out.BestCost,
		"iterations", out.Iterations,
		"converged", out.Converged,
	)

	// Broadcast final completion event
	s.jobManager.broadcaster.Broadcast(ProgressEvent{
		JobID:     jobID,
		State:     StateCompleted,
		Iteration: out.Iterations,
		BestCost:  out.BestCost,
		Timestamp: time.Now(),
	})

	return nil
}

// runSearch dispatches one job configuration to its backend. Two or more
// restarts go through the multi-start driver without a per-iteration
// observer, since parallel runs would interleave their progress.
func runSearch(config JobConfig, domain [][]float64, p *problem.Problem, observer func(int, float64)) (*opt.Outcome, error) {
	if config.Restarts >= 2 {
		ms := &opt.MultiStart{
			Restarts: config.Restarts,
			BaseSeed: config.Seed,
			Maximize: config.Maximize,
			Factory: func(seed int64) (opt.Optimizer, error) {
				cfg := config.EngineConfig
				cfg.Seed = seed
				return opt.New(config.Optimizer, cfg, nil)
			},
		}
		return ms.Run(p.Objective, p.Constraint, domain)
	}

	optimizer, err := opt.New(config.Optimizer, config.EngineConfig, observer)
	if err != nil {
		return nil, err
	}
	return optimizer.Run(p.Objective, p.Constraint, domain)
}

// monitorProgress periodically broadcasts progress events during a search
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:     jobID,
				State:     job.State,
				Iteration: job.Iterations,
				BestCost:  job.BestCost,
				Timestamp: time.Now(),
			})
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
		jobDurationSeconds.Observe(endTime.Sub(j.StartTime).Seconds())
	})
	jobsFinishedTotal.WithLabelValues(string(StateFailed)).Inc()
	slog.Error("Job failed", "job_id", jobID, "error", err)

	if job, exists := jm.GetJob(jobID); exists {
		jm.broadcaster.Broadcast(ProgressEvent{
			JobID:     jobID,
			State:     StateFailed,
			Iteration: job.Iterations,
			BestCost:  job.BestCost,
			Timestamp: endTime,
		})
	}
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
		jobDurationSeconds.Observe(endTime.Sub(j.StartTime).Seconds())
	})
	jobsFinishedTotal.WithLabelValues(string(StateCancelled)).Inc()
	slog.Info("Job cancelled", "job_id", jobID)

	if job, exists := jm.GetJob(jobID); exists {
		jm.broadcaster.Broadcast(ProgressEvent{
			JobID:     jobID,
			State:     StateCancelled,
			Iteration: job.Iterations,
			BestCost:  job.BestCost,
			Timestamp: endTime,
		})
	}
}
