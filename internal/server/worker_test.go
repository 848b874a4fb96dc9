package server

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cwbudde/harmonysearch/internal/store"
)

// newTestServer wires a server against a fresh file store. The listen
// address is never bound; tests drive handlers and workers directly.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	st, err := store.NewFSStore(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	return NewServer(Config{
		Addr:     ":0",
		Store:    st,
		TraceDir: dir,
	})
}

// sphereJob returns a small deterministic harmony run configuration.
func sphereJob() JobConfig {
	config := JobConfig{Problem: "sphere", Optimizer: "harmony"}
	config.Iterations = 400
	config.MemorySize = 5
	config.Seed = 42
	return config
}

func TestRunJob_CompletesAndPersists(t *testing.T) {
	s := newTestServer(t)

	job, ctx := s.jobManager.CreateJob(sphereJob())
	if err := s.runJob(ctx, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	done, _ := s.jobManager.GetJob(job.ID)
	if done.State != StateCompleted {
		t.Fatalf("Expected completed state, got %s (error %q)", done.State, done.Error)
	}
	if done.EndTime == nil {
		t.Error("EndTime should be set on completion")
	}
	if len(done.Best) != 2 {
		t.Errorf("Sphere is two-dimensional, best has %d entries", len(done.Best))
	}
	if done.BestCost > done.InitialCost {
		t.Errorf("Best cost %v worse than initial %v", done.BestCost, done.InitialCost)
	}
	if len(done.Solutions) == 0 {
		t.Error("Completed job should carry its solutions")
	}

	// Verify the run record was persisted under the job ID
	record, err := s.store.LoadRun(job.ID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if record.BestCost != done.BestCost {
		t.Errorf("Persisted best cost %v, job reports %v", record.BestCost, done.BestCost)
	}
	if record.Config.Problem != "sphere" {
		t.Errorf("Persisted problem %q, want sphere", record.Config.Problem)
	}

	// Verify the trace covers seeding plus every executed iteration
	reader, err := store.NewTraceReader(s.traceDir, job.ID)
	if err != nil {
		t.Fatalf("Trace should be persisted: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(entries) != done.Iterations+1 {
		t.Fatalf("Trace has %d entries, want %d", len(entries), done.Iterations+1)
	}
	if entries[0].BestCost != done.InitialCost {
		t.Errorf("Trace starts at %v, initial cost is %v", entries[0].BestCost, done.InitialCost)
	}
	if entries[len(entries)-1].BestCost != done.BestCost {
		t.Errorf("Trace ends at %v, best cost is %v", entries[len(entries)-1].BestCost, done.BestCost)
	}
}

func TestRunJob_BroadcastsCompletion(t *testing.T) {
	s := newTestServer(t)

	job, ctx := s.jobManager.CreateJob(sphereJob())
	ch := s.jobManager.broadcaster.Subscribe(job.ID)
	defer s.jobManager.broadcaster.CleanupJob(job.ID)

	if err := s.runJob(ctx, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	var last ProgressEvent
	received := false
drain:
	for {
		select {
		case event := <-ch:
			last = event
			received = true
		default:
			break drain
		}
	}

	if !received {
		t.Fatal("Expected at least the completion event")
	}
	if last.State != StateCompleted {
		t.Errorf("Final event state %s, want completed", last.State)
	}
	done, _ := s.jobManager.GetJob(job.ID)
	if last.Iteration != done.Iterations {
		t.Errorf("Final event iteration %d, job reports %d", last.Iteration, done.Iterations)
	}
}

func TestRunJob_UnknownProblemFails(t *testing.T) {
	s := newTestServer(t)

	job, ctx := s.jobManager.CreateJob(JobConfig{Problem: "warp-field"})
	if err := s.runJob(ctx, job.ID); err == nil {
		t.Fatal("Expected an error for an unknown problem")
	}

	failed, _ := s.jobManager.GetJob(job.ID)
	if failed.State != StateFailed {
		t.Fatalf("Expected failed state, got %s", failed.State)
	}
	if !strings.Contains(failed.Error, "unknown problem") {
		t.Errorf("Job error should name the problem lookup, got %q", failed.Error)
	}
	if failed.EndTime == nil {
		t.Error("EndTime should be set on failure")
	}
}

func TestRunJob_CancelledBeforeStart(t *testing.T) {
	s := newTestServer(t)

	job, ctx := s.jobManager.CreateJob(sphereJob())
	if err := s.jobManager.CancelJob(job.ID); err != nil {
		t.Fatalf("CancelJob failed: %v", err)
	}

	err := s.runJob(ctx, job.ID)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	cancelled, _ := s.jobManager.GetJob(job.ID)
	if cancelled.State != StateCancelled {
		t.Errorf("Expected cancelled state, got %s", cancelled.State)
	}
	if _, err := s.store.LoadRun(job.ID); !errors.Is(err, store.ErrNotFound) {
		t.Error("Cancelled job should not persist a run record")
	}
}

func TestRunJob_MultiStartHonorsRestarts(t *testing.T) {
	s := newTestServer(t)

	config := sphereJob()
	config.Restarts = 4
	config.Iterations = 200

	job, ctx := s.jobManager.CreateJob(config)
	if err := s.runJob(ctx, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	done, _ := s.jobManager.GetJob(job.ID)
	if done.State != StateCompleted {
		t.Fatalf("Expected completed state, got %s (error %q)", done.State, done.Error)
	}

	record, err := s.store.LoadRun(job.ID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if record.Config.Restarts != 4 {
		t.Errorf("Persisted restarts %d, want 4", record.Config.Restarts)
	}

	// The winner is a harmony run, so its trace is persisted too
	reader, err := store.NewTraceReader(s.traceDir, job.ID)
	if err != nil {
		t.Fatalf("Trace should be persisted: %v", err)
	}
	reader.Close()
}

func TestRunJob_MayflyBackendHasNoTrace(t *testing.T) {
	s := newTestServer(t)

	config := JobConfig{Problem: "sphere", Optimizer: "mayfly"}
	config.Iterations = 100
	config.MemorySize = 30
	config.Seed = 7

	job, ctx := s.jobManager.CreateJob(config)
	if err := s.runJob(ctx, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	done, _ := s.jobManager.GetJob(job.ID)
	if done.State != StateCompleted {
		t.Fatalf("Expected completed state, got %s (error %q)", done.State, done.Error)
	}

	if _, err := s.store.LoadRun(job.ID); err != nil {
		t.Errorf("Run record should be persisted: %v", err)
	}
	if _, err := store.NewTraceReader(s.traceDir, job.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Backend without history should leave no trace, got %v", err)
	}
}

func TestRunJob_NoStoreSkipsPersistence(t *testing.T) {
	s := NewServer(Config{Addr: ":0"})

	job, ctx := s.jobManager.CreateJob(sphereJob())
	if err := s.runJob(ctx, job.ID); err != nil {
		t.Fatalf("runJob failed: %v", err)
	}

	done, _ := s.jobManager.GetJob(job.ID)
	if done.State != StateCompleted {
		t.Fatalf("Expected completed state, got %s (error %q)", done.State, done.Error)
	}
}

func TestRunJob_UnknownJob(t *testing.T) {
	s := newTestServer(t)

	if err := s.runJob(context.Background(), "nonexistent"); err == nil {
		t.Error("Expected an error for an unknown job ID")
	}
}
