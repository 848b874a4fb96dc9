package store

import (
	"fmt"
	"time"

	"github.com/cwbudde/harmonysearch/internal/opt"
)

// RunConfig holds the full configuration of an optimization run. The engine
// tunables embed flat, so the JSON shape matches job submissions and run
// spec files.
type RunConfig struct {
	Problem   string `json:"problem"`
	Optimizer string `json:"optimizer"`
	Restarts  int    `json:"restarts,omitempty"`
	Vars      int    `json:"vars,omitempty"`
	opt.EngineConfig
}

// RunRecord is the persisted outcome of a finished run.
//
// The record captures the best candidate, the tied alternative solutions,
// and the configuration that produced them, but not the engine's memory or
// random-source state. Re-running the recorded configuration (same seed
// included) reproduces the result; there is no partial-state resume.
type RunRecord struct {
	// RunID is the unique identifier for this run.
	RunID string `json:"runId"`

	// Config holds the configuration the run executed with. A record is
	// re-runnable from this alone.
	Config RunConfig `json:"config"`

	// Best is the best admissible candidate found.
	Best []float64 `json:"best"`

	// BestCost is the objective value of Best.
	BestCost float64 `json:"bestCost"`

	// InitialCost is the best cost right after seeding, for improvement
	// tracking. Backends without seeding visibility leave it zero.
	InitialCost float64 `json:"initialCost"`

	// Solutions are the distinct candidates tying BestCost, Best first.
	Solutions [][]float64 `json:"solutions,omitempty"`

	// Iterations is how many iterations the run executed.
	Iterations int `json:"iterations"`

	// Converged records whether the run terminated early on a fully
	// converged memory rather than exhausting its budget.
	Converged bool `json:"converged"`

	// Timestamp records when this record was created.
	Timestamp time.Time `json:"timestamp"`
}

// RunInfo contains run metadata without the candidate data. Used for
// listings, so directories full of runs scan cheaply.
type RunInfo struct {
	RunID      string    `json:"runId"`
	Problem    string    `json:"problem"`
	Optimizer  string    `json:"optimizer"`
	BestCost   float64   `json:"bestCost"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRunRecord converts a backend outcome into a persistable record.
func NewRunRecord(runID string, cfg RunConfig, out *opt.Outcome) *RunRecord {
	return &RunRecord{
		RunID:       runID,
		Config:      cfg,
		Best:        out.Best,
		BestCost:    out.BestCost,
		InitialCost: out.InitialCost,
		Solutions:   out.Solutions,
		Iterations:  out.Iterations,
		Converged:   out.Converged,
		Timestamp:   time.Now(),
	}
}

// ToInfo converts a full RunRecord to its listing metadata.
func (r *RunRecord) ToInfo() RunInfo {
	return RunInfo{
		RunID:      r.RunID,
		Problem:    r.Config.Problem,
		Optimizer:  r.Config.Optimizer,
		BestCost:   r.BestCost,
		Iterations: r.Iterations,
		Converged:  r.Converged,
		Timestamp:  r.Timestamp,
	}
}

// Validate checks that the record is complete enough to persist.
func (r *RunRecord) Validate() error {
	if r.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if len(r.Best) == 0 {
		return &ValidationError{Field: "Best", Reason: "cannot be empty"}
	}
	for i, s := range r.Solutions {
		if len(s) != len(r.Best) {
			return &ValidationError{
				Field:  "Solutions",
				Reason: fmt.Sprintf("entry %d dimension differs from Best", i),
			}
		}
	}
	if r.Iterations < 0 {
		return &ValidationError{Field: "Iterations", Reason: "cannot be negative"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if r.Config.Problem == "" {
		return &ValidationError{Field: "Config.Problem", Reason: "cannot be empty"}
	}
	return nil
}

// ValidationError represents a run record validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}
