package store

import (
	"errors"
	"testing"
	"time"

	"github.com/cwbudde/harmonysearch/internal/opt"
)

func TestNewRunRecord(t *testing.T) {
	out := &opt.Outcome{
		Best:        []float64{1, 2},
		BestCost:    5,
		InitialCost: 40,
		Solutions:   [][]float64{{1, 2}, {2, 1}},
		Iterations:  120,
		Converged:   true,
	}
	cfg := RunConfig{Problem: "sphere", Optimizer: "harmony"}

	record := NewRunRecord("run-1", cfg, out)

	if record.RunID != "run-1" {
		t.Errorf("Expected runID run-1, got %s", record.RunID)
	}
	if record.BestCost != 5 || record.InitialCost != 40 {
		t.Errorf("Costs not carried over: best=%f initial=%f", record.BestCost, record.InitialCost)
	}
	if len(record.Solutions) != 2 {
		t.Errorf("Expected 2 solutions, got %d", len(record.Solutions))
	}
	if record.Iterations != 120 || !record.Converged {
		t.Errorf("Run stats not carried over: %+v", record)
	}
	if record.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
	if record.Config.Problem != "sphere" {
		t.Errorf("Config not carried over: %+v", record.Config)
	}
}

func TestRunRecord_ToInfo(t *testing.T) {
	record := newTestRecord("run-info")

	info := record.ToInfo()

	if info.RunID != record.RunID {
		t.Errorf("RunID mismatch: expected %s, got %s", record.RunID, info.RunID)
	}
	if info.Problem != record.Config.Problem {
		t.Errorf("Problem mismatch: expected %s, got %s", record.Config.Problem, info.Problem)
	}
	if info.Optimizer != record.Config.Optimizer {
		t.Errorf("Optimizer mismatch: expected %s, got %s", record.Config.Optimizer, info.Optimizer)
	}
	if info.BestCost != record.BestCost {
		t.Errorf("BestCost mismatch: expected %f, got %f", record.BestCost, info.BestCost)
	}
	if info.Iterations != record.Iterations {
		t.Errorf("Iterations mismatch: expected %d, got %d", record.Iterations, info.Iterations)
	}
	if info.Converged != record.Converged {
		t.Errorf("Converged mismatch: expected %t, got %t", record.Converged, info.Converged)
	}
}

func TestRunRecord_Validate(t *testing.T) {
	valid := func() *RunRecord { return newTestRecord("run-ok") }

	tests := []struct {
		name   string
		mutate func(*RunRecord)
		field  string
	}{
		{"empty run ID", func(r *RunRecord) { r.RunID = "" }, "RunID"},
		{"empty best", func(r *RunRecord) { r.Best = nil }, "Best"},
		{"solution dimension", func(r *RunRecord) { r.Solutions = [][]float64{{1}} }, "Solutions"},
		{"negative iterations", func(r *RunRecord) { r.Iterations = -1 }, "Iterations"},
		{"zero timestamp", func(r *RunRecord) { r.Timestamp = time.Time{} }, "Timestamp"},
		{"missing problem", func(r *RunRecord) { r.Config.Problem = "" }, "Config.Problem"},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("Valid record failed validation: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := valid()
			tt.mutate(record)

			err := record.Validate()
			if err == nil {
				t.Fatal("Expected a validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %T: %v", err, err)
			}
			if verr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestNotFoundError_Is(t *testing.T) {
	err := error(&NotFoundError{RunID: "run-x"})
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError instances should match ErrNotFound")
	}
	if errors.Is(errors.New("other"), ErrNotFound) {
		t.Error("Unrelated errors must not match ErrNotFound")
	}
}
