// Package opt fronts the search backends behind one interface so the CLI
// and the server can pick an engine per run.
package opt

import (
	"fmt"

	"github.com/cwbudde/harmonysearch/internal/harmony"
)

// Optimizer runs a search over a discrete domain. Implementations must be
// safe to construct concurrently; a single instance runs one search at a
// time.
type Optimizer interface {
	// Run searches domain for the best admissible candidate. The domain is
	// given as per-variable admissible value lists.
	Run(objective harmony.ObjectiveFunc, constraint harmony.ConstraintFunc, domain [][]float64) (*Outcome, error)
}

// Outcome is what a backend reports after a run. Trace and InitialCost are
// only filled by backends that expose per-iteration progress.
type Outcome struct {
	Best        []float64   `json:"best"`
	BestCost    float64     `json:"bestCost"`
	InitialCost float64     `json:"initialCost"`
	Solutions   [][]float64 `json:"solutions,omitempty"`
	Trace       []float64   `json:"trace,omitempty"`
	Iterations  int         `json:"iterations"`
	Converged   bool        `json:"converged"`
}

// EngineConfig carries the tunables shared by CLI flags, config files, and
// job submissions. Zero values mean "use the default"; Seed values at or
// below zero leave the engine clock-seeded.
type EngineConfig struct {
	HMCR       float64 `json:"hmcr" yaml:"hmcr"`
	PAR        float64 `json:"par" yaml:"par"`
	Iterations int     `json:"iterations" yaml:"iterations"`
	MemorySize int     `json:"memorySize" yaml:"memorySize"`
	Seed       int64   `json:"seed" yaml:"seed"`
	Maximize   bool    `json:"maximize" yaml:"maximize"`
}

// Normalize fills unset fields with the engine defaults.
func (c EngineConfig) Normalize() EngineConfig {
	if c.HMCR <= 0 {
		c.HMCR = harmony.DefaultHMCR
	}
	if c.PAR <= 0 {
		c.PAR = harmony.DefaultPAR
	}
	if c.Iterations <= 0 {
		c.Iterations = harmony.DefaultMaxIter
	}
	if c.MemorySize <= 0 {
		c.MemorySize = harmony.DefaultMemorySize
	}
	return c
}

// New builds the named backend. The observer, when non-nil, receives
// per-iteration progress from backends that support it; the others ignore
// it.
func New(name string, cfg EngineConfig, observer harmony.ObserverFunc) (Optimizer, error) {
	switch name {
	case "", "harmony":
		return NewHarmony(cfg, observer), nil
	case "random":
		return NewRandom(cfg, observer), nil
	case "mayfly":
		return NewMayfly(cfg), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q (known: harmony, random, mayfly)", name)
	}
}
