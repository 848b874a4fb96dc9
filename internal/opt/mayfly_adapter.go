package opt

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/harmonysearch/internal/harmony"
)

// infeasiblePenalty is the cost handed to the swarm for candidates whose
// projection violates the constraint. Large but finite, so the library's
// arithmetic stays well-defined.
const infeasiblePenalty = 1e18

// minMayflyPop is the smallest population mayfly v0.1.0 runs reliably with.
const minMayflyPop = 20

// MayflyOptimizer drives the external mayfly swarm over the continuous
// envelope of a discrete domain. Every candidate the swarm evaluates is
// first projected onto the nearest admissible values, so the reported best
// is always a valid domain member. The library exposes no per-iteration
// hook, so outcomes carry no trace and Converged is never set.
type MayflyOptimizer struct {
	cfg EngineConfig
}

// NewMayfly returns the mayfly backend. MemorySize doubles as the swarm
// population, floored at the library's minimum.
func NewMayfly(cfg EngineConfig) *MayflyOptimizer {
	return &MayflyOptimizer{cfg: cfg.Normalize()}
}

// Run executes one swarm optimization.
func (m *MayflyOptimizer) Run(objective harmony.ObjectiveFunc, constraint harmony.ConstraintFunc, domainSpec [][]float64) (*Outcome, error) {
	dom, err := harmony.NewDomain(domainSpec)
	if err != nil {
		return nil, err
	}
	if dom.NumVars() == 0 {
		return nil, &harmony.StateError{Op: "mayfly", Reason: "domain has no decision variables"}
	}

	sign := 1.0
	if m.cfg.Maximize {
		sign = -1.0
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = func(params []float64) float64 {
		p := project(dom, params)
		if constraint(p) {
			return infeasiblePenalty
		}
		return sign * objective(p)
	}
	config.ProblemSize = dom.NumVars()
	config.MaxIterations = m.cfg.Iterations
	config.NPop = m.cfg.MemorySize
	if config.NPop < minMayflyPop {
		config.NPop = minMayflyPop
	}

	// The library takes scalar bounds, so the swarm roams the envelope of
	// all variables and the projection pulls candidates back per variable.
	lower, upper := envelope(dom)
	config.LowerBound = lower
	config.UpperBound = upper

	seed := m.cfg.Seed
	if seed <= 0 {
		seed = time.Now().UnixNano()
	}
	config.Rand = rand.New(rand.NewSource(seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return nil, fmt.Errorf("mayfly: %w", err)
	}

	best := project(dom, result.GlobalBest.Position)
	if constraint(best) {
		return nil, fmt.Errorf("mayfly: no feasible candidate found in %d iterations", m.cfg.Iterations)
	}
	return &Outcome{
		Best:       best,
		BestCost:   objective(best),
		Solutions:  [][]float64{best},
		Iterations: m.cfg.Iterations,
	}, nil
}

// envelope returns the smallest scalar bounds covering every variable's
// admissible values.
func envelope(dom *harmony.Domain) (lower, upper float64) {
	lower = dom.Value(0, 0)
	upper = dom.Value(0, dom.Cardinality(0)-1)
	for i := 1; i < dom.NumVars(); i++ {
		if v := dom.Value(i, 0); v < lower {
			lower = v
		}
		if v := dom.Value(i, dom.Cardinality(i)-1); v > upper {
			upper = v
		}
	}
	return lower, upper
}

// project maps a continuous position onto the nearest admissible value of
// each variable.
func project(dom *harmony.Domain, params []float64) []float64 {
	out := make([]float64, dom.NumVars())
	for i := range out {
		out[i] = dom.Value(i, dom.NearestIndex(i, params[i]))
	}
	return out
}
