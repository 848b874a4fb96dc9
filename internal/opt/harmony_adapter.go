package opt

import (
	"fmt"

	"github.com/cwbudde/harmonysearch/internal/harmony"
	"github.com/cwbudde/harmonysearch/internal/strategy"
)

// HarmonyOptimizer runs the harmony search engine with a fixed operator.
// Each Run builds a fresh engine, seeds its memory randomly, and collects
// every distinct best-cost solution.
type HarmonyOptimizer struct {
	cfg      EngineConfig
	strat    harmony.Strategy
	observer harmony.ObserverFunc
}

// NewHarmony returns the classic-operator backend.
func NewHarmony(cfg EngineConfig, observer harmony.ObserverFunc) *HarmonyOptimizer {
	return &HarmonyOptimizer{cfg: cfg.Normalize(), strat: strategy.Classic{}, observer: observer}
}

// NewRandom returns the random-sampling baseline backend. It drives the same
// engine as NewHarmony but improvises candidates without memory recall.
func NewRandom(cfg EngineConfig, observer harmony.ObserverFunc) *HarmonyOptimizer {
	return &HarmonyOptimizer{cfg: cfg.Normalize(), strat: strategy.Random{}, observer: observer}
}

// Run executes one full search.
func (o *HarmonyOptimizer) Run(objective harmony.ObjectiveFunc, constraint harmony.ConstraintFunc, domain [][]float64) (*Outcome, error) {
	opts := []harmony.Option{
		harmony.WithDomain(domain),
		harmony.WithMemorySize(o.cfg.MemorySize),
		harmony.WithHMCR(o.cfg.HMCR),
		harmony.WithPAR(o.cfg.PAR),
		harmony.WithMaxIter(o.cfg.Iterations),
		harmony.WithMaximize(o.cfg.Maximize),
	}
	if o.cfg.Seed > 0 {
		opts = append(opts, harmony.WithSeed(o.cfg.Seed))
	}
	if o.observer != nil {
		opts = append(opts, harmony.WithObserver(o.observer))
	}
	h, err := harmony.New(objective, constraint, o.strat, opts...)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	if err := strategy.SeedRandom(h); err != nil {
		return nil, fmt.Errorf("seed memory: %w", err)
	}
	initial := h.Memory().Cost(0)
	res, err := h.MultipleSearch()
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Best:        res.Best,
		BestCost:    res.BestCost,
		InitialCost: initial,
		Solutions:   res.Solutions,
		Trace:       res.Trace,
		Iterations:  res.Iterations,
		Converged:   res.Converged,
	}, nil
}
