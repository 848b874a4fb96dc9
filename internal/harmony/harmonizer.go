// Package harmony implements harmony search over discrete domains: a
// population metaheuristic that keeps a rank-ordered memory of candidate
// vectors and improvises new candidates by recalling, pitch-adjusting, and
// randomizing per-variable values.
//
// The engine is deliberately single-threaded; one Harmonizer must not be
// shared across goroutines. Run independent engines for parallel searches.
package harmony

import (
	"fmt"
	"math/rand"
	"time"
)

// ObjectiveFunc scores a candidate. Lower is better when minimizing, higher
// when maximizing.
type ObjectiveFunc func(members []float64) float64

// ConstraintFunc reports whether a candidate violates the problem's
// constraints. Violating candidates are rejected before ranking.
type ConstraintFunc func(members []float64) bool

// ObserverFunc receives per-iteration progress from Search.
type ObserverFunc func(iteration int, bestCost float64)

// Strategy supplies the candidate-generation operator the engine loops on.
// Implementations read engine state (domain, memory, rates, random source)
// through the passed Harmonizer and must leave it unmodified.
type Strategy interface {
	// SelectMembers improvises one candidate vector.
	SelectMembers(h *Harmonizer) []float64
	// CalcCost scores a candidate.
	CalcCost(h *Harmonizer, members []float64) float64
	// ViolateConstraint reports whether a candidate is infeasible.
	ViolateConstraint(h *Harmonizer, members []float64) bool
	// Describe names the operator for logs and summaries.
	Describe() string
}

// Harmonizer is the search engine. It owns the domain, the harmony memory,
// and a private random source, so identical seeds and configurations replay
// identical runs.
type Harmonizer struct {
	domain     *Domain
	memory     *Memory
	rng        *rand.Rand
	strategy   Strategy
	objective  ObjectiveFunc
	constraint ConstraintFunc
	hmcr       float64
	par        float64
	maxIter    int
	seed       int64
	seeded     bool
	maximize   bool
	observer   ObserverFunc
}

// New builds an engine. Objective, constraint, and strategy are required;
// everything else defaults (hmcr 0.9, par 0.2, 1000 iterations, 100 memory
// slots, minimization, clock seed) and can be overridden per option.
// Constructing without a domain or with zero memory slots is legal but
// yields an engine whose searches fail with ErrDegenerate.
func New(objective ObjectiveFunc, constraint ConstraintFunc, strategy Strategy, opts ...Option) (*Harmonizer, error) {
	s := defaultSettings()
	s.objective = objective
	s.constraint = constraint
	s.strategy = strategy
	for _, opt := range opts {
		opt(&s)
	}
	return build(&s)
}

func build(s *settings) (*Harmonizer, error) {
	if err := validate(s); err != nil {
		return nil, err
	}
	dom, err := NewDomain(s.domain)
	if err != nil {
		return nil, err
	}
	seed := s.seed
	if !s.seeded {
		seed = time.Now().UnixNano()
	}
	return &Harmonizer{
		domain:     dom,
		memory:     NewMemory(s.memorySize, dom.NumVars()),
		rng:        rand.New(rand.NewSource(seed)),
		strategy:   s.strategy,
		objective:  s.objective,
		constraint: s.constraint,
		hmcr:       s.hmcr,
		par:        s.par,
		maxIter:    s.maxIter,
		seed:       seed,
		seeded:     s.seeded,
		maximize:   s.maximize,
		observer:   s.observer,
	}, nil
}

func validate(s *settings) error {
	if s.objective == nil {
		return &ValidationError{Field: "objective", Reason: "must not be nil"}
	}
	if s.constraint == nil {
		return &ValidationError{Field: "constraint", Reason: "must not be nil"}
	}
	if s.strategy == nil {
		return &ValidationError{Field: "strategy", Reason: "must not be nil"}
	}
	if s.hmcr < 0 || s.hmcr > 1 {
		return &ValidationError{Field: "hmcr", Reason: "must be in [0,1]"}
	}
	if s.par < 0 || s.par > 1 {
		return &ValidationError{Field: "par", Reason: "must be in [0,1]"}
	}
	if s.maxIter < 0 {
		return &ValidationError{Field: "maxIter", Reason: "must not be negative"}
	}
	if s.memorySize < 0 {
		return &ValidationError{Field: "memorySize", Reason: "must not be negative"}
	}
	return nil
}

// Result is the outcome of a single Search run. Trace holds the best cost
// before the first iteration followed by one entry per iteration attempt,
// rejected attempts included.
type Result struct {
	Best       []float64 `json:"best"`
	BestCost   float64   `json:"bestCost"`
	Trace      []float64 `json:"trace"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
}

// MultiResult extends Result with every distinct solution that ties the best
// cost after the run.
type MultiResult struct {
	Result
	Solutions [][]float64 `json:"solutions"`
}

// Search runs up to MaxIter improvisation iterations and returns the best
// candidate found. Each iteration improvises one candidate, rejects it when
// it is infeasible or strictly worse than the current worst memory entry,
// and otherwise inserts it at the first rank it strictly beats; equal-cost
// incumbents are never displaced. The run stops early once best and worst
// cost agree within double-precision tolerance. The memory must have been
// seeded beforehand.
func (h *Harmonizer) Search() (*Result, error) {
	if err := h.ready(); err != nil {
		return nil, err
	}
	trace := make([]float64, 0, h.maxIter+1)
	trace = append(trace, h.memory.Cost(0))

	iterations := 0
	converged := false
	for iterations < h.maxIter {
		iterations++
		members := h.strategy.SelectMembers(h)
		cost := h.strategy.CalcCost(h, members)
		if !h.strategy.ViolateConstraint(h, members) && !h.worseThanWorst(cost) {
			if rank := h.insertionRank(cost); rank >= 0 {
				h.memory.Insert(rank, members, cost)
			}
			converged = Equal(h.memory.Cost(0), h.memory.Cost(h.memory.Size()-1))
		}
		trace = append(trace, h.memory.Cost(0))
		if h.observer != nil {
			h.observer(iterations, h.memory.Cost(0))
		}
		if converged {
			break
		}
	}

	return &Result{
		Best:       append([]float64(nil), h.memory.Vector(0)...),
		BestCost:   h.memory.Cost(0),
		Trace:      trace,
		Iterations: iterations,
		Converged:  converged,
	}, nil
}

// MultipleSearch runs Search and then collects, from rank 1 upward, every
// memory entry whose cost ties rank 0 within double-precision tolerance,
// dropping vectors Similar to one already collected. The scan stops at the
// first non-tying rank.
func (h *Harmonizer) MultipleSearch() (*MultiResult, error) {
	res, err := h.Search()
	if err != nil {
		return nil, err
	}
	solutions := [][]float64{res.Best}
	for rank := 1; rank < h.memory.Size(); rank++ {
		if !Equal(h.memory.Cost(rank), res.BestCost) {
			break
		}
		v := h.memory.Vector(rank)
		if !containsSimilar(solutions, v) {
			solutions = append(solutions, append([]float64(nil), v...))
		}
	}
	return &MultiResult{Result: *res, Solutions: solutions}, nil
}

// containsSimilar reports whether v matches any collected solution within the
// dedup tolerance.
func containsSimilar(solutions [][]float64, v []float64) bool {
	for _, s := range solutions {
		if SimilarSlice(s, v) {
			return true
		}
	}
	return false
}

// Set applies new configuration to a live engine. Changing the domain,
// memory size, objective, or constraint rebuilds the engine, carrying over
// every field not mentioned; the rebuilt memory is empty and needs fresh
// seeding. Changing only the optimization direction reverses the memory in
// place. Scalar rates and the iteration budget apply directly, and a new
// seed re-seeds the random source. On validation failure the engine is left
// untouched.
func (h *Harmonizer) Set(opts ...Option) error {
	s := h.snapshot()
	for _, opt := range opts {
		opt(&s)
	}
	if s.has(rebuildFields) {
		nh, err := build(&s)
		if err != nil {
			return err
		}
		*h = *nh
		return nil
	}
	if err := validate(&s); err != nil {
		return err
	}
	if s.has(fieldHMCR) {
		h.hmcr = s.hmcr
	}
	if s.has(fieldPAR) {
		h.par = s.par
	}
	if s.has(fieldMaxIter) {
		h.maxIter = s.maxIter
	}
	if s.has(fieldSeed) {
		h.seed = s.seed
		h.seeded = true
		h.rng = rand.New(rand.NewSource(s.seed))
	}
	if s.has(fieldObserver) {
		h.observer = s.observer
	}
	if s.has(fieldMaximize) && s.maximize != h.maximize {
		h.maximize = s.maximize
		h.memory.Reverse()
	}
	return nil
}

// snapshot captures the current configuration as settings, the merge base
// for Set.
func (h *Harmonizer) snapshot() settings {
	return settings{
		domain:     h.domain.Spec(),
		memorySize: h.memory.Size(),
		objective:  h.objective,
		constraint: h.constraint,
		strategy:   h.strategy,
		hmcr:       h.hmcr,
		par:        h.par,
		maxIter:    h.maxIter,
		seed:       h.seed,
		seeded:     h.seeded,
		maximize:   h.maximize,
		observer:   h.observer,
	}
}

func (h *Harmonizer) ready() error {
	if h.memory.Size() == 0 || h.domain.NumVars() == 0 {
		return ErrDegenerate
	}
	return nil
}

// worseThanWorst reports whether cost loses strictly against the worst
// memory entry. Equal-to-worst candidates pass and may still be dropped by
// the insertion scan.
func (h *Harmonizer) worseThanWorst(cost float64) bool {
	worst := h.memory.Cost(h.memory.Size() - 1)
	if h.maximize {
		return cost < worst
	}
	return cost > worst
}

// insertionRank returns the first rank whose cost is strictly worse than
// cost, or -1 when no entry loses to it.
func (h *Harmonizer) insertionRank(cost float64) int {
	for i := 0; i < h.memory.Size(); i++ {
		c := h.memory.Cost(i)
		if (h.maximize && c < cost) || (!h.maximize && c > cost) {
			return i
		}
	}
	return -1
}

// Domain returns the engine's admissible-value catalog.
func (h *Harmonizer) Domain() *Domain { return h.domain }

// Memory returns the engine's harmony memory.
func (h *Harmonizer) Memory() *Memory { return h.memory }

// Rand returns the engine's private random source. Strategies draw all
// randomness from it so runs stay reproducible.
func (h *Harmonizer) Rand() *rand.Rand { return h.rng }

// HMCR returns the memory recall rate.
func (h *Harmonizer) HMCR() float64 { return h.hmcr }

// PAR returns the pitch adjustment rate.
func (h *Harmonizer) PAR() float64 { return h.par }

// MaxIter returns the iteration budget.
func (h *Harmonizer) MaxIter() int { return h.maxIter }

// Maximize reports the optimization direction.
func (h *Harmonizer) Maximize() bool { return h.maximize }

// Seed returns the seed driving the random source and whether it was given
// explicitly rather than drawn from the clock.
func (h *Harmonizer) Seed() (int64, bool) { return h.seed, h.seeded }

// Objective returns the objective function.
func (h *Harmonizer) Objective() ObjectiveFunc { return h.objective }

// Constraint returns the constraint predicate.
func (h *Harmonizer) Constraint() ConstraintFunc { return h.constraint }

// Strategy returns the candidate-generation operator.
func (h *Harmonizer) Strategy() Strategy { return h.strategy }

// String describes the engine configuration for logs.
func (h *Harmonizer) String() string {
	return fmt.Sprintf("%s(hmcr=%.2f par=%.2f iters=%d size=%d vars=%d maximize=%t)",
		h.strategy.Describe(), h.hmcr, h.par, h.maxIter, h.memory.Size(), h.domain.NumVars(), h.maximize)
}
