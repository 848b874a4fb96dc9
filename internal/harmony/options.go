package harmony

// Default engine parameters, matching the common parameterization of the
// algorithm.
const (
	DefaultHMCR       = 0.9
	DefaultPAR        = 0.2
	DefaultMaxIter    = 1000
	DefaultMemorySize = 100
)

// Option adjusts engine configuration, both at construction and on a live
// engine through Set. Each option records that its field was explicitly
// given, so Set can tell "not mentioned" apart from "set to the current
// value".
type Option func(*settings)

type field uint16

const (
	fieldDomain field = 1 << iota
	fieldMemorySize
	fieldObjective
	fieldConstraint
	fieldHMCR
	fieldPAR
	fieldMaxIter
	fieldSeed
	fieldMaximize
	fieldObserver
)

// rebuildFields force a full engine reconstruction when changed on a live
// engine, since they shape the domain or the memory arena.
const rebuildFields = fieldDomain | fieldMemorySize | fieldObjective | fieldConstraint

type settings struct {
	domain     [][]float64
	memorySize int
	objective  ObjectiveFunc
	constraint ConstraintFunc
	strategy   Strategy
	hmcr       float64
	par        float64
	maxIter    int
	seed       int64
	seeded     bool
	maximize   bool
	observer   ObserverFunc
	changed    field
}

func defaultSettings() settings {
	return settings{
		memorySize: DefaultMemorySize,
		hmcr:       DefaultHMCR,
		par:        DefaultPAR,
		maxIter:    DefaultMaxIter,
	}
}

func (s *settings) mark(f field)     { s.changed |= f }
func (s *settings) has(f field) bool { return s.changed&f != 0 }

// WithDomain sets the admissible values per decision variable. The engine
// copies and sorts the lists; each variable needs at least one value.
func WithDomain(values [][]float64) Option {
	return func(s *settings) {
		s.domain = values
		s.mark(fieldDomain)
	}
}

// WithMemorySize sets the number of candidate slots in the harmony memory.
func WithMemorySize(size int) Option {
	return func(s *settings) {
		s.memorySize = size
		s.mark(fieldMemorySize)
	}
}

// WithObjective replaces the objective function.
func WithObjective(fn ObjectiveFunc) Option {
	return func(s *settings) {
		s.objective = fn
		s.mark(fieldObjective)
	}
}

// WithConstraint replaces the constraint predicate.
func WithConstraint(fn ConstraintFunc) Option {
	return func(s *settings) {
		s.constraint = fn
		s.mark(fieldConstraint)
	}
}

// WithHMCR sets the memory recall rate in [0,1].
func WithHMCR(rate float64) Option {
	return func(s *settings) {
		s.hmcr = rate
		s.mark(fieldHMCR)
	}
}

// WithPAR sets the pitch adjustment rate in [0,1].
func WithPAR(rate float64) Option {
	return func(s *settings) {
		s.par = rate
		s.mark(fieldPAR)
	}
}

// WithMaxIter sets the iteration budget for Search.
func WithMaxIter(n int) Option {
	return func(s *settings) {
		s.maxIter = n
		s.mark(fieldMaxIter)
	}
}

// WithSeed fixes the random source, making runs reproducible. Without it the
// engine seeds itself from the clock.
func WithSeed(seed int64) Option {
	return func(s *settings) {
		s.seed = seed
		s.seeded = true
		s.mark(fieldSeed)
	}
}

// WithMaximize sets the optimization direction; the default is minimization.
func WithMaximize(maximize bool) Option {
	return func(s *settings) {
		s.maximize = maximize
		s.mark(fieldMaximize)
	}
}

// WithObserver registers a callback invoked once per search iteration with
// the 1-based iteration number and the best cost after that iteration. The
// callback runs synchronously on the search goroutine and must not mutate
// the engine.
func WithObserver(fn ObserverFunc) Option {
	return func(s *settings) {
		s.observer = fn
		s.mark(fieldObserver)
	}
}
