package opt

import (
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/harmonysearch/internal/harmony"
)

// MultiStart runs several independent searches with derived seeds and keeps
// the best outcome. Restart i runs with seed BaseSeed+i, so a fixed base
// seed replays the whole batch; restart 0 matches a plain single run with
// the same seed. Objective and constraint must be safe for concurrent calls.
type MultiStart struct {
	// Restarts is the number of independent runs; values below 2 degrade to
	// a single run.
	Restarts int
	// Parallel caps concurrent runs. Zero means one per CPU.
	Parallel int
	// BaseSeed derives the per-restart seeds. At or below zero, a clock
	// seed is drawn once for the batch.
	BaseSeed int64
	// Maximize picks the comparison direction when choosing the winner.
	Maximize bool
	// Factory builds the backend for one restart.
	Factory func(seed int64) (Optimizer, error)
}

// Run executes the batch and returns the winning outcome. Ties keep the
// earliest restart.
func (ms *MultiStart) Run(objective harmony.ObjectiveFunc, constraint harmony.ConstraintFunc, domain [][]float64) (*Outcome, error) {
	if ms.Factory == nil {
		return nil, fmt.Errorf("multistart: no backend factory")
	}
	base := ms.BaseSeed
	if base <= 0 {
		base = time.Now().UnixNano()
	}
	n := ms.Restarts
	if n < 2 {
		o, err := ms.Factory(base)
		if err != nil {
			return nil, err
		}
		return o.Run(objective, constraint, domain)
	}

	limit := ms.Parallel
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]*Outcome, n)
	var g errgroup.Group
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			o, err := ms.Factory(base + int64(i))
			if err != nil {
				return fmt.Errorf("restart %d: %w", i, err)
			}
			out, err := o.Run(objective, constraint, domain)
			if err != nil {
				return fmt.Errorf("restart %d: %w", i, err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := outcomes[0]
	for _, out := range outcomes[1:] {
		if ms.better(out.BestCost, best.BestCost) {
			best = out
		}
	}
	return best, nil
}

func (ms *MultiStart) better(a, b float64) bool {
	if ms.Maximize {
		return a > b
	}
	return a < b
}
