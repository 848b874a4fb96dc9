package strategy

import (
	"fmt"

	"github.com/cwbudde/harmonysearch/internal/harmony"
)

// maxSeedAttempts bounds how many random draws a single memory slot gets
// before seeding gives up on finding a feasible candidate.
const maxSeedAttempts = 100

// SeedRandom fills every memory slot of h with a uniformly random admissible
// vector, scores each through the engine's strategy, and sorts the memory
// once in the engine's direction. The constraint is honored: each slot draws
// until it finds a feasible candidate or runs out of attempts.
func SeedRandom(h *harmony.Harmonizer) error {
	dom := h.Domain()
	mem := h.Memory()
	if mem.Size() == 0 || dom.NumVars() == 0 {
		return &harmony.StateError{Op: "seed", Reason: "engine has no memory slots or no decision variables"}
	}
	rng := h.Rand()
	strat := h.Strategy()
	members := make([]float64, dom.NumVars())
	for slot := 0; slot < mem.Size(); slot++ {
		feasible := false
		for attempt := 0; attempt < maxSeedAttempts; attempt++ {
			for i := range members {
				members[i] = dom.Value(i, rng.Intn(dom.Cardinality(i)))
			}
			if !strat.ViolateConstraint(h, members) {
				feasible = true
				break
			}
		}
		if !feasible {
			return fmt.Errorf("seed slot %d: no feasible candidate in %d attempts", slot, maxSeedAttempts)
		}
		mem.Set(slot, members, strat.CalcCost(h, members))
	}
	mem.Sort(h.Maximize())
	return nil
}
