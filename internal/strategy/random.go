package strategy

import (
	"github.com/cwbudde/harmonysearch/internal/harmony"
)

// Random ignores the memory and improvises uniformly random admissible
// candidates. It is the baseline the classic operator gets measured against.
type Random struct {
	objectiveScoring
}

// SelectMembers draws one uniformly random admissible vector.
func (Random) SelectMembers(h *harmony.Harmonizer) []float64 {
	dom := h.Domain()
	rng := h.Rand()
	members := make([]float64, dom.NumVars())
	for i := range members {
		members[i] = dom.Value(i, rng.Intn(dom.Cardinality(i)))
	}
	return members
}

// Describe names the operator.
func (Random) Describe() string { return "random" }
