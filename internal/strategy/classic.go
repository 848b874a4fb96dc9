// Package strategy provides the candidate-generation operators the harmony
// engine loops on, plus the random seeding that fills a fresh memory.
package strategy

import (
	"math/rand"

	"github.com/cwbudde/harmonysearch/internal/harmony"
)

// Classic is the canonical harmony search operator. Per variable it recalls
// the value at a uniformly random memory rank with probability hmcr,
// pitch-adjusts the recalled value to an adjacent admissible value with
// probability par, and otherwise draws a uniformly random admissible value.
type Classic struct {
	objectiveScoring
}

// SelectMembers improvises one candidate vector.
func (Classic) SelectMembers(h *harmony.Harmonizer) []float64 {
	dom := h.Domain()
	mem := h.Memory()
	rng := h.Rand()
	members := make([]float64, dom.NumVars())
	for i := range members {
		if rng.Float64() < h.HMCR() {
			v := mem.Vector(rng.Intn(mem.Size()))[i]
			if rng.Float64() < h.PAR() {
				v = pitchAdjust(dom, rng, i, v)
			}
			members[i] = v
		} else {
			members[i] = dom.Value(i, rng.Intn(dom.Cardinality(i)))
		}
	}
	return members
}

// Describe names the operator.
func (Classic) Describe() string { return "classic" }

// pitchAdjust steps a recalled value one admissible index up or down,
// clamping at the domain edges.
func pitchAdjust(dom *harmony.Domain, rng *rand.Rand, i int, v float64) float64 {
	idx := dom.NearestIndex(i, v)
	if rng.Intn(2) == 0 {
		idx--
	} else {
		idx++
	}
	if idx < 0 {
		idx = 0
	}
	if last := dom.Cardinality(i) - 1; idx > last {
		idx = last
	}
	return dom.Value(i, idx)
}

// objectiveScoring supplies the cost and constraint hooks shared by the
// operators in this package: both delegate straight to the engine's
// configured functions.
type objectiveScoring struct{}

// CalcCost scores a candidate with the engine's objective.
func (objectiveScoring) CalcCost(h *harmony.Harmonizer, members []float64) float64 {
	return h.Objective()(members)
}

// ViolateConstraint checks a candidate against the engine's constraint.
func (objectiveScoring) ViolateConstraint(h *harmony.Harmonizer, members []float64) bool {
	return h.Constraint()(members)
}
