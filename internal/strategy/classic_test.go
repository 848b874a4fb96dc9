package strategy

import (
	"testing"

	"github.com/cwbudde/harmonysearch/internal/harmony"
)

func sphere(members []float64) float64 {
	var sum float64
	for _, v := range members {
		sum += v * v
	}
	return sum
}

func unconstrained([]float64) bool { return false }

// newEngine builds an engine on the {0..5}x{0..5} grid with 5 memory slots
// and a fixed seed. Tests override through opts.
func newEngine(t *testing.T, strat harmony.Strategy, opts ...harmony.Option) *harmony.Harmonizer {
	t.Helper()
	base := []harmony.Option{
		harmony.WithDomain([][]float64{{0, 1, 2, 3, 4, 5}, {0, 1, 2, 3, 4, 5}}),
		harmony.WithMemorySize(5),
		harmony.WithSeed(42),
	}
	h, err := harmony.New(sphere, unconstrained, strat, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return h
}

func assertAdmissible(t *testing.T, dom *harmony.Domain, members []float64) {
	t.Helper()
	if len(members) != dom.NumVars() {
		t.Fatalf("Candidate has %d variables, domain has %d", len(members), dom.NumVars())
	}
	for i, v := range members {
		found := false
		for _, want := range dom.Values(i) {
			if v == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Variable %d holds inadmissible value %v", i, v)
		}
	}
}

func TestClassic_CandidatesAdmissible(t *testing.T) {
	h := newEngine(t, Classic{})
	if err := SeedRandom(h); err != nil {
		t.Fatalf("SeedRandom failed: %v", err)
	}

	for n := 0; n < 200; n++ {
		assertAdmissible(t, h.Domain(), Classic{}.SelectMembers(h))
	}
}

func TestClassic_RecallOnlyDrawsFromMemory(t *testing.T) {
	h := newEngine(t, Classic{},
		harmony.WithMemorySize(3), harmony.WithHMCR(1), harmony.WithPAR(0))
	m := h.Memory()
	m.Set(0, []float64{1, 2}, sphere([]float64{1, 2}))
	m.Set(1, []float64{3, 4}, sphere([]float64{3, 4}))
	m.Set(2, []float64{5, 0}, sphere([]float64{5, 0}))

	allowed := [][]float64{{1, 3, 5}, {2, 4, 0}}
	for n := 0; n < 100; n++ {
		members := Classic{}.SelectMembers(h)
		for i, v := range members {
			found := false
			for _, want := range allowed[i] {
				if v == want {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("Pure recall produced %v for variable %d, not a stored value", v, i)
			}
		}
	}
}

func TestClassic_RandomOnlyIgnoresMemory(t *testing.T) {
	h := newEngine(t, Classic{}, harmony.WithMemorySize(2), harmony.WithHMCR(0))
	// Poison the memory with values outside the domain; pure random draws
	// must never surface them.
	h.Memory().Set(0, []float64{99, 99}, 0)
	h.Memory().Set(1, []float64{99, 99}, 0)

	for n := 0; n < 100; n++ {
		members := Classic{}.SelectMembers(h)
		assertAdmissible(t, h.Domain(), members)
		for i, v := range members {
			if v == 99 {
				t.Fatalf("Variable %d recalled from memory despite hmcr 0", i)
			}
		}
	}
}

func TestClassic_PitchAdjustStepsOneIndex(t *testing.T) {
	// With hmcr 1 and par 1 every value is a recalled value moved one
	// admissible index, so a mid-grid 3 may only become 2 or 4 and the edges
	// clamp.
	h := newEngine(t, Classic{}, harmony.WithMemorySize(1), harmony.WithHMCR(1), harmony.WithPAR(1))
	h.Memory().Set(0, []float64{3, 5}, 0)

	seen := map[int]map[float64]bool{0: {}, 1: {}}
	for n := 0; n < 100; n++ {
		members := Classic{}.SelectMembers(h)
		seen[0][members[0]] = true
		seen[1][members[1]] = true
		if members[0] != 2 && members[0] != 4 {
			t.Fatalf("Pitch from 3 produced %v, expected 2 or 4", members[0])
		}
		if members[1] != 4 && members[1] != 5 {
			t.Fatalf("Pitch from the upper edge produced %v, expected 4 or 5", members[1])
		}
	}
	if !seen[0][2] || !seen[0][4] {
		t.Error("Pitch adjustment never stepped in one of the two directions")
	}
	if !seen[1][5] {
		t.Error("Upper edge never clamped in place")
	}

	// Lower edge clamps to index zero.
	h.Memory().Set(0, []float64{0, 0}, 0)
	for n := 0; n < 100; n++ {
		members := Classic{}.SelectMembers(h)
		if members[0] != 0 && members[0] != 1 {
			t.Fatalf("Pitch from the lower edge produced %v, expected 0 or 1", members[0])
		}
	}
}

func TestClassic_FindsSphereMinimum(t *testing.T) {
	h := newEngine(t, Classic{})
	if err := SeedRandom(h); err != nil {
		t.Fatalf("SeedRandom failed: %v", err)
	}

	res, err := h.Search()
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if res.BestCost != 0 {
		t.Errorf("Expected the sphere minimum 0, got %v", res.BestCost)
	}
	if !harmony.EqualSlice(res.Best, []float64{0, 0}) {
		t.Errorf("Expected the minimum at (0,0), got %v", res.Best)
	}
	if len(res.Trace) != res.Iterations+1 {
		t.Errorf("Trace length %d does not match %d iterations", len(res.Trace), res.Iterations)
	}
	for i := 1; i < len(res.Trace); i++ {
		if res.Trace[i] > res.Trace[i-1] {
			t.Fatalf("Best cost worsened at iteration %d: %v -> %v", i, res.Trace[i-1], res.Trace[i])
		}
	}
}

func TestClassic_MultipleSearchCollapsesToOptimum(t *testing.T) {
	h := newEngine(t, Classic{}, harmony.WithMaxIter(5000))
	if err := SeedRandom(h); err != nil {
		t.Fatalf("SeedRandom failed: %v", err)
	}

	res, err := h.MultipleSearch()
	if err != nil {
		t.Fatalf("MultipleSearch failed: %v", err)
	}

	if !res.Converged {
		t.Error("Expected the memory to converge on the unique optimum")
	}
	if len(res.Solutions) != 1 {
		t.Fatalf("Expected the single optimum, got %d solutions: %v", len(res.Solutions), res.Solutions)
	}
	if !harmony.EqualSlice(res.Solutions[0], []float64{0, 0}) {
		t.Errorf("Expected (0,0), got %v", res.Solutions[0])
	}
}

func TestClassic_Deterministic(t *testing.T) {
	run := func() *harmony.Result {
		h := newEngine(t, Classic{}, harmony.WithSeed(7), harmony.WithMaxIter(300))
		if err := SeedRandom(h); err != nil {
			t.Fatalf("SeedRandom failed: %v", err)
		}
		res, err := h.Search()
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		return res
	}

	a, b := run(), run()
	if !harmony.EqualSlice(a.Trace, b.Trace) {
		t.Error("Same seed should replay the same trace")
	}
	if !harmony.EqualSlice(a.Best, b.Best) {
		t.Errorf("Same seed should find the same best: %v vs %v", a.Best, b.Best)
	}
}

func TestClassic_Describe(t *testing.T) {
	if got := (Classic{}).Describe(); got != "classic" {
		t.Errorf("Expected %q, got %q", "classic", got)
	}
}
