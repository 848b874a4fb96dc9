package problem

import (
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/harmonysearch/internal/harmony"
	"github.com/cwbudde/harmonysearch/internal/opt"
)

func TestGrid_SpacingAndExactness(t *testing.T) {
	g := Grid(-5, 5, 101)
	if len(g) != 101 {
		t.Fatalf("Expected 101 values, got %d", len(g))
	}
	if g[0] != -5 || g[100] != 5 {
		t.Errorf("Endpoints should be inclusive, got %v and %v", g[0], g[100])
	}
	if g[50] != 0 {
		t.Errorf("Midpoint should be exactly 0, got %v", g[50])
	}
	if g[55] != 0.5 {
		t.Errorf("Expected exactly 0.5 at index 55, got %v", g[55])
	}
	for i := 1; i < len(g); i++ {
		if g[i] <= g[i-1] {
			t.Fatalf("Grid not strictly ascending at %d: %v then %v", i-1, g[i-1], g[i])
		}
	}
}

func TestGrid_Degenerate(t *testing.T) {
	if g := Grid(3, 9, 1); len(g) != 1 || g[0] != 3 {
		t.Errorf("Single step should collapse to the minimum, got %v", g)
	}
	if g := Grid(7, 7, 0); len(g) != 1 || g[0] != 7 {
		t.Errorf("Zero steps should collapse to the minimum, got %v", g)
	}
	if g := Grid(0, 1, 2); len(g) != 2 || g[0] != 0 || g[1] != 1 {
		t.Errorf("Two steps should be the endpoints, got %v", g)
	}
}

func TestUniformDomain_IndependentCopies(t *testing.T) {
	dom := UniformDomain(3, []float64{1, 2, 3})
	if len(dom) != 3 {
		t.Fatalf("Expected 3 variables, got %d", len(dom))
	}
	dom[0][0] = 99
	if dom[1][0] != 1 || dom[2][0] != 1 {
		t.Error("Variables must not share backing storage")
	}
}

func TestCatalog_Lookup(t *testing.T) {
	p, err := Get("sphere")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.Name != "sphere" || p.Objective == nil || p.Constraint == nil || len(p.Domain) == 0 {
		t.Errorf("Catalog entry incomplete: %+v", p)
	}

	_, err = Get("banana")
	if err == nil {
		t.Fatal("Expected an error for an unknown problem")
	}
	if !strings.Contains(err.Error(), "sphere") {
		t.Errorf("Error should list the known problems, got %q", err.Error())
	}
}

func TestCatalog_NamesSortedAndComplete(t *testing.T) {
	names := Names()
	want := []string{"rastrigin", "ring", "rosenbrock", "sphere"}
	if len(names) != len(want) {
		t.Fatalf("Expected %d problems, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names[%d] = %q, expected %q", i, names[i], want[i])
		}
	}

	all := All()
	for i, p := range all {
		if p.Name != names[i] {
			t.Errorf("All()[%d] = %q, expected %q", i, p.Name, names[i])
		}
	}
}

func TestObjectives_KnownValues(t *testing.T) {
	if got := Sphere([]float64{3, 4}); got != 25 {
		t.Errorf("Sphere(3,4) = %v, expected 25", got)
	}
	if got := Sphere(nil); got != 0 {
		t.Errorf("Sphere() = %v, expected 0", got)
	}
	if got := Rastrigin([]float64{0, 0}); got != 0 {
		t.Errorf("Rastrigin(0,0) = %v, expected 0", got)
	}
	if got := Rastrigin([]float64{1, 1}); !harmony.Close(got, 2) {
		t.Errorf("Rastrigin(1,1) = %v, expected 2", got)
	}
	if got := Rosenbrock([]float64{1, 1}); got != 0 {
		t.Errorf("Rosenbrock(1,1) = %v, expected 0", got)
	}
	if got := Rosenbrock([]float64{0, 0}); got != 1 {
		t.Errorf("Rosenbrock(0,0) = %v, expected 1", got)
	}
}

func TestRingConstraint_CarvesOutOrigin(t *testing.T) {
	tests := []struct {
		members  []float64
		violated bool
	}{
		{[]float64{0, 0}, true},
		{[]float64{0.4, 0.5}, true},
		{[]float64{-0.4, 0.5}, true},
		{[]float64{0.5, 0.5}, false},
		{[]float64{1, 0}, false},
		{[]float64{-0.6, 0.5}, false},
	}
	for _, tt := range tests {
		if got := RingConstraint(tt.members); got != tt.violated {
			t.Errorf("RingConstraint(%v) = %t, expected %t", tt.members, got, tt.violated)
		}
	}
}

func TestDomainFor_WidensAndNarrows(t *testing.T) {
	p, err := Get("sphere")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got := p.DomainFor(0); len(got) != p.NumVars() {
		t.Errorf("Zero vars should keep the default, got %d variables", len(got))
	}
	if got := p.DomainFor(5); len(got) != 5 {
		t.Errorf("Expected 5 variables, got %d", len(got))
	}
	got := p.DomainFor(1)
	if len(got) != 1 {
		t.Fatalf("Expected 1 variable, got %d", len(got))
	}
	if len(got[0]) != len(p.Domain[0]) {
		t.Error("Widened variables should repeat the first variable's values")
	}
}

func TestRingProblem_SolvableUnderConstraint(t *testing.T) {
	p, err := Get("ring")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	o := opt.NewHarmony(opt.EngineConfig{Iterations: 20000, MemorySize: 30, Seed: 42}, nil)

	out, err := o.Run(p.Objective, p.Constraint, p.Domain)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var l1 float64
	for _, v := range out.Best {
		l1 += math.Abs(v)
	}
	if l1 < 1 {
		t.Errorf("Best %v violates the ring constraint", out.Best)
	}
	// The feasible grid minimum is 0.5 at (+-0.5, +-0.5); allow the two
	// nearest boundary cells as convergence slack.
	if out.BestCost > 0.58 {
		t.Errorf("Expected a near-boundary minimum, got %v at %v", out.BestCost, out.Best)
	}
}
