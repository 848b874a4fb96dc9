// Package problem catalogs benchmark objectives with ready-made discrete
// domains, so the CLI and the server can run searches by name.
package problem

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cwbudde/harmonysearch/internal/harmony"
)

// Problem couples an objective with an optional constraint and a default
// discrete domain.
type Problem struct {
	Name        string
	Description string
	Objective   harmony.ObjectiveFunc
	Constraint  harmony.ConstraintFunc
	Domain      [][]float64
}

// NumVars returns the dimensionality of the default domain.
func (p *Problem) NumVars() int { return len(p.Domain) }

// DomainFor returns the problem's domain widened or narrowed to numVars
// variables, repeating the first variable's admissible values. numVars <= 0
// keeps the default.
func (p *Problem) DomainFor(numVars int) [][]float64 {
	if numVars <= 0 || numVars == len(p.Domain) {
		return p.Domain
	}
	return UniformDomain(numVars, p.Domain[0])
}

// Get looks a problem up by name.
func Get(name string) (*Problem, error) {
	p, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown problem %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names lists the catalog in stable order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the catalog entries in Names order.
func All() []*Problem {
	names := Names()
	out := make([]*Problem, len(names))
	for i, name := range names {
		out[i] = catalog[name]
	}
	return out
}

var catalog = map[string]*Problem{
	"sphere": {
		Name:        "sphere",
		Description: "sum of squares, minimum 0 at the origin",
		Objective:   Sphere,
		Constraint:  Unconstrained,
		Domain:      UniformDomain(2, Grid(-5.12, 5.12, 41)),
	},
	"rastrigin": {
		Name:        "rastrigin",
		Description: "highly multimodal, minimum 0 at the origin",
		Objective:   Rastrigin,
		Constraint:  Unconstrained,
		Domain:      UniformDomain(2, Grid(-5.12, 5.12, 41)),
	},
	"rosenbrock": {
		Name:        "rosenbrock",
		Description: "banana valley, minimum 0 at (1,...,1)",
		Objective:   Rosenbrock,
		Constraint:  Unconstrained,
		Domain:      UniformDomain(2, Grid(-2, 2, 81)),
	},
	"ring": {
		Name:        "ring",
		Description: "sum of squares with the origin excluded: |x| norms below 1 are infeasible",
		Objective:   Sphere,
		Constraint:  RingConstraint,
		Domain:      UniformDomain(2, Grid(-5, 5, 101)),
	},
}

// Sphere is the sum of squares.
func Sphere(members []float64) float64 {
	var sum float64
	for _, v := range members {
		sum += v * v
	}
	return sum
}

// Rastrigin is the classic multimodal benchmark.
func Rastrigin(members []float64) float64 {
	sum := 10 * float64(len(members))
	for _, v := range members {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return sum
}

// Rosenbrock is the banana-valley benchmark.
func Rosenbrock(members []float64) float64 {
	var sum float64
	for i := 0; i+1 < len(members); i++ {
		d := members[i+1] - members[i]*members[i]
		e := 1 - members[i]
		sum += 100*d*d + e*e
	}
	return sum
}

// Unconstrained accepts every candidate.
func Unconstrained([]float64) bool { return false }

// RingConstraint rejects candidates whose L1 norm falls below 1, carving the
// region around the origin out of the feasible set.
func RingConstraint(members []float64) bool {
	var sum float64
	for _, v := range members {
		sum += math.Abs(v)
	}
	return sum < 1
}

// Grid returns steps evenly spaced values from min to max inclusive. The
// interpolation keeps representative points exact: Grid(-5, 5, 101) contains
// 0 and 0.5 without rounding residue.
func Grid(min, max float64, steps int) []float64 {
	if steps <= 1 {
		return []float64{min}
	}
	vals := make([]float64, steps)
	for i := range vals {
		vals[i] = min + (max-min)*float64(i)/float64(steps-1)
	}
	return vals
}

// UniformDomain repeats the same admissible values for every variable.
func UniformDomain(numVars int, values []float64) [][]float64 {
	dom := make([][]float64, numVars)
	for i := range dom {
		dom[i] = append([]float64(nil), values...)
	}
	return dom
}
