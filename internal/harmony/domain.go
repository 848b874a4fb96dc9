package harmony

import (
	"fmt"
	"sort"
)

// Domain is the catalog of admissible values for each decision variable.
// Per-variable value lists are held sorted ascending and never change after
// construction, so candidate generation can index and neighbor-step without
// revalidating.
type Domain struct {
	values [][]float64
}

// NewDomain builds a Domain from per-variable value lists. The lists are
// copied and sorted; the input is not retained or modified. A variable with
// no admissible values is a validation error. A nil or empty input yields a
// zero-variable domain.
func NewDomain(values [][]float64) (*Domain, error) {
	vs := make([][]float64, len(values))
	for i, list := range values {
		if len(list) == 0 {
			return nil, &ValidationError{
				Field:  "domain",
				Reason: fmt.Sprintf("variable %d has no admissible values", i),
			}
		}
		vs[i] = append([]float64(nil), list...)
		sort.Float64s(vs[i])
	}
	return &Domain{values: vs}, nil
}

// NumVars returns the number of decision variables.
func (d *Domain) NumVars() int { return len(d.values) }

// Cardinality returns how many admissible values variable i offers.
func (d *Domain) Cardinality(i int) int { return len(d.values[i]) }

// Value returns the j-th smallest admissible value of variable i.
func (d *Domain) Value(i, j int) float64 { return d.values[i][j] }

// Values returns a copy of the admissible values of variable i in ascending
// order.
func (d *Domain) Values(i int) []float64 {
	return append([]float64(nil), d.values[i]...)
}

// Spec returns a deep copy of the full domain specification. The result is
// safe to modify and feeds back into WithDomain unchanged.
func (d *Domain) Spec() [][]float64 {
	out := make([][]float64, len(d.values))
	for i, list := range d.values {
		out[i] = append([]float64(nil), list...)
	}
	return out
}

// NearestIndex returns the index of the admissible value of variable i
// closest to v. Ties resolve to the lower index. Pitch adjustment uses this
// to locate a recalled value before stepping to a neighbor.
func (d *Domain) NearestIndex(i int, v float64) int {
	list := d.values[i]
	j := sort.SearchFloat64s(list, v)
	if j == 0 {
		return 0
	}
	if j == len(list) {
		return len(list) - 1
	}
	if v-list[j-1] <= list[j]-v {
		return j - 1
	}
	return j
}
