package harmony

import "math"

// Relative tolerances for the three comparison levels. Costs are float64
// throughout; the looser levels are anchored to single precision so costs
// that differ only by accumulated rounding noise still match.
const (
	equalRTol   = 0x1p-52        // float64 machine epsilon
	closeRTol   = 0x1p-23        // float32 machine epsilon
	similarRTol = 0x1p-23 * 1000 // dedup tolerance for near-identical solutions
)

// absTol is the absolute floor applied by every comparison, so values near
// zero do not have to match to full relative precision.
const absTol = 1e-8

// Equal reports whether a and b match within double-precision tolerance.
// Convergence checks use this, the strictest level.
func Equal(a, b float64) bool { return within(a, b, equalRTol) }

// Close reports whether a and b match within single-precision tolerance.
func Close(a, b float64) bool { return within(a, b, closeRTol) }

// Similar reports whether a and b match within the coarse tolerance used to
// treat two solutions as duplicates of each other.
func Similar(a, b float64) bool { return within(a, b, similarRTol) }

// EqualSlice reports whether two vectors match element-wise within
// double-precision tolerance. Vectors of different lengths never match.
func EqualSlice(a, b []float64) bool { return withinSlice(a, b, equalRTol) }

// CloseSlice reports whether two vectors match element-wise within
// single-precision tolerance.
func CloseSlice(a, b []float64) bool { return withinSlice(a, b, closeRTol) }

// SimilarSlice reports whether two vectors match element-wise within the
// solution-dedup tolerance.
func SimilarSlice(a, b []float64) bool { return withinSlice(a, b, similarRTol) }

// within is the allclose predicate shared by all levels:
// |a-b| <= absTol + rtol*|b|. Identical values short-circuit, which also
// makes same-signed infinities compare equal; any other infinity never
// matches, and neither does NaN.
func within(a, b, rtol float64) bool {
	if a == b {
		return true
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	return math.Abs(a-b) <= absTol+rtol*math.Abs(b)
}

func withinSlice(a, b []float64, rtol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !within(a[i], b[i], rtol) {
			return false
		}
	}
	return true
}
