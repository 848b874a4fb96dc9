package harmony

import (
	"errors"
	"testing"
)

func TestNewDomain_SortsValues(t *testing.T) {
	dom, err := NewDomain([][]float64{
		{3, 1, 2},
		{5, -5, 0},
	})
	if err != nil {
		t.Fatalf("NewDomain failed: %v", err)
	}

	if dom.NumVars() != 2 {
		t.Errorf("Expected 2 variables, got %d", dom.NumVars())
	}

	want := [][]float64{{1, 2, 3}, {-5, 0, 5}}
	for i, list := range want {
		if dom.Cardinality(i) != len(list) {
			t.Fatalf("Variable %d: expected %d values, got %d", i, len(list), dom.Cardinality(i))
		}
		for j, v := range list {
			if dom.Value(i, j) != v {
				t.Errorf("Value(%d, %d) = %v, expected %v", i, j, dom.Value(i, j), v)
			}
		}
	}
}

func TestNewDomain_DoesNotRetainInput(t *testing.T) {
	raw := [][]float64{{2, 1}}
	dom, err := NewDomain(raw)
	if err != nil {
		t.Fatalf("NewDomain failed: %v", err)
	}

	// The input must stay untouched and later edits must not leak in.
	if raw[0][0] != 2 || raw[0][1] != 1 {
		t.Error("NewDomain modified its input")
	}
	raw[0][0] = 99
	if dom.Value(0, 0) != 1 {
		t.Error("Domain aliases caller storage")
	}
}

func TestNewDomain_EmptyVariable(t *testing.T) {
	_, err := NewDomain([][]float64{{1, 2}, {}})
	if err == nil {
		t.Fatal("Expected error for a variable with no admissible values")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("Expected ValidationError, got %T: %v", err, err)
	}
}

func TestNewDomain_ZeroVariables(t *testing.T) {
	dom, err := NewDomain(nil)
	if err != nil {
		t.Fatalf("NewDomain(nil) failed: %v", err)
	}
	if dom.NumVars() != 0 {
		t.Errorf("Expected 0 variables, got %d", dom.NumVars())
	}
}

func TestDomain_ValuesReturnsCopy(t *testing.T) {
	dom, err := NewDomain([][]float64{{1, 2, 3}})
	if err != nil {
		t.Fatalf("NewDomain failed: %v", err)
	}

	vals := dom.Values(0)
	vals[0] = 42
	if dom.Value(0, 0) != 1 {
		t.Error("Values should return a copy, not a view")
	}
}

func TestDomain_SpecDeepCopy(t *testing.T) {
	dom, err := NewDomain([][]float64{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatalf("NewDomain failed: %v", err)
	}

	spec := dom.Spec()
	spec[0][0] = 42
	if dom.Value(0, 0) != 1 {
		t.Error("Spec should be a deep copy")
	}

	// Round-trip through NewDomain reproduces the same values.
	again, err := NewDomain(dom.Spec())
	if err != nil {
		t.Fatalf("Round-trip NewDomain failed: %v", err)
	}
	for i := 0; i < dom.NumVars(); i++ {
		if !EqualSlice(again.Values(i), dom.Values(i)) {
			t.Errorf("Round-trip changed variable %d", i)
		}
	}
}

func TestDomain_NearestIndex(t *testing.T) {
	dom, err := NewDomain([][]float64{{0, 1, 2, 3}})
	if err != nil {
		t.Fatalf("NewDomain failed: %v", err)
	}

	// Out-of-range values clamp to the edges, exact values hit their own
	// index, and the 0.5 midpoint tie resolves to the lower index.
	tests := []struct {
		v        float64
		expected int
	}{
		{-10, 0},
		{0, 0},
		{0.4, 0},
		{0.5, 0},
		{0.6, 1},
		{2, 2},
		{2.9, 3},
		{100, 3},
	}

	for _, tt := range tests {
		if got := dom.NearestIndex(0, tt.v); got != tt.expected {
			t.Errorf("NearestIndex(0, %v) = %d, expected %d", tt.v, got, tt.expected)
		}
	}
}
