package harmony

import (
	"fmt"
	"sort"
)

// Memory is the fixed-capacity, rank-ordered pool of candidates the engine
// improves on. Rank 0 holds the best candidate and Size()-1 the worst, where
// best means lowest cost when minimizing and highest when maximizing.
// Vectors live in one flat arena so insertions reduce to contiguous copies.
type Memory struct {
	size    int
	numVars int
	arena   []float64
	costs   []float64
}

// NewMemory allocates a memory with size candidate slots of numVars values
// each. size*numVars == 0 is legal: such a memory stores no vectors but
// still keeps one cost entry per slot.
func NewMemory(size, numVars int) *Memory {
	return &Memory{
		size:    size,
		numVars: numVars,
		arena:   make([]float64, size*numVars),
		costs:   make([]float64, size),
	}
}

// Size returns the number of candidate slots.
func (m *Memory) Size() int { return m.size }

// NumVars returns the number of values per candidate.
func (m *Memory) NumVars() int { return m.numVars }

// Cost returns the cost stored at rank.
func (m *Memory) Cost(rank int) float64 {
	m.check(rank)
	return m.costs[rank]
}

// Costs returns a copy of all costs in rank order.
func (m *Memory) Costs() []float64 {
	return append([]float64(nil), m.costs...)
}

// Vector returns the candidate stored at rank as a view into the arena.
// Callers that keep the slice across the next Insert, Sort, or Reverse must
// copy it first.
func (m *Memory) Vector(rank int) []float64 {
	m.check(rank)
	return m.arena[rank*m.numVars : (rank+1)*m.numVars]
}

// Set writes a candidate and its cost straight into a slot, ignoring rank
// order. Seeding uses it to fill the pool before the single Sort call.
func (m *Memory) Set(rank int, members []float64, cost float64) {
	m.check(rank)
	m.checkDim(members)
	copy(m.arena[rank*m.numVars:(rank+1)*m.numVars], members)
	m.costs[rank] = cost
}

// Insert places a candidate at rank and shifts ranks rank..Size()-2 one slot
// toward the tail; the previous worst entry falls off the end. The candidate
// slice is copied into the arena and must not alias it.
func (m *Memory) Insert(rank int, members []float64, cost float64) {
	m.check(rank)
	m.checkDim(members)
	nv := m.numVars
	copy(m.arena[(rank+1)*nv:m.size*nv], m.arena[rank*nv:(m.size-1)*nv])
	copy(m.costs[rank+1:], m.costs[rank:m.size-1])
	copy(m.arena[rank*nv:(rank+1)*nv], members)
	m.costs[rank] = cost
}

// Sort reorders the whole memory by cost, ascending for minimization and
// descending for maximization. It runs once after seeding; the search loop
// itself maintains order through Insert.
func (m *Memory) Sort(maximize bool) {
	sort.Sort(&byCost{m: m, maximize: maximize})
}

// Reverse flips the rank order in place. Flipping the optimization direction
// on an already sorted memory only needs this, never a resort.
func (m *Memory) Reverse() {
	s := &byCost{m: m}
	for i, j := 0, m.size-1; i < j; i, j = i+1, j-1 {
		s.Swap(i, j)
	}
}

func (m *Memory) check(rank int) {
	if rank < 0 || rank >= m.size {
		panic(fmt.Sprintf("memory rank %d out of range [0,%d)", rank, m.size))
	}
}

func (m *Memory) checkDim(members []float64) {
	if len(members) != m.numVars {
		panic("candidate dimension mismatch")
	}
}

// byCost sorts slots by cost, pairing each cost swap with its arena row.
type byCost struct {
	m        *Memory
	maximize bool
}

func (s *byCost) Len() int { return s.m.size }

func (s *byCost) Less(i, j int) bool {
	if s.maximize {
		return s.m.costs[i] > s.m.costs[j]
	}
	return s.m.costs[i] < s.m.costs[j]
}

func (s *byCost) Swap(i, j int) {
	m := s.m
	m.costs[i], m.costs[j] = m.costs[j], m.costs[i]
	nv := m.numVars
	a := m.arena[i*nv : (i+1)*nv]
	b := m.arena[j*nv : (j+1)*nv]
	for k := range a {
		a[k], b[k] = b[k], a[k]
	}
}
