package symbolic

import (
	"container/heap"
)

// ValueSummary is a guarded union of possible symbolic values for one
// variable: each case only holds under its Guard (a path-condition
// conjunct), and multiple cases may be live simultaneously after a merge
// at a control-flow join point.
type ValueSummary struct {
	Cases []GuardedValue
}

// GuardedValue pairs a symbolic expression with the path condition under
// which it holds.
type GuardedValue struct {
	Guard string
	Value string
}

// MergeValueSummary merges two summaries at a CFG join point into their
// guarded union; it never collapses cases, so precision degrades only
// when the same (guard, value) pair is already present.
func MergeValueSummary(a, b ValueSummary) ValueSummary {
	out := ValueSummary{Cases: append([]GuardedValue{}, a.Cases...)}
	seen := make(map[GuardedValue]bool, len(a.Cases))
	for _, c := range a.Cases {
		seen[c] = true
	}
	for _, c := range b.Cases {
		if !seen[c] {
			out.Cases = append(out.Cases, c)
			seen[c] = true
		}
	}
	return out
}

// State is one symbolic execution path: a program counter (CFG block
// id), a variable store of guarded-union summaries, an accumulated path
// condition, exploration depth, and the state it forked from (nil for
// the initial state at function entry).
type State struct {
	PC         string
	Store      map[string]ValueSummary
	PathCond   []string
	Depth      int
	ForkedFrom *State
}

// Fork produces a child state at a new PC with an extra path-condition
// conjunct, sharing the parent's store by guarded-union merge semantics
// (copy-on-write at the map level since callers only ever add entries).
func (s *State) Fork(pc, condition string) *State {
	store := make(map[string]ValueSummary, len(s.Store))
	for k, v := range s.Store {
		store[k] = v
	}
	cond := append(append([]string{}, s.PathCond...), condition)
	return &State{PC: pc, Store: store, PathCond: cond, Depth: s.Depth + 1, ForkedFrom: s}
}

// priority scores a state for the Bug-Likely scheduler: states closer to
// a sink, in more complex (higher-cyclomatic) code, and shallower in the
// exploration tree are explored first.
//
//	priority = wSink*(1/distToSink) + wCplx*cyclomatic + wDepth*(-depth)
func priority(distToSink int, cyclomatic int, depth int, wSink, wCplx, wDepth float64) float64 {
	sinkTerm := 0.0
	if distToSink > 0 {
		sinkTerm = wSink * (1.0 / float64(distToSink))
	} else if distToSink == 0 {
		sinkTerm = wSink // already at the sink
	}
	return sinkTerm + wCplx*float64(cyclomatic) - wDepth*float64(depth)
}

// scheduledState is one entry in the Bug-Likely priority queue.
type scheduledState struct {
	state      *State
	distToSink int
	cyclomatic int
	score      float64
}

type stateHeap []*scheduledState

func (h stateHeap) Len() int            { return len(h) }
func (h stateHeap) Less(i, j int) bool  { return h[i].score > h[j].score } // max-heap: highest priority first
func (h stateHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *stateHeap) Push(x interface{}) { *h = append(*h, x.(*scheduledState)) }
func (h *stateHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Weights configures the Bug-Likely priority heuristic.
type Weights struct {
	Sink  float64
	Cplx  float64
	Depth float64
}

// DefaultWeights favors proximity to a sink, then code complexity, then
// shallower paths — matching the intuition that short, complex routes to
// a sink are the highest-value ones to explore first under a budget.
var DefaultWeights = Weights{Sink: 10.0, Cplx: 1.0, Depth: 0.1}

// BudgetExhausted is returned by Explore when the step budget runs out
// before the frontier empties; remaining is the count of unexplored
// frontier states at the point execution stopped.
type BudgetExhausted struct {
	Remaining int
}

func (w *BudgetExhausted) Error() string {
	return "symbolic execution budget exhausted"
}

// DistanceFn returns an estimated distance (in CFG hops) from a block to
// the nearest sink, and that block's cyclomatic complexity contribution,
// used to rank frontier states.
type DistanceFn func(blockID string) (distToSink, cyclomatic int)

// Explore runs bounded, priority-ordered symbolic execution from an
// initial state. step is called on the highest-priority frontier state
// and returns its successor states (forked children, or none at a path's
// end); those are re-scored and pushed back onto the frontier. It
// returns *BudgetExhausted (not a plain error) if the budget is
// exhausted before the frontier empties, so callers can distinguish
// "exhausted" from a hard failure and still use whatever partial results
// step already produced.
func Explore(initial *State, budget int, dist DistanceFn, w Weights, step func(*State) []*State) error {
	h := &stateHeap{}
	heap.Init(h)
	push := func(s *State) {
		d, c := dist(s.PC)
		heap.Push(h, &scheduledState{
			state:      s,
			distToSink: d,
			cyclomatic: c,
			score:      priority(d, c, s.Depth, w.Sink, w.Cplx, w.Depth),
		})
	}
	push(initial)

	steps := 0
	for h.Len() > 0 {
		if steps >= budget {
			return &BudgetExhausted{Remaining: h.Len()}
		}
		item := heap.Pop(h).(*scheduledState)
		steps++
		for _, child := range step(item.state) {
			push(child)
		}
	}
	return nil
}
