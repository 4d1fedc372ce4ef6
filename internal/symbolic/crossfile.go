package symbolic

import "github.com/codescalpel/codescalpel/graph/callgraph/core"

// CalleeSummary is the precomputed, file-independent taint effect of a
// function: which parameters reach the return value or a sink untouched
// by a sanitizer. Cross-file taint propagation consults these instead of
// re-analyzing a callee's body at every call site.
type CalleeSummary struct {
	FunctionFQN      string
	TaintedParams    map[int]bool // parameter index -> becomes part of a tainted value
	ReturnIsTainted  bool         // true if any tainted param reaches the return value
	ReachesSinkParam map[int]bool // parameter index -> reaches a sink internally
}

// SummaryTable holds one CalleeSummary per analyzed function, built
// bottom-up over the call graph.
type SummaryTable struct {
	summaries map[string]*CalleeSummary
	inProgress map[string]bool
}

// NewSummaryTable returns an empty table.
func NewSummaryTable() *SummaryTable {
	return &SummaryTable{
		summaries:  make(map[string]*CalleeSummary),
		inProgress: make(map[string]bool),
	}
}

// Get returns the summary for fqn, or a conservative bottom summary
// (every parameter clean, nothing reaches the return or a sink) if the
// function has not been summarized yet — the cycle-breaking assumption
// for recursive or mutually-recursive call chains, so a call back into a
// function still being summarized never causes infinite recursion. No
// taint is propagated across such a back edge, so a single pass can miss
// taint that only a fixed point over repeated summarization would find.
func (t *SummaryTable) Get(fqn string) *CalleeSummary {
	if s, ok := t.summaries[fqn]; ok {
		return s
	}
	return &CalleeSummary{FunctionFQN: fqn, TaintedParams: map[int]bool{}, ReachesSinkParam: map[int]bool{}}
}

// BuildBottomUp computes summaries for every function listed in order, in
// reverse topological order (callees before callers) using summarize, breaking
// cycles with the bottom assumption in Get. order must list functions
// with callees preceding their callers wherever the call graph is
// acyclic; cyclic SCCs are summarized once each in the order given and
// accept the precision loss from the bottom assumption on the back edge.
func (t *SummaryTable) BuildBottomUp(cg *core.CallGraph, order []string, summarize func(fqn string, t *SummaryTable) *CalleeSummary) {
	for _, fqn := range order {
		t.inProgress[fqn] = true
		t.summaries[fqn] = summarize(fqn, t)
		t.inProgress[fqn] = false
	}
}

// PropagateCallSite determines whether a call site's arguments carry
// taint into the caller, consulting the callee's precomputed summary
// rather than re-walking the callee body.
func PropagateCallSite(summary *CalleeSummary, argIsTainted []bool) (resultTainted bool, sinkHit bool) {
	for i, tainted := range argIsTainted {
		if !tainted {
			continue
		}
		if summary.TaintedParams[i] {
			resultTainted = resultTainted || summary.ReturnIsTainted
		}
		if summary.ReachesSinkParam[i] {
			sinkHit = true
		}
	}
	return resultTainted, sinkHit
}
