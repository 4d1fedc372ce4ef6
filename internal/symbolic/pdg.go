// Package symbolic builds the program dependence graph (PDG) on top of
// the existing control flow graph and reaching-definition style taint
// state, and layers bounded symbolic execution and a syntactic SMT
// facade over it for bug-likely path prioritization.
package symbolic

import (
	"github.com/codescalpel/codescalpel/graph/callgraph/cfg"
	"github.com/codescalpel/codescalpel/graph/callgraph/core"
)

// DepEdgeKind distinguishes control- from data-dependence edges in the PDG.
type DepEdgeKind string

const (
	EdgeControlDep DepEdgeKind = "ControlDep"
	EdgeDataDep    DepEdgeKind = "DataDep"
)

// DepEdge is one PDG edge: From depends on To under Kind.
type DepEdge struct {
	From string
	To   string
	Kind DepEdgeKind
	// Var is populated for data-dependence edges: the variable carrying
	// the dependency.
	Var string
}

// PDG is the program dependence graph for one function: its vertices are
// CFG block ids, annotated with the statements the block carries.
type PDG struct {
	FunctionFQN string
	Blocks      map[string]*cfg.BasicBlock
	Statements  map[string][]*core.Statement // blockID -> statements it contains, in order
	Control     []DepEdge
	Data        []DepEdge

	postDom map[string][]string // blockID -> set of blocks that postdominate it
}

// Build constructs the PDG for a function's CFG and per-block statement
// lists. Control dependence comes from the post-dominator tree (a block B
// is control-dependent on a conditional C if C has a successor that does
// not postdominate B, i.e. B's execution depends on which branch C took);
// data dependence comes from a direct reaching-definitions walk over
// Def/Uses, the same fields the intraprocedural taint analyzer already
// reads.
func Build(g *cfg.ControlFlowGraph, statements map[string][]*core.Statement) *PDG {
	p := &PDG{
		FunctionFQN: g.FunctionFQN,
		Blocks:      g.Blocks,
		Statements:  statements,
	}
	p.postDom = computePostDominators(g)
	p.Control = controlDependences(g, p.postDom)
	p.Data = dataDependences(g, statements)
	return p
}

// computePostDominators computes, for every block, the set of blocks
// that postdominate it — every path from that block to the exit passes
// through each member of the set. This is the same iterative fixed-point
// algorithm ControlFlowGraph.ComputeDominators uses, run over the
// reversed graph (successors become predecessors) with the exit block as
// the root instead of the entry block; cfg.ControlFlowGraph does not
// expose this directly.
func computePostDominators(g *cfg.ControlFlowGraph) map[string][]string {
	ids := make([]string, 0, len(g.Blocks))
	for id := range g.Blocks {
		ids = append(ids, id)
	}

	postDom := make(map[string][]string, len(ids))
	postDom[g.ExitBlockID] = []string{g.ExitBlockID}
	for _, id := range ids {
		if id != g.ExitBlockID {
			postDom[id] = append([]string{}, ids...)
		}
	}

	changed := true
	for changed {
		changed = false
		for _, id := range ids {
			if id == g.ExitBlockID {
				continue
			}
			succs := g.Blocks[id].Successors
			if len(succs) == 0 {
				continue
			}
			next := append([]string{}, postDom[succs[0]]...)
			for i := 1; i < len(succs); i++ {
				next = intersect(next, postDom[succs[i]])
			}
			if !contains(next, id) {
				next = append(next, id)
			}
			if !setEqual(postDom[id], next) {
				postDom[id] = next
				changed = true
			}
		}
	}
	return postDom
}

// controlDependences derives control-dependence edges from the post-
// dominator sets: a branch block B is control-dependent-source for
// successor S, and every block on the path from S to the first block
// that postdominates B is control-dependent on B.
func controlDependences(g *cfg.ControlFlowGraph, postDom map[string][]string) []DepEdge {
	var edges []DepEdge
	for id, block := range g.Blocks {
		if len(block.Successors) < 2 {
			continue // only branch points introduce control dependence
		}
		for _, succ := range block.Successors {
			for _, dependent := range reachableUntilPostDominated(g, succ, id, postDom) {
				edges = append(edges, DepEdge{From: dependent, To: id, Kind: EdgeControlDep})
			}
		}
	}
	return edges
}

// reachableUntilPostDominated walks forward from start, collecting every
// block reached before a block that postdominates branchID is hit — those
// are exactly the blocks whose execution is controlled by branchID's
// outcome.
func reachableUntilPostDominated(g *cfg.ControlFlowGraph, start, branchID string, postDom map[string][]string) []string {
	var out []string
	visited := map[string]bool{}
	var walk func(id string)
	walk = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		if contains(postDom[branchID], id) {
			return
		}
		out = append(out, id)
		for _, succ := range g.Blocks[id].Successors {
			walk(succ)
		}
	}
	walk(start)
	return out
}

// dataDependences links a use of a variable to its most recent definition
// reaching it along the CFG, per block, via a straightforward forward
// reaching-definitions walk seeded at function entry.
func dataDependences(g *cfg.ControlFlowGraph, statements map[string][]*core.Statement) []DepEdge {
	reaching := map[string]string{} // varName -> defining blockID, latest seen in traversal order
	var edges []DepEdge

	order := topoOrder(g)
	for _, blockID := range order {
		for _, stmt := range statements[blockID] {
			for _, use := range stmt.Uses {
				if defBlock, ok := reaching[use]; ok && defBlock != blockID {
					edges = append(edges, DepEdge{From: blockID, To: defBlock, Kind: EdgeDataDep, Var: use})
				}
			}
			if stmt.Def != "" {
				reaching[stmt.Def] = blockID
			}
		}
	}
	return edges
}

// topoOrder returns blocks in a BFS order starting at entry, a stable
// approximation of program order sufficient for a single forward
// reaching-definitions pass over acyclic and loop-bearing CFGs alike
// (loop back-edges simply revisit a definition already recorded).
func topoOrder(g *cfg.ControlFlowGraph) []string {
	var order []string
	visited := map[string]bool{}
	queue := []string{g.EntryBlockID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		order = append(order, id)
		if block, ok := g.Blocks[id]; ok {
			queue = append(queue, block.Successors...)
		}
	}
	return order
}

func intersect(a, b []string) []string {
	out := []string{}
	set := make(map[string]bool, len(b))
	for _, x := range b {
		set[x] = true
	}
	for _, x := range a {
		if set[x] {
			out = append(out, x)
		}
	}
	return out
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func setEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, x := range a {
		set[x] = true
	}
	for _, x := range b {
		if !set[x] {
			return false
		}
	}
	return true
}
