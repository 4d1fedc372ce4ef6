package core

import "sort"

// edgeKindPriority orders edge kinds for k_hop's deterministic tie-break:
// direct evidence outranks inferred or dependency-only evidence.
var edgeKindPriority = map[EdgeKind]int{
	EdgeKindDirectCall:       0,
	EdgeKindTaint:            1,
	EdgeKindControlDep:       2,
	EdgeKindDataDep:          3,
	EdgeKindHTTPExactMatch:   4,
	EdgeKindHTTPPatternMatch: 5,
	EdgeKindHTTPDynamicRoute: 6,
	EdgeKindInferredType:     7,
	EdgeKindImportDependency: 8,
}

// Direction selects which side of a TypedEdge k_hop expands along.
type Direction string

const (
	DirectionForward  Direction = "forward"  // follow edges From -> To
	DirectionBackward Direction = "backward" // follow edges To -> From
	DirectionBoth     Direction = "both"
)

// KHop returns the subgraph reachable from seed within k hops along
// direction, as a deterministically ordered slice of TypedEdge: sorted
// by confidence descending, then edge-kind priority, then lexicographic
// node id, so two runs over the same CallGraph always produce the same
// order regardless of map iteration.
func KHop(cg *CallGraph, seed string, k int, direction Direction) []TypedEdge {
	visited := map[string]bool{seed: true}
	frontier := []string{seed}
	var collected []TypedEdge

	forward := make(map[string][]TypedEdge)
	backward := make(map[string][]TypedEdge)
	for _, e := range cg.TypedEdges {
		forward[e.From] = append(forward[e.From], e)
		backward[e.To] = append(backward[e.To], e)
	}

	for hop := 0; hop < k && len(frontier) > 0; hop++ {
		var next []string
		for _, node := range frontier {
			if direction == DirectionForward || direction == DirectionBoth {
				for _, e := range forward[node] {
					collected = append(collected, e)
					if !visited[e.To] {
						visited[e.To] = true
						next = append(next, e.To)
					}
				}
			}
			if direction == DirectionBackward || direction == DirectionBoth {
				for _, e := range backward[node] {
					collected = append(collected, e)
					if !visited[e.From] {
						visited[e.From] = true
						next = append(next, e.From)
					}
				}
			}
		}
		frontier = next
	}

	sort.SliceStable(collected, func(i, j int) bool {
		a, b := collected[i], collected[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		pa, pb := edgeKindPriority[a.Kind], edgeKindPriority[b.Kind]
		if pa != pb {
			return pa < pb
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.From < b.From
	})
	return collected
}
