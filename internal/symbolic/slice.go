package symbolic

// BackwardSlice returns every block the given block transitively
// control- or data-depends on: the set of blocks that must be inspected
// to explain why seedBlock executes or holds the values it does.
func (p *PDG) BackwardSlice(seedBlock string) []string {
	return p.traverse(seedBlock, func(e DepEdge) (string, string) { return e.From, e.To })
}

// ForwardSlice returns every block transitively affected by seedBlock:
// the blocks whose execution or values depend on it.
func (p *PDG) ForwardSlice(seedBlock string) []string {
	return p.traverse(seedBlock, func(e DepEdge) (string, string) { return e.To, e.From })
}

// traverse walks Control+Data edges, orienting each edge with dir, doing
// a BFS closure from seed. dir(e) returns (from, to) in the direction the
// walk should follow.
func (p *PDG) traverse(seed string, dir func(DepEdge) (string, string)) []string {
	adj := map[string][]string{}
	for _, e := range append(append([]DepEdge{}, p.Control...), p.Data...) {
		from, to := dir(e)
		adj[from] = append(adj[from], to)
	}

	visited := map[string]bool{seed: true}
	queue := []string{seed}
	var out []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj[id] {
			if visited[next] {
				continue
			}
			visited[next] = true
			out = append(out, next)
			queue = append(queue, next)
		}
	}
	return out
}
