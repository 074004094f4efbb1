package cfg

// TraverseEdges takes a Func and applies visit to each edge reachable from
// the entry, in breadth-first order. The entry is visited first with
// from == NoBlock. Each block is entered once, so every edge out of a
// reachable block is visited exactly once.
func TraverseEdges(f *Func, visit func(from, to BlockID)) {
	if !f.Contains(f.Entry) {
		return
	}
	type edge struct {
		From, To BlockID
	}
	visited := make([]bool, len(f.Blocks))
	queue := []edge{{From: NoBlock, To: f.Entry}}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		visit(e.From, e.To)
		if visited[e.To] {
			continue
		}
		visited[e.To] = true
		for _, succ := range f.Blocks[e.To].Edges {
			queue = append(queue, edge{From: e.To, To: succ.Target})
		}
	}
}

// ReachableBlocks returns the set of blocks reachable from the entry.
func ReachableBlocks(f *Func) []bool {
	reach := make([]bool, len(f.Blocks))
	TraverseEdges(f, func(_, to BlockID) {
		reach[to] = true
	})
	return reach
}
