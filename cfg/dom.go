package cfg

// ReversePostOrder returns the blocks reachable from f.Entry in reverse
// post-order. Unreachable blocks are excluded.
func ReversePostOrder(f *Func) []BlockID {
	if !f.Contains(f.Entry) {
		return nil
	}
	visited := make([]bool, len(f.Blocks))
	var order []BlockID

	var dfs func(b BlockID)
	dfs = func(b BlockID) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, e := range f.Blocks[b].Edges {
			dfs(e.Target)
		}
		order = append(order, b)
	}
	dfs(f.Entry)

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// DomTree is the dominator tree of the blocks reachable from the entry.
type DomTree struct {
	idom   []BlockID // idom[b] is the immediate dominator, NoBlock for entry/unreachable.
	rpoNum []int     // rpoNum[b] is the RPO index, -1 if unreachable.
	entry  BlockID
}

// Dominators computes the dominator tree of f using Cooper, Harvey and
// Kennedy's "A Simple, Fast Dominance Algorithm".
func Dominators(f *Func) *DomTree {
	t := &DomTree{
		idom:   make([]BlockID, len(f.Blocks)),
		rpoNum: make([]int, len(f.Blocks)),
		entry:  f.Entry,
	}
	for i := range t.idom {
		t.idom[i] = NoBlock
		t.rpoNum[i] = -1
	}
	rpo := ReversePostOrder(f)
	if len(rpo) == 0 {
		return t
	}
	for i, b := range rpo {
		t.rpoNum[b] = i
	}
	preds := f.Preds()

	intersect := func(b1, b2 BlockID) BlockID {
		for b1 != b2 {
			for t.rpoNum[b1] > t.rpoNum[b2] {
				b1 = t.idom[b1]
			}
			for t.rpoNum[b2] > t.rpoNum[b1] {
				b2 = t.idom[b2]
			}
		}
		return b1
	}

	// Entry dominates itself while iterating.
	t.idom[rpo[0]] = rpo[0]
	changed := true
	for changed {
		changed = false
		for _, b := range rpo[1:] {
			newIdom := NoBlock
			for _, p := range preds[b] {
				if t.idom[p] == NoBlock {
					continue
				}
				if newIdom == NoBlock {
					newIdom = p
				} else {
					newIdom = intersect(p, newIdom)
				}
			}
			if newIdom != NoBlock && t.idom[b] != newIdom {
				t.idom[b] = newIdom
				changed = true
			}
		}
	}
	t.idom[rpo[0]] = NoBlock
	return t
}

// Reachable returns true if b is reachable from the entry.
func (t *DomTree) Reachable(b BlockID) bool {
	return b >= 0 && int(b) < len(t.rpoNum) && t.rpoNum[b] >= 0
}

// Idom returns the immediate dominator of b, or NoBlock for the entry and
// unreachable blocks.
func (t *DomTree) Idom(b BlockID) BlockID {
	if !t.Reachable(b) {
		return NoBlock
	}
	return t.idom[b]
}

// Dominates returns true if a dominates b. Every reachable block dominates
// itself; nothing dominates an unreachable block.
func (t *DomTree) Dominates(a, b BlockID) bool {
	if !t.Reachable(a) || !t.Reachable(b) {
		return false
	}
	for cur := b; cur != NoBlock; cur = t.idom[cur] {
		if cur == a {
			return true
		}
	}
	return false
}
