package interchange

import (
	"github.com/nickng/loopswap/cfg"
	"github.com/nickng/loopswap/loop"
	"github.com/nickng/loopswap/rewrite"
)

// Plan returns the edit batch exchanging the loops of nest.
//
// The old inner loop becomes the outer loop: the preheader enters it, its
// header leaves the nest through the old exit and its test now guards the old
// outer header. The old outer loop becomes the inner loop: its header guards
// the body and leaves to the old inner latch, and body edges that reached the
// old inner latch now reach the old outer latch. Both back edges are kept;
// the latches trade their exit targets.
func Plan(fn *cfg.Func, nest *loop.Nest) []rewrite.Edit {
	outer, inner := nest.Outer, nest.Inner
	exit := outer.Exit
	body := bodyEntry(fn, &inner)

	edits := []rewrite.Edit{
		{Block: outer.Preheader, Old: outer.Header, New: inner.Header},
		{Block: outer.Header, Old: exit, New: inner.Latch},
		{Block: inner.Header, Old: inner.Exit, New: exit},
		{Block: outer.Header, Old: inner.Header, New: body},
		{Block: inner.Header, Old: body, New: outer.Header},
	}
	for _, b := range inner.Body() {
		for _, e := range fn.Blocks[b].Edges {
			if e.Target == inner.Latch {
				edits = append(edits, rewrite.Edit{Block: b, Old: inner.Latch, New: outer.Latch})
			}
		}
	}
	if fn.Blocks[outer.Latch].HasSucc(exit) {
		edits = append(edits, rewrite.Edit{Block: outer.Latch, Old: exit, New: inner.Latch})
	}
	if fn.Blocks[inner.Latch].HasSucc(inner.Exit) {
		edits = append(edits, rewrite.Edit{Block: inner.Latch, Old: inner.Exit, New: exit})
	}
	return edits
}

// bodyEntry returns the in-loop successor of the loop header.
func bodyEntry(fn *cfg.Func, l *loop.Loop) cfg.BlockID {
	for _, e := range fn.Blocks[l.Header].Edges {
		if e.Target != l.Header && l.Contains(e.Target) {
			return e.Target
		}
	}
	return cfg.NoBlock
}
