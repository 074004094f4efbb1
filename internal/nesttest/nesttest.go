// Package nesttest builds the CFG fixtures shared by the loop pass tests.
package nesttest

import "github.com/nickng/loopswap/cfg"

// Perfect returns the canonical doubly-nested loop
//
//	P -> H1; H1 -> {H2, E}; H2 -> {B, L1}; B -> L2;
//	L2 -> {H2, L1}; L1 -> {H1, E}; E returns
//
// i.e. for i < N { for j < M { B } }.
func Perfect() *cfg.Func {
	f := cfg.NewFunc("perfect")
	p := f.AddBlock("P")
	h1 := f.AddBlock("H1")
	h2 := f.AddBlock("H2")
	b := f.AddBlock("B")
	l2 := f.AddBlock("L2")
	l1 := f.AddBlock("L1")
	e := f.AddBlock("E")
	f.Jump(p, h1)
	f.If(h1, h2, e)
	f.If(h2, b, l1)
	f.Jump(b, l2)
	f.If(l2, h2, l1)
	f.If(l1, h1, e)
	f.Return(e)
	return f
}

// UncondLatches is Perfect with both latches ending in an unconditional
// jump back to their header.
func UncondLatches() *cfg.Func {
	f := Perfect()
	f.Name = "uncondlatches"
	f.Jump(ID(f, "L2"), ID(f, "H2"))
	f.Jump(ID(f, "L1"), ID(f, "H1"))
	return f
}

// Diamond is Perfect with the inner body split into an if/else diamond:
// B -> {T, F}; T -> L2; F -> L2.
func Diamond() *cfg.Func {
	f := cfg.NewFunc("diamond")
	p := f.AddBlock("P")
	h1 := f.AddBlock("H1")
	h2 := f.AddBlock("H2")
	b := f.AddBlock("B")
	t := f.AddBlock("T")
	fb := f.AddBlock("F")
	l2 := f.AddBlock("L2")
	l1 := f.AddBlock("L1")
	e := f.AddBlock("E")
	f.Jump(p, h1)
	f.If(h1, h2, e)
	f.If(h2, b, l1)
	f.If(b, t, fb)
	f.Jump(t, l2)
	f.Jump(fb, l2)
	f.If(l2, h2, l1)
	f.If(l1, h1, e)
	f.Return(e)
	return f
}

// SingleLoop is a 7-block function with one loop only.
func SingleLoop() *cfg.Func {
	f := cfg.NewFunc("single")
	p := f.AddBlock("P")
	h := f.AddBlock("H")
	b1 := f.AddBlock("B1")
	b2 := f.AddBlock("B2")
	b3 := f.AddBlock("B3")
	l := f.AddBlock("L")
	e := f.AddBlock("E")
	f.Jump(p, h)
	f.If(h, b1, e)
	f.Jump(b1, b2)
	f.Jump(b2, b3)
	f.Jump(b3, l)
	f.If(l, h, e)
	f.Return(e)
	return f
}

// Straight is a 7-block function with no back edge.
func Straight() *cfg.Func {
	f := cfg.NewFunc("straight")
	var prev cfg.BlockID = cfg.NoBlock
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		id := f.AddBlock(name)
		if prev != cfg.NoBlock {
			f.Jump(prev, id)
		}
		prev = id
	}
	return f
}

// ID returns the BlockID of the named block and panics if it is missing.
func ID(f *cfg.Func, name string) cfg.BlockID {
	id, ok := f.Lookup(name)
	if !ok {
		panic("nesttest: no block " + name + " in " + f.Name)
	}
	return id
}
