package loop

import (
	"testing"

	"github.com/nickng/loopswap/cfg"
	"github.com/nickng/loopswap/internal/nesttest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestPerfectNest(t *testing.T) {
	f := nesttest.Perfect()
	id := func(name string) cfg.BlockID { return nesttest.ID(f, name) }
	nest, ok := NewDetector().Detect(f)
	if !ok {
		t.Fatalf("nest not detected in:\n%s", f)
	}
	if want, got := (Roles{Preheader: "P", Header: "H1", Latch: "L1", Exit: "E"}), nest.Describe(f).Outer; want != got {
		t.Errorf("outer loop not extracted correctly, want:\n%+v\ngot:\n%+v\n", want, got)
	}
	if want, got := (Roles{Preheader: "H1", Header: "H2", Latch: "L2", Exit: "L1"}), nest.Describe(f).Inner; want != got {
		t.Errorf("inner loop not extracted correctly, want:\n%+v\ngot:\n%+v\n", want, got)
	}
	require.Equal(t, []cfg.BlockID{id("H1"), id("H2"), id("B"), id("L2"), id("L1")}, nest.Outer.Blocks)
	require.Equal(t, []cfg.BlockID{id("H2"), id("B"), id("L2")}, nest.Inner.Blocks)
	require.Equal(t, []cfg.BlockID{id("B")}, nest.Inner.Body())
	if !nest.Outer.DedicatedPreheader() {
		t.Errorf("P should be a dedicated preheader")
	}
	if nest.Inner.DedicatedPreheader() {
		t.Errorf("inner preheader is the outer header and branches to the exit too")
	}
}

func TestDetectDoesNotMutate(t *testing.T) {
	f := nesttest.Perfect()
	before := f.Clone()
	NewDetector().Detect(f)
	require.True(t, before.Equal(f), "Detect modified the CFG")
}

func TestNestVariants(t *testing.T) {
	for _, f := range []*cfg.Func{nesttest.UncondLatches(), nesttest.Diamond()} {
		nest, err := NewDetector().Analyse(f)
		if err != nil {
			t.Errorf("%s: want nest, got %v", f.Name, err)
			continue
		}
		if want, got := "H1", f.Blocks[nest.Outer.Header].Name; want != got {
			t.Errorf("%s: outer header = %s, want %s", f.Name, got, want)
		}
		if want, got := "H2", f.Blocks[nest.Inner.Header].Name; want != got {
			t.Errorf("%s: inner header = %s, want %s", f.Name, got, want)
		}
	}
}

func TestTooSmall(t *testing.T) {
	f := cfg.NewFunc("small")
	p := f.AddBlock("P")
	h := f.AddBlock("H")
	b := f.AddBlock("B")
	e := f.AddBlock("E")
	f.Jump(p, h)
	f.If(h, b, e)
	f.Jump(b, h)
	if _, err := NewDetector().Analyse(f); errors.Cause(err) != ErrTooSmall {
		t.Errorf("want ErrTooSmall, got %v", err)
	}
}

func TestNoBackEdge(t *testing.T) {
	if _, err := NewDetector().Analyse(nesttest.Straight()); err != ErrNoLoop {
		t.Errorf("want ErrNoLoop, got %v", err)
	}
}

func TestSingleLoop(t *testing.T) {
	f := nesttest.SingleLoop()
	if _, err := NewDetector().Analyse(f); errors.Cause(err) != ErrNotNested {
		t.Errorf("want ErrNotNested, got %v", err)
	}
	loops, err := NewDetector().Loops(f)
	require.NoError(t, err)
	require.Len(t, loops, 1)
	if want, got := "E", f.Blocks[loops[0].Exit].Name; want != got {
		t.Errorf("exit = %s, want %s", got, want)
	}
}

func TestSiblingLoops(t *testing.T) {
	f := cfg.NewFunc("siblings")
	p := f.AddBlock("P")
	h1 := f.AddBlock("H1")
	b1 := f.AddBlock("B1")
	h2 := f.AddBlock("H2")
	b2 := f.AddBlock("B2")
	e := f.AddBlock("E")
	x := f.AddBlock("X")
	f.Jump(p, h1)
	f.If(h1, b1, h2)
	f.Jump(b1, h1)
	f.If(h2, b2, e)
	f.Jump(b2, h2)
	f.Jump(e, x)
	if _, err := NewDetector().Analyse(f); errors.Cause(err) != ErrNotNested {
		t.Errorf("want ErrNotNested, got %v", err)
	}
}

func TestMultipleLatches(t *testing.T) {
	f := nesttest.Perfect()
	// continue: B branches back to H2 as well as to L2.
	f.If(nesttest.ID(f, "B"), nesttest.ID(f, "L2"), nesttest.ID(f, "H2"))
	if _, err := NewDetector().Analyse(f); errors.Cause(err) != ErrMultipleLatches {
		t.Errorf("want ErrMultipleLatches, got %v", err)
	}
}

func TestExitingBody(t *testing.T) {
	f := nesttest.Perfect()
	// break out of both loops from the body.
	f.If(nesttest.ID(f, "B"), nesttest.ID(f, "L2"), nesttest.ID(f, "E"))
	if _, err := NewDetector().Analyse(f); errors.Cause(err) != ErrExitingBody {
		t.Errorf("want ErrExitingBody, got %v", err)
	}
}

func TestMultipleEntries(t *testing.T) {
	f := nesttest.Perfect()
	// P jumps straight into the inner loop as well.
	f.If(f.Entry, nesttest.ID(f, "H1"), nesttest.ID(f, "H2"))
	if _, ok := NewDetector().Detect(f); ok {
		t.Errorf("loop entered twice should not be a nest")
	}
}

func TestTooManyLoops(t *testing.T) {
	f := cfg.NewFunc("deep")
	p := f.AddBlock("P")
	h1 := f.AddBlock("H1")
	h2 := f.AddBlock("H2")
	h3 := f.AddBlock("H3")
	b := f.AddBlock("B")
	l3 := f.AddBlock("L3")
	l2 := f.AddBlock("L2")
	l1 := f.AddBlock("L1")
	e := f.AddBlock("E")
	f.Jump(p, h1)
	f.If(h1, h2, e)
	f.If(h2, h3, l1)
	f.If(h3, b, l2)
	f.Jump(b, l3)
	f.If(l3, h3, l2)
	f.If(l2, h2, l1)
	f.If(l1, h1, e)
	if _, err := NewDetector().Analyse(f); errors.Cause(err) != ErrTooManyLoops {
		t.Errorf("want ErrTooManyLoops, got %v", err)
	}
}

func TestSwapped(t *testing.T) {
	f := nesttest.Perfect()
	nest, ok := NewDetector().Detect(f)
	require.True(t, ok)
	swapped := &Nest{Outer: nest.Inner, Inner: nest.Outer}
	swapped.Outer.Preheader, swapped.Outer.Exit = nest.Outer.Preheader, nest.Outer.Exit
	if !nest.Swapped(swapped) {
		t.Errorf("roles exchanged should be reported as swapped")
	}
	if nest.Swapped(nest) {
		t.Errorf("a nest is not a swap of itself")
	}
}

func TestStack(t *testing.T) {
	s := NewStack()
	if !s.IsEmpty() {
		t.Errorf("new stack should be empty")
	}
	s.Push(1)
	s.Push(2)
	if b, err := s.Pop(); err != nil || b != 2 {
		t.Errorf("Pop = %d, %v, want 2, nil", b, err)
	}
	s.Pop()
	if _, err := s.Pop(); err != ErrEmptyStack {
		t.Errorf("Pop on empty stack: want ErrEmptyStack, got %v", err)
	}
}
