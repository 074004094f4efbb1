package interchange

import (
	"testing"

	"github.com/nickng/loopswap/cfg"
	"github.com/nickng/loopswap/internal/nesttest"
	"github.com/nickng/loopswap/loop"
	"github.com/nickng/loopswap/rewrite"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterchangePerfect(t *testing.T) {
	f := nesttest.Perfect()
	id := func(name string) cfg.BlockID { return nesttest.ID(f, name) }
	nBlocks, nEdges := len(f.Blocks), f.NumEdges()

	out, err := New(AllowAll).Run(f)
	require.NoError(t, err)
	if out.Kind != Applied {
		t.Fatalf("outcome = %s, want applied", out)
	}
	assert.Len(t, out.Edits, 8)
	assert.Equal(t, 7, nBlocks)
	assert.Equal(t, nBlocks, len(f.Blocks))
	assert.Equal(t, nEdges, f.NumEdges())

	want := map[string][]string{
		"P":  {"H2"},
		"H2": {"H1", "E"},
		"H1": {"B", "L2"},
		"B":  {"L1"},
		"L1": {"H1", "L2"},
		"L2": {"H2", "E"},
		"E":  {},
	}
	for name, succs := range want {
		got := []string{}
		for _, s := range f.Succs(id(name)) {
			got = append(got, f.Blocks[s].Name)
		}
		assert.Equal(t, succs, got, "successors of %s", name)
	}

	nest, ok := loop.NewDetector().Detect(f)
	require.True(t, ok, "no nest after interchange:\n%s", f)
	desc := nest.Describe(f)
	assert.Equal(t, loop.Roles{Preheader: "P", Header: "H2", Latch: "L2", Exit: "E"}, desc.Outer)
	assert.Equal(t, loop.Roles{Preheader: "H2", Header: "H1", Latch: "L1", Exit: "L2"}, desc.Inner)
}

func TestInterchangeTwiceRestores(t *testing.T) {
	for _, f := range []*cfg.Func{nesttest.Perfect(), nesttest.UncondLatches(), nesttest.Diamond()} {
		orig := f.Clone()
		p := New(nil)
		for i := 0; i < 2; i++ {
			out, err := p.Run(f)
			if err != nil {
				t.Fatalf("%s: run %d: %v", f.Name, i, err)
			}
			if out.Kind != Applied {
				t.Fatalf("%s: run %d: outcome = %s, want applied", f.Name, i, out)
			}
			if len(f.Blocks) != len(orig.Blocks) || f.NumEdges() != orig.NumEdges() {
				t.Errorf("%s: run %d changed block/edge count", f.Name, i)
			}
		}
		if !orig.Equal(f) {
			t.Errorf("%s: two interchanges should restore the CFG, want:\n%s\ngot:\n%s", f.Name, orig, f)
		}
		require.Len(t, p.Rewriter().Committed(), 2)
	}
}

func TestDiamondBodyRetargeted(t *testing.T) {
	f := nesttest.Diamond()
	id := func(name string) cfg.BlockID { return nesttest.ID(f, name) }
	_, err := New(nil).Run(f)
	require.NoError(t, err)
	assert.Equal(t, []cfg.BlockID{id("L1")}, f.Succs(id("T")))
	assert.Equal(t, []cfg.BlockID{id("L1")}, f.Succs(id("F")))
	assert.Equal(t, []cfg.BlockID{id("T"), id("F")}, f.Succs(id("B")))
}

func TestSkipped(t *testing.T) {
	small := cfg.NewFunc("small")
	a := small.AddBlock("A")
	small.Jump(a, a)
	for _, f := range []*cfg.Func{nesttest.Straight(), nesttest.SingleLoop(), small} {
		before := f.Clone()
		out, err := New(nil).Run(f)
		require.NoError(t, err)
		if out.Kind != Skipped {
			t.Errorf("%s: outcome = %s, want skipped", f.Name, out)
		}
		if out.Nest != nil {
			t.Errorf("%s: skipped outcome should carry no nest", f.Name)
		}
		require.True(t, before.Equal(f))
	}
}

func TestLegalityGating(t *testing.T) {
	f := nesttest.Perfect()
	before := f.Clone()
	var asked loop.Description
	oracle := OracleFunc(func(desc loop.Description) Verdict {
		asked = desc
		return Verdict{Reason: "a[i][j] depends on a[i-1][j+1]"}
	})
	out, err := New(oracle).Run(f)
	require.NoError(t, err)
	if out.Kind != Rejected || out.Reason != IllegalDependence {
		t.Errorf("outcome = %s, want rejected (illegal dependence)", out)
	}
	require.True(t, before.Equal(f), "rejected interchange modified the CFG")
	assert.Equal(t, "perfect", asked.Func)
	assert.Equal(t, "H1", asked.Outer.Header)
	assert.Equal(t, "H2", asked.Inner.Header)
}

func TestDenyList(t *testing.T) {
	deny := NewDenyList("", "perfect")
	f := nesttest.Perfect()
	out, err := New(deny).Run(f)
	require.NoError(t, err)
	assert.Equal(t, Rejected, out.Kind)
	assert.Equal(t, "function is on the deny list", out.Detail)

	g := nesttest.Diamond()
	out, err = New(deny).Run(g)
	require.NoError(t, err)
	assert.Equal(t, Applied, out.Kind)

	out, err = New(DenyAll).Run(nesttest.Diamond())
	require.NoError(t, err)
	assert.Equal(t, IllegalDependence, out.Reason)
}

func TestMalformedCFG(t *testing.T) {
	f := nesttest.Perfect()
	// Both branches of the body go to the inner latch: the batch names
	// (B, L2) twice and the rewriter refuses it.
	f.If(nesttest.ID(f, "B"), nesttest.ID(f, "L2"), nesttest.ID(f, "L2"))
	before := f.Clone()
	out, err := New(nil).Run(f)
	require.NoError(t, err)
	if out.Kind != Rejected || out.Reason != MalformedCFG {
		t.Errorf("outcome = %s, want rejected (malformed CFG)", out)
	}
	require.True(t, before.Equal(f), "failed rewrite modified the CFG")
}

func TestPostconditionViolation(t *testing.T) {
	f := nesttest.Perfect()
	p := New(nil)
	p.plan = func(fn *cfg.Func, nest *loop.Nest) []rewrite.Edit {
		return Plan(fn, nest)[:1]
	}
	_, err := p.Run(f)
	if err == nil {
		t.Fatalf("partial batch should fail verification")
	}
	if _, ok := err.(*PostconditionError); !ok {
		t.Errorf("want *PostconditionError, got %T", err)
	}
	if errors.Cause(err) != ErrPostcondition {
		t.Errorf("cause = %v, want ErrPostcondition", errors.Cause(err))
	}
}

// The four redirections of the preheader, the outer header exit, the inner
// header exit and the outer latch back edge alone leave H1 unreachable.
func TestFourEditBatchFailsVerification(t *testing.T) {
	f := nesttest.Perfect()
	id := func(name string) cfg.BlockID { return nesttest.ID(f, name) }
	p := New(nil)
	p.plan = func(fn *cfg.Func, nest *loop.Nest) []rewrite.Edit {
		return []rewrite.Edit{
			{Block: id("P"), Old: id("H1"), New: id("H2")},
			{Block: id("H1"), Old: id("E"), New: id("L2")},
			{Block: id("H2"), Old: id("L1"), New: id("E")},
			{Block: id("L1"), Old: id("H1"), New: id("H2")},
		}
	}
	_, err := p.Run(f)
	require.Error(t, err)
	assert.Equal(t, ErrPostcondition, errors.Cause(err))
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		out  Outcome
		want string
	}{
		{Outcome{Kind: Skipped}, "skipped"},
		{Outcome{Kind: Applied}, "applied"},
		{Outcome{Kind: Rejected, Reason: MalformedCFG}, "rejected (malformed CFG)"},
		{Outcome{Kind: Rejected, Reason: IllegalDependence, Detail: "dep"}, "rejected (illegal dependence: dep)"},
	}
	for _, tt := range tests {
		if got := tt.out.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
