package dump

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/nickng/loopswap/cfg"
	"github.com/nickng/loopswap/internal/nesttest"
	"github.com/nickng/loopswap/module"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestText(t *testing.T) {
	m := module.New("fixtures")
	m.Add(nesttest.Perfect())
	m.Add(nesttest.Straight())
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, m))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "module fixtures\n\nfunc perfect (entry P):\n"), out)
	assert.Contains(t, out, "\nfunc straight (entry A):\n")
}

func TestDiff(t *testing.T) {
	before := nesttest.Perfect()
	after := before.Clone()
	after.Jump(nesttest.ID(after, "P"), nesttest.ID(after, "H2"))
	after.If(nesttest.ID(after, "L1"), nesttest.ID(after, "H1"), nesttest.ID(after, "L2"))

	var buf bytes.Buffer
	n, err := Diff(&buf, before, after)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	want := "func perfect:\n" +
		"  P: jump H1 => jump H2\n" +
		"  L1: if H1 else E => if H1 else L2\n"
	assert.Equal(t, want, buf.String())
}

func TestDiffUnchanged(t *testing.T) {
	f := nesttest.Perfect()
	var buf bytes.Buffer
	n, err := Diff(&buf, f, f.Clone())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, buf.String(), "(unchanged)")
}

func TestDiffBlockCount(t *testing.T) {
	f := nesttest.Perfect()
	g := f.Clone()
	g.AddBlock("X")
	if _, err := Diff(new(bytes.Buffer), f, g); err == nil {
		t.Errorf("expects error diffing functions of different size")
	}
}

func TestFuncCFG(t *testing.T) {
	f := nesttest.Perfect()
	lcfg := FuncCFG(f)
	require.Len(t, lcfg.Blocks, len(f.Blocks))
	h1 := lcfg.Blocks[nesttest.ID(f, "H1")]
	require.Len(t, h1.Succs, 2)
	assert.Equal(t, "T", h1.Succs[0].Cond)
	assert.Equal(t, int(nesttest.ID(f, "H2")), h1.Succs[0].BlockID)
	assert.Equal(t, "F", h1.Succs[1].Cond)
	assert.Equal(t, "", lcfg.Blocks[f.Entry].Succs[0].Cond)
	assert.True(t, lcfg.Blocks[nesttest.ID(f, "E")].Term)
}

func TestWriteDOT(t *testing.T) {
	dir := t.TempDir()
	f := cfg.NewFunc("(*T).m$1")
	a := f.AddBlock("A")
	f.Jump(a, a)
	path, err := WriteDOT(dir, f, ".before")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "__T_.m_1.before.dot"), path)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "digraph")
}
