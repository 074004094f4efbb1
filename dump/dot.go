package dump

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nickng/loopswap/cfg"
	"github.com/pkg/errors"
	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"
)

// FuncCFG maps fn to a lattice.FuncCFG. Blocks keep their IDs; conditional
// successors are labelled "T" and "F".
func FuncCFG(fn *cfg.Func) *lattice.FuncCFG {
	lcfg := &lattice.FuncCFG{Name: fn.Name}
	for _, b := range fn.Blocks {
		lb := &lattice.BasicBlock{
			ID:    int(b.ID),
			Start: int(b.ID),
			End:   int(b.ID) + 1,
			Term:  len(b.Edges) == 0,
		}
		for _, e := range b.Edges {
			lb.Succs = append(lb.Succs, lattice.Successor{
				BlockID: int(e.Target),
				Cond:    cond(e.Kind),
			})
		}
		lcfg.Blocks = append(lcfg.Blocks, lb)
	}
	return lcfg
}

func cond(k cfg.EdgeKind) string {
	switch k {
	case cfg.CondTrue:
		return "T"
	case cfg.CondFalse:
		return "F"
	}
	return ""
}

// DOT renders fn as a Graphviz digraph titled title.
func DOT(fn *cfg.Func, title string) string {
	g := &lattice.CFGGraph{Funcs: []*lattice.FuncCFG{FuncCFG(fn)}}
	return render.DOTCFG(g, title)
}

// WriteDOT writes the DOT graph of fn to dir/<name><suffix>.dot and returns
// the path written.
func WriteDOT(dir string, fn *cfg.Func, suffix string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "cannot create %s", dir)
	}
	path := filepath.Join(dir, safeName(fn.Name)+suffix+".dot")
	if err := os.WriteFile(path, []byte(DOT(fn, fn.Name+suffix)), 0644); err != nil {
		return "", errors.Wrapf(err, "cannot write %s", path)
	}
	return path, nil
}

// safeName replaces characters of Go function names (e.g. "(*T).m$1") that
// are awkward in file names.
func safeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', '*', '$', '/', ' ':
			return '_'
		}
		return r
	}, name)
}
