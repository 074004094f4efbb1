package ssa

import (
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

var (
	ErrNoSrcPkgs   = errors.New("no package built from source")
	ErrUnknownTerm = errors.New("unknown block terminator")
)

// Funcs returns the functions with a body declared in the source packages of
// info, anonymous functions included, in source order.
func (info *Info) Funcs() []*ssa.Function {
	built := make(map[*ssa.Package]bool)
	for _, pkg := range info.Pkgs {
		built[pkg] = true
	}
	var funcs []*ssa.Function
	for f := range ssautil.AllFunctions(info.Prog) {
		if f.Blocks == nil || f.Synthetic != "" || !built[f.Pkg] {
			continue
		}
		funcs = append(funcs, f)
	}
	sort.Slice(funcs, func(i, j int) bool {
		if funcs[i].Pos() != funcs[j].Pos() {
			return funcs[i].Pos() < funcs[j].Pos()
		}
		return funcs[i].String() < funcs[j].String()
	})
	return funcs
}

// FuncName returns the name of f relative to its package, e.g. "foo",
// "(*T).m" or "foo$1".
func FuncName(f *ssa.Function) string {
	if f.Pkg == nil {
		return f.String()
	}
	return f.RelString(f.Pkg.Pkg)
}
