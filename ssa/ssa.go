// Package ssa is a library to build and work with SSA, and to lower SSA
// functions into the block graphs the loop passes work on.
//
// The SSA IR is from golang.org/x/tools/go/ssa. The 'build' subpackage loads
// and type-checks sources with golang.org/x/tools/go/packages.
//
package ssa

import (
	"go/token"
	"io"

	"golang.org/x/tools/go/ssa"
)

// Info holds the results of a SSA build for analysis.
// To populate this structure, the 'build' subpackage should be used.
//
type Info struct {
	IgnoredPkgs []string // Record of ignored package during the build process.

	FSet *token.FileSet // FileSet for parsed source files.
	Prog *ssa.Program   // SSA IR for whole program.
	Pkgs []*ssa.Package // Packages built from the given sources.

	BldLog io.Writer // Build log.
}
