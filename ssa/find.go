package ssa

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/go/ssa"
)

// ErrFuncNotFound is returned by FindFunc when no function matches.
var ErrFuncNotFound = errors.New("function not found")

// FindFunc parses path (e.g. "github.com/nickng/loopswap/ssa".FuncName or a
// bare name such as "foo") and returns Function body in SSA IR.
func (info *Info) FindFunc(path string) (*ssa.Function, error) {
	pkgPath, fnName := parseFuncPath(path)
	for _, f := range info.Funcs() {
		if pkgPath != "" && f.Pkg.Pkg.Path() != pkgPath && f.Pkg.Pkg.Name() != pkgPath {
			continue
		}
		if FuncName(f) == fnName {
			return f, nil
		}
	}
	return nil, errors.Wrap(ErrFuncNotFound, path)
}

// parseFuncPath splits path to package and function segments.
// Does not handle complex functions with receivers.
func parseFuncPath(path string) (pkgPath, fnName string) {
	if len(path) < 1 {
		return "", ""
	}
	switch path[0] {
	case '(':
		regex := regexp.MustCompile(`\((?P<pkg>[^)]+)\).(?P<fn>.+)`)
		submatches := regex.FindStringSubmatch(path)
		if len(submatches) >= 3 {
			return submatches[1], submatches[2]
		}
	case '"':
		regex := regexp.MustCompile(`"(?P<pkg>[^)]+)".(?P<fn>.+)`)
		submatches := regex.FindStringSubmatch(path)
		if len(submatches) >= 3 {
			return submatches[1], submatches[2]
		}
	default:
		parts := strings.Split(path, ".")
		if len(parts) >= 2 {
			return parts[0], parts[1]
		}
	}
	return "", path
}
