package build

import (
	"io"
	"log"
	"strings"

	"github.com/nickng/loopswap/ssa"
	"github.com/pkg/errors"
	"golang.org/x/tools/go/packages"
	gossa "golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// ErrLoad is the cause of errors reported by the package loader.
var ErrLoad = errors.New("cannot load packages")

// srcReader is a wrapper for source code which can be handed to the package
// loader as a list of files in dir.
type srcReader interface {
	files() (dir string, files []string, cleanup func(), err error)
}

type Configurer interface {
	Builder
	Default() Configurer
	AddBadPkg(pkg, reason string) Configurer
	WithBuildLog(l io.Writer, flags int) Configurer
}

// Config represents a build configuration.
type Config struct {
	badPkgs map[string]string

	bldLog    io.Writer // Build log.
	bldLFlags int       // Build log flags.

	src srcReader // src points to the program source.
	err error     // Deferred error from reading the source.
}

func newConfig(src srcReader) *Config {
	return &Config{
		badPkgs:   make(map[string]string),
		bldLog:    io.Discard,
		bldLFlags: log.LstdFlags,
		src:       src,
	}
}

// WithBuildLog adds build log to config.
func (c *Config) WithBuildLog(l io.Writer, flags int) Configurer {
	c.bldLog = l
	c.bldLFlags = flags
	return c
}

// AddBadPkg marks a package 'bad' to avoid building.
func (c *Config) AddBadPkg(pkg, reason string) Configurer {
	c.badPkgs[pkg] = reason
	return c
}

func (c *Config) Build() (*ssa.Info, error) {
	if c.err != nil {
		return nil, c.err
	}
	bldLog := log.New(c.bldLog, "ssabuild: ", c.bldLFlags)

	dir, files, cleanup, err := c.src.files()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	lconf := &packages.Config{Mode: packages.LoadSyntax, Dir: dir}
	pkgs, err := packages.Load(lconf, files...)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load packages")
	}
	var errs []string
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = append(errs, e.Error())
		}
	})
	if len(errs) > 0 {
		return nil, errors.Wrap(ErrLoad, strings.Join(errs, "; "))
	}
	bldLog.Print("Program loaded and type checked")

	prog, ssaPkgs := ssautil.Packages(pkgs, gossa.BareInits)

	var (
		ignoredPkgs []string
		built       []*gossa.Package
	)
	for _, pkg := range ssaPkgs {
		if pkg == nil {
			continue
		}
		if reason, badPkg := c.badPkgs[pkg.Pkg.Name()]; badPkg {
			bldLog.Printf("Skip package: %s (%s)", pkg.Pkg.Name(), reason)
			ignoredPkgs = append(ignoredPkgs, pkg.Pkg.Name())
			continue
		}
		pkg.Build()
		built = append(built, pkg)
	}

	return &ssa.Info{
		IgnoredPkgs: ignoredPkgs,
		FSet:        prog.Fset,
		Prog:        prog,
		Pkgs:        built,
		BldLog:      c.bldLog,
	}, nil
}

// Default returns a default configuration for static analysis.
func (c *Config) Default() Configurer {
	return c.
		AddBadPkg("reflect", "Reflection is not supported").
		AddBadPkg("runtime", "Runtime is ignored for static analysis")
}
