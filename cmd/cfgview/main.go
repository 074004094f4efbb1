// Command cfgview prints the block graph and loop nest of functions without
// rewriting them.
//
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nickng/loopswap/cfg"
	"github.com/nickng/loopswap/dump"
	"github.com/nickng/loopswap/loop"
	"github.com/nickng/loopswap/module"
	"github.com/nickng/loopswap/ssa"
	"github.com/nickng/loopswap/ssa/build"
)

const (
	Usage = `cfgview is a tool for printing the CFG and loop nest of functions.

Usage:

  cfgview [options] module.toml
  cfgview [options] -go file.go [files.go...]

Options:

`
)

var (
	buildlogPath string
	defaultArgs  bool
	fromGo       bool
	showSSA      bool
	outPath      string
	viewFunc     string
	dotDir       string

	out io.Writer
)

func init() {
	flag.BoolVar(&defaultArgs, "default", true, "Use default SSA build arguments")
	flag.BoolVar(&fromGo, "go", false, "Read Go source files instead of a TOML module")
	flag.BoolVar(&showSSA, "ssa", false, "Print SSA IR instead of the CFG (with -go)")
	flag.StringVar(&buildlogPath, "log", "", "Specify build log file (use '-' for stdout)")
	flag.StringVar(&outPath, "out", "", "Specify output file (default: stdout)")
	flag.StringVar(&viewFunc, "func", "", `Specify the function to view (format: (import/path).FuncName`)
	flag.StringVar(&dotDir, "dot", "", "Also write DOT graphs to directory")
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, Usage)
		flag.PrintDefaults()
		os.Exit(0)
	}

	switch outPath {
	case "":
		out = os.Stdout
	default:
		f, err := os.Create(outPath)
		if err != nil {
			log.Fatalf("Cannot create output file %s: %v", outPath, err)
		}
		defer f.Close()
		out = f
	}

	var m *module.Module
	if fromGo {
		info := buildSSA(flag.Args())
		if showSSA {
			writeSSA(info)
			return
		}
		var err error
		if m, err = ssa.ToModule(info, "main"); err != nil {
			log.Fatal("Cannot convert SSA:", err)
		}
	} else {
		var err error
		if m, err = module.LoadFile(flag.Arg(0)); err != nil {
			log.Fatal("Cannot load module:", err)
		}
	}

	detector := loop.NewDetector()
	for _, fn := range m.Funcs {
		if viewFunc != "" && fn.Name != viewFunc {
			continue
		}
		view(detector, fn)
	}
}

func buildSSA(files []string) *ssa.Info {
	conf := build.FromFiles(files...)
	if defaultArgs {
		conf = conf.Default()
	}
	switch buildlogPath {
	case "":
	case "-":
		conf = conf.WithBuildLog(os.Stdout, log.LstdFlags)
	default:
		f, err := os.Create(buildlogPath)
		if err != nil {
			log.Fatalf("Cannot create log %s: %v", buildlogPath, err)
		}
		defer f.Close()
		conf = conf.WithBuildLog(f, log.LstdFlags)
	}
	info, err := conf.Build()
	if err != nil {
		log.Fatal("Cannot build SSA from files:", err)
	}
	return info
}

func writeSSA(info *ssa.Info) {
	if viewFunc != "" {
		if _, err := info.WriteFunc(out, viewFunc); err != nil {
			log.Fatal("Cannot write SSA:", err)
		}
		return
	}
	if _, err := info.WriteTo(out); err != nil {
		log.Fatal("Cannot write SSA:", err)
	}
}

func view(detector *loop.Detector, fn *cfg.Func) {
	fn.WriteTo(out)
	if nest, err := detector.Analyse(fn); err != nil {
		fmt.Fprintf(out, "  no loop nest: %v\n", err)
	} else {
		fmt.Fprintf(out, "  outer: %s\n", nest.Outer.Format(fn))
		fmt.Fprintf(out, "  inner: %s\n", nest.Inner.Format(fn))
	}
	if dotDir != "" {
		if _, err := dump.WriteDOT(dotDir, fn, ""); err != nil {
			log.Fatal("Cannot write DOT:", err)
		}
	}
}
