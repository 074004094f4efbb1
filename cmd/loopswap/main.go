// Command loopswap is the command line entry point to loop interchange.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/nickng/loopswap/driver"
	"github.com/nickng/loopswap/dump"
	"github.com/nickng/loopswap/module"
	"github.com/nickng/loopswap/ssa"
	"github.com/nickng/loopswap/ssa/build"
)

const (
	Usage = `loopswap is a tool for interchanging perfectly nested loops.

Usage:

  loopswap [options] module.toml
  loopswap [options] -go file.go [files.go...]

Options:

`
)

var (
	logPath    string
	dotDir     string
	configPath string
	outPath    string
	funcNames  string
	fromGo     bool
	showDiff   bool
	showAll    bool
)

func init() {
	flag.StringVar(&logPath, "log", "", "Specify analysis log file (use '-' for stderr)")
	flag.StringVar(&dotDir, "dot", "", "Write DOT graphs of rewritten functions to directory")
	flag.StringVar(&configPath, "config", "", "Read options from TOML config file")
	flag.StringVar(&outPath, "o", "", "Write the rewritten module as TOML (use '-' for stdout)")
	flag.StringVar(&funcNames, "func", "", "Comma separated list of functions to run on (default: all)")
	flag.BoolVar(&fromGo, "go", false, "Read Go source files instead of a TOML module")
	flag.BoolVar(&showDiff, "diff", true, "Show changed terminators of rewritten functions")
	flag.BoolVar(&showAll, "print", false, "Print every function after the pass")
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, Usage)
		flag.PrintDefaults()
		os.Exit(0)
	}

	conf := driver.NewConfig()
	if configPath != "" {
		c, err := driver.LoadConfig(configPath)
		if err != nil {
			log.Fatal("Cannot load config:", err)
		}
		conf = c
	}
	conf = conf.Default()
	if dotDir != "" {
		conf = conf.WithDOTDir(dotDir)
	}
	if funcNames != "" {
		conf = conf.OnlyFuncs(strings.Split(funcNames, ",")...)
	}
	if showDiff {
		conf = conf.WithDiff(os.Stdout)
	}
	switch logPath {
	case "", "-":
	default:
		conf = conf.WithLogFiles(logPath)
	}
	d := conf.Driver()
	if logPath == "-" {
		d.UseDefaultLogger()
	}

	m, err := load(flag.Args())
	if err != nil {
		log.Fatal("Cannot load input:", err)
	}
	report, err := d.Run(m)
	fmt.Fprintln(os.Stderr, report)
	if showAll {
		dump.Text(os.Stdout, m)
	}
	if outPath != "" {
		if werr := write(m, outPath); werr != nil {
			log.Fatal("Cannot write output:", werr)
		}
	}
	if err != nil {
		log.Fatal("Unverifiable functions: ", err)
	}
}

func load(args []string) (*module.Module, error) {
	if fromGo {
		info, err := build.FromFiles(args...).Default().Build()
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		return ssa.ToModule(info, name)
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("expects one module file, got %d", len(args))
	}
	return module.LoadFile(args[0])
}

func write(m *module.Module, path string) error {
	if path == "-" {
		return m.WriteTOML(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return m.WriteTOML(f)
}
