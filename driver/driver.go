// Package driver runs loop interchange over every function of a module and
// reports what happened to each of them.
package driver

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/nickng/loopswap/cfg"
	"github.com/nickng/loopswap/dump"
	"github.com/nickng/loopswap/interchange"
	"github.com/nickng/loopswap/internal/logger"
	"github.com/nickng/loopswap/module"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Result is the outcome of the pass on one function.
type Result struct {
	Func    string
	Outcome interchange.Outcome
	Err     error // Post-condition violation, if any.
}

// Report collects the Results of a Run in module order.
type Report struct {
	Results  []Result
	Filtered int // Functions not selected for the pass.
}

// Count returns the number of results of kind k.
func (r *Report) Count(k interchange.Kind) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome.Kind == k {
			n++
		}
	}
	return n
}

func (r *Report) String() string {
	return fmt.Sprintf("%d applied, %d rejected, %d skipped, %d filtered",
		r.Count(interchange.Applied), r.Count(interchange.Rejected), r.Count(interchange.Skipped), r.Filtered)
}

// Driver is the main loop interchange entry point.
type Driver struct {
	Oracle interchange.Oracle
	Only   map[string]bool // If non-empty, the only functions to run on.
	DOTDir string          // If set, DOT graphs of rewritten functions go here.

	diffWriter io.Writer // Before/after diff of rewritten functions.
	*logger.Logger
}

// New returns a new Driver asking oracle for legality.
func New(oracle interchange.Oracle) *Driver {
	if oracle == nil {
		oracle = interchange.AllowAll
	}
	return &Driver{
		Oracle: oracle,
		Only:   make(map[string]bool),
		Logger: logger.Nop(),
	}
}

// SetLogger sets the zap logger of d and of the passes it runs.
func (d *Driver) SetLogger(l *zap.Logger) {
	d.Logger = logger.New(l.Sugar(), "")
}

// AddLogFiles logs to stderr and the given files.
func (d *Driver) AddLogFiles(files ...string) {
	d.Logger = newFileLogger(files...)
}

// UseDefaultLogger logs to stderr.
func (d *Driver) UseDefaultLogger() {
	d.Logger = newLogger()
}

// SetDiff writes a diff of every rewritten function to w.
func (d *Driver) SetDiff(w io.Writer) {
	d.diffWriter = w
}

// Run runs the pass on every selected function of m, rewriting them in
// place. The error combines every post-condition violation; the functions
// they name are unverifiable, all others are reported in the Report.
func (d *Driver) Run(m *module.Module) (*Report, error) {
	// Sync error ignored. See https://github.com/uber-go/zap/issues/328
	defer d.Logger.Sync()
	log := d.Logger.For("drv  ", color.FgCyan)

	pass := interchange.New(d.Oracle)
	pass.SetLogger(d.Logger)

	var (
		report = new(Report)
		errs   error
	)
	for _, fn := range m.Funcs {
		if len(d.Only) > 0 && !d.Only[fn.Name] {
			log.Debugf("%s %s: not selected", log.Module(), fn.Name)
			report.Filtered++
			continue
		}
		before := fn.Clone()
		out, err := pass.Run(fn)
		report.Results = append(report.Results, Result{Func: fn.Name, Outcome: out, Err: err})
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		if out.Kind != interchange.Applied {
			continue
		}
		if err := d.emit(before, fn); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	log.Infof("%s %s: %s", log.Module(), m.Name, report)
	return report, errs
}

// emit writes the diff and DOT graphs of a rewritten function.
func (d *Driver) emit(before, after *cfg.Func) error {
	if d.diffWriter != nil {
		if _, err := dump.Diff(d.diffWriter, before, after); err != nil {
			return err
		}
	}
	if d.DOTDir == "" {
		return nil
	}
	if _, err := dump.WriteDOT(d.DOTDir, before, ".before"); err != nil {
		return err
	}
	_, err := dump.WriteDOT(d.DOTDir, after, ".after")
	return err
}
