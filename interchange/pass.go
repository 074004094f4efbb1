// Package interchange implements loop interchange on perfectly nested loop
// pairs: the inner loop becomes the outer loop and vice versa.
//
// The pass only rewires branch targets. Whether the swap preserves the
// program's dependences is decided by an Oracle supplied by the caller.
package interchange

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/nickng/loopswap/cfg"
	"github.com/nickng/loopswap/internal/logger"
	"github.com/nickng/loopswap/loop"
	"github.com/nickng/loopswap/rewrite"
	"github.com/pkg/errors"
)

// ErrPostcondition is the cause of every PostconditionError.
var ErrPostcondition = errors.New("interchange post-condition violated")

// PostconditionError reports a committed rewrite that failed verification.
// The function it names must be treated as unverifiable.
type PostconditionError struct {
	Func   string
	Reason string
}

func (e *PostconditionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Func, ErrPostcondition, e.Reason)
}

func (e *PostconditionError) Cause() error { return ErrPostcondition }

// Pass runs loop interchange one function at a time.
type Pass struct {
	Detector *loop.Detector
	Oracle   Oracle

	rewriter *rewrite.Rewriter
	plan     func(*cfg.Func, *loop.Nest) []rewrite.Edit
	*logger.Logger
}

// New returns a Pass asking oracle for legality. A nil oracle approves every
// nest.
func New(oracle Oracle) *Pass {
	if oracle == nil {
		oracle = AllowAll
	}
	return &Pass{
		Detector: loop.NewDetector(),
		Oracle:   oracle,
		rewriter: rewrite.New(),
		plan:     Plan,
		Logger:   logger.Nop(),
	}
}

// SetLogger sets logger for Pass and its Detector.
func (p *Pass) SetLogger(l *logger.Logger) {
	p.Logger = l.For("swap ", color.FgMagenta)
	p.Detector.SetLogger(l)
}

// Rewriter returns the rewriter holding the batches committed by p.
func (p *Pass) Rewriter() *rewrite.Rewriter {
	return p.rewriter
}

// Run interchanges the loop nest of fn, if any.
//
// Skipped and Rejected outcomes leave fn untouched. A non-nil error is
// always a *PostconditionError: the rewrite was committed but the result is
// not the expected swapped nest.
func (p *Pass) Run(fn *cfg.Func) (Outcome, error) {
	nest, ok := p.Detector.Detect(fn)
	if !ok {
		p.Debugf("%s %s: skipped", p.Module(), fn.Name)
		return Outcome{Kind: Skipped}, nil
	}

	desc := nest.Describe(fn)
	if v := p.Oracle.Legal(desc); !v.Legal {
		p.Infof("%s %s: oracle refused %s: %s", p.Module(), fn.Name, desc, v.Reason)
		return Outcome{Kind: Rejected, Reason: IllegalDependence, Detail: v.Reason, Nest: nest}, nil
	}

	edits := p.plan(fn, nest)
	before := fn.Clone()
	if err := p.rewriter.Apply(fn, edits); err != nil {
		p.Warnf("%s %s: rewrite failed: %v", p.Module(), fn.Name, err)
		return Outcome{Kind: Rejected, Reason: MalformedCFG, Detail: err.Error(), Nest: nest}, nil
	}
	for _, e := range edits {
		p.Debugf("%s %s: %s", p.Module(), fn.Name, e.Format(fn))
	}

	if err := p.verify(before, fn, nest, edits); err != nil {
		p.Errorf("%s %v", p.Module(), err)
		return Outcome{Kind: Applied, Nest: nest, Edits: edits}, err
	}
	p.Infof("%s %s: interchanged %s", p.Module(), fn.Name, desc)
	return Outcome{Kind: Applied, Nest: nest, Edits: edits}, nil
}

// verify checks that after is before with only the edited slots changed, and
// that it holds the nest with its loops swapped.
func (p *Pass) verify(before, after *cfg.Func, nest *loop.Nest, edits []rewrite.Edit) error {
	fail := func(format string, args ...interface{}) error {
		return &PostconditionError{Func: after.Name, Reason: fmt.Sprintf(format, args...)}
	}
	if len(before.Blocks) != len(after.Blocks) {
		return fail("block count %d, was %d", len(after.Blocks), len(before.Blocks))
	}
	if before.NumEdges() != after.NumEdges() {
		return fail("edge count %d, was %d", after.NumEdges(), before.NumEdges())
	}
	if before.Entry != after.Entry {
		return fail("entry moved from %s to %s", before.Blocks[before.Entry], after.Blocks[after.Entry])
	}
	slots, err := rewrite.Slots(before, edits)
	if err != nil {
		return fail("committed batch does not resolve: %v", err)
	}
	for i, b := range before.Blocks {
		a := after.Blocks[i]
		if len(a.Edges) != len(b.Edges) {
			return fail("%s has %d edges, had %d", b, len(a.Edges), len(b.Edges))
		}
		edited := make(map[int]bool)
		for _, s := range slots[b.ID] {
			edited[s] = true
		}
		for j := range b.Edges {
			if a.Edges[j].Kind != b.Edges[j].Kind {
				return fail("%s edge %d changed kind", b, j)
			}
			if !edited[j] && a.Edges[j].Target != b.Edges[j].Target {
				return fail("%s edge %d changed outside the batch", b, j)
			}
		}
	}

	reachBefore, reachAfter := cfg.ReachableBlocks(before), cfg.ReachableBlocks(after)
	for i := range reachBefore {
		if reachBefore[i] && !reachAfter[i] {
			return fail("%s no longer reachable", after.Blocks[i])
		}
	}

	swapped, err := p.Detector.Analyse(after)
	if err != nil {
		return fail("no loop nest after rewrite: %v", err)
	}
	if !nest.Swapped(swapped) {
		return fail("loops not swapped: got outer %s, inner %s",
			swapped.Outer.Format(after), swapped.Inner.Format(after))
	}
	return nil
}
