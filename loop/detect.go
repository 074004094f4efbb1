package loop

import (
	"sort"

	"github.com/fatih/color"
	"github.com/nickng/loopswap/cfg"
	"github.com/nickng/loopswap/internal/logger"
	"github.com/pkg/errors"
)

// MinNestBlocks is the number of distinct roles in a nest: outer preheader,
// outer header, inner header, body, inner latch, outer latch and exit.
const MinNestBlocks = 7

// Reasons for not finding a nest. None of them is a fault.
var (
	ErrTooSmall        = errors.New("too few blocks for a loop nest")
	ErrNoLoop          = errors.New("no back edge")
	ErrNotNested       = errors.New("loops are not nested")
	ErrTooManyLoops    = errors.New("more than two loops")
	ErrMultipleLatches = errors.New("header has more than one back edge")
	ErrNoExit          = errors.New("loop has no exit")
	ErrMultipleExits   = errors.New("loop has more than one exit block")
	ErrExitingBody     = errors.New("loop is left from a block other than header or latch")
	ErrBadHeader       = errors.New("header is not a loop test")
	ErrBadLatch        = errors.New("latch does not branch to header or exit only")
	ErrNoPreheader     = errors.New("loop has no preheader")
	ErrMultipleEntries = errors.New("loop is entered from more than one edge")
	ErrNotPerfect      = errors.New("loops are not perfectly nested")
	ErrEmptyBody       = errors.New("inner loop has no body")
	ErrRolesOverlap    = errors.New("nest roles are not distinct")
)

// Detector finds loop nests in a cfg.Func. It keeps no state between calls.
type Detector struct {
	*logger.Logger
}

// NewDetector returns a Detector that does not log.
func NewDetector() *Detector {
	return &Detector{Logger: logger.Nop()}
}

// SetLogger sets logger for Detector.
func (d *Detector) SetLogger(l *logger.Logger) {
	d.Logger = l.For("loop ", color.FgGreen)
}

// Detect returns the loop nest of fn, or false if fn has no canonical
// doubly-nested loop. fn is not modified.
func (d *Detector) Detect(fn *cfg.Func) (*Nest, bool) {
	nest, err := d.Analyse(fn)
	if err != nil {
		d.Debugf("%s %s: no nest: %v", d.Module(), fn.Name, err)
		return nil, false
	}
	d.Debugf("%s %s: outer %s", d.Module(), fn.Name, nest.Outer.Format(fn))
	d.Debugf("%s %s: inner %s", d.Module(), fn.Name, nest.Inner.Format(fn))
	return nest, true
}

// Analyse is Detect with the reason why no nest was found.
func (d *Detector) Analyse(fn *cfg.Func) (*Nest, error) {
	if len(fn.Blocks) < MinNestBlocks {
		return nil, errors.Wrapf(ErrTooSmall, "%d blocks", len(fn.Blocks))
	}
	loops, err := d.Loops(fn)
	if err != nil {
		return nil, err
	}
	switch len(loops) {
	case 0:
		return nil, ErrNoLoop
	case 1:
		return nil, errors.Wrap(ErrNotNested, "single loop")
	case 2:
	default:
		return nil, errors.Wrapf(ErrTooManyLoops, "%d loops", len(loops))
	}
	outer, inner := loops[0], loops[1]
	if len(inner.Blocks) > len(outer.Blocks) {
		outer, inner = inner, outer
	}
	return makeNest(outer, inner)
}

// Loops returns every loop of fn, outermost first. It fails if any loop is
// not canonical.
func (d *Detector) Loops(fn *cfg.Func) ([]*Loop, error) {
	dom := cfg.Dominators(fn)
	preds := reachablePreds(fn, dom)

	var headers []cfg.BlockID
	latches := make(map[cfg.BlockID][]cfg.BlockID)
	for _, b := range cfg.ReversePostOrder(fn) {
		for _, e := range fn.Blocks[b].Edges {
			if dom.Dominates(e.Target, b) {
				d.Debugf("%s %s: back edge %s → %s", d.Module(), fn.Name,
					fn.Blocks[b], fn.Blocks[e.Target])
				if _, seen := latches[e.Target]; !seen {
					headers = append(headers, e.Target)
				}
				latches[e.Target] = append(latches[e.Target], b)
			}
		}
	}

	var loops []*Loop
	for _, h := range headers {
		if len(latches[h]) != 1 {
			return nil, errors.Wrapf(ErrMultipleLatches, "header %s", fn.Blocks[h])
		}
		l, err := classify(fn, preds, h, latches[h][0])
		if err != nil {
			return nil, errors.Wrapf(err, "loop at %s", fn.Blocks[h])
		}
		loops = append(loops, l)
	}
	sort.SliceStable(loops, func(i, j int) bool {
		return len(loops[i].Blocks) > len(loops[j].Blocks)
	})
	return loops, nil
}

// reachablePreds returns predecessor lists restricted to reachable blocks.
func reachablePreds(fn *cfg.Func, dom *cfg.DomTree) [][]cfg.BlockID {
	preds := make([][]cfg.BlockID, len(fn.Blocks))
	for _, b := range fn.Blocks {
		if !dom.Reachable(b.ID) {
			continue
		}
		for _, e := range b.Edges {
			preds[e.Target] = append(preds[e.Target], b.ID)
		}
	}
	return preds
}

// naturalLoop collects the header and every block reaching latch backwards
// without passing through header.
func naturalLoop(preds [][]cfg.BlockID, header, latch cfg.BlockID) []cfg.BlockID {
	inLoop := map[cfg.BlockID]bool{header: true}
	work := NewStack()
	if !inLoop[latch] {
		inLoop[latch] = true
		work.Push(latch)
	}
	for !work.IsEmpty() {
		b, _ := work.Pop()
		for _, p := range preds[b] {
			if !inLoop[p] {
				inLoop[p] = true
				work.Push(p)
			}
		}
	}
	blocks := make([]cfg.BlockID, 0, len(inLoop))
	for b := range inLoop {
		blocks = append(blocks, b)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })
	return blocks
}

// classify builds the Loop of the back edge latch → header and checks it is
// canonical.
func classify(fn *cfg.Func, preds [][]cfg.BlockID, header, latch cfg.BlockID) (*Loop, error) {
	l := &Loop{
		Preheader: cfg.NoBlock,
		Header:    header,
		Latch:     latch,
		Exit:      cfg.NoBlock,
		Blocks:    naturalLoop(preds, header, latch),
	}
	if header == latch {
		return nil, errors.Wrap(ErrBadLatch, "header is its own latch")
	}

	// Exits: only header and latch may leave, and to a single block.
	for _, b := range l.Blocks {
		for _, e := range fn.Blocks[b].Edges {
			if l.Contains(e.Target) {
				continue
			}
			if b != header && b != latch {
				return nil, errors.Wrapf(ErrExitingBody, "%s → %s", fn.Blocks[b], fn.Blocks[e.Target])
			}
			if l.Exit != cfg.NoBlock && l.Exit != e.Target {
				return nil, errors.Wrapf(ErrMultipleExits, "%s and %s", fn.Blocks[l.Exit], fn.Blocks[e.Target])
			}
			l.Exit = e.Target
		}
	}
	if l.Exit == cfg.NoBlock {
		return nil, ErrNoExit
	}

	// Header: one edge into the loop, one edge to the exit.
	h := fn.Blocks[header]
	if !h.IsCond() || l.Contains(h.Edges[0].Target) == l.Contains(h.Edges[1].Target) {
		return nil, errors.Wrapf(ErrBadHeader, "%s: %s", h, fn.TermString(header))
	}

	// Latch: exactly one edge back, anything else goes to the exit.
	backs := 0
	for _, e := range fn.Blocks[latch].Edges {
		switch e.Target {
		case header:
			backs++
		case l.Exit:
		default:
			return nil, errors.Wrapf(ErrBadLatch, "%s → %s", fn.Blocks[latch], fn.Blocks[e.Target])
		}
	}
	if backs != 1 {
		return nil, errors.Wrapf(ErrBadLatch, "%s has %d edges to header", fn.Blocks[latch], backs)
	}

	// Preheader: the only outside predecessor, entering once.
	for _, p := range preds[header] {
		if l.Contains(p) {
			continue
		}
		if l.Preheader != cfg.NoBlock {
			return nil, errors.Wrapf(ErrMultipleEntries, "%s and %s", fn.Blocks[l.Preheader], fn.Blocks[p])
		}
		l.Preheader = p
	}
	if l.Preheader == cfg.NoBlock {
		return nil, ErrNoPreheader
	}
	for _, b := range l.Blocks {
		if b == header {
			continue
		}
		for _, p := range preds[b] {
			if !l.Contains(p) {
				return nil, errors.Wrapf(ErrMultipleEntries, "%s entered from %s", fn.Blocks[b], fn.Blocks[p])
			}
		}
	}
	l.dedicated = len(fn.Blocks[l.Preheader].Edges) == 1
	return l, nil
}

// makeNest checks outer and inner form a perfect nest.
func makeNest(outer, inner *Loop) (*Nest, error) {
	for _, b := range inner.Blocks {
		if !outer.Contains(b) {
			return nil, ErrNotNested
		}
	}
	if len(inner.Blocks) >= len(outer.Blocks) {
		return nil, ErrNotNested
	}
	if !outer.DedicatedPreheader() {
		return nil, errors.Wrap(ErrNoPreheader, "outer preheader branches elsewhere")
	}
	if inner.Preheader != outer.Header || inner.Exit != outer.Latch {
		return nil, ErrNotPerfect
	}
	if len(outer.Blocks) != len(inner.Blocks)+2 {
		return nil, errors.Wrap(ErrNotPerfect, "outer loop has blocks outside the inner loop")
	}
	if len(inner.Body()) == 0 {
		return nil, ErrEmptyBody
	}
	roles := []cfg.BlockID{outer.Preheader, outer.Header, inner.Header, inner.Latch, outer.Latch, outer.Exit}
	seen := make(map[cfg.BlockID]bool)
	for _, r := range roles {
		if seen[r] {
			return nil, ErrRolesOverlap
		}
		seen[r] = true
	}
	return &Nest{Outer: *outer, Inner: *inner}, nil
}
