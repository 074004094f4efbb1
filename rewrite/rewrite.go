// Package rewrite applies batches of branch target redirections to a
// cfg.Func, all or nothing.
package rewrite

import (
	"fmt"

	"github.com/nickng/loopswap/cfg"
	"github.com/pkg/errors"
)

// ErrRewrite is the cause of every error returned by Apply.
var ErrRewrite = errors.New("rewrite failed")

// Edit redirects one edge of Block whose target is Old to New.
type Edit struct {
	Block cfg.BlockID
	Old   cfg.BlockID
	New   cfg.BlockID
}

// Format returns e using block names from fn.
func (e Edit) Format(fn *cfg.Func) string {
	name := func(id cfg.BlockID) string {
		if b := fn.Block(id); b != nil {
			return b.String()
		}
		return fmt.Sprintf("?%d", id)
	}
	return fmt.Sprintf("%s: %s → %s", name(e.Block), name(e.Old), name(e.New))
}

// TargetNotFoundError is returned when Block has no edge to Old.
type TargetNotFoundError struct {
	Block cfg.BlockID
	Old   cfg.BlockID
}

func (e *TargetNotFoundError) Error() string {
	return fmt.Sprintf("block %d has no edge to %d", e.Block, e.Old)
}

func (e *TargetNotFoundError) Cause() error { return ErrRewrite }

// DuplicateEditError is returned when two edits of a batch name the same
// (Block, Old) pair.
type DuplicateEditError struct {
	Block cfg.BlockID
	Old   cfg.BlockID
}

func (e *DuplicateEditError) Error() string {
	return fmt.Sprintf("duplicate edit of block %d edge to %d", e.Block, e.Old)
}

func (e *DuplicateEditError) Cause() error { return ErrRewrite }

// UnknownBlockError is returned when an edit names a block outside the
// function.
type UnknownBlockError struct {
	Block cfg.BlockID
}

func (e *UnknownBlockError) Error() string {
	return fmt.Sprintf("no block %d in function", e.Block)
}

func (e *UnknownBlockError) Cause() error { return ErrRewrite }

// IsTargetNotFound returns true if err is a *TargetNotFoundError.
func IsTargetNotFound(err error) bool {
	_, ok := err.(*TargetNotFoundError)
	return ok
}

// IsDuplicateEdit returns true if err is a *DuplicateEditError.
func IsDuplicateEdit(err error) bool {
	_, ok := err.(*DuplicateEditError)
	return ok
}

// Rewriter applies edit batches and keeps a log of the committed ones.
type Rewriter struct {
	committed [][]Edit
}

// New returns a new Rewriter.
func New() *Rewriter {
	return &Rewriter{}
}

// slot is a resolved edit: edge index within the block.
type slot struct {
	block cfg.BlockID
	index int
	to    cfg.BlockID
}

// Apply redirects the edges named by edits.
//
// Every edit is resolved against the edge lists as they are before the call,
// so edits of one batch never see each other: an edit takes the first edge of
// Block targeting Old and keeps that edge's kind and slot. If any edit fails
// to resolve, nothing is written and fn is left as it was.
func (r *Rewriter) Apply(fn *cfg.Func, edits []Edit) error {
	staged, err := resolve(fn, edits)
	if err != nil {
		return err
	}
	for _, s := range staged {
		fn.Blocks[s.block].Edges[s.index].Target = s.to
	}
	batch := make([]Edit, len(edits))
	copy(batch, edits)
	r.committed = append(r.committed, batch)
	return nil
}

// Committed returns the batches applied so far, oldest first.
func (r *Rewriter) Committed() [][]Edit {
	return r.committed
}

// Slots returns the edge indices per block that Apply would write for
// edits, without writing them.
func Slots(fn *cfg.Func, edits []Edit) (map[cfg.BlockID][]int, error) {
	staged, err := resolve(fn, edits)
	if err != nil {
		return nil, err
	}
	written := make(map[cfg.BlockID][]int)
	for _, s := range staged {
		written[s.block] = append(written[s.block], s.index)
	}
	return written, nil
}

// resolve stages edits against the current edge lists of fn.
func resolve(fn *cfg.Func, edits []Edit) ([]slot, error) {
	type pair struct{ block, old cfg.BlockID }
	seen := make(map[pair]bool)
	staged := make([]slot, 0, len(edits))

	for _, e := range edits {
		for _, id := range []cfg.BlockID{e.Block, e.Old, e.New} {
			if !fn.Contains(id) {
				return nil, &UnknownBlockError{Block: id}
			}
		}
		k := pair{e.Block, e.Old}
		if seen[k] {
			return nil, &DuplicateEditError{Block: e.Block, Old: e.Old}
		}
		seen[k] = true

		idx := -1
		for i, edge := range fn.Blocks[e.Block].Edges {
			if edge.Target == e.Old {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, &TargetNotFoundError{Block: e.Block, Old: e.Old}
		}
		staged = append(staged, slot{block: e.Block, index: idx, to: e.New})
	}
	return staged, nil
}
