// Package cfg provides the control flow graph model used by the loop passes.
//
// Blocks live in an index-stable arena owned by a Func: the BlockID of a
// block is its index in Func.Blocks. Edges are explicit (kind, target) pairs
// stored on the source block, so back edges are ordinary data.
package cfg

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// BlockID identifies a block within its Func.
type BlockID int

// NoBlock is the BlockID of a missing block.
const NoBlock BlockID = -1

var (
	ErrNoBlocks     = errors.New("cfg: function has no blocks")
	ErrBadEntry     = errors.New("cfg: entry block out of range")
	ErrBadTarget    = errors.New("cfg: edge target out of range")
	ErrBadTermShape = errors.New("cfg: malformed terminator")
	ErrDupName      = errors.New("cfg: duplicate block name")
)

// EdgeKind is the kind of a control flow edge.
type EdgeKind int

const (
	Jump      EdgeKind = iota // Unconditional.
	CondTrue                  // Taken branch of a conditional.
	CondFalse                 // Not-taken branch of a conditional.
)

func (k EdgeKind) String() string {
	switch k {
	case Jump:
		return "jump"
	case CondTrue:
		return "true"
	case CondFalse:
		return "false"
	}
	return fmt.Sprintf("EdgeKind(%d)", int(k))
}

// Edge is an outgoing edge of a block.
type Edge struct {
	Kind   EdgeKind
	Target BlockID
}

// Block is a basic block. Only its terminator edges are modelled.
//
// A block has either no edges (it returns), one Jump edge, or a CondTrue edge
// followed by a CondFalse edge.
type Block struct {
	ID    BlockID
	Name  string
	Edges []Edge
}

// Succs returns the targets of b in slot order.
func (b *Block) Succs() []BlockID {
	succs := make([]BlockID, len(b.Edges))
	for i, e := range b.Edges {
		succs[i] = e.Target
	}
	return succs
}

// HasSucc returns true if any edge of b targets id.
func (b *Block) HasSucc(id BlockID) bool {
	for _, e := range b.Edges {
		if e.Target == id {
			return true
		}
	}
	return false
}

// IsCond returns true if b ends with a conditional branch.
func (b *Block) IsCond() bool {
	return len(b.Edges) == 2
}

func (b *Block) String() string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("b%d", b.ID)
}

// Func is a function body as a graph of blocks.
type Func struct {
	Name   string
	Entry  BlockID
	Blocks []*Block
}

// NewFunc returns an empty Func. The first block added becomes the entry.
func NewFunc(name string) *Func {
	return &Func{Name: name, Entry: NoBlock}
}

// AddBlock appends a new block with no edges and returns its ID.
func (f *Func) AddBlock(name string) BlockID {
	id := BlockID(len(f.Blocks))
	f.Blocks = append(f.Blocks, &Block{ID: id, Name: name})
	if f.Entry == NoBlock {
		f.Entry = id
	}
	return id
}

// Jump sets the terminator of from to an unconditional jump to to.
func (f *Func) Jump(from, to BlockID) {
	f.Blocks[from].Edges = []Edge{{Kind: Jump, Target: to}}
}

// If sets the terminator of from to a conditional branch.
func (f *Func) If(from, then, els BlockID) {
	f.Blocks[from].Edges = []Edge{
		{Kind: CondTrue, Target: then},
		{Kind: CondFalse, Target: els},
	}
}

// Return clears the terminator edges of b, making it a returning block.
func (f *Func) Return(b BlockID) {
	f.Blocks[b].Edges = nil
}

// Block returns the block with the given id, or nil if out of range.
func (f *Func) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(f.Blocks) {
		return nil
	}
	return f.Blocks[id]
}

// Lookup finds a block by name.
func (f *Func) Lookup(name string) (BlockID, bool) {
	for _, b := range f.Blocks {
		if b.Name == name {
			return b.ID, true
		}
	}
	return NoBlock, false
}

// Contains returns true if id is a valid block of f.
func (f *Func) Contains(id BlockID) bool {
	return id >= 0 && int(id) < len(f.Blocks)
}

// Succs returns the successors of id in slot order.
func (f *Func) Succs(id BlockID) []BlockID {
	return f.Blocks[id].Succs()
}

// Preds computes the predecessor lists of every block.
// A predecessor appears once per edge, so a block branching twice to the same
// target is listed twice.
func (f *Func) Preds() [][]BlockID {
	preds := make([][]BlockID, len(f.Blocks))
	for _, b := range f.Blocks {
		for _, e := range b.Edges {
			preds[e.Target] = append(preds[e.Target], b.ID)
		}
	}
	return preds
}

// NumEdges returns the total number of edges in f.
func (f *Func) NumEdges() int {
	n := 0
	for _, b := range f.Blocks {
		n += len(b.Edges)
	}
	return n
}

// Clone returns a deep copy of f.
func (f *Func) Clone() *Func {
	c := &Func{Name: f.Name, Entry: f.Entry, Blocks: make([]*Block, len(f.Blocks))}
	for i, b := range f.Blocks {
		edges := make([]Edge, len(b.Edges))
		copy(edges, b.Edges)
		c.Blocks[i] = &Block{ID: b.ID, Name: b.Name, Edges: edges}
	}
	return c
}

// Equal returns true if f and g have the same entry, blocks and edges in the
// same slots.
func (f *Func) Equal(g *Func) bool {
	if f.Entry != g.Entry || len(f.Blocks) != len(g.Blocks) {
		return false
	}
	for i, b := range f.Blocks {
		o := g.Blocks[i]
		if b.ID != o.ID || b.Name != o.Name || len(b.Edges) != len(o.Edges) {
			return false
		}
		for j := range b.Edges {
			if b.Edges[j] != o.Edges[j] {
				return false
			}
		}
	}
	return true
}

// EdgeKey is a (source, kind, target) triple.
type EdgeKey struct {
	From BlockID
	Kind EdgeKind
	To   BlockID
}

// EdgeSet returns the edges of f as a sorted slice of EdgeKey.
func (f *Func) EdgeSet() []EdgeKey {
	var keys []EdgeKey
	for _, b := range f.Blocks {
		for _, e := range b.Edges {
			keys = append(keys, EdgeKey{From: b.ID, Kind: e.Kind, To: e.Target})
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].From != keys[j].From {
			return keys[i].From < keys[j].From
		}
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].To < keys[j].To
	})
	return keys
}

// Validate checks that every edge targets a block of f, every terminator has
// a valid shape, and block names are unique.
func (f *Func) Validate() error {
	if len(f.Blocks) == 0 {
		return ErrNoBlocks
	}
	if !f.Contains(f.Entry) {
		return errors.Wrapf(ErrBadEntry, "%s: entry %d", f.Name, f.Entry)
	}
	names := make(map[string]bool)
	for i, b := range f.Blocks {
		if b.ID != BlockID(i) {
			return errors.Errorf("cfg: %s: block at index %d has id %d", f.Name, i, b.ID)
		}
		if b.Name != "" {
			if names[b.Name] {
				return errors.Wrapf(ErrDupName, "%s: %q", f.Name, b.Name)
			}
			names[b.Name] = true
		}
		for _, e := range b.Edges {
			if !f.Contains(e.Target) {
				return errors.Wrapf(ErrBadTarget, "%s: %s -> %d", f.Name, b, e.Target)
			}
		}
		switch len(b.Edges) {
		case 0:
		case 1:
			if b.Edges[0].Kind != Jump {
				return errors.Wrapf(ErrBadTermShape, "%s: %s has a single %s edge", f.Name, b, b.Edges[0].Kind)
			}
		case 2:
			if b.Edges[0].Kind != CondTrue || b.Edges[1].Kind != CondFalse {
				return errors.Wrapf(ErrBadTermShape, "%s: %s has edges %s, %s", f.Name, b, b.Edges[0].Kind, b.Edges[1].Kind)
			}
		default:
			return errors.Wrapf(ErrBadTermShape, "%s: %s has %d edges", f.Name, b, len(b.Edges))
		}
	}
	return nil
}
