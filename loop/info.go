package loop

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/nickng/loopswap/cfg"
)

// Loop holds the structural roles of a canonical loop.
type Loop struct {
	Preheader cfg.BlockID // Only block outside the loop branching to Header.
	Header    cfg.BlockID // Loop test, target of the back edge.
	Latch     cfg.BlockID // Source of the back edge.
	Exit      cfg.BlockID // Only block outside the loop reached from inside.

	Blocks []cfg.BlockID // Natural loop blocks (incl. Header and Latch), sorted.

	dedicated bool // Preheader has Header as its only successor.
}

// Contains returns true if b is in the loop.
func (l *Loop) Contains(b cfg.BlockID) bool {
	i := sort.Search(len(l.Blocks), func(i int) bool { return l.Blocks[i] >= b })
	return i < len(l.Blocks) && l.Blocks[i] == b
}

// Body returns the loop blocks other than the header and the latch.
func (l *Loop) Body() []cfg.BlockID {
	var body []cfg.BlockID
	for _, b := range l.Blocks {
		if b != l.Header && b != l.Latch {
			body = append(body, b)
		}
	}
	return body
}

// DedicatedPreheader returns true if the preheader branches only to the
// header.
func (l *Loop) DedicatedPreheader() bool {
	return l.dedicated
}

// Format returns the roles of l using block names from fn.
func (l *Loop) Format(fn *cfg.Func) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "preheader=%s header=%s latch=%s exit=%s blocks={",
		fn.Blocks[l.Preheader], fn.Blocks[l.Header], fn.Blocks[l.Latch], fn.Blocks[l.Exit])
	for i, b := range l.Blocks {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString(fn.Blocks[b].String())
	}
	buf.WriteString("}")
	return buf.String()
}

// Nest is a perfectly nested pair of canonical loops:
// Inner.Preheader == Outer.Header and Inner.Exit == Outer.Latch.
type Nest struct {
	Outer Loop
	Inner Loop
}

// Roles is the role assignment of a loop by block name.
type Roles struct {
	Preheader string
	Header    string
	Latch     string
	Exit      string
}

// Description is the structural, read-only view of a Nest handed to
// legality oracles. It names blocks only.
type Description struct {
	Func  string
	Outer Roles
	Inner Roles
}

func (d Description) String() string {
	return fmt.Sprintf("%s: outer(%s,%s,%s,%s) inner(%s,%s,%s,%s)", d.Func,
		d.Outer.Preheader, d.Outer.Header, d.Outer.Latch, d.Outer.Exit,
		d.Inner.Preheader, d.Inner.Header, d.Inner.Latch, d.Inner.Exit)
}

// Describe returns the Description of n in fn.
func (n *Nest) Describe(fn *cfg.Func) Description {
	roles := func(l *Loop) Roles {
		return Roles{
			Preheader: fn.Blocks[l.Preheader].String(),
			Header:    fn.Blocks[l.Header].String(),
			Latch:     fn.Blocks[l.Latch].String(),
			Exit:      fn.Blocks[l.Exit].String(),
		}
	}
	return Description{Func: fn.Name, Outer: roles(&n.Outer), Inner: roles(&n.Inner)}
}

// Swapped returns true if m is n with the outer and inner loop exchanged:
// headers and latches trade places, the nest keeps its preheader and exit.
func (n *Nest) Swapped(m *Nest) bool {
	return m.Outer.Header == n.Inner.Header &&
		m.Outer.Latch == n.Inner.Latch &&
		m.Inner.Header == n.Outer.Header &&
		m.Inner.Latch == n.Outer.Latch &&
		m.Outer.Preheader == n.Outer.Preheader &&
		m.Outer.Exit == n.Outer.Exit
}
