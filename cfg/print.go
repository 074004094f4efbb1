package cfg

import (
	"bytes"
	"fmt"
	"io"
)

// WriteTo writes f to w in a human readable block listing:
//
//	func f (entry P):
//	  P:  jump H1
//	  H1: if H2 else E
//	  E:  return
func (f *Func) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	entry := "none"
	if b := f.Block(f.Entry); b != nil {
		entry = b.String()
	}
	fmt.Fprintf(&buf, "func %s (entry %s):\n", f.Name, entry)
	width := 0
	for _, b := range f.Blocks {
		if n := len(b.String()); n > width {
			width = n
		}
	}
	for _, b := range f.Blocks {
		fmt.Fprintf(&buf, "  %-*s %s\n", width+1, b.String()+":", f.TermString(b.ID))
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// TermString formats the terminator of block id.
func (f *Func) TermString(id BlockID) string {
	b := f.Blocks[id]
	switch len(b.Edges) {
	case 0:
		return "return"
	case 1:
		return fmt.Sprintf("jump %s", f.blockName(b.Edges[0].Target))
	case 2:
		return fmt.Sprintf("if %s else %s", f.blockName(b.Edges[0].Target), f.blockName(b.Edges[1].Target))
	}
	return fmt.Sprintf("<%d edges>", len(b.Edges))
}

func (f *Func) blockName(id BlockID) string {
	if b := f.Block(id); b != nil {
		return b.String()
	}
	return fmt.Sprintf("?%d", id)
}

func (f *Func) String() string {
	var buf bytes.Buffer
	f.WriteTo(&buf)
	return buf.String()
}
