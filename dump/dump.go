// Package dump writes functions and modules for humans: block listings,
// before/after diffs of a rewrite and Graphviz DOT graphs.
package dump

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/nickng/loopswap/cfg"
	"github.com/nickng/loopswap/module"
	"github.com/pkg/errors"
)

var (
	removed = color.New(color.FgRed)
	added   = color.New(color.FgGreen)
	title   = color.New(color.Bold)
)

// Text writes every function of m as a block listing.
func Text(w io.Writer, m *module.Module) error {
	if m.Name != "" {
		if _, err := fmt.Fprintf(w, "module %s\n\n", m.Name); err != nil {
			return err
		}
	}
	for i, fn := range m.Funcs {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fn.WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}

// Diff writes the terminators of after that differ from before, with the
// old terminator struck in red and the new one in green. It returns the
// number of blocks changed. before and after must have the same blocks.
func Diff(w io.Writer, before, after *cfg.Func) (int, error) {
	if len(before.Blocks) != len(after.Blocks) {
		return 0, errors.Errorf("dump: %s has %d blocks, was %d", after.Name, len(after.Blocks), len(before.Blocks))
	}
	if _, err := fmt.Fprintf(w, "%s\n", title.Sprintf("func %s:", after.Name)); err != nil {
		return 0, err
	}
	changed := 0
	for i, b := range after.Blocks {
		old, cur := before.TermString(cfg.BlockID(i)), after.TermString(b.ID)
		if old == cur {
			continue
		}
		changed++
		if _, err := fmt.Fprintf(w, "  %s: %s => %s\n", b, removed.Sprint(old), added.Sprint(cur)); err != nil {
			return changed, err
		}
	}
	if changed == 0 {
		if _, err := io.WriteString(w, "  (unchanged)\n"); err != nil {
			return 0, err
		}
	}
	return changed, nil
}
