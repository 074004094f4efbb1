package cfg_test

import (
	"testing"

	"github.com/nickng/loopswap/cfg"
	"github.com/nickng/loopswap/internal/nesttest"
)

func TestDominators(t *testing.T) {
	f := nesttest.Perfect()
	dom := cfg.Dominators(f)
	id := func(name string) cfg.BlockID { return nesttest.ID(f, name) }

	tests := []struct {
		a, b string
		want bool
	}{
		{"P", "E", true},
		{"H1", "L1", true},
		{"H1", "E", true},
		{"H2", "L2", true},
		{"H2", "L1", true},
		{"B", "L2", true},
		{"L2", "L1", false},
		{"L1", "H1", false},
		{"E", "E", true},
	}
	for _, tt := range tests {
		if got := dom.Dominates(id(tt.a), id(tt.b)); got != tt.want {
			t.Errorf("Dominates(%s, %s) = %t, want %t", tt.a, tt.b, got, tt.want)
		}
	}
	if want, got := id("H2"), dom.Idom(id("L1")); want != got {
		t.Errorf("idom(L1) = %d, want H2 (%d)", got, want)
	}
	if want, got := cfg.NoBlock, dom.Idom(f.Entry); want != got {
		t.Errorf("idom(entry) = %d, want NoBlock", got)
	}
}

func TestDominatorsUnreachable(t *testing.T) {
	f := nesttest.Perfect()
	dead := f.AddBlock("dead")
	f.Jump(dead, nesttest.ID(f, "E"))
	dom := cfg.Dominators(f)
	if dom.Reachable(dead) {
		t.Errorf("dead block should be unreachable")
	}
	if dom.Dominates(dead, dead) {
		t.Errorf("unreachable blocks dominate nothing")
	}
	if !dom.Dominates(f.Entry, nesttest.ID(f, "E")) {
		t.Errorf("entry should still dominate E")
	}
}

func TestReversePostOrder(t *testing.T) {
	f := nesttest.Perfect()
	rpo := cfg.ReversePostOrder(f)
	if len(rpo) != len(f.Blocks) {
		t.Fatalf("rpo has %d blocks, want %d", len(rpo), len(f.Blocks))
	}
	if rpo[0] != f.Entry {
		t.Errorf("rpo[0] = %d, want entry", rpo[0])
	}
	pos := make(map[cfg.BlockID]int)
	for i, b := range rpo {
		pos[b] = i
	}
	if pos[nesttest.ID(f, "H1")] > pos[nesttest.ID(f, "H2")] {
		t.Errorf("H1 should come before H2 in RPO")
	}
}
