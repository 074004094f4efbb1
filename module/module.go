// Package module holds an ordered collection of functions handed to the loop
// passes, and its TOML textual form.
package module

import "github.com/nickng/loopswap/cfg"

// Module is a named, ordered list of functions.
type Module struct {
	Name  string
	Funcs []*cfg.Func
}

// New returns an empty Module.
func New(name string) *Module {
	return &Module{Name: name}
}

// Add appends fn to m.
func (m *Module) Add(fn *cfg.Func) {
	m.Funcs = append(m.Funcs, fn)
}

// Func returns the function called name, or nil.
func (m *Module) Func(name string) *cfg.Func {
	for _, fn := range m.Funcs {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Clone returns a deep copy of m.
func (m *Module) Clone() *Module {
	c := &Module{Name: m.Name, Funcs: make([]*cfg.Func, len(m.Funcs))}
	for i, fn := range m.Funcs {
		c.Funcs[i] = fn.Clone()
	}
	return c
}
