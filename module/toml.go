package module

import (
	"bytes"
	"io"
	"os"

	"github.com/nickng/loopswap/cfg"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// ErrSyntax is the cause of every malformed module error.
var ErrSyntax = errors.New("malformed module")

// tomlModule is the on-disk layout:
//
//	name = "m"
//	[[func]]
//	name = "f"
//	entry = "P"
//	  [[func.block]]
//	  name = "P"
//	  jump = "H"
//	  [[func.block]]
//	  name = "H"
//	  then = "B"
//	  else = "E"
//
// A block with neither jump nor then/else returns.
type tomlModule struct {
	Name  string     `toml:"name"`
	Funcs []tomlFunc `toml:"func"`
}

type tomlFunc struct {
	Name   string      `toml:"name"`
	Entry  string      `toml:"entry,omitempty"`
	Blocks []tomlBlock `toml:"block"`
}

type tomlBlock struct {
	Name string `toml:"name"`
	Jump string `toml:"jump,omitempty"`
	Then string `toml:"then,omitempty"`
	Else string `toml:"else,omitempty"`
}

// ReadTOML parses a module from r. Every function is validated.
func ReadTOML(r io.Reader) (*Module, error) {
	var tm tomlModule
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&tm); err != nil {
		return nil, errors.Wrap(err, "cannot decode module")
	}
	m := New(tm.Name)
	for _, tf := range tm.Funcs {
		fn, err := tf.build()
		if err != nil {
			return nil, err
		}
		m.Add(fn)
	}
	return m, nil
}

// LoadFile reads the module in the TOML file at path.
func LoadFile(path string) (*Module, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read module %s", path)
	}
	m, err := ReadTOML(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return m, nil
}

func (tf *tomlFunc) build() (*cfg.Func, error) {
	if tf.Name == "" {
		return nil, errors.Wrap(ErrSyntax, "function without name")
	}
	fn := cfg.NewFunc(tf.Name)
	ids := make(map[string]cfg.BlockID)
	for _, tb := range tf.Blocks {
		if tb.Name == "" {
			return nil, errors.Wrapf(ErrSyntax, "%s: block without name", tf.Name)
		}
		if _, dup := ids[tb.Name]; dup {
			return nil, errors.Wrapf(ErrSyntax, "%s: block %s defined twice", tf.Name, tb.Name)
		}
		ids[tb.Name] = fn.AddBlock(tb.Name)
	}
	target := func(from, name string) (cfg.BlockID, error) {
		id, ok := ids[name]
		if !ok {
			return cfg.NoBlock, errors.Wrapf(ErrSyntax, "%s: %s branches to unknown block %s", tf.Name, from, name)
		}
		return id, nil
	}
	for _, tb := range tf.Blocks {
		b := ids[tb.Name]
		switch {
		case tb.Jump != "" && (tb.Then != "" || tb.Else != ""):
			return nil, errors.Wrapf(ErrSyntax, "%s: %s has both jump and then/else", tf.Name, tb.Name)
		case tb.Jump != "":
			to, err := target(tb.Name, tb.Jump)
			if err != nil {
				return nil, err
			}
			fn.Jump(b, to)
		case tb.Then != "" || tb.Else != "":
			if tb.Then == "" || tb.Else == "" {
				return nil, errors.Wrapf(ErrSyntax, "%s: %s needs both then and else", tf.Name, tb.Name)
			}
			t, err := target(tb.Name, tb.Then)
			if err != nil {
				return nil, err
			}
			f, err := target(tb.Name, tb.Else)
			if err != nil {
				return nil, err
			}
			fn.If(b, t, f)
		}
	}
	if tf.Entry != "" {
		entry, err := target("entry", tf.Entry)
		if err != nil {
			return nil, err
		}
		fn.Entry = entry
	}
	if err := fn.Validate(); err != nil {
		return nil, err
	}
	return fn, nil
}

// WriteTOML writes m to w in the format read by ReadTOML.
// Unnamed blocks are written as b<id>.
func (m *Module) WriteTOML(w io.Writer) error {
	tm := tomlModule{Name: m.Name}
	for _, fn := range m.Funcs {
		tf := tomlFunc{Name: fn.Name}
		if b := fn.Block(fn.Entry); b != nil {
			tf.Entry = b.String()
		}
		for _, b := range fn.Blocks {
			tb := tomlBlock{Name: b.String()}
			switch len(b.Edges) {
			case 0:
			case 1:
				tb.Jump = fn.Blocks[b.Edges[0].Target].String()
			case 2:
				tb.Then = fn.Blocks[b.Edges[0].Target].String()
				tb.Else = fn.Blocks[b.Edges[1].Target].String()
			default:
				return errors.Wrapf(cfg.ErrBadTermShape, "%s: %s has %d edges", fn.Name, b, len(b.Edges))
			}
			tf.Blocks = append(tf.Blocks, tb)
		}
		tm.Funcs = append(tm.Funcs, tf)
	}
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return errors.Wrap(enc.Encode(tm), "cannot encode module")
}
