package ssa

import (
	"fmt"

	"github.com/nickng/loopswap/cfg"
	"github.com/nickng/loopswap/module"
	"github.com/pkg/errors"
	"golang.org/x/tools/go/ssa"
)

// Convert lowers the block graph of f to a cfg.Func.
//
// Block i of f becomes block i of the result, named after the SSA block
// comment (e.g. "for.loop.2"). If becomes a CondTrue/CondFalse pair, Jump a
// single Jump edge, Return and Panic leave the block without edges.
func Convert(f *ssa.Function) (*cfg.Func, error) {
	if len(f.Blocks) == 0 {
		return nil, errors.Wrapf(cfg.ErrNoBlocks, "%s has no body", f)
	}
	fn := cfg.NewFunc(FuncName(f))
	for _, b := range f.Blocks {
		fn.AddBlock(blockName(b))
	}
	for _, b := range f.Blocks {
		id := cfg.BlockID(b.Index)
		if len(b.Instrs) == 0 {
			return nil, errors.Wrapf(ErrUnknownTerm, "%s: block %d is empty", f, b.Index)
		}
		switch term := b.Instrs[len(b.Instrs)-1].(type) {
		case *ssa.If:
			fn.If(id, cfg.BlockID(b.Succs[0].Index), cfg.BlockID(b.Succs[1].Index))
		case *ssa.Jump:
			fn.Jump(id, cfg.BlockID(b.Succs[0].Index))
		case *ssa.Return, *ssa.Panic:
			fn.Return(id)
		default:
			return nil, errors.Wrapf(ErrUnknownTerm, "%s: block %d ends in %T", f, b.Index, term)
		}
	}
	if err := fn.Validate(); err != nil {
		return nil, err
	}
	return fn, nil
}

func blockName(b *ssa.BasicBlock) string {
	if b.Comment == "" {
		return ""
	}
	return fmt.Sprintf("%s.%d", b.Comment, b.Index)
}

// ToModule converts every source function of info into a module called name.
func ToModule(info *Info, name string) (*module.Module, error) {
	if len(info.Pkgs) == 0 {
		return nil, ErrNoSrcPkgs
	}
	m := module.New(name)
	for _, f := range info.Funcs() {
		fn, err := Convert(f)
		if err != nil {
			return nil, err
		}
		m.Add(fn)
	}
	return m, nil
}
