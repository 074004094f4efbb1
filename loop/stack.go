package loop

import (
	"errors"

	"github.com/nickng/loopswap/cfg"
)

var ErrEmptyStack = errors.New("error: empty stack")

// Stack is a stack of cfg.BlockID, used as the worklist when collecting
// natural loop bodies.
type Stack struct {
	s []cfg.BlockID
}

// NewStack creates a new Stack.
func NewStack() *Stack {
	return &Stack{s: []cfg.BlockID{}}
}

// Push adds a new block to the top of stack.
func (s *Stack) Push(b cfg.BlockID) {
	s.s = append(s.s, b)
}

// Pop removes a block from top of stack.
func (s *Stack) Pop() (cfg.BlockID, error) {
	size := len(s.s)
	if size == 0 {
		return cfg.NoBlock, ErrEmptyStack
	}
	b := s.s[size-1]
	s.s = s.s[:size-1]
	return b, nil
}

// IsEmpty returns true if stack is empty.
func (s *Stack) IsEmpty() bool {
	return len(s.s) == 0
}
