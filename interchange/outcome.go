package interchange

import (
	"fmt"

	"github.com/nickng/loopswap/loop"
	"github.com/nickng/loopswap/rewrite"
)

// Kind is the kind of Outcome of a pass run.
type Kind int

const (
	Skipped  Kind = iota // No loop nest found.
	Applied              // Loops interchanged and verified.
	Rejected             // Nest found but left untouched.
)

func (k Kind) String() string {
	switch k {
	case Skipped:
		return "skipped"
	case Applied:
		return "applied"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Reason says why a nest was Rejected.
type Reason int

const (
	NoReason          Reason = iota
	IllegalDependence        // Legality oracle refused the interchange.
	MalformedCFG             // The edit batch did not match the CFG.
)

func (r Reason) String() string {
	switch r {
	case NoReason:
		return "none"
	case IllegalDependence:
		return "illegal dependence"
	case MalformedCFG:
		return "malformed CFG"
	}
	return fmt.Sprintf("Reason(%d)", int(r))
}

// Outcome is the result of running the pass on one function.
// Skipped and Rejected leave the function untouched.
type Outcome struct {
	Kind   Kind
	Reason Reason
	Detail string // Oracle verdict or rewrite error, for logging.

	Nest  *loop.Nest     // Nest found, nil when Skipped.
	Edits []rewrite.Edit // Batch committed, when Applied.
}

func (o Outcome) String() string {
	if o.Kind != Rejected {
		return o.Kind.String()
	}
	if o.Detail != "" {
		return fmt.Sprintf("rejected (%s: %s)", o.Reason, o.Detail)
	}
	return fmt.Sprintf("rejected (%s)", o.Reason)
}
