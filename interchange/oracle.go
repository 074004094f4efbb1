package interchange

import "github.com/nickng/loopswap/loop"

// Verdict is the answer of a legality oracle.
type Verdict struct {
	Legal  bool
	Reason string // Why not, when !Legal.
}

// Oracle decides whether interchanging a nest preserves the semantics of the
// function. It only sees the block roles of the nest.
type Oracle interface {
	Legal(desc loop.Description) Verdict
}

// OracleFunc adapts a function to an Oracle.
type OracleFunc func(desc loop.Description) Verdict

// Legal calls o(desc).
func (o OracleFunc) Legal(desc loop.Description) Verdict { return o(desc) }

// AllowAll approves every nest.
var AllowAll Oracle = OracleFunc(func(loop.Description) Verdict {
	return Verdict{Legal: true}
})

// DenyAll refuses every nest.
var DenyAll Oracle = OracleFunc(func(loop.Description) Verdict {
	return Verdict{Reason: "interchange disabled"}
})

// DenyList refuses nests in the named functions and approves the rest.
type DenyList map[string]string

// NewDenyList returns a DenyList of funcs, all with the same reason.
func NewDenyList(reason string, funcs ...string) DenyList {
	d := make(DenyList)
	for _, f := range funcs {
		d[f] = reason
	}
	return d
}

// Legal refuses desc if its function is listed.
func (d DenyList) Legal(desc loop.Description) Verdict {
	if reason, denied := d[desc.Func]; denied {
		if reason == "" {
			reason = "function is on the deny list"
		}
		return Verdict{Reason: reason}
	}
	return Verdict{Legal: true}
}
