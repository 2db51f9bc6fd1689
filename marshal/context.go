package marshal

import (
	"github.com/wippyai/marshalgen"
	"github.com/wippyai/marshalgen/ir"
)

// Context is the fixed state a procedure body is generated under.
// It is passed by value and never changes while a member list is visited.
type Context struct {
	Stream        ir.Expr
	Root          ir.Expr
	Owner         string
	CallPrefix    string
	Direction     marshalgen.Direction
	DynAlloc      bool
	ForOutputOnly bool
}

// NewContext returns the context for a procedure whose parameters are
// named stream and value, operating on a pointer to owner.
func NewContext(dir marshalgen.Direction, owner, stream, value, callPrefix string) Context {
	return Context{
		Direction:  dir,
		Owner:      owner,
		Stream:     ir.Param{Name: stream},
		Root:       ir.Param{Name: value},
		CallPrefix: callPrefix,
	}
}

// WithDynAlloc returns a copy with reader allocation set.
func (c Context) WithDynAlloc(on bool) Context {
	c.DynAlloc = on
	return c
}

// WithOutputOnly returns a copy with presence gating disabled.
func (c Context) WithOutputOnly(on bool) Context {
	c.ForOutputOnly = on
	return c
}

func (c Context) writing() bool {
	return c.Direction == marshalgen.Write
}

func (c Context) allocates() bool {
	return c.Direction == marshalgen.Read && c.DynAlloc
}

func (c Context) access(member string) ir.Field {
	return ir.Field{Base: c.Root, Owner: c.Owner, Name: member}
}

// accessText renders the member access for diagnostics.
func (c Context) accessText(member string) string {
	if p, ok := c.Root.(ir.Param); ok {
		return p.Name + "->" + member
	}
	return c.Owner + "." + member
}
