package typedesc

import "strconv"

// LengthExpr is a static array length: a literal or a registry constant.
type LengthExpr struct {
	Const   string
	Literal uint32
}

// Lit returns a literal length.
func Lit(n uint32) *LengthExpr {
	return &LengthExpr{Literal: n}
}

// ConstLen returns a length naming a registry constant.
func ConstLen(name string) *LengthExpr {
	return &LengthExpr{Const: name}
}

func (l *LengthExpr) String() string {
	if l == nil {
		return ""
	}
	if l.Const != "" {
		return l.Const
	}
	return strconv.FormatUint(uint64(l.Literal), 10)
}

// Field describes one member of a compound type or one command parameter.
type Field struct {
	StaticLen    *LengthExpr
	Name         string
	Type         string
	LenField     string
	PointerDepth int
	Kind         FieldKind
	ChainLink    bool
	Optional     bool
}

// IsPointer reports whether the field is accessed through a pointer.
func (f *Field) IsPointer() bool {
	return f.PointerDepth > 0
}

// HasLength reports whether the field carries a static or dynamic length.
func (f *Field) HasLength() bool {
	return f.StaticLen != nil || f.LenField != ""
}

// Compound is a struct or union with an ordered member list.
type Compound struct {
	Name     string
	Alias    string
	Members  []Field
	Category Category
}

// IsAlias reports whether the compound only renames another compound.
func (c *Compound) IsAlias() bool {
	return c.Alias != ""
}

// Member returns the member with the given name.
func (c *Compound) Member(name string) (*Field, bool) {
	for i := range c.Members {
		if c.Members[i].Name == name {
			return &c.Members[i], true
		}
	}
	return nil, false
}

// Scalar is a fixed-width value type.
type Scalar struct {
	Name    string
	Size    uint32
	Align   uint32
	Integer bool
}

// Param is a command parameter. Output parameters are written by the
// callee into storage the caller sized ahead of time.
type Param struct {
	Field
	Output bool
}

// Command is a remote-callable entry point.
type Command struct {
	Name   string
	Alias  string
	Params []Param
}

// OutputParams returns the output parameters in declaration order.
func (c *Command) OutputParams() []Param {
	var out []Param
	for _, p := range c.Params {
		if p.Output {
			out = append(out, p)
		}
	}
	return out
}

// IsAlias reports whether the command only renames another command.
func (c *Command) IsAlias() bool {
	return c.Alias != ""
}
