package ir

// Expr is a C expression.
type Expr interface {
	expr()
}

// Param names a procedure parameter.
type Param struct {
	Name string
}

// Field is Base->Name where Base points to an Owner.
type Field struct {
	Base  Expr
	Owner string
	Name  string
}

// AddrOf takes the address of a Field or Local.
type AddrOf struct {
	X Expr
}

// Local names a variable declared with DeclLocal or a loop variable.
type Local struct {
	Name string
}

// Lit is an unsigned integer literal.
type Lit struct {
	Value uint64
}

// Const is a named constant with its resolved value.
type Const struct {
	Name  string
	Value uint32
}

// Sizeof is sizeof(Type) with PointerDepth levels of indirection.
type Sizeof struct {
	Type         string
	PointerDepth int
}

// Mul is L * R.
type Mul struct {
	L, R Expr
}

// Index is Base + I where Base points to elements of type Elem.
type Index struct {
	Base Expr
	I    Expr
	Elem string
}

// Cast converts X to a pointer to Type.
type Cast struct {
	X     Expr
	Type  string
	Const bool
}

// Not is !(X).
type Not struct {
	X Expr
}

func (Param) expr()  {}
func (Field) expr()  {}
func (AddrOf) expr() {}
func (Local) expr()  {}
func (Lit) expr()    {}
func (Const) expr()  {}
func (Sizeof) expr() {}
func (Mul) expr()    {}
func (Index) expr()  {}
func (Cast) expr()   {}
func (Not) expr()    {}
