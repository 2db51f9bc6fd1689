package ir

import "github.com/wippyai/marshalgen"

// Stmt is a C statement.
type Stmt interface {
	stmt()
}

// StreamCall moves Size bytes at Ptr to or from the stream.
type StreamCall struct {
	Stream Expr
	Ptr    Expr
	Size   Expr
	Op     marshalgen.Direction
}

// Alloc reserves Size bytes from the stream's allocator and stores the
// address into the pointer slot at Slot.
type Alloc struct {
	Stream Expr
	Slot   Expr
	Size   Expr
}

// PutString writes the string Str with its length prefix.
type PutString struct {
	Stream Expr
	Str    Expr
}

// LoadStringInPlace decodes a string into fresh storage addressed by Slot.
type LoadStringInPlace struct {
	Stream Expr
	Slot   Expr
}

// SaveStringArray writes Count strings from the pointer array Arr.
type SaveStringArray struct {
	Stream Expr
	Arr    Expr
	Count  Expr
}

// LoadStringArrayInPlace decodes a string array into fresh storage
// addressed by Slot.
type LoadStringArrayInPlace struct {
	Stream Expr
	Slot   Expr
}

// DeclLocal declares a pointer-sized local of type Type with
// PointerDepth levels of indirection.
type DeclLocal struct {
	Name         string
	Type         string
	PointerDepth int
}

// If runs Then when Cond is non-zero, Else otherwise.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// For runs Body with Var counting from 0 up to Count.
type For struct {
	Count Expr
	Var   string
	Body  []Stmt
}

// Call invokes another generated procedure on Value.
type Call struct {
	Stream Expr
	Value  Expr
	Proc   string
}

// Diagnostic reports a non-fatal inconsistency and continues.
type Diagnostic struct {
	Message string
}

// Unsupported marks a member the generator knowingly leaves untransmitted.
type Unsupported struct {
	Decl string
}

func (StreamCall) stmt()             {}
func (Alloc) stmt()                  {}
func (PutString) stmt()              {}
func (LoadStringInPlace) stmt()      {}
func (SaveStringArray) stmt()        {}
func (LoadStringArrayInPlace) stmt() {}
func (DeclLocal) stmt()              {}
func (If) stmt()                     {}
func (For) stmt()                    {}
func (Call) stmt()                   {}
func (Diagnostic) stmt()             {}
func (Unsupported) stmt()            {}
