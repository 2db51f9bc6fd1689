package cgen

import (
	"fmt"
	"strings"

	"github.com/wippyai/marshalgen"
	"github.com/wippyai/marshalgen/errors"
	"github.com/wippyai/marshalgen/ir"
)

const indentUnit = "    "

type writer struct {
	sb     strings.Builder
	indent int
}

func (w *writer) raw(s string) {
	w.sb.WriteString(s)
}

func (w *writer) line(format string, args ...any) {
	w.sb.WriteString(strings.Repeat(indentUnit, w.indent))
	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteByte('\n')
}

func (w *writer) String() string {
	return w.sb.String()
}

func (w *writer) block(body []ir.Stmt) error {
	w.line("{")
	w.indent++
	if err := w.stmts(body); err != nil {
		return err
	}
	w.indent--
	w.line("}")
	return nil
}

func (w *writer) stmts(body []ir.Stmt) error {
	for _, s := range body {
		if err := w.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) stmt(st ir.Stmt) error {
	switch s := st.(type) {
	case ir.StreamCall:
		if s.Op == marshalgen.Read {
			w.line("%s->read((void*)%s, %s);", expr(s.Stream), expr(s.Ptr), expr(s.Size))
		} else {
			w.line("%s->write((const void*)%s, %s);", expr(s.Stream), expr(s.Ptr), expr(s.Size))
		}
	case ir.Alloc:
		w.line("%s->alloc((void**)%s, %s);", expr(s.Stream), expr(s.Slot), expr(s.Size))
	case ir.PutString:
		w.line("%s->putString(%s);", expr(s.Stream), expr(s.Str))
	case ir.LoadStringInPlace:
		w.line("%s->loadStringInPlace((char**)%s);", expr(s.Stream), expr(s.Slot))
	case ir.SaveStringArray:
		w.line("saveStringArray(%s, %s, %s);", expr(s.Stream), expr(s.Arr), expr(s.Count))
	case ir.LoadStringArrayInPlace:
		w.line("%s->loadStringArrayInPlace((char***)%s);", expr(s.Stream), expr(s.Slot))
	case ir.DeclLocal:
		w.line("%s%s %s;", s.Type, strings.Repeat("*", s.PointerDepth), s.Name)
	case ir.If:
		return w.ifStmt(s, "if")
	case ir.For:
		w.line("for (uint32_t %s = 0; %s < (uint32_t)%s; ++%s)", s.Var, s.Var, expr(s.Count), s.Var)
		return w.block(s.Body)
	case ir.Call:
		w.line("%s(%s, %s);", s.Proc, expr(s.Stream), expr(s.Value))
	case ir.Diagnostic:
		w.line("fprintf(stderr, %q);", s.Message+"\n")
	case ir.Unsupported:
		w.line("// TODO: Unsupported : %s", s.Decl)
	default:
		return errors.Unsupported(errors.PhaseEmit, nil, fmt.Sprintf("statement %T", st))
	}
	return nil
}

// ifStmt renders an else branch holding a single conditional as else if.
func (w *writer) ifStmt(s ir.If, keyword string) error {
	w.line("%s (%s)", keyword, expr(s.Cond))
	if err := w.block(s.Then); err != nil {
		return err
	}
	if len(s.Else) == 0 {
		return nil
	}
	if nested, ok := s.Else[0].(ir.If); ok && len(s.Else) == 1 {
		return w.ifStmt(nested, "else if")
	}
	w.line("else")
	return w.block(s.Else)
}

func expr(x ir.Expr) string {
	switch x := x.(type) {
	case ir.Param:
		return x.Name
	case ir.Local:
		return x.Name
	case ir.Field:
		return operand(x.Base) + "->" + x.Name
	case ir.AddrOf:
		return "&" + expr(x.X)
	case ir.Lit:
		return fmt.Sprintf("%d", x.Value)
	case ir.Const:
		return x.Name
	case ir.Sizeof:
		return "sizeof(" + x.Type + strings.Repeat("*", x.PointerDepth) + ")"
	case ir.Mul:
		return operand(x.L) + " * " + operand(x.R)
	case ir.Index:
		return operand(x.Base) + " + " + operand(x.I)
	case ir.Cast:
		qual := ""
		if x.Const {
			qual = "const "
		}
		return "(" + qual + x.Type + "*)(" + expr(x.X) + ")"
	case ir.Not:
		return "!(" + expr(x.X) + ")"
	}
	return fmt.Sprintf("/* %T */", x)
}

// operand parenthesizes compound expressions used inside a binary one.
func operand(x ir.Expr) string {
	switch x.(type) {
	case ir.Mul, ir.Index:
		return "(" + expr(x) + ")"
	}
	return expr(x)
}
