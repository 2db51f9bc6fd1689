package marshal

import (
	"fmt"

	"github.com/wippyai/marshalgen/errors"
	"github.com/wippyai/marshalgen/ir"
	"github.com/wippyai/marshalgen/typedesc"
)

// LoopVar is the induction variable of compound array loops.
const LoopVar = "i"

// CheckPrefix prefixes the shadow locals of the non-allocating reader.
const CheckPrefix = "check_"

type shape uint8

const (
	chainLink shape = iota
	scalarValue
	fixedArray
	dynamicArray
	stringValue
	stringArray
	compoundValue
)

func (s shape) String() string {
	return [...]string{"chain link", "scalar", "fixed array", "dynamic array", "string", "string array", "compound"}[s]
}

// Visitor translates member descriptors into procedure statements. It
// resolves types and lengths against one registry and holds no other state.
type Visitor struct {
	reg *typedesc.Registry
}

// New returns a Visitor over reg.
func New(reg *typedesc.Registry) *Visitor {
	return &Visitor{reg: reg}
}

// VisitAll generates the statements for members in declaration order.
// The member list is validated first so length references only point at
// earlier siblings.
func (v *Visitor) VisitAll(ctx Context, members []typedesc.Field) ([]ir.Stmt, error) {
	if err := v.reg.ValidateMembers(ctx.Owner, members); err != nil {
		return nil, errors.Wrap(errors.PhaseGenerate, kindOf(err), err, "member list of "+ctx.Owner)
	}
	var out []ir.Stmt
	for i := range members {
		stmts, err := v.Visit(ctx, &members[i])
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
	return out, nil
}

// Visit generates the statements streaming one member.
func (v *Visitor) Visit(ctx Context, f *typedesc.Field) ([]ir.Stmt, error) {
	sh, err := classify(f)
	if err != nil {
		return nil, withPath(err, ctx.Owner, f.Name)
	}

	if sh == chainLink {
		return []ir.Stmt{ir.Unsupported{Decl: declText(ctx, f)}}, nil
	}

	var body []ir.Stmt
	switch sh {
	case scalarValue:
		body = v.onValue(ctx, f)
	case fixedArray:
		body, err = v.onFixedArray(ctx, f)
	case dynamicArray:
		body = v.onPointer(ctx, f)
	case stringValue:
		body = v.onString(ctx, f)
	case stringArray:
		body = v.onStringArray(ctx, f)
	case compoundValue:
		body, err = v.onCompound(ctx, f)
	}
	if err != nil {
		return nil, withPath(err, ctx.Owner, f.Name)
	}

	pre, wrap := v.gate(ctx, f)
	if wrap == nil {
		return append(pre, body...), nil
	}
	return append(pre, wrap(body)), nil
}

func classify(f *typedesc.Field) (shape, error) {
	if f.ChainLink {
		return chainLink, nil
	}
	switch f.Kind {
	case typedesc.KindScalar:
		return scalarValue, nil
	case typedesc.KindFixedArray:
		return fixedArray, nil
	case typedesc.KindPointer:
		return dynamicArray, nil
	case typedesc.KindString:
		return stringValue, nil
	case typedesc.KindStringArray:
		return stringArray, nil
	case typedesc.KindCompound:
		return compoundValue, nil
	}
	return 0, errors.Unsupported(errors.PhaseGenerate, nil, "field kind "+f.Kind.String())
}

// gate returns the statements that stream the presence flag of a pointer
// member and, when the member is gated, a function that places the
// member's statements under that flag.
//
// The non-allocating reader streams the pointee only when the stream and
// the destination agree that it is present. When the destination has the
// member but the stream does not, nothing was sent and nothing is read.
// When the stream has the member but the destination does not, the pointee
// bytes stay unread and every later member of the call decodes from the
// wrong offset.
func (v *Visitor) gate(ctx Context, f *typedesc.Field) (pre []ir.Stmt, wrap func([]ir.Stmt) ir.Stmt) {
	if !f.IsPointer() || ctx.ForOutputOnly {
		return nil, nil
	}

	acc := ctx.access(f.Name)
	slotSize := ir.Sizeof{Type: f.Type, PointerDepth: f.PointerDepth}

	if ctx.writing() || ctx.allocates() {
		pre = append(pre, ir.StreamCall{
			Op:     ctx.Direction,
			Stream: ctx.Stream,
			Ptr:    ir.AddrOf{X: acc},
			Size:   slotSize,
		})
		return pre, func(body []ir.Stmt) ir.Stmt {
			return ir.If{Cond: acc, Then: body}
		}
	}

	check := ir.Local{Name: CheckPrefix + f.Name}
	msg := fmt.Sprintf("fatal: %s inconsistent between guest and host", ctx.accessText(f.Name))
	pre = append(pre,
		ir.DeclLocal{Name: check.Name, Type: f.Type, PointerDepth: f.PointerDepth},
		ir.StreamCall{
			Op:     ctx.Direction,
			Stream: ctx.Stream,
			Ptr:    ir.AddrOf{X: check},
			Size:   slotSize,
		},
	)
	return pre, func(body []ir.Stmt) ir.Stmt {
		return ir.If{
			Cond: acc,
			Then: []ir.Stmt{
				ir.If{
					Cond: ir.Not{X: check},
					Then: []ir.Stmt{ir.Diagnostic{Message: msg}},
					Else: body,
				},
			},
			Else: []ir.Stmt{
				ir.If{Cond: check, Then: []ir.Stmt{ir.Diagnostic{Message: msg}}},
			},
		}
	}
}

func (v *Visitor) onValue(ctx Context, f *typedesc.Field) []ir.Stmt {
	return []ir.Stmt{ir.StreamCall{
		Op:     ctx.Direction,
		Stream: ctx.Stream,
		Ptr:    ir.AddrOf{X: ctx.access(f.Name)},
		Size:   ir.Sizeof{Type: f.Type},
	}}
}

func (v *Visitor) onFixedArray(ctx Context, f *typedesc.Field) ([]ir.Stmt, error) {
	n, err := v.staticLen(f)
	if err != nil {
		return nil, err
	}
	return []ir.Stmt{ir.StreamCall{
		Op:     ctx.Direction,
		Stream: ctx.Stream,
		Ptr:    ctx.access(f.Name),
		Size:   ir.Mul{L: n, R: ir.Sizeof{Type: f.Type}},
	}}, nil
}

func (v *Visitor) onPointer(ctx Context, f *typedesc.Field) []ir.Stmt {
	acc := ctx.access(f.Name)
	var size ir.Expr = ir.Sizeof{Type: f.Type}
	if f.LenField != "" {
		size = ir.Mul{L: ctx.access(f.LenField), R: size}
	}

	var out []ir.Stmt
	if ctx.allocates() {
		out = append(out, ir.Alloc{Stream: ctx.Stream, Slot: ir.AddrOf{X: acc}, Size: size})
	}
	return append(out, ir.StreamCall{
		Op:     ctx.Direction,
		Stream: ctx.Stream,
		Ptr:    acc,
		Size:   size,
	})
}

func (v *Visitor) onString(ctx Context, f *typedesc.Field) []ir.Stmt {
	acc := ctx.access(f.Name)
	if ctx.writing() {
		return []ir.Stmt{ir.PutString{Stream: ctx.Stream, Str: acc}}
	}
	return []ir.Stmt{ir.LoadStringInPlace{Stream: ctx.Stream, Slot: ir.AddrOf{X: acc}}}
}

func (v *Visitor) onStringArray(ctx Context, f *typedesc.Field) []ir.Stmt {
	acc := ctx.access(f.Name)
	if ctx.writing() {
		return []ir.Stmt{ir.SaveStringArray{Stream: ctx.Stream, Arr: acc, Count: ctx.access(f.LenField)}}
	}
	return []ir.Stmt{ir.LoadStringArrayInPlace{Stream: ctx.Stream, Slot: ir.AddrOf{X: acc}}}
}

func (v *Visitor) onCompound(ctx Context, f *typedesc.Field) ([]ir.Stmt, error) {
	target, err := v.reg.Resolve(f.Type)
	if err != nil {
		return nil, err
	}
	typeName := target.Name
	acc := ctx.access(f.Name)

	var count ir.Expr
	switch {
	case f.LenField != "":
		count = ctx.access(f.LenField)
	case f.StaticLen != nil:
		if count, err = v.staticLen(f); err != nil {
			return nil, err
		}
	}

	var out []ir.Stmt
	if f.IsPointer() && ctx.allocates() {
		var size ir.Expr = ir.Sizeof{Type: typeName}
		if count != nil {
			size = ir.Mul{L: count, R: size}
		}
		out = append(out, ir.Alloc{Stream: ctx.Stream, Slot: ir.AddrOf{X: acc}, Size: size})
	}

	proc := ctx.CallPrefix + typeName
	if count == nil {
		var addr ir.Expr = acc
		if !f.IsPointer() {
			addr = ir.AddrOf{X: acc}
		}
		return append(out, ir.Call{
			Proc:   proc,
			Stream: ctx.Stream,
			Value:  ir.Cast{Type: typeName, Const: ctx.writing(), X: addr},
		}), nil
	}

	elem := ir.Cast{
		Type:  typeName,
		Const: ctx.writing(),
		X:     ir.Index{Base: acc, Elem: typeName, I: ir.Local{Name: LoopVar}},
	}
	return append(out, ir.For{
		Var:   LoopVar,
		Count: count,
		Body:  []ir.Stmt{ir.Call{Proc: proc, Stream: ctx.Stream, Value: elem}},
	}), nil
}

func (v *Visitor) staticLen(f *typedesc.Field) (ir.Expr, error) {
	n, err := v.reg.ResolveLength(f.StaticLen)
	if err != nil {
		return nil, err
	}
	if f.StaticLen.Const != "" {
		return ir.Const{Name: f.StaticLen.Const, Value: n}, nil
	}
	return ir.Lit{Value: uint64(n)}, nil
}

func declText(ctx Context, f *typedesc.Field) string {
	ptr := ""
	for i := 0; i < f.PointerDepth; i++ {
		ptr += "*"
	}
	if ctx.writing() {
		return fmt.Sprintf("const %s%s %s", f.Type, ptr, f.Name)
	}
	return fmt.Sprintf("%s%s %s", f.Type, ptr, f.Name)
}

func kindOf(err error) errors.Kind {
	if e, ok := err.(*errors.Error); ok {
		return e.Kind
	}
	return errors.KindInvalidData
}

func withPath(err error, path ...string) error {
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		cp := *e
		cp.Path = path
		return &cp
	}
	return err
}
