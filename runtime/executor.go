package runtime

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/marshalgen"
	"github.com/wippyai/marshalgen/errors"
	"github.com/wippyai/marshalgen/generator"
	"github.com/wippyai/marshalgen/internal/abi"
	"github.com/wippyai/marshalgen/internal/layout"
	"github.com/wippyai/marshalgen/ir"
	"github.com/wippyai/marshalgen/typedesc"
)

// MaxCallDepth bounds nested procedure calls.
const MaxCallDepth = 64

// Diagnostic is a non-fatal inconsistency reported by a procedure.
type Diagnostic struct {
	Proc    string
	Message string
}

// Executor interprets generated procedures against one memory. Locals and
// loop variables are allocated from alloc for the duration of a call.
type Executor struct {
	mod   *generator.Module
	reg   *typedesc.Registry
	calc  *layout.Calculator
	mem   marshalgen.Memory
	alloc marshalgen.Allocator
	log   *zap.Logger
	diags []Diagnostic
}

func NewExecutor(mod *generator.Module, mem marshalgen.Memory, alloc marshalgen.Allocator) *Executor {
	return &Executor{
		mod:   mod,
		reg:   mod.Registry(),
		calc:  layout.NewCalculator(mod.Registry()),
		mem:   mem,
		alloc: alloc,
		log:   Logger(),
	}
}

// Layout returns the layout calculator used to resolve member offsets.
func (e *Executor) Layout() *layout.Calculator {
	return e.calc
}

// Diagnostics returns the diagnostics reported since the last reset.
func (e *Executor) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(e.diags))
	copy(out, e.diags)
	return out
}

func (e *Executor) ResetDiagnostics() {
	e.diags = e.diags[:0]
}

// CallType runs the writer or allocating reader of typeName on the value
// at addr.
func (e *Executor) CallType(ctx context.Context, typeName string, dir marshalgen.Direction, s marshalgen.Stream, addr uint32) error {
	proc, ok := e.mod.ProcFor(typeName, dir)
	if !ok {
		return errors.NotFound(errors.PhaseRuntime, "procedure for type", typeName)
	}
	return e.Call(ctx, proc, s, addr)
}

// CallNamed runs the procedure with the given generated name.
func (e *Executor) CallNamed(ctx context.Context, name string, s marshalgen.Stream, addr uint32) error {
	proc, ok := e.mod.Proc(name)
	if !ok {
		return errors.NotFound(errors.PhaseRuntime, "procedure", name)
	}
	return e.Call(ctx, proc, s, addr)
}

// Call runs proc on the value at addr. Stream and memory errors abort the
// call; presence mismatches are recorded and execution continues.
func (e *Executor) Call(ctx context.Context, proc *ir.Proc, s marshalgen.Stream, addr uint32) error {
	return e.call(ctx, proc, s, addr, 0)
}

type frame struct {
	proc   *ir.Proc
	stream marshalgen.Stream
	locals map[string]uint32
	temps  *AllocationList
	value  uint32
}

func (e *Executor) call(ctx context.Context, proc *ir.Proc, s marshalgen.Stream, addr uint32, depth int) error {
	if depth >= MaxCallDepth {
		return errors.New(errors.PhaseRuntime, errors.KindOverflow).
			Path(proc.Name).
			Detail("call depth exceeds %d", MaxCallDepth).
			Build()
	}
	if addr == 0 {
		return errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			Path(proc.Name).
			Detail("null value pointer").
			Build()
	}

	fr := &frame{
		proc:   proc,
		stream: s,
		value:  addr,
		locals: make(map[string]uint32),
		temps:  NewAllocationList(),
	}
	defer fr.temps.Free(e.alloc)

	return e.exec(ctx, fr, proc.Body, depth)
}

func (e *Executor) exec(ctx context.Context, fr *frame, body []ir.Stmt, depth int) error {
	for _, st := range body {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.step(ctx, fr, st, depth); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) step(ctx context.Context, fr *frame, st ir.Stmt, depth int) error {
	switch s := st.(type) {
	case ir.StreamCall:
		ptr, err := e.pointer(fr, s.Ptr)
		if err != nil {
			return err
		}
		n, err := e.size(fr, s.Size)
		if err != nil {
			return err
		}
		if n > 0 && ptr == 0 {
			return e.fail(fr, errors.KindInvalidData, "null pointer with %d bytes to stream", n)
		}
		if s.Op == marshalgen.Read {
			return e.wrap(fr, fr.stream.Read(ptr, n))
		}
		return e.wrap(fr, fr.stream.Write(ptr, n))

	case ir.Alloc:
		slot, err := e.pointer(fr, s.Slot)
		if err != nil {
			return err
		}
		n, err := e.size(fr, s.Size)
		if err != nil {
			return err
		}
		return e.wrap(fr, fr.stream.Alloc(slot, n))

	case ir.PutString:
		str, err := e.pointer(fr, s.Str)
		if err != nil {
			return err
		}
		return e.wrap(fr, fr.stream.PutString(str))

	case ir.LoadStringInPlace:
		slot, err := e.pointer(fr, s.Slot)
		if err != nil {
			return err
		}
		return e.wrap(fr, fr.stream.LoadStringInPlace(slot))

	case ir.SaveStringArray:
		arr, err := e.pointer(fr, s.Arr)
		if err != nil {
			return err
		}
		count, err := e.size(fr, s.Count)
		if err != nil {
			return err
		}
		if count > 0 && arr == 0 {
			return e.fail(fr, errors.KindInvalidData, "null string array with %d entries", count)
		}
		return e.wrap(fr, fr.stream.SaveStringArray(arr, count))

	case ir.LoadStringArrayInPlace:
		slot, err := e.pointer(fr, s.Slot)
		if err != nil {
			return err
		}
		return e.wrap(fr, fr.stream.LoadStringArrayInPlace(slot))

	case ir.DeclLocal:
		_, err := e.local(fr, s.Name)
		return err

	case ir.If:
		cond, err := e.eval(fr, s.Cond)
		if err != nil {
			return err
		}
		if cond != 0 {
			return e.exec(ctx, fr, s.Then, depth)
		}
		return e.exec(ctx, fr, s.Else, depth)

	case ir.For:
		count, err := e.size(fr, s.Count)
		if err != nil {
			return err
		}
		if count > abi.MaxArrayCount {
			return e.fail(fr, errors.KindOverflow, "loop count %d exceeds %d", count, abi.MaxArrayCount)
		}
		slot, err := e.local(fr, s.Var)
		if err != nil {
			return err
		}
		for i := uint32(0); i < count; i++ {
			if err := e.mem.WriteU32(slot, i); err != nil {
				return e.wrap(fr, err)
			}
			if err := e.exec(ctx, fr, s.Body, depth); err != nil {
				return err
			}
		}
		return nil

	case ir.Call:
		callee, ok := e.mod.Proc(s.Proc)
		if !ok {
			return errors.NotFound(errors.PhaseRuntime, "procedure", s.Proc)
		}
		addr, err := e.pointer(fr, s.Value)
		if err != nil {
			return err
		}
		return e.call(ctx, callee, fr.stream, addr, depth+1)

	case ir.Diagnostic:
		e.diags = append(e.diags, Diagnostic{Proc: fr.proc.Name, Message: s.Message})
		e.log.Warn("presence mismatch",
			zap.String("proc", fr.proc.Name),
			zap.String("message", s.Message))
		return nil

	case ir.Unsupported:
		e.log.Debug("skipping untransmitted member",
			zap.String("proc", fr.proc.Name),
			zap.String("member", s.Decl))
		return nil
	}
	return errors.Unsupported(errors.PhaseRuntime, []string{fr.proc.Name}, "statement")
}

// local returns the slot of a pointer-sized local, allocating and zeroing
// it on first use.
func (e *Executor) local(fr *frame, name string) (uint32, error) {
	if slot, ok := fr.locals[name]; ok {
		return slot, nil
	}
	slot, err := e.alloc.Alloc(marshalgen.PointerSize, marshalgen.PointerSize)
	if err != nil {
		return 0, e.wrap(fr, err)
	}
	fr.temps.Add(slot, marshalgen.PointerSize, marshalgen.PointerSize)
	if err := e.mem.WriteU32(slot, 0); err != nil {
		return 0, e.wrap(fr, err)
	}
	fr.locals[name] = slot
	return slot, nil
}

func (e *Executor) pointer(fr *frame, x ir.Expr) (uint32, error) {
	v, err := e.eval(fr, x)
	if err != nil {
		return 0, err
	}
	if v > 0xffffffff {
		return 0, e.fail(fr, errors.KindOverflow, "address %d out of range", v)
	}
	return uint32(v), nil
}

func (e *Executor) size(fr *frame, x ir.Expr) (uint32, error) {
	v, err := e.eval(fr, x)
	if err != nil {
		return 0, err
	}
	if v > abi.MaxAlloc {
		return 0, e.fail(fr, errors.KindOverflow, "size %d exceeds %d", v, uint64(abi.MaxAlloc))
	}
	return uint32(v), nil
}

// eval computes the value of an expression with C semantics.
func (e *Executor) eval(fr *frame, x ir.Expr) (uint64, error) {
	switch x := x.(type) {
	case ir.Param:
		if x.Name == fr.proc.Value {
			return uint64(fr.value), nil
		}
		return 0, e.fail(fr, errors.KindNotFound, "unknown parameter %q", x.Name)

	case ir.Field:
		return e.loadField(fr, x)

	case ir.AddrOf:
		addr, err := e.addr(fr, x.X)
		return uint64(addr), err

	case ir.Local:
		slot, ok := fr.locals[x.Name]
		if !ok {
			return 0, e.fail(fr, errors.KindNotFound, "undeclared local %q", x.Name)
		}
		v, err := e.mem.ReadU32(slot)
		return uint64(v), e.wrap(fr, err)

	case ir.Lit:
		return x.Value, nil

	case ir.Const:
		return uint64(x.Value), nil

	case ir.Sizeof:
		if x.PointerDepth > 0 {
			return marshalgen.PointerSize, nil
		}
		info, err := e.calc.Type(x.Type)
		if err != nil {
			return 0, err
		}
		return uint64(info.Size), nil

	case ir.Mul:
		l, err := e.eval(fr, x.L)
		if err != nil {
			return 0, err
		}
		r, err := e.eval(fr, x.R)
		if err != nil {
			return 0, err
		}
		if l > 0xffffffff || r > 0xffffffff {
			return 0, e.fail(fr, errors.KindOverflow, "operand out of range in %d * %d", l, r)
		}
		return l * r, nil

	case ir.Index:
		base, err := e.eval(fr, x.Base)
		if err != nil {
			return 0, err
		}
		i, err := e.eval(fr, x.I)
		if err != nil {
			return 0, err
		}
		info, err := e.calc.Type(x.Elem)
		if err != nil {
			return 0, err
		}
		return base + i*uint64(info.Size), nil

	case ir.Cast:
		return e.eval(fr, x.X)

	case ir.Not:
		v, err := e.eval(fr, x.X)
		if err != nil {
			return 0, err
		}
		if v == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 0, errors.Unsupported(errors.PhaseRuntime, []string{fr.proc.Name}, "expression")
}

// addr computes the address of an lvalue.
func (e *Executor) addr(fr *frame, x ir.Expr) (uint32, error) {
	switch x := x.(type) {
	case ir.Field:
		base, err := e.pointer(fr, x.Base)
		if err != nil {
			return 0, err
		}
		if base == 0 {
			return 0, e.fail(fr, errors.KindInvalidData, "member %s.%s through a null pointer", x.Owner, x.Name)
		}
		off, err := e.calc.Offset(x.Owner, x.Name)
		if err != nil {
			return 0, err
		}
		return base + off, nil
	case ir.Local:
		slot, ok := fr.locals[x.Name]
		if !ok {
			return 0, e.fail(fr, errors.KindNotFound, "undeclared local %q", x.Name)
		}
		return slot, nil
	}
	return 0, errors.Unsupported(errors.PhaseRuntime, []string{fr.proc.Name}, "address of a non-lvalue")
}

// loadField reads a member. Arrays and by-value compounds evaluate to
// their address.
func (e *Executor) loadField(fr *frame, x ir.Field) (uint64, error) {
	addr, err := e.addr(fr, x)
	if err != nil {
		return 0, err
	}
	owner, ok := e.reg.Compound(x.Owner)
	if !ok {
		return 0, errors.UnknownType(errors.PhaseRuntime, []string{fr.proc.Name}, x.Owner)
	}
	f, ok := owner.Member(x.Name)
	if !ok {
		return 0, errors.NotFound(errors.PhaseRuntime, "member", x.Owner+"."+x.Name)
	}

	switch {
	case f.ChainLink || f.IsPointer():
		v, err := e.mem.ReadU32(addr)
		return uint64(v), e.wrap(fr, err)
	case f.StaticLen != nil || f.Kind == typedesc.KindCompound:
		return uint64(addr), nil
	}

	sc, ok := e.reg.Scalar(f.Type)
	if !ok {
		return 0, errors.UnknownType(errors.PhaseRuntime, []string{x.Owner, x.Name}, f.Type)
	}
	var v uint64
	switch sc.Size {
	case 1:
		b, rerr := e.mem.ReadU8(addr)
		v, err = uint64(b), rerr
	case 2:
		h, rerr := e.mem.ReadU16(addr)
		v, err = uint64(h), rerr
	case 4:
		w, rerr := e.mem.ReadU32(addr)
		v, err = uint64(w), rerr
	case 8:
		v, err = e.mem.ReadU64(addr)
	default:
		return 0, errors.Unsupported(errors.PhaseRuntime, []string{x.Owner, x.Name}, "scalar width")
	}
	return v, e.wrap(fr, err)
}

func (e *Executor) fail(fr *frame, kind errors.Kind, format string, args ...any) error {
	return errors.New(errors.PhaseRuntime, kind).
		Path(fr.proc.Name).
		Detail(format, args...).
		Build()
}

// wrap attaches the running procedure to stream and memory errors.
func (e *Executor) wrap(fr *frame, err error) error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*errors.Error); ok && len(se.Path) == 0 {
		cp := *se
		cp.Path = []string{fr.proc.Name}
		return &cp
	}
	return err
}
