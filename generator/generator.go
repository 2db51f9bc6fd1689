package generator

import (
	"go.uber.org/zap"

	"github.com/wippyai/marshalgen"
	"github.com/wippyai/marshalgen/errors"
	"github.com/wippyai/marshalgen/ir"
	"github.com/wippyai/marshalgen/marshal"
	"github.com/wippyai/marshalgen/opcode"
	"github.com/wippyai/marshalgen/typedesc"
)

// Generator turns a validated registry into a Module of marshaling
// procedures. It is safe to reuse across registries.
type Generator struct {
	opts Options
}

// New returns a Generator. Empty names in opts are filled from DefaultOptions.
func New(opts Options) *Generator {
	return &Generator{opts: opts.withDefaults()}
}

// run holds the state of one registry walk: the working registry, the
// dedup table and the opcode counter.
type run struct {
	opts    Options
	reg     *typedesc.Registry
	visitor *marshal.Visitor
	mod     *Module
	log     *zap.Logger
}

// Run generates procedures for every canonical compound of reg and assigns
// opcodes to its commands. reg is not modified.
func (g *Generator) Run(reg *typedesc.Registry) (*Module, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	work := reg.Clone()
	r := &run{
		opts:    g.opts,
		reg:     work,
		visitor: marshal.New(work),
		log:     Logger(),
		mod: &Module{
			registry: work,
			byType:   make(map[string]*Definition),
			byProc:   make(map[string]*ir.Proc),
			aliases:  make(map[string]string),
			replies:  make(map[string]*Definition),
			options:  g.opts,
		},
	}

	for _, c := range reg.Compounds() {
		if err := r.genType(c); err != nil {
			return nil, err
		}
	}
	for _, cmd := range reg.Commands() {
		if r.opts.CommandReplies && !cmd.IsAlias() {
			if err := r.genReply(cmd); err != nil {
				return nil, err
			}
		}
	}

	names := make([]string, 0, len(reg.Commands()))
	for _, cmd := range reg.Commands() {
		names = append(names, cmd.Name)
	}
	table, err := opcode.Build(r.opts.OpcodeBase, names)
	if err != nil {
		return nil, err
	}
	r.mod.opcodes = table

	r.log.Info("generation complete",
		zap.Int("types", len(r.mod.byType)),
		zap.Int("aliases", len(r.mod.aliases)),
		zap.Int("replies", len(r.mod.replies)),
		zap.Int("opcodes", table.Len()))
	return r.mod, nil
}

func (r *run) genType(c *typedesc.Compound) error {
	if c.IsAlias() {
		target, err := r.reg.Resolve(c.Name)
		if err != nil {
			return err
		}
		r.mod.aliases[c.Name] = target.Name
		r.log.Debug("alias reuses canonical procedures",
			zap.String("alias", c.Name),
			zap.String("canonical", target.Name))
		return nil
	}
	if _, done := r.mod.byType[c.Name]; done {
		return nil
	}

	def := &Definition{Type: c.Name}
	var err error

	writeCtx := marshal.NewContext(marshalgen.Write, c.Name, r.opts.StreamParam, r.opts.MarshalParam, r.opts.MarshalPrefix)
	if def.Writer, err = r.proc(r.opts.MarshalPrefix+c.Name, c.Name, writeCtx, c.Members); err != nil {
		return err
	}

	readCtx := marshal.NewContext(marshalgen.Read, c.Name, r.opts.StreamParam, r.opts.UnmarshalParam, r.opts.UnmarshalPrefix).
		WithDynAlloc(true)
	if def.Reader, err = r.proc(r.opts.UnmarshalPrefix+c.Name, c.Name, readCtx, c.Members); err != nil {
		return err
	}

	if r.opts.InPlaceReaders {
		intoCtx := marshal.NewContext(marshalgen.Read, c.Name, r.opts.StreamParam, r.opts.UnmarshalParam, r.opts.UnmarshalIntoPrefix)
		if def.ReaderInto, err = r.proc(r.opts.UnmarshalIntoPrefix+c.Name, c.Name, intoCtx, c.Members); err != nil {
			return err
		}
	}

	def.Unsupported = unsupported(def.Writer.Body)
	for _, decl := range def.Unsupported {
		r.log.Warn("member left untransmitted",
			zap.String("type", c.Name),
			zap.String("member", decl))
	}

	r.mod.byType[c.Name] = def
	r.mod.defs = append(r.mod.defs, def)
	return nil
}

// genReply emits the procedures for a command's output parameters. The
// parameters are laid out as a synthesized struct named <command>_reply.
func (r *run) genReply(cmd *typedesc.Command) error {
	outputs := cmd.OutputParams()
	if len(outputs) == 0 {
		return nil
	}

	frame := &typedesc.Compound{Name: cmd.Name + r.opts.ReplySuffix}
	for _, p := range outputs {
		frame.Members = append(frame.Members, p.Field)
	}
	if err := r.reg.ValidateMembers(frame.Name, frame.Members); err != nil {
		r.log.Warn("command reply skipped",
			zap.String("command", cmd.Name),
			zap.Error(err))
		return nil
	}
	if err := r.reg.AddCompound(frame); err != nil {
		return errors.Wrap(errors.PhaseGenerate, errors.KindDuplicate, err, "reply frame of "+cmd.Name)
	}

	def := &Definition{Type: frame.Name, Command: cmd.Name}
	var err error

	writeCtx := marshal.NewContext(marshalgen.Write, frame.Name, r.opts.StreamParam, r.opts.MarshalParam, r.opts.MarshalPrefix).
		WithOutputOnly(true)
	if def.Writer, err = r.proc(r.opts.replyWriter(cmd.Name), frame.Name, writeCtx, frame.Members); err != nil {
		return err
	}

	readCtx := marshal.NewContext(marshalgen.Read, frame.Name, r.opts.StreamParam, r.opts.UnmarshalParam, r.opts.UnmarshalIntoPrefix).
		WithOutputOnly(true)
	if def.Reader, err = r.proc(r.opts.replyReader(cmd.Name), frame.Name, readCtx, frame.Members); err != nil {
		return err
	}

	r.mod.replies[cmd.Name] = def
	r.mod.defs = append(r.mod.defs, def)
	return nil
}

func (r *run) proc(name, typeName string, ctx marshal.Context, members []typedesc.Field) (*ir.Proc, error) {
	if _, dup := r.mod.byProc[name]; dup {
		return nil, errors.Duplicate(errors.PhaseGenerate, "procedure", name)
	}
	body, err := r.visitor.VisitAll(ctx, members)
	if err != nil {
		return nil, err
	}
	p := &ir.Proc{
		Name:      name,
		Type:      typeName,
		Stream:    r.opts.StreamParam,
		Value:     rootName(ctx),
		Direction: ctx.Direction,
		DynAlloc:  ctx.DynAlloc,
		Body:      body,
	}
	r.mod.byProc[name] = p
	r.log.Debug("generated procedure",
		zap.String("proc", name),
		zap.String("type", typeName),
		zap.Stringer("direction", ctx.Direction),
		zap.Bool("dyn_alloc", ctx.DynAlloc),
		zap.Int("statements", len(body)))
	return p, nil
}

func rootName(ctx marshal.Context) string {
	if p, ok := ctx.Root.(ir.Param); ok {
		return p.Name
	}
	return ""
}

func unsupported(body []ir.Stmt) []string {
	var out []string
	ir.Walk(body, func(s ir.Stmt) bool {
		if u, ok := s.(ir.Unsupported); ok {
			out = append(out, u.Decl)
		}
		return true
	})
	return out
}
