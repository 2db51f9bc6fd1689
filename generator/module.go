package generator

import (
	"github.com/wippyai/marshalgen"
	"github.com/wippyai/marshalgen/ir"
	"github.com/wippyai/marshalgen/opcode"
	"github.com/wippyai/marshalgen/typedesc"
)

// Definition is the procedure set generated for one canonical type.
type Definition struct {
	Writer      *ir.Proc
	Reader      *ir.Proc
	ReaderInto  *ir.Proc
	Type        string
	Command     string
	Unsupported []string
}

// Module is the immutable result of one generation run.
type Module struct {
	registry *typedesc.Registry
	opcodes  *opcode.Table
	byType   map[string]*Definition
	byProc   map[string]*ir.Proc
	aliases  map[string]string
	replies  map[string]*Definition
	defs     []*Definition
	options  Options
}

// Registry returns the registry the module was generated from, including
// synthesized reply frames.
func (m *Module) Registry() *typedesc.Registry {
	return m.registry
}

// Opcodes returns the command opcode table, assigned in declaration order.
func (m *Module) Opcodes() *opcode.Table {
	return m.opcodes
}

// Options returns the options the module was generated with.
func (m *Module) Options() Options {
	return m.options
}

// Definitions returns type definitions followed by reply definitions, in
// generation order.
func (m *Module) Definitions() []*Definition {
	out := make([]*Definition, len(m.defs))
	copy(out, m.defs)
	return out
}

// Procs returns every procedure in generation order.
func (m *Module) Procs() []*ir.Proc {
	var out []*ir.Proc
	for _, d := range m.defs {
		for _, p := range []*ir.Proc{d.Writer, d.Reader, d.ReaderInto} {
			if p != nil {
				out = append(out, p)
			}
		}
	}
	return out
}

// Proc looks up a procedure by its generated name.
func (m *Module) Proc(name string) (*ir.Proc, bool) {
	p, ok := m.byProc[name]
	return p, ok
}

// Definition returns the procedures for a type name, following aliases.
func (m *Module) Definition(typeName string) (*Definition, bool) {
	if canonical, ok := m.aliases[typeName]; ok {
		typeName = canonical
	}
	d, ok := m.byType[typeName]
	return d, ok
}

// ProcFor returns the writer or the allocating reader of a type.
func (m *Module) ProcFor(typeName string, dir marshalgen.Direction) (*ir.Proc, bool) {
	d, ok := m.Definition(typeName)
	if !ok {
		return nil, false
	}
	if dir == marshalgen.Read {
		return d.Reader, true
	}
	return d.Writer, true
}

// InPlaceReader returns the non-allocating reader of a type, when generated.
func (m *Module) InPlaceReader(typeName string) (*ir.Proc, bool) {
	d, ok := m.Definition(typeName)
	if !ok || d.ReaderInto == nil {
		return nil, false
	}
	return d.ReaderInto, true
}

// Reply returns the reply procedures of a command, when generated.
func (m *Module) Reply(command string) (*Definition, bool) {
	d, ok := m.replies[command]
	return d, ok
}

// Canonical reports the type an alias resolves to.
func (m *Module) Canonical(typeName string) string {
	if canonical, ok := m.aliases[typeName]; ok {
		return canonical
	}
	return typeName
}
