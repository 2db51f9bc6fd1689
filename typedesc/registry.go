package typedesc

import (
	"github.com/wippyai/marshalgen/errors"
)

// VoidType is the element type of untyped chain-link pointers.
const VoidType = "void"

// CharType is the element type of strings and string arrays.
const CharType = "char"

var builtinScalars = []Scalar{
	{Name: "uint8_t", Size: 1, Align: 1, Integer: true},
	{Name: "int8_t", Size: 1, Align: 1, Integer: true},
	{Name: "char", Size: 1, Align: 1, Integer: true},
	{Name: "bool", Size: 1, Align: 1, Integer: true},
	{Name: "uint16_t", Size: 2, Align: 2, Integer: true},
	{Name: "int16_t", Size: 2, Align: 2, Integer: true},
	{Name: "uint32_t", Size: 4, Align: 4, Integer: true},
	{Name: "int32_t", Size: 4, Align: 4, Integer: true},
	{Name: "int", Size: 4, Align: 4, Integer: true},
	{Name: "size_t", Size: 4, Align: 4, Integer: true},
	{Name: "float", Size: 4, Align: 4},
	{Name: "uint64_t", Size: 8, Align: 8, Integer: true},
	{Name: "int64_t", Size: 8, Align: 8, Integer: true},
	{Name: "double", Size: 8, Align: 8},
}

// Registry is the source of type and command metadata.
type Registry struct {
	scalars   map[string]Scalar
	constants map[string]uint32
	compounds map[string]*Compound
	cmdIndex  map[string]*Command
	order     []string
	commands  []*Command
}

// NewRegistry returns a registry pre-populated with the C builtin scalars.
func NewRegistry() *Registry {
	r := &Registry{
		scalars:   make(map[string]Scalar, len(builtinScalars)),
		constants: make(map[string]uint32),
		compounds: make(map[string]*Compound),
		cmdIndex:  make(map[string]*Command),
	}
	for _, s := range builtinScalars {
		r.scalars[s.Name] = s
	}
	return r
}

// AddScalar declares a scalar type. Redeclaring a scalar with the same
// width is allowed; a conflicting width is not.
func (r *Registry) AddScalar(s Scalar) error {
	if s.Name == "" {
		return errors.InvalidInput(errors.PhaseLoad, "scalar without a name")
	}
	if s.Size == 0 {
		return errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Type(s.Name).
			Detail("scalar size must be positive").
			Build()
	}
	if s.Align == 0 {
		s.Align = s.Size
	}
	if _, ok := r.compounds[s.Name]; ok {
		return errors.Duplicate(errors.PhaseLoad, "type", s.Name)
	}
	if prev, ok := r.scalars[s.Name]; ok && (prev.Size != s.Size || prev.Align != s.Align) {
		return errors.Duplicate(errors.PhaseLoad, "scalar", s.Name)
	}
	r.scalars[s.Name] = s
	return nil
}

// AddConstant declares a named integer usable as a static array length.
func (r *Registry) AddConstant(name string, value uint32) error {
	if prev, ok := r.constants[name]; ok && prev != value {
		return errors.Duplicate(errors.PhaseLoad, "constant", name)
	}
	r.constants[name] = value
	return nil
}

// AddCompound declares a struct, union or alias. Declaration order is kept.
func (r *Registry) AddCompound(c *Compound) error {
	if c == nil || c.Name == "" {
		return errors.InvalidInput(errors.PhaseLoad, "compound without a name")
	}
	if _, ok := r.compounds[c.Name]; ok {
		return errors.Duplicate(errors.PhaseLoad, "type", c.Name)
	}
	if _, ok := r.scalars[c.Name]; ok {
		return errors.Duplicate(errors.PhaseLoad, "type", c.Name)
	}
	r.compounds[c.Name] = c
	r.order = append(r.order, c.Name)
	return nil
}

// AddCommand declares a remote-callable command. Declaration order is kept.
func (r *Registry) AddCommand(c *Command) error {
	if c == nil || c.Name == "" {
		return errors.InvalidInput(errors.PhaseLoad, "command without a name")
	}
	if _, ok := r.cmdIndex[c.Name]; ok {
		return errors.Duplicate(errors.PhaseLoad, "command", c.Name)
	}
	r.cmdIndex[c.Name] = c
	r.commands = append(r.commands, c)
	return nil
}

// Compounds returns compounds in declaration order.
func (r *Registry) Compounds() []*Compound {
	out := make([]*Compound, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.compounds[name])
	}
	return out
}

// Commands returns commands in declaration order.
func (r *Registry) Commands() []*Command {
	out := make([]*Command, len(r.commands))
	copy(out, r.commands)
	return out
}

func (r *Registry) Compound(name string) (*Compound, bool) {
	c, ok := r.compounds[name]
	return c, ok
}

func (r *Registry) Command(name string) (*Command, bool) {
	c, ok := r.cmdIndex[name]
	return c, ok
}

func (r *Registry) Scalar(name string) (Scalar, bool) {
	s, ok := r.scalars[name]
	return s, ok
}

func (r *Registry) Constant(name string) (uint32, bool) {
	v, ok := r.constants[name]
	return v, ok
}

// IsCompound reports whether name is a compound or an alias of one.
func (r *Registry) IsCompound(name string) bool {
	_, ok := r.compounds[name]
	return ok
}

// Resolve follows alias links to the canonical compound.
func (r *Registry) Resolve(name string) (*Compound, error) {
	seen := make(map[string]bool)
	cur := name
	for {
		c, ok := r.compounds[cur]
		if !ok {
			return nil, errors.UnknownType(errors.PhaseValidate, nil, cur)
		}
		if !c.IsAlias() {
			return c, nil
		}
		if seen[cur] {
			return nil, errors.New(errors.PhaseValidate, errors.KindInvalidData).
				Type(name).
				Detail("alias cycle through %q", cur).
				Build()
		}
		seen[cur] = true
		cur = c.Alias
	}
}

// ResolveLength evaluates a static length expression.
func (r *Registry) ResolveLength(l *LengthExpr) (uint32, error) {
	if l == nil {
		return 0, errors.UnresolvedLength(errors.PhaseGenerate, nil, "")
	}
	if l.Const == "" {
		if l.Literal == 0 {
			return 0, errors.UnresolvedLength(errors.PhaseGenerate, nil, "0")
		}
		return l.Literal, nil
	}
	v, ok := r.constants[l.Const]
	if !ok || v == 0 {
		return 0, errors.UnresolvedLength(errors.PhaseGenerate, nil, l.Const)
	}
	return v, nil
}

// Clone returns a registry sharing descriptors but with independent
// indexes, so extra declarations do not leak into the original.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		scalars:   make(map[string]Scalar, len(r.scalars)),
		constants: make(map[string]uint32, len(r.constants)),
		compounds: make(map[string]*Compound, len(r.compounds)),
		cmdIndex:  make(map[string]*Command, len(r.cmdIndex)),
		order:     append([]string(nil), r.order...),
		commands:  append([]*Command(nil), r.commands...),
	}
	for k, v := range r.scalars {
		c.scalars[k] = v
	}
	for k, v := range r.constants {
		c.constants[k] = v
	}
	for k, v := range r.compounds {
		c.compounds[k] = v
	}
	for k, v := range r.cmdIndex {
		c.cmdIndex[k] = v
	}
	return c
}
