// Package opcode assigns wire opcodes to remote-callable commands.
//
// Opcodes are dense and strictly increasing from a base chosen above the
// range used by the control channel. Assignment follows the order names are
// first seen, so an unchanged ordered command list always produces the same
// table. Renumbering after commands are added, removed or reordered is a
// protocol versioning concern and is not handled here.
package opcode

import (
	"fmt"
	"strings"

	"github.com/wippyai/marshalgen/errors"
)

// DefaultBase is the first opcode handed out.
const DefaultBase uint32 = 20000

// Entry binds a command name to its opcode.
type Entry struct {
	Name  string
	Value uint32
}

// Define renders the entry as a C preprocessor constant.
func (e Entry) Define() string {
	return fmt.Sprintf("#define OP_%s %d", e.Name, e.Value)
}

// Assigner hands out opcodes sequentially.
type Assigner struct {
	byName  map[string]uint32
	entries []Entry
	next    uint32
}

// NewAssigner returns an Assigner whose first opcode is base.
func NewAssigner(base uint32) *Assigner {
	return &Assigner{
		next:   base,
		byName: make(map[string]uint32),
	}
}

// Assign gives name the next opcode. A name is assigned at most once.
func (a *Assigner) Assign(name string) (uint32, error) {
	if name == "" {
		return 0, errors.InvalidInput(errors.PhaseGenerate, "command without a name")
	}
	if _, ok := a.byName[name]; ok {
		return 0, errors.Duplicate(errors.PhaseGenerate, "opcode for command", name)
	}
	if a.next == ^uint32(0) {
		return 0, errors.Overflow(errors.PhaseGenerate, []string{name}, a.next, "opcode")
	}
	v := a.next
	a.next++
	a.byName[name] = v
	a.entries = append(a.entries, Entry{Name: name, Value: v})
	return v, nil
}

// Table freezes the assignments made so far.
func (a *Assigner) Table() *Table {
	entries := make([]Entry, len(a.entries))
	copy(entries, a.entries)
	byName := make(map[string]uint32, len(a.byName))
	for k, v := range a.byName {
		byName[k] = v
	}
	return &Table{entries: entries, byName: byName}
}

// Build assigns opcodes to names in order.
func Build(base uint32, names []string) (*Table, error) {
	a := NewAssigner(base)
	for _, name := range names {
		if _, err := a.Assign(name); err != nil {
			return nil, err
		}
	}
	return a.Table(), nil
}

// Table is an immutable name to opcode mapping.
type Table struct {
	byName  map[string]uint32
	entries []Entry
}

// Entries returns the assignments in opcode order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Lookup returns the opcode assigned to name.
func (t *Table) Lookup(name string) (uint32, bool) {
	v, ok := t.byName[name]
	return v, ok
}

// Len returns the number of assigned opcodes.
func (t *Table) Len() int {
	return len(t.entries)
}

// Defines renders every entry, one per line.
func (t *Table) Defines() string {
	var b strings.Builder
	for _, e := range t.entries {
		b.WriteString(e.Define())
		b.WriteByte('\n')
	}
	return b.String()
}
