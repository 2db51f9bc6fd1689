package layout

import (
	"github.com/wippyai/marshalgen"
	"github.com/wippyai/marshalgen/errors"
	"github.com/wippyai/marshalgen/internal/abi"
	"github.com/wippyai/marshalgen/typedesc"
)

// Info is the memory layout of a type.
type Info struct {
	FieldOffs map[string]uint32
	Size      uint32
	Align     uint32
}

var pointerInfo = Info{Size: marshalgen.PointerSize, Align: marshalgen.PointerSize}

type Calculator struct {
	reg     *typedesc.Registry
	cache   map[string]Info
	pending map[string]bool
}

func NewCalculator(reg *typedesc.Registry) *Calculator {
	return &Calculator{
		reg:     reg,
		cache:   make(map[string]Info),
		pending: make(map[string]bool),
	}
}

// Type returns the layout of a named scalar or compound.
func (c *Calculator) Type(name string) (Info, error) {
	if s, ok := c.reg.Scalar(name); ok {
		return Info{Size: s.Size, Align: s.Align}, nil
	}
	return c.Compound(name)
}

// Compound returns the layout of a compound, following aliases.
func (c *Calculator) Compound(name string) (Info, error) {
	comp, err := c.reg.Resolve(name)
	if err != nil {
		return Info{}, err
	}
	if cached, ok := c.cache[comp.Name]; ok {
		return cached, nil
	}
	if c.pending[comp.Name] {
		return Info{}, errors.New(errors.PhaseGenerate, errors.KindInvalidData).
			Type(comp.Name).
			Detail("contains itself by value").
			Build()
	}
	c.pending[comp.Name] = true
	defer delete(c.pending, comp.Name)

	var info Info
	if comp.Category == typedesc.CategoryUnion {
		info, err = c.calculateUnion(comp)
	} else {
		info, err = c.calculateStruct(comp)
	}
	if err != nil {
		return Info{}, err
	}
	c.cache[comp.Name] = info
	return info, nil
}

// Field returns the storage a member occupies inside its owner.
func (c *Calculator) Field(f *typedesc.Field) (Info, error) {
	if f.ChainLink || f.IsPointer() {
		return pointerInfo, nil
	}
	elem, err := c.Type(f.Type)
	if err != nil {
		return Info{}, err
	}
	if f.StaticLen == nil {
		return elem, nil
	}
	n, err := c.reg.ResolveLength(f.StaticLen)
	if err != nil {
		return Info{}, err
	}
	size, ok := abi.SafeMulU32(elem.Size, n)
	if !ok {
		return Info{}, errors.Overflow(errors.PhaseGenerate, []string{f.Name}, n, "array size")
	}
	return Info{Size: size, Align: elem.Align}, nil
}

// Offset returns the byte offset of a member within a compound.
func (c *Calculator) Offset(owner, member string) (uint32, error) {
	info, err := c.Compound(owner)
	if err != nil {
		return 0, err
	}
	off, ok := info.FieldOffs[member]
	if !ok {
		return 0, errors.NotFound(errors.PhaseGenerate, "member", owner+"."+member)
	}
	return off, nil
}

func (c *Calculator) calculateStruct(comp *typedesc.Compound) (Info, error) {
	if len(comp.Members) == 0 {
		return Info{Size: 0, Align: 1}, nil
	}

	fieldOffs := make(map[string]uint32, len(comp.Members))
	maxAlign := uint32(1)
	offset := uint32(0)

	for i := range comp.Members {
		f := &comp.Members[i]
		fieldLayout, err := c.Field(f)
		if err != nil {
			return Info{}, withOwner(err, comp.Name, f.Name)
		}

		offset = abi.AlignTo(offset, fieldLayout.Align)
		fieldOffs[f.Name] = offset

		if fieldLayout.Align > maxAlign {
			maxAlign = fieldLayout.Align
		}

		next, ok := abi.SafeAddU32(offset, fieldLayout.Size)
		if !ok {
			return Info{}, errors.Overflow(errors.PhaseGenerate, []string{comp.Name, f.Name}, offset, "struct size")
		}
		offset = next
	}

	return Info{
		Size:      abi.AlignTo(offset, maxAlign),
		Align:     maxAlign,
		FieldOffs: fieldOffs,
	}, nil
}

func (c *Calculator) calculateUnion(comp *typedesc.Compound) (Info, error) {
	fieldOffs := make(map[string]uint32, len(comp.Members))
	maxAlign := uint32(1)
	maxSize := uint32(0)

	for i := range comp.Members {
		f := &comp.Members[i]
		fieldLayout, err := c.Field(f)
		if err != nil {
			return Info{}, withOwner(err, comp.Name, f.Name)
		}
		fieldOffs[f.Name] = 0
		if fieldLayout.Align > maxAlign {
			maxAlign = fieldLayout.Align
		}
		if fieldLayout.Size > maxSize {
			maxSize = fieldLayout.Size
		}
	}

	return Info{
		Size:      abi.AlignTo(maxSize, maxAlign),
		Align:     maxAlign,
		FieldOffs: fieldOffs,
	}, nil
}

func withOwner(err error, path ...string) error {
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		cp := *e
		cp.Path = path
		return &cp
	}
	return err
}
