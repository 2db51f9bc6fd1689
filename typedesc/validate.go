package typedesc

import (
	"fmt"

	"github.com/wippyai/marshalgen/errors"
)

// Validate checks every compound and command against the model's
// invariants. It reports the first violation; generation must not proceed
// past a failed validation.
func (r *Registry) Validate() error {
	for _, c := range r.Compounds() {
		if c.IsAlias() {
			if _, err := r.Resolve(c.Name); err != nil {
				return withPath(err, c.Name)
			}
			continue
		}
		if err := r.ValidateMembers(c.Name, c.Members); err != nil {
			return err
		}
	}
	for _, cmd := range r.commands {
		fields := make([]Field, len(cmd.Params))
		for i, p := range cmd.Params {
			fields[i] = p.Field
		}
		if err := r.ValidateMembers(cmd.Name, fields); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMembers checks an ordered member list. Dynamic lengths may only
// reference earlier siblings.
func (r *Registry) ValidateMembers(owner string, members []Field) error {
	seen := make(map[string]*Field, len(members))
	for i := range members {
		f := &members[i]
		if f.Name == "" {
			return errors.InvalidData(errors.PhaseValidate, []string{owner}, fmt.Sprintf("member %d has no name", i))
		}
		if _, dup := seen[f.Name]; dup {
			return errors.New(errors.PhaseValidate, errors.KindDuplicate).
				Path(owner, f.Name).
				Detail("member declared twice").
				Build()
		}
		if err := r.validateField(owner, f, seen); err != nil {
			return err
		}
		seen[f.Name] = f
	}
	return nil
}

func (r *Registry) validateField(owner string, f *Field, earlier map[string]*Field) error {
	path := []string{owner, f.Name}

	if f.ChainLink {
		if !f.IsPointer() {
			return errors.InvalidData(errors.PhaseValidate, path, "chain link must be a pointer")
		}
		return nil
	}

	if f.PointerDepth < 0 {
		return errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Path(path...).
			Detail("negative pointer depth %d", f.PointerDepth).
			Build()
	}
	if f.Optional && !f.IsPointer() {
		return errors.InvalidData(errors.PhaseValidate, path, "only pointer members can be optional")
	}

	_, isScalar := r.scalars[f.Type]
	isCompound := r.IsCompound(f.Type)
	if !isScalar && !isCompound {
		return errors.UnknownType(errors.PhaseValidate, path, f.Type)
	}
	if isCompound {
		if _, err := r.Resolve(f.Type); err != nil {
			return withPath(err, path...)
		}
	}

	shape := func(ok bool, detail string) error {
		if ok {
			return nil
		}
		return errors.New(errors.PhaseValidate, errors.KindInvalidData).
			Path(path...).
			Type(f.Type).
			Detail("%s field %s", f.Kind, detail).
			Build()
	}

	var err error
	switch f.Kind {
	case KindScalar:
		err = shape(isScalar && f.PointerDepth == 0 && !f.HasLength(), "must be a plain scalar value")
	case KindPointer:
		if f.PointerDepth > 1 {
			return errors.Unsupported(errors.PhaseValidate, path, "pointer to pointer")
		}
		err = shape(isScalar && f.PointerDepth == 1 && f.StaticLen == nil, "must be a single pointer to a scalar")
	case KindFixedArray:
		err = shape(isScalar && f.PointerDepth == 0 && f.StaticLen != nil && f.LenField == "", "needs a static length and no pointer")
	case KindString:
		err = shape(f.Type == CharType && f.PointerDepth == 1 && !f.HasLength(), "must be char* without a length")
	case KindStringArray:
		err = shape(f.Type == CharType && f.PointerDepth == 2 && f.LenField != "" && f.StaticLen == nil, "must be char** with a sibling count")
	case KindCompound:
		if f.PointerDepth > 1 {
			return errors.Unsupported(errors.PhaseValidate, path, "pointer to pointer to compound")
		}
		err = shape(isCompound, "must name a compound type")
		if err == nil && f.PointerDepth == 0 {
			err = shape(f.LenField == "", "by value cannot have a dynamic length")
		}
		if err == nil && f.PointerDepth == 1 {
			err = shape(f.StaticLen == nil, "through a pointer cannot have a static length")
		}
	default:
		return errors.Unsupported(errors.PhaseValidate, path, "field kind "+f.Kind.String())
	}
	if err != nil {
		return err
	}

	if f.StaticLen != nil {
		if _, err := r.ResolveLength(f.StaticLen); err != nil {
			return withPath(err, path...)
		}
	}
	if f.LenField != "" {
		if err := r.validateLenField(path, f.LenField, earlier); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) validateLenField(path []string, name string, earlier map[string]*Field) error {
	lf, ok := earlier[name]
	if !ok {
		return errors.New(errors.PhaseValidate, errors.KindUnresolvedLength).
			Path(path...).
			Detail("length field %q is not an earlier sibling", name).
			Build()
	}
	s, isScalar := r.scalars[lf.Type]
	if lf.Kind != KindScalar || !isScalar || !s.Integer || lf.PointerDepth != 0 {
		return errors.New(errors.PhaseValidate, errors.KindUnresolvedLength).
			Path(path...).
			Type(lf.Type).
			Detail("length field %q is not an integer scalar", name).
			Build()
	}
	return nil
}

func withPath(err error, path ...string) error {
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		cp := *e
		cp.Path = path
		return &cp
	}
	return err
}
