package typedesc

import (
	"io"

	"github.com/samber/lo"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/marshalgen/errors"
)

// LoadWITJSON imports the named records of a WIT resolve document as
// produced by `wasm-tools component wit --json`.
func LoadWITJSON(r io.Reader) (*Registry, error) {
	res, err := wit.DecodeJSON(r)
	if err != nil {
		return nil, errors.ParseFailed("wit json", err)
	}
	return FromWIT(res.TypeDefs)
}

// FromWIT builds a registry from WIT type definitions. Named records become
// structs, named aliases of records become compound aliases; other named
// definitions are only imported when a record refers to them.
//
//	record      -> struct (fields in declaration order)
//	list<T>     -> <field>Count: uint32_t + dynamic pointer to T
//	option<T>   -> optional pointer to T
//	string      -> char* string
//	enum, flags -> integer scalar of their canonical width
func FromWIT(defs []*wit.TypeDef) (*Registry, error) {
	reg := NewRegistry()
	named := lo.Filter(defs, func(td *wit.TypeDef, _ int) bool {
		return td != nil && td.Name != nil
	})

	for _, td := range named {
		switch kind := td.Kind.(type) {
		case *wit.Record:
			c := &Compound{Name: witTypeName(td)}
			for _, wf := range kind.Fields {
				fields, err := witField(c.Name, wf.Name, wf.Type)
				if err != nil {
					return nil, err
				}
				c.Members = append(c.Members, fields...)
			}
			if err := reg.AddCompound(c); err != nil {
				return nil, err
			}
		case wit.Type:
			target, ok := kind.(*wit.TypeDef)
			if !ok || target.Name == nil {
				continue
			}
			if _, isRecord := target.Kind.(*wit.Record); isRecord {
				if err := reg.AddCompound(&Compound{Name: witTypeName(td), Alias: witTypeName(target)}); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

func witTypeName(td *wit.TypeDef) string {
	return lo.PascalCase(*td.Name)
}

func witField(owner, witName string, t wit.Type) ([]Field, error) {
	name := lo.CamelCase(witName)
	path := []string{owner, name}

	if scalar, ok := witScalar(t); ok {
		return []Field{{Name: name, Kind: KindScalar, Type: scalar}}, nil
	}
	if _, ok := t.(wit.String); ok {
		return []Field{{Name: name, Kind: KindString, Type: CharType, PointerDepth: 1}}, nil
	}

	td, ok := t.(*wit.TypeDef)
	if !ok {
		return nil, errors.Unsupported(errors.PhaseLoad, path, "wit type "+witKindName(t))
	}

	switch kind := td.Kind.(type) {
	case *wit.Record:
		if td.Name == nil {
			return nil, errors.Unsupported(errors.PhaseLoad, path, "anonymous record")
		}
		return []Field{{Name: name, Kind: KindCompound, Type: witTypeName(td)}}, nil

	case *wit.List:
		count := Field{Name: name + "Count", Kind: KindScalar, Type: "uint32_t"}
		elem, err := witIndirect(path, kind.Type)
		if err != nil {
			return nil, err
		}
		elem.Name = name
		elem.LenField = count.Name
		if elem.Kind == KindString {
			elem.Kind = KindStringArray
			elem.PointerDepth = 2
		}
		return []Field{count, elem}, nil

	case *wit.Option:
		elem, err := witIndirect(path, kind.Type)
		if err != nil {
			return nil, err
		}
		if elem.Kind == KindString {
			return nil, errors.Unsupported(errors.PhaseLoad, path, "option<string>")
		}
		elem.Name = name
		elem.Optional = true
		return []Field{elem}, nil

	case *wit.Enum:
		return []Field{{Name: name, Kind: KindScalar, Type: discriminantScalar(len(kind.Cases))}}, nil

	case *wit.Flags:
		scalar, ok := flagsScalar(len(kind.Flags))
		if !ok {
			return nil, errors.Unsupported(errors.PhaseLoad, path, "flags wider than 64 bits")
		}
		return []Field{{Name: name, Kind: KindScalar, Type: scalar}}, nil

	case wit.Type:
		return witField(owner, witName, kind)
	}

	return nil, errors.Unsupported(errors.PhaseLoad, path, "wit type "+witKindName(t))
}

// witIndirect describes T reached through one pointer.
func witIndirect(path []string, t wit.Type) (Field, error) {
	if scalar, ok := witScalar(t); ok {
		return Field{Kind: KindPointer, Type: scalar, PointerDepth: 1}, nil
	}
	if _, ok := t.(wit.String); ok {
		return Field{Kind: KindString, Type: CharType, PointerDepth: 1}, nil
	}
	if td, ok := t.(*wit.TypeDef); ok && td.Name != nil {
		if _, isRecord := td.Kind.(*wit.Record); isRecord {
			return Field{Kind: KindCompound, Type: witTypeName(td), PointerDepth: 1}, nil
		}
	}
	return Field{}, errors.Unsupported(errors.PhaseLoad, path, "element type "+witKindName(t))
}

func witScalar(t wit.Type) (string, bool) {
	switch t.(type) {
	case wit.Bool:
		return "bool", true
	case wit.U8:
		return "uint8_t", true
	case wit.S8:
		return "int8_t", true
	case wit.U16:
		return "uint16_t", true
	case wit.S16:
		return "int16_t", true
	case wit.U32, wit.Char:
		return "uint32_t", true
	case wit.S32:
		return "int32_t", true
	case wit.U64:
		return "uint64_t", true
	case wit.S64:
		return "int64_t", true
	case wit.F32:
		return "float", true
	case wit.F64:
		return "double", true
	}
	return "", false
}

func discriminantScalar(cases int) string {
	switch {
	case cases <= 1<<8:
		return "uint8_t"
	case cases <= 1<<16:
		return "uint16_t"
	default:
		return "uint32_t"
	}
}

func flagsScalar(n int) (string, bool) {
	switch {
	case n <= 8:
		return "uint8_t", true
	case n <= 16:
		return "uint16_t", true
	case n <= 32:
		return "uint32_t", true
	case n <= 64:
		return "uint64_t", true
	}
	return "", false
}

func witKindName(t wit.Type) string {
	if td, ok := t.(*wit.TypeDef); ok {
		switch td.Kind.(type) {
		case *wit.Variant:
			return "variant"
		case *wit.Result:
			return "result"
		case *wit.Tuple:
			return "tuple"
		case *wit.Own:
			return "own"
		case *wit.Borrow:
			return "borrow"
		case *wit.Record:
			return "record"
		}
		return "typedef"
	}
	return lo.Ternary(t == nil, "nil", "primitive")
}
