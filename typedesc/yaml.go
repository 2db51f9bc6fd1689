package typedesc

import (
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/marshalgen/errors"
)

// nullTerminated marks a string length in registry documents.
const nullTerminated = "null-terminated"

type document struct {
	Constants map[string]uint32 `yaml:"constants"`
	Scalars   []scalarDoc       `yaml:"scalars"`
	Types     []typeDoc         `yaml:"types"`
	Commands  []commandDoc      `yaml:"commands"`
}

type scalarDoc struct {
	Integer *bool  `yaml:"integer"`
	Name    string `yaml:"name"`
	Size    uint32 `yaml:"size"`
	Align   uint32 `yaml:"align"`
}

type typeDoc struct {
	Name     string     `yaml:"name"`
	Category string     `yaml:"category"`
	Alias    string     `yaml:"alias"`
	Members  []fieldDoc `yaml:"members"`
}

type commandDoc struct {
	Name   string     `yaml:"name"`
	Alias  string     `yaml:"alias"`
	Params []fieldDoc `yaml:"params"`
}

type fieldDoc struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Kind     string `yaml:"kind"`
	Len      string `yaml:"len"`
	Array    string `yaml:"array"`
	Pointer  int    `yaml:"pointer"`
	Chain    bool   `yaml:"chain"`
	Optional bool   `yaml:"optional"`
	Output   bool   `yaml:"output"`
}

// LoadFile reads a YAML registry document from path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Load("open registry", err)
	}
	defer f.Close()
	return LoadYAML(f)
}

// LoadYAML decodes a registry document:
//
//	constants:
//	  MAX_NAME: 32
//	scalars:
//	  - {name: VkFlags, size: 4}
//	types:
//	  - name: Point
//	    members:
//	      - {name: x, type: int32_t}
//	      - {name: y, type: int32_t}
//	  - name: Line
//	    members:
//	      - {name: count, type: uint32_t}
//	      - {name: pts, type: Point, pointer: 1, len: count}
//	commands:
//	  - name: vkDrawLine
//	    params:
//	      - {name: line, type: Line, pointer: 1}
//
// Field kinds are inferred when omitted. The result is validated.
func LoadYAML(r io.Reader) (*Registry, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.ParseFailed("registry yaml", err)
	}

	reg := NewRegistry()
	for name, v := range doc.Constants {
		if err := reg.AddConstant(name, v); err != nil {
			return nil, err
		}
	}
	for _, s := range doc.Scalars {
		integer := true
		if s.Integer != nil {
			integer = *s.Integer
		}
		if err := reg.AddScalar(Scalar{Name: s.Name, Size: s.Size, Align: s.Align, Integer: integer}); err != nil {
			return nil, err
		}
	}

	compoundNames := make(map[string]bool, len(doc.Types))
	for _, t := range doc.Types {
		compoundNames[t.Name] = true
	}
	isCompound := func(name string) bool { return compoundNames[name] }

	for _, t := range doc.Types {
		c := &Compound{Name: t.Name, Alias: t.Alias}
		switch strings.ToLower(t.Category) {
		case "", "struct":
			c.Category = CategoryStruct
		case "union":
			c.Category = CategoryUnion
		default:
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Type(t.Name).
				Detail("unknown category %q", t.Category).
				Build()
		}
		if c.IsAlias() && len(t.Members) > 0 {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Type(t.Name).
				Detail("alias of %q cannot declare members", t.Alias).
				Build()
		}
		for _, fd := range t.Members {
			f, err := fd.toField(t.Name, isCompound)
			if err != nil {
				return nil, err
			}
			c.Members = append(c.Members, f)
		}
		if err := reg.AddCompound(c); err != nil {
			return nil, err
		}
	}

	for _, cd := range doc.Commands {
		cmd := &Command{Name: cd.Name, Alias: cd.Alias}
		for _, fd := range cd.Params {
			f, err := fd.toField(cd.Name, isCompound)
			if err != nil {
				return nil, err
			}
			cmd.Params = append(cmd.Params, Param{Field: f, Output: fd.Output})
		}
		if err := reg.AddCommand(cmd); err != nil {
			return nil, err
		}
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

func (fd fieldDoc) toField(owner string, isCompound func(string) bool) (Field, error) {
	f := Field{
		Name:         fd.Name,
		Type:         fd.Type,
		PointerDepth: fd.Pointer,
		ChainLink:    fd.Chain,
		Optional:     fd.Optional,
		LenField:     parseLen(fd.Len),
	}
	if fd.Array != "" {
		if n, err := strconv.ParseUint(fd.Array, 10, 32); err == nil {
			f.StaticLen = Lit(uint32(n))
		} else {
			f.StaticLen = ConstLen(fd.Array)
		}
	}

	if fd.Kind != "" {
		k, ok := ParseFieldKind(fd.Kind)
		if !ok {
			return Field{}, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Path(owner, fd.Name).
				Detail("unknown kind %q", fd.Kind).
				Build()
		}
		f.Kind = k
		return f, nil
	}
	f.Kind = inferKind(f, isCompound(f.Type))
	return f, nil
}

// parseLen extracts the sibling count from a len attribute such as
// "count", "null-terminated" or "count,null-terminated".
func parseLen(s string) string {
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" && part != nullTerminated {
			return part
		}
	}
	return ""
}

func inferKind(f Field, compound bool) FieldKind {
	switch {
	case f.ChainLink:
		return KindPointer
	case compound:
		return KindCompound
	case f.StaticLen != nil:
		return KindFixedArray
	case f.Type == CharType && f.PointerDepth == 1 && f.LenField == "":
		return KindString
	case f.Type == CharType && f.PointerDepth == 2:
		return KindStringArray
	case f.PointerDepth > 0:
		return KindPointer
	default:
		return KindScalar
	}
}
