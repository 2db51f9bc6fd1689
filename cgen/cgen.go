package cgen

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/wippyai/marshalgen"
	"github.com/wippyai/marshalgen/errors"
	"github.com/wippyai/marshalgen/generator"
	"github.com/wippyai/marshalgen/ir"
	"github.com/wippyai/marshalgen/typedesc"
)

const banner = "// Generated by marshalgen. Do not edit.\n"

// DefaultStreamType is the stream parameter type when Options leaves it empty.
const DefaultStreamType = "VulkanStream"

// Options controls rendering.
type Options struct {
	// StreamType is the C type the stream parameter points to.
	StreamType string
	// HeaderName is included from the implementation file when set.
	HeaderName string
	// Includes are extra headers included from the header file.
	Includes []string
}

// Output holds the rendered files.
type Output struct {
	Header string
	Impl   string
}

// Render emits the header and implementation for every procedure of mod.
func Render(mod *generator.Module, opts Options) (*Output, error) {
	if opts.StreamType == "" {
		opts.StreamType = DefaultStreamType
	}

	var hdr, impl writer
	hdr.raw(banner)
	hdr.raw("#pragma once\n\n#include <stdint.h>\n")
	for _, inc := range opts.Includes {
		hdr.line("#include %s", quoteInclude(inc))
	}
	hdr.raw("\n")

	if defs := mod.Opcodes().Defines(); defs != "" {
		hdr.raw(defs)
		hdr.raw("\n")
	}

	replies := lo.Filter(mod.Definitions(), func(d *generator.Definition, _ int) bool {
		return d.Command != ""
	})
	for _, d := range replies {
		if err := renderFrame(&hdr, mod.Registry(), d.Type); err != nil {
			return nil, err
		}
	}

	impl.raw(banner)
	if opts.HeaderName != "" {
		impl.line("#include %s", quoteInclude(opts.HeaderName))
	}
	impl.raw("#include <stdio.h>\n")

	for _, p := range mod.Procs() {
		proto := prototype(p, opts.StreamType)
		hdr.line("%s;", proto)

		impl.raw("\n")
		impl.line("%s", proto)
		impl.line("{")
		impl.indent++
		if err := impl.stmts(p.Body); err != nil {
			return nil, errors.Wrap(errors.PhaseEmit, errors.KindUnsupported, err, p.Name)
		}
		impl.indent--
		impl.line("}")
	}

	return &Output{Header: hdr.String(), Impl: impl.String()}, nil
}

// RenderProc renders a single procedure definition.
func RenderProc(p *ir.Proc, streamType string) (string, error) {
	if streamType == "" {
		streamType = DefaultStreamType
	}
	var w writer
	w.line("%s", prototype(p, streamType))
	w.line("{")
	w.indent++
	if err := w.stmts(p.Body); err != nil {
		return "", errors.Wrap(errors.PhaseEmit, errors.KindUnsupported, err, p.Name)
	}
	w.indent--
	w.line("}")
	return w.String(), nil
}

func prototype(p *ir.Proc, streamType string) string {
	qual := ""
	if p.Direction == marshalgen.Write {
		qual = "const "
	}
	return fmt.Sprintf("void %s(%s* %s, %s%s* %s)", p.Name, streamType, p.Stream, qual, p.Type, p.Value)
}

// renderFrame declares a synthesized reply struct. Members the caller may
// leave NULL are marked optional.
func renderFrame(w *writer, reg *typedesc.Registry, name string) error {
	c, ok := reg.Compound(name)
	if !ok {
		return errors.UnknownType(errors.PhaseEmit, nil, name)
	}
	w.line("typedef struct %s {", name)
	w.indent++
	for i := range c.Members {
		f := &c.Members[i]
		if f.Optional {
			w.line("%s; /* optional */", memberDecl(f))
			continue
		}
		w.line("%s;", memberDecl(f))
	}
	w.indent--
	w.line("} %s;", name)
	w.raw("\n")
	return nil
}

func memberDecl(f *typedesc.Field) string {
	decl := f.Type + strings.Repeat("*", f.PointerDepth) + " " + f.Name
	if f.StaticLen != nil {
		if f.StaticLen.Const != "" {
			return decl + "[" + f.StaticLen.Const + "]"
		}
		return fmt.Sprintf("%s[%d]", decl, f.StaticLen.Literal)
	}
	return decl
}

func quoteInclude(name string) string {
	if strings.HasPrefix(name, "<") || strings.HasPrefix(name, "\"") {
		return name
	}
	return `"` + name + `"`
}
