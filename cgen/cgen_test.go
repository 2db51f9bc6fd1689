package cgen

import (
	"strings"
	"testing"

	"github.com/wippyai/marshalgen/generator"
	"github.com/wippyai/marshalgen/ir"
	"github.com/wippyai/marshalgen/typedesc"
)

const registryYAML = `
constants:
  MAX_NAME: 16
types:
  - name: Point
    members:
      - {name: x, type: int32_t}
      - {name: y, type: int32_t}
  - name: Line
    members:
      - {name: count, type: uint32_t}
      - {name: pts, type: Point, pointer: 1, len: count}
  - name: Named
    members:
      - {name: pNext, type: void, pointer: 1, chain: true}
      - {name: name, type: char, array: MAX_NAME}
      - {name: pLabel, type: char, pointer: 1, len: null-terminated}
      - {name: tagCount, type: uint32_t}
      - {name: ppTags, type: char, pointer: 2, len: tagCount}
commands:
  - name: vkCreateLine
    params:
      - {name: pLine, type: Line, pointer: 1}
  - name: vkGetOrigin
    params:
      - {name: pOrigin, type: Point, pointer: 1, output: true, optional: true}
`

func generate(t *testing.T, opts generator.Options) *generator.Module {
	t.Helper()
	reg, err := typedesc.LoadYAML(strings.NewReader(registryYAML))
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	mod, err := generator.New(opts).Run(reg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return mod
}

func renderProc(t *testing.T, mod *generator.Module, name string) string {
	t.Helper()
	p, ok := mod.Proc(name)
	if !ok {
		t.Fatalf("no procedure %s", name)
	}
	out, err := RenderProc(p, "")
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestRenderProc(t *testing.T) {
	opts := generator.DefaultOptions()
	opts.InPlaceReaders = true
	mod := generate(t, opts)

	tests := []struct {
		proc string
		want string
	}{
		{
			proc: "marshal_Point",
			want: `void marshal_Point(VulkanStream* stream, const Point* forMarshaling)
{
    stream->write((const void*)&forMarshaling->x, sizeof(int32_t));
    stream->write((const void*)&forMarshaling->y, sizeof(int32_t));
}
`,
		},
		{
			proc: "marshal_Line",
			want: `void marshal_Line(VulkanStream* stream, const Line* forMarshaling)
{
    stream->write((const void*)&forMarshaling->count, sizeof(uint32_t));
    stream->write((const void*)&forMarshaling->pts, sizeof(Point*));
    if (forMarshaling->pts)
    {
        for (uint32_t i = 0; i < (uint32_t)forMarshaling->count; ++i)
        {
            marshal_Point(stream, (const Point*)(forMarshaling->pts + i));
        }
    }
}
`,
		},
		{
			proc: "unmarshal_Line",
			want: `void unmarshal_Line(VulkanStream* stream, Line* forUnmarshaling)
{
    stream->read((void*)&forUnmarshaling->count, sizeof(uint32_t));
    stream->read((void*)&forUnmarshaling->pts, sizeof(Point*));
    if (forUnmarshaling->pts)
    {
        stream->alloc((void**)&forUnmarshaling->pts, forUnmarshaling->count * sizeof(Point));
        for (uint32_t i = 0; i < (uint32_t)forUnmarshaling->count; ++i)
        {
            unmarshal_Point(stream, (Point*)(forUnmarshaling->pts + i));
        }
    }
}
`,
		},
		{
			proc: "unmarshal_into_Line",
			want: `void unmarshal_into_Line(VulkanStream* stream, Line* forUnmarshaling)
{
    stream->read((void*)&forUnmarshaling->count, sizeof(uint32_t));
    Point* check_pts;
    stream->read((void*)&check_pts, sizeof(Point*));
    if (forUnmarshaling->pts)
    {
        if (!(check_pts))
        {
            fprintf(stderr, "fatal: forUnmarshaling->pts inconsistent between guest and host\n");
        }
        else
        {
            for (uint32_t i = 0; i < (uint32_t)forUnmarshaling->count; ++i)
            {
                unmarshal_into_Point(stream, (Point*)(forUnmarshaling->pts + i));
            }
        }
    }
    else if (check_pts)
    {
        fprintf(stderr, "fatal: forUnmarshaling->pts inconsistent between guest and host\n");
    }
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.proc, func(t *testing.T) {
			if got := renderProc(t, mod, tt.proc); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderProc_Strings(t *testing.T) {
	mod := generate(t, generator.DefaultOptions())

	write := renderProc(t, mod, "marshal_Named")
	for _, want := range []string{
		"    // TODO: Unsupported : const void* pNext\n",
		"stream->write((const void*)forMarshaling->name, MAX_NAME * sizeof(char));",
		"stream->putString(forMarshaling->pLabel);",
		"saveStringArray(stream, forMarshaling->ppTags, forMarshaling->tagCount);",
	} {
		if !strings.Contains(write, want) {
			t.Errorf("writer missing %q:\n%s", want, write)
		}
	}

	read := renderProc(t, mod, "unmarshal_Named")
	for _, want := range []string{
		"    // TODO: Unsupported : void* pNext\n",
		"stream->read((void*)forUnmarshaling->name, MAX_NAME * sizeof(char));",
		"stream->loadStringInPlace((char**)&forUnmarshaling->pLabel);",
		"stream->loadStringArrayInPlace((char***)&forUnmarshaling->ppTags);",
	} {
		if !strings.Contains(read, want) {
			t.Errorf("reader missing %q:\n%s", want, read)
		}
	}
}

func TestRender(t *testing.T) {
	opts := generator.DefaultOptions()
	opts.CommandReplies = true
	mod := generate(t, opts)

	out, err := Render(mod, Options{
		StreamType: "Stream",
		HeaderName: "marshaling.h",
		Includes:   []string{"<vulkan/vulkan.h>", "stream.h"},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"#pragma once\n",
		"#include <vulkan/vulkan.h>\n",
		"#include \"stream.h\"\n",
		"#define OP_vkCreateLine 20000\n",
		"#define OP_vkGetOrigin 20001\n",
		"typedef struct vkGetOrigin_reply {\n    Point* pOrigin; /* optional */\n} vkGetOrigin_reply;\n",
		"void marshal_Point(Stream* stream, const Point* forMarshaling);\n",
		"void unmarshal_Line(Stream* stream, Line* forUnmarshaling);\n",
		"void unmarshal_into_Point(Stream* stream, Point* forUnmarshaling);\n",
		"void marshal_reply_vkGetOrigin(Stream* stream, const vkGetOrigin_reply* forMarshaling);\n",
		"void unmarshal_reply_vkGetOrigin(Stream* stream, vkGetOrigin_reply* forUnmarshaling);\n",
	} {
		if !strings.Contains(out.Header, want) {
			t.Errorf("header missing %q", want)
		}
	}
	if strings.Contains(out.Header, "{\n    stream") {
		t.Error("header must not contain procedure bodies")
	}

	if !strings.HasPrefix(out.Impl, banner+"#include \"marshaling.h\"\n#include <stdio.h>\n") {
		t.Errorf("impl preamble:\n%s", out.Impl[:120])
	}
	for _, p := range mod.Procs() {
		if !strings.Contains(out.Impl, "\nvoid "+p.Name+"(") {
			t.Errorf("impl missing body of %s", p.Name)
		}
	}
	if !strings.Contains(out.Impl, "unmarshal_into_Point(stream, (Point*)(forUnmarshaling->pOrigin));") {
		t.Errorf("reply reader should decode into the caller's storage:\n%s", out.Impl)
	}
}

func TestRender_Deterministic(t *testing.T) {
	a, err := Render(generate(t, generator.DefaultOptions()), Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Render(generate(t, generator.DefaultOptions()), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if a.Header != b.Header || a.Impl != b.Impl {
		t.Error("rendering is not deterministic")
	}
	if !strings.Contains(a.Header, "VulkanStream* stream") {
		t.Error("default stream type not applied")
	}
}

type bogusStmt struct{ ir.Stmt }

func TestRenderProc_UnknownStatement(t *testing.T) {
	p := &ir.Proc{Name: "marshal_X", Type: "X", Stream: "stream", Value: "v", Body: []ir.Stmt{bogusStmt{}}}
	if _, err := RenderProc(p, ""); err == nil {
		t.Error("unknown statement should fail")
	}
}
