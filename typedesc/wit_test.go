package typedesc

import (
	stderrors "errors"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/marshalgen/errors"
)

func named(name string, kind wit.TypeDefKind) *wit.TypeDef {
	return &wit.TypeDef{Name: &name, Kind: kind}
}

func TestFromWIT(t *testing.T) {
	point := named("point", &wit.Record{
		Fields: []wit.Field{
			{Name: "x", Type: wit.S32{}},
			{Name: "y", Type: wit.S32{}},
		},
	})
	color := named("color", &wit.Enum{Cases: []wit.EnumCase{{Name: "red"}, {Name: "green"}}})
	perms := named("perms", &wit.Flags{Flags: []wit.Flag{{Name: "read"}, {Name: "write"}}})
	shape := named("shape-info", &wit.Record{
		Fields: []wit.Field{
			{Name: "label", Type: wit.String{}},
			{Name: "origin", Type: point},
			{Name: "points", Type: &wit.TypeDef{Kind: &wit.List{Type: point}}},
			{Name: "tags", Type: &wit.TypeDef{Kind: &wit.List{Type: wit.String{}}}},
			{Name: "weights", Type: &wit.TypeDef{Kind: &wit.List{Type: wit.F32{}}}},
			{Name: "anchor", Type: &wit.TypeDef{Kind: &wit.Option{Type: point}}},
			{Name: "fill", Type: color},
			{Name: "access", Type: perms},
		},
	})
	outline := named("outline", point)

	reg, err := FromWIT([]*wit.TypeDef{point, color, perms, shape, outline, {Kind: &wit.List{Type: wit.U8{}}}})
	if err != nil {
		t.Fatalf("FromWIT: %v", err)
	}

	if _, ok := reg.Compound("Color"); ok {
		t.Error("enums should not become compounds")
	}
	if c, err := reg.Resolve("Outline"); err != nil || c.Name != "Point" {
		t.Errorf("Resolve(Outline) = %v, %v", c, err)
	}

	info, ok := reg.Compound("ShapeInfo")
	if !ok {
		t.Fatal("ShapeInfo missing")
	}

	want := []Field{
		{Name: "label", Kind: KindString, Type: CharType, PointerDepth: 1},
		{Name: "origin", Kind: KindCompound, Type: "Point"},
		{Name: "pointsCount", Kind: KindScalar, Type: "uint32_t"},
		{Name: "points", Kind: KindCompound, Type: "Point", PointerDepth: 1, LenField: "pointsCount"},
		{Name: "tagsCount", Kind: KindScalar, Type: "uint32_t"},
		{Name: "tags", Kind: KindStringArray, Type: CharType, PointerDepth: 2, LenField: "tagsCount"},
		{Name: "weightsCount", Kind: KindScalar, Type: "uint32_t"},
		{Name: "weights", Kind: KindPointer, Type: "float", PointerDepth: 1, LenField: "weightsCount"},
		{Name: "anchor", Kind: KindCompound, Type: "Point", PointerDepth: 1, Optional: true},
		{Name: "fill", Kind: KindScalar, Type: "uint8_t"},
		{Name: "access", Kind: KindScalar, Type: "uint8_t"},
	}
	if len(info.Members) != len(want) {
		t.Fatalf("got %d members, want %d: %+v", len(info.Members), len(want), info.Members)
	}
	for i, w := range want {
		got := info.Members[i]
		if got.Name != w.Name || got.Kind != w.Kind || got.Type != w.Type ||
			got.PointerDepth != w.PointerDepth || got.LenField != w.LenField || got.Optional != w.Optional {
			t.Errorf("member %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestFromWIT_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		typ  wit.Type
	}{
		{"option of string", &wit.TypeDef{Kind: &wit.Option{Type: wit.String{}}}},
		{"tuple", &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U8{}, wit.U8{}}}}},
		{"list of lists", &wit.TypeDef{Kind: &wit.List{Type: &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}}}},
		{"anonymous record", &wit.TypeDef{Kind: &wit.Record{}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := named("holder", &wit.Record{Fields: []wit.Field{{Name: "value", Type: tc.typ}}})
			_, err := FromWIT([]*wit.TypeDef{rec})
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindUnsupported}) {
				t.Errorf("expected unsupported, got %v", err)
			}
		})
	}
}

func TestFlagsScalar(t *testing.T) {
	tests := []struct {
		want string
		n    int
	}{
		{"uint8_t", 3},
		{"uint16_t", 9},
		{"uint32_t", 32},
		{"uint64_t", 33},
	}
	for _, tc := range tests {
		got, ok := flagsScalar(tc.n)
		if !ok || got != tc.want {
			t.Errorf("flagsScalar(%d) = %q, %v", tc.n, got, ok)
		}
	}
	if _, ok := flagsScalar(65); ok {
		t.Error("65 flags should not fit a scalar")
	}
}
