package layout

import (
	"testing"

	"github.com/wippyai/marshalgen/typedesc"
)

func testRegistry(t *testing.T) *typedesc.Registry {
	t.Helper()
	reg := typedesc.NewRegistry()
	add := func(c *typedesc.Compound) {
		if err := reg.AddCompound(c); err != nil {
			t.Fatalf("AddCompound(%s): %v", c.Name, err)
		}
	}
	if err := reg.AddConstant("MAX_NAME", 10); err != nil {
		t.Fatal(err)
	}
	add(&typedesc.Compound{Name: "Point", Members: []typedesc.Field{
		{Name: "x", Kind: typedesc.KindScalar, Type: "int32_t"},
		{Name: "y", Kind: typedesc.KindScalar, Type: "int32_t"},
	}})
	add(&typedesc.Compound{Name: "Line", Members: []typedesc.Field{
		{Name: "count", Kind: typedesc.KindScalar, Type: "uint32_t"},
		{Name: "pts", Kind: typedesc.KindCompound, Type: "Point", PointerDepth: 1, LenField: "count"},
	}})
	add(&typedesc.Compound{Name: "Padded", Members: []typedesc.Field{
		{Name: "tag", Kind: typedesc.KindScalar, Type: "uint8_t"},
		{Name: "value", Kind: typedesc.KindScalar, Type: "uint64_t"},
		{Name: "name", Kind: typedesc.KindFixedArray, Type: "char", StaticLen: typedesc.ConstLen("MAX_NAME")},
		{Name: "corners", Kind: typedesc.KindCompound, Type: "Point", StaticLen: typedesc.Lit(2)},
	}})
	add(&typedesc.Compound{Name: "Value", Category: typedesc.CategoryUnion, Members: []typedesc.Field{
		{Name: "u8", Kind: typedesc.KindScalar, Type: "uint8_t"},
		{Name: "d", Kind: typedesc.KindScalar, Type: "double"},
		{Name: "name", Kind: typedesc.KindFixedArray, Type: "char", StaticLen: typedesc.Lit(9)},
	}})
	add(&typedesc.Compound{Name: "Segment", Alias: "Line"})
	add(&typedesc.Compound{Name: "Empty"})
	return reg
}

func TestCalculateCompound(t *testing.T) {
	c := NewCalculator(testRegistry(t))

	tests := []struct {
		offs  map[string]uint32
		name  string
		size  uint32
		align uint32
	}{
		{name: "Point", size: 8, align: 4, offs: map[string]uint32{"x": 0, "y": 4}},
		{name: "Line", size: 8, align: 4, offs: map[string]uint32{"count": 0, "pts": 4}},
		{name: "Segment", size: 8, align: 4, offs: map[string]uint32{"count": 0, "pts": 4}},
		{name: "Padded", size: 48, align: 8, offs: map[string]uint32{"tag": 0, "value": 8, "name": 16, "corners": 28}},
		{name: "Value", size: 16, align: 8, offs: map[string]uint32{"u8": 0, "d": 0, "name": 0}},
		{name: "Empty", size: 0, align: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, err := c.Compound(tc.name)
			if err != nil {
				t.Fatalf("Compound: %v", err)
			}
			if info.Size != tc.size {
				t.Errorf("size: got %d, want %d", info.Size, tc.size)
			}
			if info.Align != tc.align {
				t.Errorf("align: got %d, want %d", info.Align, tc.align)
			}
			for field, want := range tc.offs {
				if got := info.FieldOffs[field]; got != want {
					t.Errorf("offset of %s: got %d, want %d", field, got, want)
				}
			}
		})
	}
}

func TestCalculateField(t *testing.T) {
	c := NewCalculator(testRegistry(t))

	tests := []struct {
		field typedesc.Field
		name  string
		size  uint32
		align uint32
	}{
		{name: "scalar", field: typedesc.Field{Kind: typedesc.KindScalar, Type: "uint16_t"}, size: 2, align: 2},
		{name: "string", field: typedesc.Field{Kind: typedesc.KindString, Type: "char", PointerDepth: 1}, size: 4, align: 4},
		{name: "string array", field: typedesc.Field{Kind: typedesc.KindStringArray, Type: "char", PointerDepth: 2}, size: 4, align: 4},
		{name: "chain link", field: typedesc.Field{Type: "void", PointerDepth: 1, ChainLink: true}, size: 4, align: 4},
		{name: "fixed array", field: typedesc.Field{Kind: typedesc.KindFixedArray, Type: "uint16_t", StaticLen: typedesc.Lit(3)}, size: 6, align: 2},
		{name: "compound", field: typedesc.Field{Kind: typedesc.KindCompound, Type: "Padded"}, size: 48, align: 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, err := c.Field(&tc.field)
			if err != nil {
				t.Fatalf("Field: %v", err)
			}
			if info.Size != tc.size || info.Align != tc.align {
				t.Errorf("got %d/%d, want %d/%d", info.Size, info.Align, tc.size, tc.align)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	c := NewCalculator(testRegistry(t))

	off, err := c.Offset("Padded", "corners")
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	if off != 28 {
		t.Errorf("got %d, want 28", off)
	}
	if _, err := c.Offset("Padded", "missing"); err == nil {
		t.Error("expected error for unknown member")
	}
	if _, err := c.Offset("Missing", "x"); err == nil {
		t.Error("expected error for unknown compound")
	}
}

func TestSelfContainingCompound(t *testing.T) {
	reg := typedesc.NewRegistry()
	if err := reg.AddCompound(&typedesc.Compound{Name: "Loop", Members: []typedesc.Field{
		{Name: "inner", Kind: typedesc.KindCompound, Type: "Loop"},
	}}); err != nil {
		t.Fatal(err)
	}
	if _, err := NewCalculator(reg).Compound("Loop"); err == nil {
		t.Error("expected error for a compound containing itself")
	}
}
