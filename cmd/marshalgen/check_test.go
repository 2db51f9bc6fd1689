package main

import (
	"context"
	"strings"
	"testing"

	"github.com/wippyai/marshalgen/generator"
	"github.com/wippyai/marshalgen/typedesc"
)

func TestCheckRoundTrips(t *testing.T) {
	reg, err := typedesc.LoadYAML(strings.NewReader(`
types:
  - name: Point
    members:
      - {name: x, type: int32_t}
      - {name: y, type: int32_t}
  - name: Line
    members:
      - {name: count, type: uint32_t}
      - {name: pts, type: Point, pointer: 1, len: count}
      - {name: pLabel, type: char, pointer: 1, len: null-terminated}
  - name: Polyline
    alias: Line
commands:
  - name: vkDraw
    params:
      - {name: pLine, type: Line, pointer: 1, output: true}
`))
	if err != nil {
		t.Fatal(err)
	}
	opts := generator.DefaultOptions()
	opts.CommandReplies = true
	mod, err := generator.New(opts).Run(reg)
	if err != nil {
		t.Fatal(err)
	}

	results, err := checkRoundTrips(context.Background(), mod)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want one per canonical type", len(results))
	}

	want := map[string]int{"Point": 8, "Line": 12}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("%s: %v", r.Type, r.Err)
			continue
		}
		if r.Bytes != want[r.Type] {
			t.Errorf("%s encodes to %d bytes, want %d", r.Type, r.Bytes, want[r.Type])
		}
	}
}
