package ir

import (
	"testing"

	"github.com/wippyai/marshalgen"
)

func TestCallees(t *testing.T) {
	stream := Param{Name: "stream"}
	root := Param{Name: "forMarshaling"}
	body := []Stmt{
		StreamCall{Op: marshalgen.Write, Stream: stream, Ptr: AddrOf{X: Field{Base: root, Owner: "Line", Name: "count"}}, Size: Sizeof{Type: "uint32_t"}},
		If{
			Cond: Field{Base: root, Owner: "Line", Name: "pts"},
			Then: []Stmt{
				For{Var: "i", Count: Field{Base: root, Owner: "Line", Name: "count"}, Body: []Stmt{
					Call{Proc: "marshal_Point", Stream: stream, Value: Local{Name: "i"}},
				}},
			},
			Else: []Stmt{Call{Proc: "marshal_Empty", Stream: stream, Value: root}},
		},
		Call{Proc: "marshal_Point", Stream: stream, Value: root},
	}

	got := Callees(body)
	want := []string{"marshal_Point", "marshal_Empty"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("callee %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	body := []Stmt{
		If{Cond: Lit{Value: 1}, Then: []Stmt{Diagnostic{Message: "inner"}}},
		Diagnostic{Message: "outer"},
	}

	var seen []string
	Walk(body, func(s Stmt) bool {
		if d, ok := s.(Diagnostic); ok {
			seen = append(seen, d.Message)
		}
		_, isIf := s.(If)
		return !isIf
	})
	if len(seen) != 1 || seen[0] != "outer" {
		t.Errorf("got %v, want [outer]", seen)
	}
}
