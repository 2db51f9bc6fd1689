package ir

import "github.com/wippyai/marshalgen"

// Proc is one generated procedure: a stream parameter, one pointer to a
// value of Type and a body.
type Proc struct {
	Name      string
	Type      string
	Stream    string
	Value     string
	Body      []Stmt
	Direction marshalgen.Direction
	DynAlloc  bool
}

// Walk calls fn for every statement of body in order, descending into
// conditionals and loops. Returning false from fn skips the children of
// that statement.
func Walk(body []Stmt, fn func(Stmt) bool) {
	for _, s := range body {
		if !fn(s) {
			continue
		}
		switch s := s.(type) {
		case If:
			Walk(s.Then, fn)
			Walk(s.Else, fn)
		case For:
			Walk(s.Body, fn)
		}
	}
}

// Callees returns the names of procedures called from body, in first-call
// order without repeats.
func Callees(body []Stmt) []string {
	var out []string
	seen := make(map[string]bool)
	Walk(body, func(s Stmt) bool {
		if c, ok := s.(Call); ok && !seen[c.Proc] {
			seen[c.Proc] = true
			out = append(out, c.Proc)
		}
		return true
	})
	return out
}
