package typedesc

import "strings"

// FieldKind is the closed set of member shapes the marshaler understands.
type FieldKind uint8

const (
	KindScalar FieldKind = iota
	KindPointer
	KindFixedArray
	KindString
	KindStringArray
	KindCompound
)

var kindNames = [...]string{
	KindScalar:      "scalar",
	KindPointer:     "pointer",
	KindFixedArray:  "fixed-array",
	KindString:      "string",
	KindStringArray: "string-array",
	KindCompound:    "compound",
}

func (k FieldKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseFieldKind accepts the names produced by String, case-insensitively.
func ParseFieldKind(s string) (FieldKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return FieldKind(k), true
		}
	}
	return 0, false
}

// Category distinguishes structs from unions.
type Category uint8

const (
	CategoryStruct Category = iota
	CategoryUnion
)

func (c Category) String() string {
	if c == CategoryUnion {
		return "union"
	}
	return "struct"
}
