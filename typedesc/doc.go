// Package typedesc is the type descriptor model marshaling procedures are
// generated from.
//
// A Registry holds scalar widths, named constants, compound types (structs
// and unions with ordered members) and remote-callable commands. Member
// order is part of the wire contract: generated procedures visit members in
// exactly the order they were declared.
//
// # Field Kinds
//
//	Kind          Type      Depth  Length
//	───────────────────────────────────────────────
//	scalar        scalar    0      none
//	pointer       scalar    1      optional sibling
//	fixed-array   scalar    0      static
//	string        char      1      none
//	string-array  char      2      sibling
//	compound      compound  0/1    static (depth 0) or sibling (depth 1)
//
// Chain-link fields (forward-compatible extension pointers) are carried in
// the model but never marshaled.
//
// # Loading
//
// Registries are built programmatically, decoded from a YAML document with
// LoadYAML, or imported from WIT records with FromWIT / LoadWITJSON.
//
// A Registry is read-only once handed to the generator.
package typedesc
