// Package ir is the tree form of generated marshaling procedures.
//
// Procedures are built by the marshal and generator packages, rendered to C
// by cgen and executed directly by runtime. The node set is closed: every
// consumer switches over the concrete types below and treats anything else
// as a programming error.
//
// Expressions follow C value semantics. A Field is an lvalue naming one
// member reached through a pointer to its owner; used as a value it loads
// the member, except for arrays and by-value compounds, which decay to
// their address as they would in C.
package ir
