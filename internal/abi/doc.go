// Package abi provides shared arithmetic for the linear memory model.
//
// # Contents
//
//   - helpers.go: alignment, overflow-checked u32 arithmetic and safety limits
//
// This package is internal to marshalgen.
package abi
