// Package layout computes C-style sizes, alignments and member offsets for
// the types of a typedesc.Registry on a 32-bit target.
//
// # Layout Rules
//
//   - Scalars: size and alignment as declared in the registry
//   - Pointers: 4 bytes, 4-byte aligned, whatever they point to
//   - Fixed arrays: element layout repeated N times
//   - Structs: members laid out in order, each aligned, total size padded
//     to the largest member alignment
//   - Unions: every member at offset 0, size of the largest member padded
//     to the largest alignment
//
// # Usage
//
//	calc := layout.NewCalculator(reg)
//	info, err := calc.Compound("Line")
//	// info.Size, info.Align, info.FieldOffs["pts"]
//
// This package is internal to marshalgen.
package layout
