// Package errors provides structured error types for marshalgen.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the field path, the descriptor type name and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseGenerate, errors.KindUnresolvedLength).
//		Path("Line", "pts").
//		Type("Point").
//		Detail("length field %q is not an earlier sibling", "count").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownType(errors.PhaseValidate, path, "Point")
//	err := errors.OutOfBounds(errors.PhaseDecode, path, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
