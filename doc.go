// Package marshalgen generates paired write/read marshaling procedures for
// C-family compound types and runs them against a linear memory.
//
// A registry of type descriptors (structs, unions, scalars, constants and
// remote-callable commands) is turned into one writer and one reader per
// canonical type. Writers append the bytes of a value to a stream; readers
// reconstruct the value on the other side, allocating pointed-to storage as
// they go. Commands receive dense opcodes starting at a fixed base.
//
// # Architecture Overview
//
//	marshalgen/          Root package with Memory, Allocator and Stream contracts
//	├── typedesc/        Type descriptors, registry, YAML and WIT loaders
//	├── ir/              Statement and expression tree of generated procedures
//	├── marshal/         Per-field marshaling visitor
//	├── generator/       Per-type procedure generation
//	├── opcode/          Command opcode assignment
//	├── cgen/            C header and implementation rendering
//	├── stream/          Reference Stream over a linear memory
//	├── runtime/         Procedure interpreter, host and guest memories
//	├── config/          Generator configuration
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
//	reg, err := typedesc.LoadFile("vulkan.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	mod, err := generator.New(generator.DefaultOptions()).Run(reg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := cgen.Render(mod, cgen.Options{StreamType: "VulkanStream"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("marshal.h", []byte(out.Header), 0o644)
//
// # Wire Format
//
// Values are written member by member in declaration order, with no tags and
// no padding. Pointer members are preceded by the pointer value itself, which
// the reader uses only as a presence flag. Strings carry a big-endian 32-bit
// length prefix and string arrays a big-endian 32-bit count.
//
// # Thread Safety
//
// Generated modules are immutable and safe to share. Streams, memories and
// executors are NOT thread-safe and should be used by a single goroutine.
package marshalgen
