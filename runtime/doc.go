// Package runtime executes generated marshaling procedures against a linear
// memory.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	guest, err := rt.NewGuestMemory(ctx, 1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	arena := runtime.NewArena(runtime.ArenaBase, guest.Size())
//	exec := runtime.NewExecutor(mod, guest, arena)
//	out := stream.New(guest, arena)
//	err = exec.CallType(ctx, "Line", marshalgen.Write, out, lineAddr)
//
// # Memories
//
//	HeapMemory   - a Go byte slice, for host-side values
//	GuestMemory  - the exported memory of a wazero module instance
//
// Both use little-endian layout with 4-byte pointers. Address 0 is never
// handed out by an Arena, so a zero pointer always means absent.
//
// # Diagnostics
//
// Presence mismatches found by non-allocating readers do not stop a call.
// They are logged at warn level and kept in Executor.Diagnostics until
// ResetDiagnostics is called.
package runtime
