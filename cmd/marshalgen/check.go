package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/wippyai/marshalgen"
	"github.com/wippyai/marshalgen/generator"
	"github.com/wippyai/marshalgen/runtime"
	"github.com/wippyai/marshalgen/stream"
)

// checkPages is the guest memory size used for round trips.
const checkPages = 16

type checkResult struct {
	Err   error
	Type  string
	Bytes int
}

// checkRoundTrips writes a zero value of every generated type from a guest
// memory, reads it into host memory and writes it again. Both encodings
// must match.
func checkRoundTrips(ctx context.Context, mod *generator.Module) ([]checkResult, error) {
	rt, err := runtime.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close(ctx)

	guestMem, err := rt.NewGuestMemory(ctx, checkPages)
	if err != nil {
		return nil, fmt.Errorf("guest memory: %w", err)
	}
	hostMem := runtime.NewHeapMemory(checkPages * runtime.PageSize)

	guestArena := runtime.NewArena(runtime.ArenaBase, guestMem.Size())
	hostArena := runtime.NewArena(runtime.ArenaBase, hostMem.Size())
	guest := runtime.NewExecutor(mod, guestMem, guestArena)
	host := runtime.NewExecutor(mod, hostMem, hostArena)

	var results []checkResult
	for _, def := range mod.Definitions() {
		if def.Command != "" {
			continue
		}
		n, err := roundTrip(ctx, def.Type, guest, guestMem, guestArena, host, hostMem, hostArena)
		results = append(results, checkResult{Type: def.Type, Bytes: n, Err: err})
		guestArena.Reset()
		hostArena.Reset()
	}
	return results, nil
}

func roundTrip(
	ctx context.Context,
	typeName string,
	guest *runtime.Executor, guestMem marshalgen.Memory, guestArena *runtime.Arena,
	host *runtime.Executor, hostMem marshalgen.Memory, hostArena *runtime.Arena,
) (int, error) {
	info, err := guest.Layout().Type(typeName)
	if err != nil {
		return 0, err
	}

	src, err := zeroValue(guestMem, guestArena, info.Size, info.Align)
	if err != nil {
		return 0, err
	}
	out := stream.New(guestMem, guestArena)
	if err := guest.CallType(ctx, typeName, marshalgen.Write, out, src); err != nil {
		return 0, fmt.Errorf("guest write: %w", err)
	}

	dst, err := zeroValue(hostMem, hostArena, info.Size, info.Align)
	if err != nil {
		return 0, err
	}
	in := stream.NewReader(out.Bytes(), hostMem, hostArena)
	if err := host.CallType(ctx, typeName, marshalgen.Read, in, dst); err != nil {
		return 0, fmt.Errorf("host read: %w", err)
	}
	if in.Remaining() != 0 {
		return 0, fmt.Errorf("host read left %d bytes", in.Remaining())
	}

	again := stream.New(hostMem, hostArena)
	if err := host.CallType(ctx, typeName, marshalgen.Write, again, dst); err != nil {
		return 0, fmt.Errorf("host write: %w", err)
	}
	if !bytes.Equal(out.Bytes(), again.Bytes()) {
		return 0, fmt.Errorf("encodings differ: guest %x, host %x", out.Bytes(), again.Bytes())
	}
	return out.Len(), nil
}

// zeroValue allocates size zeroed bytes. Arena memory may be reused after
// a reset, so it is cleared explicitly.
func zeroValue(mem marshalgen.Memory, arena *runtime.Arena, size, align uint32) (uint32, error) {
	if size == 0 {
		size = 1
	}
	ptr, err := arena.Alloc(size, align)
	if err != nil {
		return 0, err
	}
	if err := mem.Write(ptr, make([]byte, size)); err != nil {
		return 0, err
	}
	return ptr, nil
}
