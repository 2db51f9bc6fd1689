// Package stream is the reference byte stream generated procedures run
// against.
//
// A Buffer is bound to a linear memory and an allocator. Writers copy bytes
// out of the memory into the buffer; readers copy them back, allocating
// strings and string arrays from the allocator as they decode.
//
// # Wire Format
//
//	raw bytes      copied as they sit in memory
//	string         u32 big-endian length, then the bytes (no terminator)
//	string array   u32 big-endian count, then count strings
//
// Decoded strings are NUL-terminated in memory and borrowed from the
// allocator; they stay valid for as long as the allocator's storage does.
package stream
