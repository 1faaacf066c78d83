// Package mmap provides anonymous memory mappings for off-heap storage.
//
// # Overview
//
// Anonymous mappings give the slab allocator large chunks of memory outside
// the Go garbage collector's control. Strings and byte slices copied into
// such a chunk never move and are never scanned, which makes them a cheap
// home for values that must stay resident for the life of the process.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	buf := m.Bytes()
//
//	// Once a prefix is fully written it can be made read-only.
//	_ = m.Seal(len(buf))
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE, mprotect(2) for Seal
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT, VirtualProtect for Seal
//
// # Thread Safety
//
// A Mapping is never unmapped, so slices into Bytes() stay valid for the
// life of the process. Seal only changes protection and is safe to call
// while other goroutines read the sealed prefix.
package mmap
