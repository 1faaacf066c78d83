// Package slab provides an append-only, off-heap byte allocator for promoted
// canonical values.
//
// The slab hands out memory in large chunks (1 MiB default) obtained from
// anonymous mappings and bumps an offset with lock-free CAS. Nothing a slab
// hands out is ever freed: chunks stay mapped for the life of the process,
// which is exactly the lifetime an interned value needs.
//
// # Features
//
//   - Off-heap allocation via mmap (no GC scanning, stable addresses)
//   - Lock-free bump allocation; a mutex is only taken to map a new chunk
//   - Optional memory budget through MemoryAcquirer
//   - Retired chunks are sealed read-only once every reservation is written
//
// # Large values
//
// Values larger than a quarter of the chunk size are rejected with
// ErrTooLarge so callers can keep them on the heap instead of wasting
// the tail of a chunk.
package slab
