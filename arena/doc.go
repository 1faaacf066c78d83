// Package arena provides the deduplicating store behind canonical values.
//
// An Arena owns exactly one canonical instance per distinct value and hands
// out *T pointers to it. Instances are appended in first-seen order and are
// never moved, mutated or freed, so a pointer returned once stays valid and
// identical for the rest of the process.
//
// # Concurrency Model
//
// All methods are safe for concurrent use. Lookups take a read lock; a miss
// takes the write lock and repeats the lookup before appending, so racing
// inserts of equal content always agree on a single winner.
//
// # Content Identity
//
// Identity is defined by a Hasher. Comparable types default to == with a
// seeded maphash; Strings, Bytes and BytesCRC32C cover variable-length
// content. Hash collisions are resolved with Equal.
//
// # Promotion
//
// Insert adopts the caller's pointer on a miss. InsertOwned hands the value
// to a Promoter, which gives it indefinite lifetime: a heap copy (Heap,
// HeapStrings, HeapBytes) or an off-heap copy in anonymous mappings
// (NewOffHeapStrings, NewOffHeapBytes).
//
// # Poisoning
//
// If a goroutine panics or calls runtime.Goexit while holding an arena lock
// (for example inside a user Hasher or Promoter), the arena is poisoned and
// every later Insert, InsertOwned and Get fails with a *PoisonedError.
// Other arenas are not affected.
package arena
