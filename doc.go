// Package canon provides process-lifetime value interning for Go.
//
// Interning maps every occurrence of an equal value to one canonical,
// permanently resident instance. Equality between interned values then
// degrades to comparing handles, and repeated payloads are stored once.
//
// # Quick Start
//
//	a := canon.String("Hello, World")
//	b := canon.String(strings.Clone("Hello, World"))
//	a == b          // true: same canonical instance
//	a.Value()       // "Hello, World"
//
//	canon.Of(42) == canon.Of(42)                       // any comparable type
//	canon.Bytes([]byte("abc")) == canon.Bytes([]byte("abc"))
//
// # Handles
//
// A Handle[T] wraps a pointer to a canonical instance. == on handles
// compares identity, and handles can be used as map keys; hashing a handle
// hashes its address, which is consistent with equality. Handles are never
// invalidated: canonical instances are never reclaimed.
//
// # Stores
//
// Every type has exactly one process-wide Store, created lazily on first
// use. String and Of[string] share a store. Stores for string and []byte
// hash with xxHash64 and, by default, copy payloads into off-heap
// anonymous mappings that are never unmapped.
//
// Dedicated stores can be created with NewStore and NewStoreWith. Code
// generated by canongen interns through the process-wide store of each
// composite type, so v.Intern() and Of(v) return the same handle.
//
// # Composite Types
//
// Mark a struct with //canon:derive and tag fields with canon:"intern":
//
//	//go:generate go run github.com/hupe1980/canon/cmd/canongen
//
//	//canon:derive
//	type User struct {
//	    First string `canon:"intern"`
//	    Last  string `canon:"intern"`
//	    Age   int
//	}
//
// canongen writes an InternedUser shadow type whose First and Last fields
// are Handle[string], plus User.Intern() returning Handle[InternedUser].
// Two users with the same last name share one canonical last-name string.
//
// # Configuration
//
// Configure sets defaults for stores created afterwards:
//
//	canon.Configure(
//	    canon.WithLogger(canon.NewJSONLogger(slog.LevelInfo)),
//	    canon.WithMetricsCollector(&canon.BasicMetricsCollector{}),
//	    canon.WithOffHeapLimit(256<<20),
//	)
//
// # Failure
//
// A store whose critical section is abandoned by a panic (for example in a
// user-supplied hasher) is poisoned. Intern then panics with a
// *PoisonedError; TryIntern returns it. Other stores keep working.
package canon
