package canon

import (
	"reflect"
	"sync"

	"github.com/hupe1980/canon/arena"
)

// registry holds one *Store[T] per type, keyed by reflect.Type.
var registry sync.Map

func loadOrCreate[T any](create func() *Store[T]) *Store[T] {
	t := reflect.TypeFor[T]()
	if s, ok := registry.Load(t); ok {
		return s.(*Store[T])
	}
	// Stores are lazy, so a store that loses the race costs nothing.
	s, _ := registry.LoadOrStore(t, create())
	return s.(*Store[T])
}

// StoreFor returns the process-wide store for T, creating it on first use.
func StoreFor[T comparable]() *Store[T] {
	return loadOrCreate(func() *Store[T] { return NewStore[T]() })
}

// BytesStore returns the process-wide store for []byte.
func BytesStore() *Store[[]byte] {
	return loadOrCreate(func() *Store[[]byte] { return NewStoreWith(arena.Bytes()) })
}

// Of interns v in the process-wide store for T.
func Of[T comparable](v T) Handle[T] {
	return StoreFor[T]().Intern(v)
}

// OfPtr interns *p in the process-wide store for T. On a miss p itself
// becomes canonical and must never be modified again.
func OfPtr[T comparable](p *T) Handle[T] {
	return StoreFor[T]().InternPtr(p)
}

// String interns s. It shares a store with Of[string].
func String(s string) Handle[string] {
	return StoreFor[string]().Intern(s)
}

// Bytes interns a copy of b. A nil and an empty slice intern to the same
// handle.
//
// The canonical slice has len == cap, so append always reallocates. It must
// not be written to: off-heap payloads may live in read-only memory.
func Bytes(b []byte) Handle[[]byte] {
	return BytesStore().Intern(b)
}
