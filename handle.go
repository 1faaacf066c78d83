package canon

import (
	"cmp"
	"fmt"
	"unsafe"
)

// Handle refers to a canonical instance. The zero Handle refers to nothing
// and is never returned by a successful intern.
//
// Two handles are == exactly when they refer to the same canonical
// instance, which for handles from the same store means equal content.
// The canonical instance is shared and must not be modified.
type Handle[T any] struct {
	p *T
}

// Interner is implemented by types that can produce a canonical form of
// themselves. C is the type itself for scalars and strings, and the
// generated shadow type for composites with interned fields.
type Interner[C any] interface {
	Intern() Handle[C]
}

var _ Interner[string] = Handle[string]{}

// Value returns a copy of the canonical value. It panics on the zero
// Handle.
func (h Handle[T]) Value() T {
	return *h.p
}

// Intern returns h. A handle is already canonical.
func (h Handle[T]) Intern() Handle[T] {
	return h
}

// IsZero reports whether h is the zero Handle.
func (h Handle[T]) IsZero() bool {
	return h.p == nil
}

// Addr returns the address of the canonical instance. It is stable for the
// lifetime of the process but differs between runs.
func (h Handle[T]) Addr() uintptr {
	return uintptr(unsafe.Pointer(h.p))
}

func (h Handle[T]) String() string {
	if h.p == nil {
		return "<nil>"
	}
	switch v := any(*h.p).(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Compare orders handles by the address of their canonical instance. The
// order is total and consistent with == but is not stable across runs; use
// CompareValues for an order by content.
func Compare[T any](a, b Handle[T]) int {
	return cmp.Compare(a.Addr(), b.Addr())
}

// CompareValues orders handles by canonical content. Equal handles compare
// equal without dereferencing.
func CompareValues[T cmp.Ordered](a, b Handle[T]) int {
	if a == b {
		return 0
	}
	switch {
	case a.p == nil:
		return -1
	case b.p == nil:
		return 1
	}
	return cmp.Compare(*a.p, *b.p)
}

func handleOf[T any](p *T) Handle[T] {
	return Handle[T]{p: p}
}
