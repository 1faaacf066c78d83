package arena

import (
	"bytes"
	"hash/maphash"

	"github.com/hupe1980/canon/internal/hash"
)

// Hasher defines content identity for an arena. Values that are Equal must
// have the same Hash.
type Hasher[T any] interface {
	Hash(v T) uint64
	Equal(a, b T) bool
}

// HasherFuncs adapts a pair of functions to a Hasher.
func HasherFuncs[T any](hashFn func(T) uint64, equalFn func(a, b T) bool) Hasher[T] {
	return funcHasher[T]{hash: hashFn, equal: equalFn}
}

type funcHasher[T any] struct {
	hash  func(T) uint64
	equal func(a, b T) bool
}

func (h funcHasher[T]) Hash(v T) uint64   { return h.hash(v) }
func (h funcHasher[T]) Equal(a, b T) bool { return h.equal(a, b) }

// Comparable returns a Hasher for any comparable type, using == for
// equality and a randomly seeded maphash for hashing.
//
// As with ==, floating point NaN never equals itself, so every NaN
// inserted becomes a new entry.
func Comparable[T comparable]() Hasher[T] {
	return comparableHasher[T]{seed: maphash.MakeSeed()}
}

type comparableHasher[T comparable] struct {
	seed maphash.Seed
}

func (h comparableHasher[T]) Hash(v T) uint64 { return maphash.Comparable(h.seed, v) }
func (comparableHasher[T]) Equal(a, b T) bool { return a == b }

// Strings returns an xxHash64 based Hasher for strings.
func Strings() Hasher[string] { return stringHasher{} }

type stringHasher struct{}

func (stringHasher) Hash(v string) uint64   { return hash.XXH64String(v) }
func (stringHasher) Equal(a, b string) bool { return a == b }

// Bytes returns an xxHash64 based Hasher for byte slices. A nil slice and
// an empty slice are equal.
func Bytes() Hasher[[]byte] { return bytesHasher{} }

type bytesHasher struct{}

func (bytesHasher) Hash(v []byte) uint64   { return hash.XXH64(v) }
func (bytesHasher) Equal(a, b []byte) bool { return bytes.Equal(a, b) }

// BytesCRC32C returns a Hasher for byte slices using hardware CRC32C.
func BytesCRC32C() Hasher[[]byte] { return crcHasher{} }

type crcHasher struct{}

func (crcHasher) Hash(v []byte) uint64   { return hash.CRC32C64(v) }
func (crcHasher) Equal(a, b []byte) bool { return bytes.Equal(a, b) }
