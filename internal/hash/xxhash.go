package hash

import (
	"github.com/cespare/xxhash/v2"
)

// XXH64 returns the 64-bit xxHash of data.
func XXH64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// XXH64String returns the 64-bit xxHash of s without copying it.
func XXH64String(s string) uint64 {
	return xxhash.Sum64String(s)
}
