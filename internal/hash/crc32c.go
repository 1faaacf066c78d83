package hash

import (
	"hash/crc32"
)

// crc32cTable is pre-computed for CRC32-Castagnoli polynomial.
// Computing this once avoids repeated MakeTable calls.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
// Uses hardware acceleration when available (SSE4.2, ARM CRC).
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// CRC32C64 widens CRC32C into a 64-bit table hash by folding the length
// into the high word, so equal checksums of different-length inputs
// still land in different buckets.
func CRC32C64(data []byte) uint64 {
	return uint64(len(data))<<32 | uint64(CRC32C(data))
}
