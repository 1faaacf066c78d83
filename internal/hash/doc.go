// Package hash provides fast content hashing for canonical stores.
//
// # xxHash64
//
// String and byte content is hashed with xxHash64, which is deterministic
// across runs and processes and runs at memory bandwidth:
//
//	h := hash.XXH64String("Hello, World")
//	h := hash.XXH64(payload)
//
// # CRC32-Castagnoli (CRC32C)
//
// CRC32C uses hardware instructions where available (SSE4.2, ARM CRC).
// CRC32C64 folds the input length into the high word to make it usable as
// a table hash:
//
//	checksum := hash.CRC32C(data)
//	h := hash.CRC32C64(data)
//
// Neither function is cryptographic. Stores resolve collisions with full
// equality checks, so a weak hash only costs speed, never correctness.
package hash
