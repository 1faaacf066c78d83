// Package testutil provides deterministic workload generators for tests
// and benchmarks.
//
// This package is intended for use in tests and benchmarks only.
//
//	rng := testutil.NewRNG(42)
//	vocab := rng.Vocabulary(1000, 8)
//	words := rng.ZipfWords(100_000, vocab, 1.2) // skewed repetition
//	blobs := rng.Payloads(10_000, 100, 64)
package testutil
