// Package testutil provides testing utilities for chunkgo.
//
// This package is intended for use in tests and benchmarks only.
// Generators take an explicit seeded RNG instead of the process-global
// source, so a failing case reproduces from its seed.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	raw  := rng.Bytes(64 << 10)             // incompressible
//	data := rng.CompressibleBytes(64 << 10) // token-redundant
//	text := rng.TextBytes(64 << 10)         // word soup
package testutil
