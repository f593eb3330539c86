// Package testutil provides testing utilities for dictcol.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating deterministic key material and for
// building dictionary columns from literal row values.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.Strings(100, 8)   // 100 random strings of length 8
//	ids := rng.Int64s(100, 1000)  // 100 random int64s in [0, 1000)
//
// # Column Building
//
//	col := testutil.MustStringColumn(t,
//	    []string{"a", "b", "c"},      // key set
//	    []uint32{0, 2, 1, 0},         // per-row indices
//	    []bool{true, true, false, true}, // validity (nil = all valid)
//	)
package testutil
