// Package dictcol implements dictionary-encoded columnar data and the
// key-management engine that keeps dictionary-encoded columns consistent
// with each other.
//
// A dictionary column stores a repetitive value sequence as a small sorted
// key set plus one integer index per row and a per-row validity bit.
// Downstream consumers (joins, grouping, hashing) can compare integer
// indices instead of full values, but only while the columns involved
// share an identical key set. This package provides the transformations
// that establish and maintain that precondition:
//
//   - AddKeys, RemoveKeys, RemoveUnusedKeys, SetKeys: single-column key
//     set mutation with index remapping and explicit null policy
//   - MatchColumns: one merged key set across N columns
//   - MatchTables: merged key sets across the dictionary positions of
//     schema-sharing column groups, non-dictionary columns passing through
//   - Encode, Decode, GetIndex: conversion between plain and
//     dictionary-encoded columns and scalar key lookup
//
// # Quick Start
//
//	keys, _ := keyset.New(datum.StringValues([]string{"a", "b", "c"}))
//	col, _ := dictcol.NewColumn(keys, []uint32{0, 2, 1, 0}, nil)
//
//	toRemove, _ := dictcol.NewArray(datum.StringValues([]string{"b"}), nil)
//	out, err := dictcol.RemoveKeys(col, toRemove)
//	// out.Keys() == ["a","c"], row 2 is now null
//	defer out.Release()
//
// # Ownership
//
// Inputs are read-only views; every operation returns freshly allocated
// columns whose buffers come from the configured allocator
// (WithAllocator, defaulting to a process-wide tracking allocator).
// Releasing a returned column is the caller's responsibility.
//
// # Asynchronous Execution
//
// With WithQueue, an operation returns its result shell immediately and
// runs on the queue's single worker. Results chain safely into later
// operations on the same queue; any other consumer must q.Wait() first:
//
//	q := queue.New()
//	defer q.Close()
//
//	bigger, _ := dictcol.AddKeys(col, extra, dictcol.WithQueue(q))
//	compact, _ := dictcol.RemoveUnusedKeys(bigger, dictcol.WithQueue(q))
//	if err := q.Wait(); err != nil {
//	    // ErrAsyncExecution: a queued stage failed
//	}
//	// compact is now safe to read
//
// There is no cancellation at this layer: an operation either fails during
// submission (misuse, and inline allocation failure) or runs to
// completion; failures after submission surface only on queue
// synchronization.
package dictcol
