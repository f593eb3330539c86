// Package datum defines the value domains the key-management engine is
// polymorphic over.
//
// A domain is a fixed, totally ordered element type: fixed-width numerics,
// timestamps, durations, byte-wise ordered strings, or lists of another
// domain. The engine never redefines comparison; it composes the domain's
// order through the Values interface.
//
// Values is a closed set: the concrete implementations in this package are
// the only ones, mirroring a tagged-variant design rather than open runtime
// polymorphism. All Values are immutable once constructed.
//
// Constructors (Int64Values, StringValues, ...) build zero-copy views over
// caller storage. Derived sequences produced by Gather and Interleave own
// allocator-backed buffers and must be released by whoever owns the result.
package datum
