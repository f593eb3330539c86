// Package mem provides typed views over raw byte buffers.
//
// The engine requests all long-lived storage (indices, validity bitmaps,
// numeric key buffers) from an allocator that deals in []byte. The helpers
// here reinterpret those buffers as fixed-width typed slices without copying.
//
// Allocator buffers are 64-byte aligned, which satisfies the alignment
// requirement of every element type viewed through this package.
package mem
