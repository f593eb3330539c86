// Package bitvec provides the validity bitmap used by columns.
//
// One bit per row, packed little-endian into an allocator-backed byte
// buffer: bit i set means row i is valid, clear means row i is null.
// A nil *Vector is the canonical "all rows valid" bitmap.
package bitvec

import (
	"github.com/apache/arrow/go/v18/arrow/bitutil"

	"github.com/hupe1980/dictcol/resource"
)

// Vector is a fixed-length validity bitmap.
type Vector struct {
	bits  []byte
	n     int
	alloc *resource.Allocator // nil for views over caller storage
}

// New creates a bitmap of n bits from the given allocator, with every bit
// initialized to the valid state.
func New(a *resource.Allocator, n int, valid bool) (*Vector, error) {
	size := int(bitutil.BytesForBits(int64(n)))
	buf, err := a.Allocate(size)
	if err != nil {
		return nil, err
	}
	v := &Vector{bits: buf, n: n, alloc: a}
	bitutil.SetBitsTo(v.bits, 0, int64(n), valid)
	return v, nil
}

// FromBools creates a bitmap view sized and initialized from a bool slice.
// The result does not use an allocator and Release is a no-op; it is meant
// for building inputs, primarily in tests.
func FromBools(valid []bool) *Vector {
	n := len(valid)
	v := &Vector{bits: make([]byte, bitutil.BytesForBits(int64(n))), n: n}
	for i, ok := range valid {
		if ok {
			bitutil.SetBit(v.bits, i)
		}
	}
	return v
}

// Len returns the number of rows covered. A nil Vector has length 0.
func (v *Vector) Len() int {
	if v == nil {
		return 0
	}
	return v.n
}

// IsSet reports whether row i is valid. A nil Vector treats every row as valid.
func (v *Vector) IsSet(i int) bool {
	if v == nil {
		return true
	}
	return bitutil.BitIsSet(v.bits, i)
}

// Set marks row i valid.
func (v *Vector) Set(i int) { bitutil.SetBit(v.bits, i) }

// Clear marks row i null.
func (v *Vector) Clear(i int) { bitutil.ClearBit(v.bits, i) }

// SetCount returns the number of valid rows.
func (v *Vector) SetCount() int {
	if v == nil {
		return 0
	}
	return bitutil.CountSetBits(v.bits, 0, v.n)
}

// Clone copies the bitmap into a new allocator-backed Vector.
// Cloning nil returns nil (all valid stays all valid).
func (v *Vector) Clone(a *resource.Allocator) (*Vector, error) {
	if v == nil {
		return nil, nil
	}
	out, err := New(a, v.n, false)
	if err != nil {
		return nil, err
	}
	copy(out.bits, v.bits)
	return out, nil
}

// Release returns the backing buffer to its allocator.
// Safe on nil and on views.
func (v *Vector) Release() {
	if v == nil || v.alloc == nil {
		return
	}
	v.alloc.Free(v.bits)
	v.bits = nil
}
