package dictcol

import (
	"fmt"

	"github.com/hupe1980/dictcol/datum"
	"github.com/hupe1980/dictcol/internal/bitvec"
	"github.com/hupe1980/dictcol/resource"
)

// Array is a plain (non-dictionary) column: a value sequence plus per-row
// validity. It is the shape of key-list arguments, of Encode input and of
// Decode output, and passes through MatchTables untouched.
type Array struct {
	values   datum.Values
	validity *bitvec.Vector
	alloc    *resource.Allocator // non-nil when the engine owns the buffers
}

// NewArray builds a plain column view over caller storage. valid marks
// per-row validity (nil means every row is valid) and must match values
// in length.
func NewArray(values datum.Values, valid []bool) (*Array, error) {
	if values == nil {
		return nil, fmt.Errorf("%w: array has no value domain", ErrInvalidArgument)
	}
	if valid != nil && len(valid) != values.Len() {
		return nil, fmt.Errorf("%w: validity length %d does not match %d rows", ErrInvalidArgument, len(valid), values.Len())
	}

	var validity *bitvec.Vector
	if valid != nil {
		validity = bitvec.FromBools(valid)
	}
	return &Array{values: values, validity: validity}, nil
}

func (a *Array) fill(values datum.Values, validity *bitvec.Vector) {
	a.values = values
	a.validity = validity
}

// NumRows returns the row count; zero while the array is still pending on
// a queue.
func (a *Array) NumRows() int {
	if a.values == nil {
		return 0
	}
	return a.values.Len()
}

// Values returns the backing value sequence. Entries of null rows are
// meaningless.
func (a *Array) Values() datum.Values { return a.values }

// IsValid reports whether row i holds a value (true) or null (false).
func (a *Array) IsValid(i int) bool { return a.validity.IsSet(i) }

// NullCount returns the number of null rows.
func (a *Array) NullCount() int {
	if a.validity == nil {
		return 0
	}
	return a.NumRows() - a.validity.SetCount()
}

// Value materializes the logical value at row i; nil for null rows.
func (a *Array) Value(i int) any {
	if !a.IsValid(i) {
		return nil
	}
	return a.values.Value(i)
}

// Release returns the array's buffers to the allocator that created them.
// No-op on views built with NewArray.
func (a *Array) Release() {
	if a == nil || a.alloc == nil {
		return
	}
	a.values.Release()
	a.validity.Release()
}
